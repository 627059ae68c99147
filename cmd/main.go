package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loan-desk/internal/api"
	"loan-desk/internal/api/middleware"
	"loan-desk/internal/batch"
	"loan-desk/internal/config"
	"loan-desk/internal/domain/customer"
	"loan-desk/internal/domain/loan"
	"loan-desk/internal/event"
	"loan-desk/internal/infrastructure/cache"
	"loan-desk/internal/infrastructure/database/firestoredb"
	"loan-desk/internal/infrastructure/database/postgres"
	"loan-desk/internal/infrastructure/logging"
	"loan-desk/internal/infrastructure/storage"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// @title Loan Desk API
// @version 1.0
// @description Loan application intake and officer review queue.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

// run returns only after its deferred closes have run.
func run() error {
	cfg, logger := initializeApp()
	ctx := context.Background()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open document store", "backend", cfg.Store.Backend, "error", err)
		return err
	}
	defer store.close()

	documents := initializeDocumentStorage(ctx, cfg, logger)
	defer closeDocumentStorage(documents, logger)

	redisClient := initializeRedisClient(ctx, cfg, logger)
	rabbitMQConn, _ := setupRabbitMQ(cfg, logger)

	loanService := initializeServices(cfg, store, documents, redisClient, rabbitMQConn, logger)
	pendingJob := batch.NewPendingQueueJob(loanService, logger)
	cronScheduler := startBatchJobs(cfg, logger, pendingJob)

	var rateStore redis.Cmdable
	if redisClient != nil {
		rateStore = redisClient
	}
	router, rateLimiter := api.SetupRouter(loanService, cfg, rateStore, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	return handleShutdown(srv, cronScheduler, rateLimiter, rabbitMQConn, redisClient, shutdownChan, serverErrors, logger)
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger)
	logger.Info("Application starting...", "config_source", viper.ConfigFileUsed(), "store", cfg.Store.Backend)

	return cfg, logger
}

// backingStore is the persistence selected by store.backend.
type backingStore struct {
	loans     loan.Repository
	allocator loan.AccountNumberAllocator
	customers customer.CustomerRepository
	close     func()
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backingStore, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendFirestore, "":
		client, err := firestoredb.NewClient(ctx, cfg.Firestore)
		if err != nil {
			return nil, err
		}
		logger.Info("Using Firestore document store", "project", cfg.Firestore.ProjectID, "database", cfg.Firestore.DatabaseID)
		return &backingStore{
			loans:     firestoredb.NewLoanRepository(client, logger),
			allocator: firestoredb.NewAccountNumberCounter(client, logger),
			customers: firestoredb.NewCustomerRepository(client, logger),
			close: func() {
				if err := client.Close(); err != nil {
					logger.Error("Failed to close Firestore client", "error", err)
				}
			},
		}, nil

	case config.StoreBackendPostgres:
		if cfg.Database.Migrate {
			if err := postgres.RunMigrations(cfg.Database, logger); err != nil {
				return nil, err
			}
		}
		pool, err := postgres.NewConnectionPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		return &backingStore{
			loans:     postgres.NewLoanRepository(pool, logger),
			allocator: postgres.NewAccountNumberCounter(pool, logger),
			customers: postgres.NewCustomerRepository(pool, logger),
			close: func() {
				logger.Info("Closing database connection pool...")
				pool.Close()
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func initializeDocumentStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) *storage.GCSDocumentStorage {
	client, err := storage.NewGCSClient(ctx)
	if err != nil {
		logger.Error("Failed to create Cloud Storage client", "error", err)
		os.Exit(1)
	}
	documents, err := storage.NewGCSDocumentStorage(client, cfg.Storage, logger)
	if err != nil {
		_ = client.Close()
		logger.Error("Failed to configure document storage", "error", err)
		os.Exit(1)
	}
	return documents
}

func closeDocumentStorage(documents *storage.GCSDocumentStorage, logger *slog.Logger) {
	if err := documents.Close(); err != nil {
		logger.Error("Failed to close Cloud Storage client", "error", err)
	}
}

func initializeRedisClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) *redis.Client {
	rdb, err := cache.NewRedisClient(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err, "addr", cfg.Redis.Addr)
		os.Exit(1)
	}
	return rdb
}

func initializeServices(
	cfg *config.Config,
	store *backingStore,
	documents loan.DocumentStorage,
	redisClient *redis.Client,
	rabbitConn *amqp.Connection,
	logger *slog.Logger,
) loan.LoanService {
	logger.Info("Initializing application components...")

	customerRepo := store.customers
	if redisClient != nil {
		customerRepo = cache.NewCustomerCache(customerRepo, redisClient, cfg.Redis.CustomerTTL, logger)
	}
	customerService := customer.NewCustomerService(customerRepo, logger)

	return loan.NewLoanService(
		store.loans,
		store.allocator,
		documents,
		customerService,
		newEventPublisher(cfg, rabbitConn, logger),
		loan.ServiceConfig{
			DocumentCategory:  cfg.Storage.DocumentCategory,
			LookupConcurrency: cfg.Review.LookupConcurrency,
		},
		logger,
	)
}

func newEventPublisher(cfg *config.Config, rabbitConn *amqp.Connection, logger *slog.Logger) event.EventPublisher {
	if rabbitConn == nil {
		return event.NewNoopEventPublisher(logger)
	}
	publisher, err := event.NewRabbitMQEventPublisher(rabbitConn, cfg.RabbitMQ.ExchangeName, logger)
	if err != nil {
		logger.Error("Failed to set up RabbitMQ publisher, loan events will be dropped", "error", err)
		return event.NewNoopEventPublisher(logger)
	}
	return publisher
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", srv.Addr)
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serverErrors <- err
		} else {
			logger.Info("Server closed gracefully.")
			serverErrors <- nil
		}
	}()
	return srv, serverErrors, shutdownChan
}

func handleShutdown(srv *http.Server, cronScheduler *cron.Cron, rateLimiter *middleware.RateLimiterMiddleware, rabbitConn *amqp.Connection,
	redisClient *redis.Client, shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) error {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	triggerReason, serverErr := waitForShutdownTrigger(shutdownChan, serverErrors, logger)
	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)

	shutdownHTTPServer(srv, serverErrors, logger)
	stopCronScheduler(cronScheduler, logger)
	if rateLimiter != nil {
		rateLimiter.Stop()
	}
	closeRabbitMQConnection(rabbitConn, logger)
	closeRedisClient(redisClient, logger)

	logger.Info("Application shutdown process complete.")
	return serverErr
}

// waitForShutdownTrigger returns the unexpected server error, if any.
func waitForShutdownTrigger(shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) (string, error) {
	select {
	case sig := <-shutdownChan:
		logger.Info("Shutdown signal received.", "signal", sig.String())
		return "signal: " + sig.String(), nil
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			return "server error", err
		}
		logger.Info("Server goroutine finished before signal.")
		return "server exited", nil
	}
}

func stopCronScheduler(cronScheduler *cron.Cron, logger *slog.Logger) {
	logger.Info("Stopping cron scheduler...")
	cronCtx := cronScheduler.Stop()
	select {
	case <-cronCtx.Done():
		logger.Info("Cron scheduler stopped gracefully.")
	case <-time.After(15 * time.Second):
		logger.Warn("Cron scheduler shutdown timed out.")
	}
}

func closeRabbitMQConnection(rabbitConn *amqp.Connection, logger *slog.Logger) {
	if rabbitConn == nil {
		logger.Info("RabbitMQ connection was not established, skipping close.")
		return
	}
	if rabbitConn.IsClosed() {
		logger.Info("RabbitMQ connection already closed, skipping close.")
		return
	}
	logger.Info("Closing RabbitMQ connection...")
	if err := rabbitConn.Close(); err != nil {
		logger.Error("Failed to close RabbitMQ connection gracefully", slog.Any("error", err))
	}
}

func closeRedisClient(redisClient *redis.Client, logger *slog.Logger) {
	if redisClient == nil {
		logger.Info("Redis client was not initialized, skipping close.")
		return
	}
	logger.Info("Closing Redis client connection...")
	if err := redisClient.Close(); err != nil {
		logger.Error("Failed to close Redis client connection gracefully", "error", err)
	}
}

func shutdownHTTPServer(srv *http.Server, serverErrors <-chan error, logger *slog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", "error", err)
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
		}
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for server goroutine confirmation.")
	}
}

func startBatchJobs(cfg *config.Config, logger *slog.Logger, pendingJob *batch.PendingQueueJob) *cron.Cron {
	logger.Info("Initializing batch job scheduler...")
	c := cron.New()

	scheduleSpec := cfg.Batch.PendingQueueSchedule
	if scheduleSpec == "" {
		scheduleSpec = "*/5 * * * *"
		logger.Warn("Pending queue schedule not configured, using default", "schedule", scheduleSpec)
	}
	jobTimeout := cfg.Batch.PendingQueueTimeout
	if jobTimeout <= 0 {
		jobTimeout = 2 * time.Minute
	}

	jobID, err := c.AddJob(scheduleSpec, cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if runErr := pendingJob.Run(ctx); runErr != nil {
			logger.Error("Pending queue job finished with error", "job_name", "PendingQueueSize", slog.Any("error", runErr))
		}
	}))
	if err != nil {
		logger.Error("Failed to schedule pending queue job", "schedule", scheduleSpec, slog.Any("error", err))
	} else {
		logger.Info("Scheduled pending queue job", "schedule", scheduleSpec, "job_id", jobID)
	}

	c.Start()
	logger.Info("Cron scheduler started.")
	return c
}

func connectRabbitMQ(uri string, attempts int, backoff time.Duration, logger *slog.Logger) (*amqp.Connection, error) {
	var err error
	for i := 1; i <= attempts; i++ {
		var conn *amqp.Connection
		conn, err = amqp.Dial(uri)
		if err == nil {
			logger.Info("Successfully connected to RabbitMQ")

			go func() {
				blockChan := conn.NotifyBlocked(make(chan amqp.Blocking))
				closeChan := conn.NotifyClose(make(chan *amqp.Error, 1))

				select {
				case b := <-blockChan:
					logger.Warn("RabbitMQ Connection Blocked", "reason", b.Reason)
				case e := <-closeChan:
					if e != nil {
						logger.Error("RabbitMQ Connection Closed", slog.Any("error", e))
					}
				}
			}()

			return conn, nil
		}
		logger.Warn("Failed to connect to RabbitMQ, retrying...",
			slog.Int("attempt", i),
			slog.Int("max_attempts", attempts),
			slog.Any("error", err),
		)
		if i < attempts {
			time.Sleep(time.Duration(i) * backoff)
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", attempts, err)
}

// setupRabbitMQ returns a nil connection when events are disabled or the
// broker is unreachable; loan events then go to the no-op publisher.
func setupRabbitMQ(cfg *config.Config, logger *slog.Logger) (*amqp.Connection, error) {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("RabbitMQ is disabled via configuration, loan events will not be published.")
		return nil, nil
	}
	if cfg.RabbitMQ.URL == "" {
		logger.Error("RabbitMQ is enabled but no URL is configured")
		return nil, fmt.Errorf("RabbitMQ URL is not configured")
	}

	conn, err := connectRabbitMQ(cfg.RabbitMQ.URL, 5, 2*time.Second, logger)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", "error", err)
		return nil, err
	}
	return conn, nil
}
