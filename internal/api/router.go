package api

import (
	"log/slog"
	"net/http"
	"time"

	_ "loan-desk/docs"
	"loan-desk/internal/api/handler"
	mw "loan-desk/internal/api/middleware"
	"loan-desk/internal/config"
	"loan-desk/internal/domain/loan"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/traceid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const requestTimeout = 60 * time.Second

// SetupRouter wires every route. rateStore may be nil, in which case rate
// limiting stays in process. The returned limiter must be stopped on shutdown.
func SetupRouter(loanService loan.LoanService, cfg *config.Config, rateStore redis.Cmdable, logger *slog.Logger) (*chi.Mux, *mw.RateLimiterMiddleware) {
	router := chi.NewRouter()

	limiter := mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, rateStore, logger)
	setupMiddleware(router, limiter, logger)
	setupMetricsEndpoint(router, cfg, logger)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	setupAuthRoutes(router, cfg, logger)
	setupLoanRoutes(router, loanService, cfg, logger)
	setupReviewRoutes(router, loanService, cfg, logger)
	setupSwaggerEndpoint(router, logger)

	return router, limiter
}

func setupMiddleware(router *chi.Mux, limiter *mw.RateLimiterMiddleware, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(traceid.Middleware)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(requestTimeout))
	router.Use(limiter.Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupSwaggerEndpoint(router *chi.Mux, logger *slog.Logger) {
	logger.Info("Setting up Swagger UI endpoint", "path", "/swagger/")
	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/index.html", http.StatusMovedPermanently)
	})
}

// setupAuthRoutes mounts the token route only when server.auth.issueTokens is
// set; it signs tokens for any role and must stay off in production.
func setupAuthRoutes(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	if !cfg.Server.Auth.IssueTokens {
		logger.Info("Token issuing endpoint is disabled")
		return
	}
	logger.Warn("Token issuing endpoint is enabled, any caller can mint tokens", "path", "/auth/token")
	authHandler := handler.NewAuthHandler(cfg.Server.Auth, logger)
	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.GenerateBearerToken)
	})
}

func setupLoanRoutes(router *chi.Mux, loanService loan.LoanService, cfg *config.Config, logger *slog.Logger) {
	loanHandler := handler.NewLoanHandler(loanService, cfg.Server.MaxUploadBytes, logger)

	router.Route("/loans", func(r chi.Router) {
		r.Get("/types", loanHandler.ListLoanTypes)
		r.Get("/emi", loanHandler.QuoteEMI)
		r.Group(func(r chi.Router) {
			r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
			r.Post("/applications", loanHandler.SubmitApplication)
		})
	})
}

func setupReviewRoutes(router *chi.Mux, loanService loan.LoanService, cfg *config.Config, logger *slog.Logger) {
	reviewHandler := handler.NewReviewHandler(loanService, logger)

	router.Route("/reviews/loans", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Use(mw.RequireRole(mw.RoleOfficer, logger))
		r.Get("/", reviewHandler.ListPending)
		r.Route("/{accountNumber}", func(r chi.Router) {
			r.Post("/approve", reviewHandler.Approve)
			r.Post("/hold", reviewHandler.Hold)
			r.Post("/reject", reviewHandler.Reject)
		})
	})
}
