package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"loan-desk/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects and pings. A nil client with nil error means redis is disabled.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*redis.Client, error) {
	if !cfg.Enabled {
		logger.Info("Redis is disabled via configuration.")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(pingCtx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info("Redis connection established successfully", "address", cfg.Addr, "db", cfg.DB)
	return rdb, nil
}
