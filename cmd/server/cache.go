package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskapi/internal/cache"
	"github.com/phrazzld/taskapi/internal/config"
)

// setupAppCache builds the task list cache for the configured driver.
func setupAppCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.Cache, error) {
	switch cfg.Cache.Driver {
	case "memory":
		logger.Info("using in-process task cache")
		return cache.NewMemoryCache(), nil

	case "redis":
		c, err := cache.NewRedisCache(ctx, cfg.Redis, cfg.Cache.KeyPrefix)
		if err != nil {
			if cfg.Cache.FailOpen {
				// The client reconnects on later calls; requests fall back to the store meanwhile.
				logger.Warn("redis unreachable at startup, continuing in fail-open mode",
					slog.String("error", err.Error()))
				return cache.NewRedisCacheFromConfig(cfg.Redis, cfg.Cache.KeyPrefix), nil
			}
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return c, nil

	default:
		return nil, fmt.Errorf("unsupported cache driver %q", cfg.Cache.Driver)
	}
}
