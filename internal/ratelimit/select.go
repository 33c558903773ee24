package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"gardencms/internal/config"
	"gardencms/internal/logger"
)

// Select returns a Redis limiter when client answers a ping and an in-memory
// limiter otherwise. client may be nil.
func Select(ctx context.Context, cfg config.ThrottleConfig, client redis.Cmdable, log logger.Logger) Limiter {
	if client != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		err := client.Ping(pingCtx).Err()
		if err == nil {
			log.Info("throttle_configured", logger.String("backend", "redis"),
				logger.Int("limit", cfg.Limit), logger.Duration("window", cfg.Window))
			return NewRedisLimiter(client, cfg.Limit, cfg.Window)
		}
		log.Warn("redis unavailable, throttling in memory", logger.Error(err))
	}
	log.Info("throttle_configured", logger.String("backend", "memory"),
		logger.Int("limit", cfg.Limit), logger.Duration("window", cfg.Window))
	return NewLocalLimiter(cfg.Limit, cfg.Window)
}
