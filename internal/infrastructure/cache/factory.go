package cache

import (
	"context"
	"time"

	currencyapp "github.com/erp/crm/internal/application/currency"
	"github.com/erp/crm/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRateCache returns a Redis backed cache when Redis is configured and
// reachable, otherwise an in-memory one.
func NewRateCache(ctx context.Context, redisCfg config.RedisConfig, ttl time.Duration, logger *zap.Logger) currencyapp.RateCache {
	if redisCfg.Host == "" {
		logger.Info("Redis not configured, using in-memory rate cache")
		return NewInMemoryRateCache(ttl)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr(),
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unreachable, falling back to in-memory rate cache",
			zap.String("addr", redisCfg.Addr()),
			zap.Error(err),
		)
		_ = client.Close()
		return NewInMemoryRateCache(ttl)
	}

	logger.Info("Using Redis rate cache", zap.String("addr", redisCfg.Addr()), zap.Duration("ttl", ttl))
	return NewRedisRateCache(client, ttl, logger)
}
