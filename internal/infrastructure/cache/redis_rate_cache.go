// Package cache provides exchange rate caches.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	currencyapp "github.com/erp/crm/internal/application/currency"
	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultKeyPrefix = "crm:rate:"

// RedisRateCache stores rates as strings under tenant scoped keys. Redis
// failures degrade to cache misses; the repository stays the source of truth.
type RedisRateCache struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
	logger    *zap.Logger
}

// NewRedisRateCache wraps an existing client. A nil client yields a cache that always misses.
func NewRedisRateCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisRateCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRateCache{client: client, ttl: ttl, keyPrefix: defaultKeyPrefix, logger: logger}
}

func (c *RedisRateCache) key(tenantID uuid.UUID, code valueobject.CurrencyCode) string {
	return fmt.Sprintf("%s%s:%s", c.keyPrefix, tenantID, code)
}

// Get returns a cached rate
func (c *RedisRateCache) Get(ctx context.Context, tenantID uuid.UUID, code valueobject.CurrencyCode) (decimal.Decimal, bool) {
	if c.client == nil {
		return decimal.Zero, false
	}
	raw, err := c.client.Get(ctx, c.key(tenantID, code)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("rate cache read failed", zap.String("code", code.String()), zap.Error(err))
		}
		return decimal.Zero, false
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		c.logger.Warn("rate cache holds an invalid value", zap.String("code", code.String()), zap.String("value", raw))
		return decimal.Zero, false
	}
	return rate, true
}

// Set caches a rate for the configured TTL
func (c *RedisRateCache) Set(ctx context.Context, tenantID uuid.UUID, code valueobject.CurrencyCode, rate decimal.Decimal) {
	if c.client == nil {
		return
	}
	if err := c.client.Set(ctx, c.key(tenantID, code), rate.StringFixed(valueobject.RatePlaces), c.ttl).Err(); err != nil {
		c.logger.Warn("rate cache write failed", zap.String("code", code.String()), zap.Error(err))
	}
}

// Invalidate drops a cached rate
func (c *RedisRateCache) Invalidate(ctx context.Context, tenantID uuid.UUID, code valueobject.CurrencyCode) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, c.key(tenantID, code)).Err(); err != nil {
		c.logger.Warn("rate cache invalidation failed", zap.String("code", code.String()), zap.Error(err))
	}
}

// Ping checks the Redis connection
func (c *RedisRateCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return errors.New("redis client not configured")
	}
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (c *RedisRateCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

var _ currencyapp.RateCache = (*RedisRateCache)(nil)
