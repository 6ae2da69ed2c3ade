package cache

import (
	"context"
	"sync"
	"time"

	currencyapp "github.com/erp/crm/internal/application/currency"
	"github.com/erp/crm/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type rateKey struct {
	tenantID uuid.UUID
	code     valueobject.CurrencyCode
}

type rateEntry struct {
	rate      decimal.Decimal
	expiresAt time.Time
}

// InMemoryRateCache is a process local rate cache for single instance deployments
type InMemoryRateCache struct {
	mu      sync.RWMutex
	entries map[rateKey]rateEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewInMemoryRateCache creates an in-memory cache
func NewInMemoryRateCache(ttl time.Duration) *InMemoryRateCache {
	return &InMemoryRateCache{
		entries: make(map[rateKey]rateEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns an unexpired rate
func (c *InMemoryRateCache) Get(_ context.Context, tenantID uuid.UUID, code valueobject.CurrencyCode) (decimal.Decimal, bool) {
	c.mu.RLock()
	e, ok := c.entries[rateKey{tenantID, code}]
	c.mu.RUnlock()
	if !ok || !c.now().Before(e.expiresAt) {
		return decimal.Zero, false
	}
	return e.rate, true
}

// Set caches a rate
func (c *InMemoryRateCache) Set(_ context.Context, tenantID uuid.UUID, code valueobject.CurrencyCode, rate decimal.Decimal) {
	c.mu.Lock()
	c.entries[rateKey{tenantID, code}] = rateEntry{rate: rate, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate drops a cached rate
func (c *InMemoryRateCache) Invalidate(_ context.Context, tenantID uuid.UUID, code valueobject.CurrencyCode) {
	c.mu.Lock()
	delete(c.entries, rateKey{tenantID, code})
	c.mu.Unlock()
}

var _ currencyapp.RateCache = (*InMemoryRateCache)(nil)
