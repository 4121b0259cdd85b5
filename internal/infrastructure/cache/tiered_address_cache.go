package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/clientes/backend/internal/domain/address"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// TieredAddressCache puts an in-process L1 (go-cache) in front of a durable
// address.Cache. The backend stays the source of truth: writes and
// invalidations go to it first and only then touch L1.
type TieredAddressCache struct {
	l1          *gocache.Cache
	backend     address.Cache
	invalidator *RedisInvalidator
	logger      *zap.Logger

	l1Hits   atomic.Int64
	l1Misses atomic.Int64
}

// TieredStats reports L1 effectiveness
type TieredStats struct {
	L1Hits   int64 `json:"l1_hits"`
	L1Misses int64 `json:"l1_misses"`
	L1Items  int   `json:"l1_items"`
}

// TieredOption configures a TieredAddressCache
type TieredOption func(*TieredAddressCache)

// WithInvalidator broadcasts invalidations to other instances
func WithInvalidator(inv *RedisInvalidator) TieredOption {
	return func(c *TieredAddressCache) {
		c.invalidator = inv
	}
}

// WithTieredLogger sets the logger for the cache
func WithTieredLogger(logger *zap.Logger) TieredOption {
	return func(c *TieredAddressCache) {
		c.logger = logger
	}
}

// NewTieredAddressCache wraps backend with an L1 whose entries live for ttl
func NewTieredAddressCache(backend address.Cache, ttl, cleanup time.Duration, opts ...TieredOption) *TieredAddressCache {
	c := &TieredAddressCache{
		l1:      gocache.New(ttl, cleanup),
		backend: backend,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run listens for invalidations from other instances until ctx is done.
// It is a no-op without an invalidator.
func (c *TieredAddressCache) Run(ctx context.Context, ready chan<- struct{}) error {
	if c.invalidator == nil {
		if ready != nil {
			close(ready)
		}
		<-ctx.Done()
		return ctx.Err()
	}
	return c.invalidator.Subscribe(ctx, ready, func(code address.PostalCode) {
		c.l1.Delete(code.String())
		c.logger.Debug("Dropped L1 address entry", zap.String("postal_code", code.String()))
	})
}

// Get checks L1, then the backend, populating L1 on a backend hit
func (c *TieredAddressCache) Get(ctx context.Context, code address.PostalCode) (*address.Address, error) {
	if v, ok := c.l1.Get(code.String()); ok {
		c.l1Hits.Add(1)
		addr := v.(address.Address)
		return &addr, nil
	}
	c.l1Misses.Add(1)

	addr, err := c.backend.Get(ctx, code)
	if err != nil || addr == nil {
		return addr, err
	}
	c.l1.SetDefault(code.String(), *addr)
	return addr, nil
}

// Put writes through to the backend, then refreshes L1
func (c *TieredAddressCache) Put(ctx context.Context, code address.PostalCode, addr address.Address) error {
	if err := c.backend.Put(ctx, code, addr); err != nil {
		return err
	}
	c.l1.SetDefault(code.String(), addr)
	return nil
}

// Invalidate removes the entry from the backend and from every instance's L1
func (c *TieredAddressCache) Invalidate(ctx context.Context, code address.PostalCode) error {
	if err := c.backend.Invalidate(ctx, code); err != nil {
		return err
	}
	c.l1.Delete(code.String())

	if c.invalidator != nil {
		if err := c.invalidator.Publish(ctx, code); err != nil {
			c.logger.Warn("Failed to publish address invalidation",
				zap.String("postal_code", code.String()), zap.Error(err))
		}
	}
	return nil
}

// Stats returns L1 hit/miss counters
func (c *TieredAddressCache) Stats() TieredStats {
	return TieredStats{
		L1Hits:   c.l1Hits.Load(),
		L1Misses: c.l1Misses.Load(),
		L1Items:  c.l1.ItemCount(),
	}
}

var _ address.Cache = (*TieredAddressCache)(nil)
