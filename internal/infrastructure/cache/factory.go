package cache

import (
	"fmt"

	"github.com/clientes/backend/internal/domain/address"
	"github.com/clientes/backend/internal/infrastructure/config"
	"github.com/clientes/backend/internal/infrastructure/persistence"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddressCacheFactory builds the address cache selected by configuration
type AddressCacheFactory struct {
	cfg    config.CacheConfig
	db     *gorm.DB
	redis  *redis.Client
	logger *zap.Logger
}

// NewAddressCacheFactory creates a factory. redis may be nil when the
// database backend is used without cross-instance invalidation.
func NewAddressCacheFactory(cfg config.CacheConfig, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) *AddressCacheFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AddressCacheFactory{cfg: cfg, db: db, redis: rdb, logger: logger}
}

// Create returns the durable backend, wrapped with an L1 tier when enabled.
// The second return value is non-nil only when a tier was created.
func (f *AddressCacheFactory) Create() (address.Cache, *TieredAddressCache, error) {
	var backend address.Cache
	switch f.cfg.Backend {
	case "database":
		if f.db == nil {
			return nil, nil, fmt.Errorf("database address cache requires a database connection")
		}
		backend = persistence.NewGormAddressCache(f.db)
	case "redis":
		if f.redis == nil {
			return nil, nil, fmt.Errorf("redis address cache requires a redis connection")
		}
		backend = NewRedisAddressCache(f.redis, f.cfg.KeyPrefix)
	default:
		return nil, nil, fmt.Errorf("unknown address cache backend %q", f.cfg.Backend)
	}
	f.logger.Info("Address cache backend selected", zap.String("backend", f.cfg.Backend))

	if !f.cfg.L1Enabled {
		return backend, nil, nil
	}

	opts := []TieredOption{WithTieredLogger(f.logger.Named("address_cache"))}
	if f.redis != nil {
		opts = append(opts, WithInvalidator(NewRedisInvalidator(f.redis, "", f.logger)))
	}
	tiered := NewTieredAddressCache(backend, f.cfg.L1TTL, f.cfg.L1Cleanup, opts...)
	return tiered, tiered, nil
}
