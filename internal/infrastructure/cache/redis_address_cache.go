package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/clientes/backend/internal/domain/address"
	"github.com/clientes/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// DefaultAddressKeyPrefix is prepended to the normalized postal code
const DefaultAddressKeyPrefix = "address:cep:"

// RedisAddressCache implements address.Cache on Redis. Keys are written
// without expiry so entries persist until invalidated.
type RedisAddressCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisAddressCache creates a cache on an existing client.
// The caller keeps ownership of the client.
func NewRedisAddressCache(client *redis.Client, keyPrefix string) *RedisAddressCache {
	if keyPrefix == "" {
		keyPrefix = DefaultAddressKeyPrefix
	}
	return &RedisAddressCache{client: client, keyPrefix: keyPrefix}
}

func (c *RedisAddressCache) key(code address.PostalCode) string {
	return c.keyPrefix + code.String()
}

// Get returns the cached address or (nil, nil) when the key is absent
func (c *RedisAddressCache) Get(ctx context.Context, code address.PostalCode) (*address.Address, error) {
	data, err := c.client.Get(ctx, c.key(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, shared.WrapStorage(err)
	}

	var addr address.Address
	if err := json.Unmarshal(data, &addr); err != nil {
		return nil, shared.WrapStorage(fmt.Errorf("corrupt address entry %s: %w", code, err))
	}
	return &addr, nil
}

// Put stores addr under code with no expiry
func (c *RedisAddressCache) Put(ctx context.Context, code address.PostalCode, addr address.Address) error {
	if addr.PostalCode() != code {
		return shared.WrapStorage(fmt.Errorf("address for %s cannot be stored under %s", addr.PostalCode(), code))
	}
	data, err := json.Marshal(addr)
	if err != nil {
		return shared.WrapStorage(err)
	}
	return shared.WrapStorage(c.client.Set(ctx, c.key(code), data, 0).Err())
}

// Invalidate deletes the key. Deleting an absent key is not an error.
func (c *RedisAddressCache) Invalidate(ctx context.Context, code address.PostalCode) error {
	return shared.WrapStorage(c.client.Del(ctx, c.key(code)).Err())
}

var _ address.Cache = (*RedisAddressCache)(nil)
