package cache

import (
	"context"
	"fmt"

	"github.com/clientes/backend/internal/domain/address"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultInvalidationChannel is the Pub/Sub channel used to drop L1 entries on every instance
const DefaultInvalidationChannel = "address:invalidate"

// RedisInvalidator broadcasts postal code invalidations over Redis Pub/Sub so
// that every instance drops its in-process copy.
type RedisInvalidator struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

// NewRedisInvalidator creates an invalidator on an existing client
func NewRedisInvalidator(client *redis.Client, channel string, logger *zap.Logger) *RedisInvalidator {
	if channel == "" {
		channel = DefaultInvalidationChannel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisInvalidator{client: client, channel: channel, logger: logger}
}

// Publish announces that code was invalidated
func (i *RedisInvalidator) Publish(ctx context.Context, code address.PostalCode) error {
	if err := i.client.Publish(ctx, i.channel, code.String()).Err(); err != nil {
		return fmt.Errorf("failed to publish invalidation: %w", err)
	}
	return nil
}

// Subscribe calls onInvalidate for every announced code until ctx is done.
// It blocks; run it in its own goroutine. ready, if non-nil, is closed once
// the subscription is confirmed.
func (i *RedisInvalidator) Subscribe(ctx context.Context, ready chan<- struct{}, onInvalidate func(address.PostalCode)) error {
	pubsub := i.client.Subscribe(ctx, i.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}
	i.logger.Info("Subscribed to address invalidation channel", zap.String("channel", i.channel))
	if ready != nil {
		close(ready)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			code, err := address.ParsePostalCode(msg.Payload)
			if err != nil {
				i.logger.Warn("Ignoring malformed invalidation message", zap.String("payload", msg.Payload))
				continue
			}
			onInvalidate(code)
		}
	}
}
