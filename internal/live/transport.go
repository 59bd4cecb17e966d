package live

import (
	"context"
	"time"

	"github.com/Eka2r/Padayon/internal/cache"
)

// Stream delivers raw snapshot payloads of one channel.
type Stream interface {
	C() <-chan []byte
	Close() error
}

// Transport is the pub/sub bus snapshots travel over.
type Transport interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (Stream, error)
}

// Store keeps the latest snapshot of each collection.
type Store interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// RedisTransport adapts cache.Cache to Transport.
type RedisTransport struct {
	c *cache.Cache
}

// NewRedisTransport wraps c.
func NewRedisTransport(c *cache.Cache) *RedisTransport {
	return &RedisTransport{c: c}
}

// Publish implements Transport.
func (t *RedisTransport) Publish(ctx context.Context, channel string, payload []byte) error {
	return t.c.Publish(ctx, channel, payload)
}

// Subscribe implements Transport.
func (t *RedisTransport) Subscribe(ctx context.Context, channel string) (Stream, error) {
	feed, err := t.c.Subscribe(ctx, channel)
	if err != nil {
		return nil, err
	}
	return feed, nil
}
