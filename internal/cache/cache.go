package cache

import (
	"context"
	"time"
)

// Cache is the small key/value surface used for rate limiting and token revocation
type Cache interface {
	// Incr bumps a counter and starts its window on the first hit
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}
