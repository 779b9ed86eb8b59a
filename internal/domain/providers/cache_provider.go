package providers

import (
	"context"
	"time"
)

// CacheProvider defines the interface for caching operations.
// Get returns ErrCacheMiss when the key is absent.
type CacheProvider interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}
