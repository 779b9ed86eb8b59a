package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zatekoja/medtourclinic/internal/domain/providers"
	redisclient "github.com/zatekoja/medtourclinic/internal/infrastructure/clients/redis"
)

// RedisThrottleStore opens a window with SET NX PX so that every API
// instance shares the same throttle
type RedisThrottleStore struct {
	client *redisclient.Client
}

var _ providers.ThrottleStore = (*RedisThrottleStore)(nil)

// NewRedisThrottleStore creates a Redis-backed throttle store
func NewRedisThrottleStore(client *redisclient.Client) *RedisThrottleStore {
	return &RedisThrottleStore{client: client}
}

// Allow reports true and opens a window when key has none
func (s *RedisThrottleStore) Allow(ctx context.Context, key string, window time.Duration) (bool, error) {
	ok, err := s.client.Client().SetNX(ctx, key, 1, window).Result()
	if err != nil {
		return false, fmt.Errorf("throttle %s: %w", key, err)
	}
	return ok, nil
}

// MemoryThrottleStore keeps windows in process memory. Expired windows are
// swept on access once the map grows past sweepThreshold.
type MemoryThrottleStore struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

const sweepThreshold = 1024

var _ providers.ThrottleStore = (*MemoryThrottleStore)(nil)

// NewMemoryThrottleStore creates an in-memory throttle store
func NewMemoryThrottleStore() *MemoryThrottleStore {
	return &MemoryThrottleStore{expires: make(map[string]time.Time), now: time.Now}
}

// Allow reports true and opens a window when key has none
func (s *MemoryThrottleStore) Allow(_ context.Context, key string, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if len(s.expires) > sweepThreshold {
		for k, exp := range s.expires {
			if !now.Before(exp) {
				delete(s.expires, k)
			}
		}
	}

	if exp, ok := s.expires[key]; ok && now.Before(exp) {
		return false, nil
	}
	s.expires[key] = now.Add(window)
	return true, nil
}

// Len returns the number of tracked windows
func (s *MemoryThrottleStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expires)
}
