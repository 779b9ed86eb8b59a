package providers

import (
	"context"
	"time"
)

// ThrottleStore grants at most one action per key per window
type ThrottleStore interface {
	// Allow reports true and starts a new window when key has no open window
	Allow(ctx context.Context, key string, window time.Duration) (bool, error)
}
