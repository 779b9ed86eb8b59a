package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/medtourclinic/pkg/config"
	"github.com/zatekoja/medtourclinic/pkg/retry"
)

// Client wraps the go-redis client shared by the rate cache, the chatbot
// throttle and the event bus
type Client struct {
	client *redis.Client
}

// NewClient connects to Redis. Redis is optional for the service, so the
// connection is only retried briefly before the caller falls back.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	retryConfig := retry.Config{
		MaxAttempts:     3,
		InitialDelay:    200 * time.Millisecond,
		MaxDelay:        time.Second,
		BackoffFactor:   2.0,
		MaxTotalTimeout: 10 * time.Second,
		OnRetry: func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", nextDelay).Msg("Redis connection attempt failed")
		},
	}
	if err := retry.Do(ctx, retryConfig, "Redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr(), err)
	}

	log.Info().Str("addr", cfg.RedisAddr()).Int("db", cfg.DB).Msg("connected to Redis")
	return &Client{client: client}, nil
}

// NewClientFromRedis wraps an existing go-redis client
func NewClientFromRedis(client *redis.Client) *Client {
	return &Client{client: client}
}

// Client returns the underlying go-redis client
func (c *Client) Client() *redis.Client {
	return c.client
}

// Close closes the connection pool
func (c *Client) Close() error {
	return c.client.Close()
}

// Ping is the readiness check
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
