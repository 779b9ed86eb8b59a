package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/zatekoja/medtourclinic/internal/domain/providers"
	"github.com/zatekoja/medtourclinic/internal/infrastructure/observability"
)

// DefaultRateCacheTTL is how long a resolved rate stays cached
const DefaultRateCacheTTL = time.Hour

// CachedRateResolver decorates a CurrencyConverter with a read-through cache.
// Only found rates are cached so a newly stored rate is picked up immediately.
type CachedRateResolver struct {
	next    CurrencyConverter
	cache   providers.CacheProvider
	ttl     time.Duration
	metrics *observability.Metrics
}

// NewCachedRateResolver creates a new cached resolver
func NewCachedRateResolver(next CurrencyConverter, cache providers.CacheProvider, ttl time.Duration, metrics *observability.Metrics) *CachedRateResolver {
	if ttl <= 0 {
		ttl = DefaultRateCacheTTL
	}
	return &CachedRateResolver{
		next:    next,
		cache:   cache,
		ttl:     ttl,
		metrics: metrics,
	}
}

var _ CurrencyConverter = (*CachedRateResolver)(nil)

// RateCacheKey returns the cache key of a resolved rate
func RateCacheKey(tenantID int64, from, to string) string {
	return fmt.Sprintf("rate:%d:%s:%s", tenantID, from, to)
}

// GetRate returns the cached rate or resolves and caches it
func (c *CachedRateResolver) GetRate(ctx context.Context, tenantID int64, from, to string) (float64, bool) {
	if from == to {
		return 1.0, true
	}

	key := RateCacheKey(tenantID, from, to)
	if data, err := c.cache.Get(ctx, key); err == nil {
		if rate, perr := strconv.ParseFloat(string(data), 64); perr == nil {
			observability.RecordCacheHit(ctx, c.metrics, "rate")
			return rate, true
		}
	} else if !errors.Is(err, providers.ErrCacheMiss) {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("rate cache read failed")
	}
	observability.RecordCacheMiss(ctx, c.metrics, "rate")

	rate, ok := c.next.GetRate(ctx, tenantID, from, to)
	if !ok {
		return 0, false
	}
	c.store(ctx, key, rate)
	return rate, true
}

// Refresh resolves a pair through the underlying resolver regardless of the
// cache and rewrites the entry with a full TTL. A pair that no longer
// resolves is evicted.
func (c *CachedRateResolver) Refresh(ctx context.Context, tenantID int64, from, to string) (float64, bool) {
	if from == to {
		return 1.0, true
	}
	key := RateCacheKey(tenantID, from, to)
	rate, ok := c.next.GetRate(ctx, tenantID, from, to)
	if !ok {
		if err := c.cache.Delete(ctx, key); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("rate cache evict failed")
		}
		return 0, false
	}
	c.store(ctx, key, rate)
	return rate, true
}

func (c *CachedRateResolver) store(ctx context.Context, key string, rate float64) {
	value := []byte(strconv.FormatFloat(rate, 'g', -1, 64))
	if err := c.cache.Set(ctx, key, value, c.ttl); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("rate cache write failed")
	}
}

// Convert converts through the cached rate
func (c *CachedRateResolver) Convert(ctx context.Context, tenantID int64, amount float64, from, to string) (float64, bool) {
	return convertAmount(ctx, c, tenantID, amount, from, to)
}

// Invalidate evicts the cached direct and reverse rates of a pair
func (c *CachedRateResolver) Invalidate(ctx context.Context, tenantID int64, base, target string) error {
	return c.cache.Delete(ctx, RateCacheKey(tenantID, base, target), RateCacheKey(tenantID, target, base))
}
