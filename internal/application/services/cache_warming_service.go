package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/repositories"
)

// RateRefresher re-resolves a pair and rewrites its cache entry
type RateRefresher interface {
	Refresh(ctx context.Context, tenantID int64, from, to string) (float64, bool)
}

var _ RateRefresher = (*CachedRateResolver)(nil)

// RateCacheWarmer rewrites the cached rates a tenant's price list needs so
// the cached resolver serves them without touching the database.
type RateCacheWarmer struct {
	refresher RateRefresher
	tenants   repositories.TenantRepository
	priceList repositories.PriceListRepository
}

// NewRateCacheWarmer creates a new cache warmer
func NewRateCacheWarmer(refresher RateRefresher, tenants repositories.TenantRepository, priceList repositories.PriceListRepository) *RateCacheWarmer {
	return &RateCacheWarmer{refresher: refresher, tenants: tenants, priceList: priceList}
}

// WarmTenant refreshes every price list currency into every supported
// currency and returns how many pairs resolved.
func (w *RateCacheWarmer) WarmTenant(ctx context.Context, tenantID int64) (int, error) {
	items, err := w.priceList.ListByTenant(ctx, tenantID, true)
	if err != nil {
		return 0, fmt.Errorf("failed to list price list for tenant %d: %w", tenantID, err)
	}

	seen := make(map[string]bool)
	warmed := 0
	for _, item := range items {
		if item.Currency == "" || seen[item.Currency] {
			continue
		}
		seen[item.Currency] = true
		for _, target := range entities.SupportedCurrencies {
			if target == item.Currency {
				continue
			}
			if _, ok := w.refresher.Refresh(ctx, tenantID, item.Currency, target); ok {
				warmed++
			}
		}
	}
	return warmed, nil
}

// WarmAll warms every active tenant; a failing tenant is logged and skipped
func (w *RateCacheWarmer) WarmAll(ctx context.Context) (int, error) {
	start := time.Now()
	tenants, err := w.tenants.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active tenants: %w", err)
	}

	total := 0
	for _, tenant := range tenants {
		n, err := w.WarmTenant(ctx, tenant.ID)
		if err != nil {
			log.Warn().Err(err).Int64("tenant_id", tenant.ID).Msg("rate cache warming failed")
			continue
		}
		total += n
	}

	log.Info().Int("tenants", len(tenants)).Int("pairs", total).Dur("duration", time.Since(start)).Msg("rate cache warmed")
	return total, nil
}
