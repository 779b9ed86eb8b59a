package services

import (
	"context"
	"fmt"
	"time"

	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/providers"
	"github.com/zatekoja/medtourclinic/internal/domain/repositories"
	"github.com/zatekoja/medtourclinic/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/medtourclinic/pkg/errors"
)

// RateCacheInvalidator evicts cached rates for a pair
type RateCacheInvalidator interface {
	Invalidate(ctx context.Context, tenantID int64, base, target string) error
}

// RateSyncResult reports one tenant's sync
type RateSyncResult struct {
	TenantID int64  `json:"tenant_id"`
	Source   string `json:"source"`
	Base     string `json:"base"`
	Updated  int    `json:"updated"`
	Skipped  int    `json:"skipped"`
	Error    string `json:"error,omitempty"`
}

// CurrencySyncService pulls exchange rates from external APIs into the rate table
type CurrencySyncService struct {
	rates         repositories.CurrencyRateRepository
	tenants       repositories.TenantRepository
	providers     map[string]providers.ExchangeRateProvider
	defaultSource string
	invalidator   RateCacheInvalidator
	metrics       *observability.Metrics
	now           func() time.Time
}

// NewCurrencySyncService creates a new sync service. exchangeProviders are
// keyed by their Name(); invalidator may be nil.
func NewCurrencySyncService(
	rates repositories.CurrencyRateRepository,
	tenants repositories.TenantRepository,
	exchangeProviders []providers.ExchangeRateProvider,
	defaultSource string,
	invalidator RateCacheInvalidator,
	metrics *observability.Metrics,
) *CurrencySyncService {
	byName := make(map[string]providers.ExchangeRateProvider, len(exchangeProviders))
	for _, p := range exchangeProviders {
		byName[p.Name()] = p
	}
	if defaultSource == "" {
		defaultSource = entities.RateSourceExchangeRateAPI
	}
	return &CurrencySyncService{
		rates:         rates,
		tenants:       tenants,
		providers:     byName,
		defaultSource: defaultSource,
		invalidator:   invalidator,
		metrics:       metrics,
		now:           time.Now,
	}
}

// SyncTenant fetches rates from the tenant's configured source and upserts
// every supported pair. Manual rows are left untouched and counted as skipped.
func (s *CurrencySyncService) SyncTenant(ctx context.Context, tenantID int64) (*RateSyncResult, error) {
	ctx, span := observability.StartSpan(ctx, "CurrencySyncService.SyncTenant")
	defer span.End()

	source, base := s.tenantSource(ctx, tenantID)
	result := &RateSyncResult{TenantID: tenantID, Source: source, Base: base}

	provider, ok := s.providers[source]
	if !ok {
		return result, apperrors.NewValidationError(fmt.Sprintf("unsupported currency source %q", source))
	}

	actualBase, fetched, err := provider.LatestRates(ctx, base)
	if err != nil {
		observability.RecordError(span, err)
		return result, err
	}
	result.Base = actualBase

	now := s.now().UTC()
	for _, target := range entities.SupportedCurrencies {
		value, ok := fetched[target]
		if !ok || target == actualBase {
			continue
		}

		written, err := s.rates.Upsert(ctx, &entities.CurrencyRate{
			TenantID:       tenantID,
			BaseCurrency:   actualBase,
			TargetCurrency: target,
			Rate:           value,
			Source:         source,
			LastUpdated:    now,
		})
		if err != nil {
			observability.LoggerFromContext(ctx).Error().Err(err).
				Int64("tenant_id", tenantID).
				Str("pair", actualBase+"/"+target).
				Msg("failed to store synced rate")
			continue
		}
		if !written {
			result.Skipped++
			continue
		}
		result.Updated++
		s.invalidate(ctx, tenantID, actualBase, target)
	}

	observability.RecordRatesSynced(ctx, s.metrics, source, result.Updated)
	observability.LoggerFromContext(ctx).Info().
		Int64("tenant_id", tenantID).
		Str("source", source).
		Str("base", actualBase).
		Int("updated", result.Updated).
		Int("skipped_manual", result.Skipped).
		Msg("currency rates synced")

	return result, nil
}

// SyncAll syncs every active tenant; a failing tenant does not stop the others
func (s *CurrencySyncService) SyncAll(ctx context.Context) ([]*RateSyncResult, error) {
	tenants, err := s.tenants.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active tenants: %w", err)
	}

	results := make([]*RateSyncResult, 0, len(tenants))
	for _, tenant := range tenants {
		res, err := s.SyncTenant(ctx, tenant.ID)
		if err != nil {
			observability.LoggerFromContext(ctx).Error().Err(err).
				Int64("tenant_id", tenant.ID).
				Msg("currency sync failed for tenant")
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *CurrencySyncService) tenantSource(ctx context.Context, tenantID int64) (source, base string) {
	source, base = s.defaultSource, entities.DefaultBaseCurrency
	settings, err := s.tenants.GetSettings(ctx, tenantID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			observability.LoggerFromContext(ctx).Warn().Err(err).Int64("tenant_id", tenantID).Msg("tenant settings unavailable")
		}
		return source, base
	}
	if settings.CurrencyAPISource != "" {
		source = settings.CurrencyAPISource
	}
	if settings.BaseCurrency != "" {
		base = settings.BaseCurrency
	}
	return source, base
}

func (s *CurrencySyncService) invalidate(ctx context.Context, tenantID int64, base, target string) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx, tenantID, base, target); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Int64("tenant_id", tenantID).Msg("rate cache invalidation failed")
	}
}
