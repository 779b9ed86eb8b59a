package services

import (
	"context"
	"math"

	"github.com/shopspring/decimal"
	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/repositories"
	"github.com/zatekoja/medtourclinic/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/medtourclinic/pkg/errors"
)

// CurrencyConverter resolves exchange rates for a tenant. A false second
// return value means "not found" and is never an error.
type CurrencyConverter interface {
	GetRate(ctx context.Context, tenantID int64, from, to string) (float64, bool)
	Convert(ctx context.Context, tenantID int64, amount float64, from, to string) (float64, bool)
}

// RateResolver resolves rates from the stored table: identity, direct,
// reverse, then a single hop through the tenant's base currency.
type RateResolver struct {
	rates   repositories.CurrencyRateRepository
	tenants repositories.TenantRepository
	metrics *observability.Metrics
}

// NewRateResolver creates a new rate resolver
func NewRateResolver(rates repositories.CurrencyRateRepository, tenants repositories.TenantRepository, metrics *observability.Metrics) *RateResolver {
	return &RateResolver{
		rates:   rates,
		tenants: tenants,
		metrics: metrics,
	}
}

var _ CurrencyConverter = (*RateResolver)(nil)

// GetRate returns how many units of to one unit of from buys
func (r *RateResolver) GetRate(ctx context.Context, tenantID int64, from, to string) (float64, bool) {
	if from == to {
		observability.RecordRateLookup(ctx, r.metrics, "identity")
		return 1.0, true
	}

	if rate, outcome, ok := r.pair(ctx, tenantID, from, to); ok {
		observability.RecordRateLookup(ctx, r.metrics, outcome)
		return rate, true
	}

	base := r.baseCurrency(ctx, tenantID)
	if from != base && to != base {
		fromToBase, _, ok1 := r.pair(ctx, tenantID, from, base)
		baseToTo, _, ok2 := r.pair(ctx, tenantID, base, to)
		if ok1 && ok2 && fromToBase != 0 && baseToTo != 0 {
			observability.RecordRateLookup(ctx, r.metrics, "cross")
			return fromToBase * baseToTo, true
		}
	}

	observability.RecordRateLookup(ctx, r.metrics, "not_found")
	return 0, false
}

// Convert converts amount at the resolved rate, rounded to two decimals
func (r *RateResolver) Convert(ctx context.Context, tenantID int64, amount float64, from, to string) (float64, bool) {
	return convertAmount(ctx, r, tenantID, amount, from, to)
}

// pair tries the direct then the reverse stored row. A stored direct rate of
// zero is returned as is; a zero reverse rate is not found.
func (r *RateResolver) pair(ctx context.Context, tenantID int64, from, to string) (float64, string, bool) {
	if direct, ok := r.stored(ctx, tenantID, from, to); ok {
		return direct.Rate, "direct", true
	}
	if reverse, ok := r.stored(ctx, tenantID, to, from); ok && reverse.Rate != 0 {
		return 1.0 / reverse.Rate, "reverse", true
	}
	return 0, "", false
}

func (r *RateResolver) stored(ctx context.Context, tenantID int64, base, target string) (*entities.CurrencyRate, bool) {
	rate, err := r.rates.Get(ctx, tenantID, base, target)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			observability.LoggerFromContext(ctx).Warn().Err(err).
				Int64("tenant_id", tenantID).
				Str("base", base).
				Str("target", target).
				Msg("currency rate lookup failed, treating as not found")
		}
		return nil, false
	}
	return rate, true
}

func (r *RateResolver) baseCurrency(ctx context.Context, tenantID int64) string {
	settings, err := r.tenants.GetSettings(ctx, tenantID)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			observability.LoggerFromContext(ctx).Warn().Err(err).
				Int64("tenant_id", tenantID).
				Msg("tenant settings lookup failed, using default base currency")
		}
		return entities.DefaultBaseCurrency
	}
	if settings.BaseCurrency == "" {
		return entities.DefaultBaseCurrency
	}
	return settings.BaseCurrency
}

// convertAmount is shared by every CurrencyConverter. A zero or non-finite
// amount is "absent" and short-circuits before any lookup, as does a zero
// rate. A product that overflows is not found.
func convertAmount(ctx context.Context, c CurrencyConverter, tenantID int64, amount float64, from, to string) (float64, bool) {
	if amount == 0 || !isFinite(amount) {
		return 0, false
	}
	rate, ok := c.GetRate(ctx, tenantID, from, to)
	if !ok || rate == 0 {
		return 0, false
	}
	converted := amount * rate
	if !isFinite(converted) {
		return 0, false
	}
	return roundMoney(converted), true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// roundMoney rounds half away from zero to two decimals on the shortest
// decimal representation of v.
func roundMoney(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
