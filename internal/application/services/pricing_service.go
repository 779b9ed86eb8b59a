package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/repositories"
	"github.com/zatekoja/medtourclinic/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/medtourclinic/pkg/errors"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"TRY": "₺",
	"SAR": "SR",
	"AED": "AED",
	"KWD": "KWD",
	"QAR": "QAR",
	"BHD": "BHD",
	"OMR": "OMR",
	"JOD": "JOD",
}

var (
	turkishPrinter = message.NewPrinter(language.Turkish)
	englishPrinter = message.NewPrinter(language.English)
)

// FormatPrice renders an amount for display. nil renders as "-"; the tr
// locale renders "1.234,56 ₺", any other locale "$1,234.56". Unknown
// currencies use their code as the symbol.
func FormatPrice(amount *float64, currency, locale string) string {
	if amount == nil {
		return "-"
	}
	symbol, ok := currencySymbols[currency]
	if !ok {
		symbol = currency
	}
	if locale == "tr" {
		return turkishPrinter.Sprintf("%.2f", *amount) + " " + symbol
	}
	return symbol + englishPrinter.Sprintf("%.2f", *amount)
}

// PricingService exposes rate resolution, conversion and price lists
type PricingService struct {
	converter   CurrencyConverter
	rates       repositories.CurrencyRateRepository
	priceList   repositories.PriceListRepository
	tenants     repositories.TenantRepository
	invalidator RateCacheInvalidator
	now         func() time.Time
}

// NewPricingService creates a new pricing service; invalidator may be nil
func NewPricingService(
	converter CurrencyConverter,
	rates repositories.CurrencyRateRepository,
	priceList repositories.PriceListRepository,
	tenants repositories.TenantRepository,
	invalidator RateCacheInvalidator,
) *PricingService {
	return &PricingService{
		converter:   converter,
		rates:       rates,
		priceList:   priceList,
		tenants:     tenants,
		invalidator: invalidator,
		now:         time.Now,
	}
}

// GetRate resolves the rate between two currencies
func (s *PricingService) GetRate(ctx context.Context, tenantID int64, from, to string) (float64, bool) {
	return s.converter.GetRate(ctx, tenantID, from, to)
}

// Convert converts an amount between two currencies
func (s *PricingService) Convert(ctx context.Context, tenantID int64, amount float64, from, to string) (float64, bool) {
	return s.converter.Convert(ctx, tenantID, amount, from, to)
}

// PriceInCurrency returns the item's price in target. It falls back to the
// base price (converted=false) when the rate is unavailable.
func (s *PricingService) PriceInCurrency(ctx context.Context, item *entities.PriceListItem, target string) (price float64, converted bool) {
	if item.Currency == target {
		return item.BasePrice, true
	}
	if v, ok := s.converter.Convert(ctx, item.TenantID, item.BasePrice, item.Currency, target); ok {
		return v, true
	}
	return item.BasePrice, false
}

// ConversionPreview converts amount into every target that resolves
func (s *PricingService) ConversionPreview(ctx context.Context, tenantID int64, amount float64, from string, targets []string) map[string]float64 {
	preview := make(map[string]float64, len(targets))
	for _, target := range targets {
		if v, ok := s.converter.Convert(ctx, tenantID, amount, from, target); ok {
			preview[target] = v
		}
	}
	return preview
}

// ListRates returns the tenant's stored rates
func (s *PricingService) ListRates(ctx context.Context, tenantID int64) ([]*entities.CurrencyRate, error) {
	return s.rates.ListByTenant(ctx, tenantID)
}

// SetManualRate stores an admin override that the sync job will not overwrite
func (s *PricingService) SetManualRate(ctx context.Context, tenantID int64, base, target string, rate float64) (*entities.CurrencyRate, error) {
	if !currencyCodePattern.MatchString(base) || !currencyCodePattern.MatchString(target) {
		return nil, apperrors.NewValidationError("currency codes must be three upper-case letters")
	}
	if base == target {
		return nil, apperrors.NewValidationError("base and target currency must differ")
	}
	if rate <= 0 {
		return nil, apperrors.NewValidationError("rate must be positive")
	}

	cr := &entities.CurrencyRate{
		TenantID:       tenantID,
		BaseCurrency:   base,
		TargetCurrency: target,
		Rate:           rate,
		Source:         entities.RateSourceManual,
		IsManual:       true,
		LastUpdated:    s.now().UTC(),
	}
	if _, err := s.rates.Upsert(ctx, cr); err != nil {
		return nil, err
	}

	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, tenantID, base, target); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Int64("tenant_id", tenantID).Msg("rate cache invalidation failed")
		}
	}

	observability.LoggerFromContext(ctx).Info().
		Int64("tenant_id", tenantID).
		Str("pair", fmt.Sprintf("%s/%s", base, target)).
		Float64("rate", rate).
		Msg("manual currency rate set")
	return cr, nil
}

// PriceList returns the tenant's active price list priced in currency.
// An empty currency uses the tenant's default currency.
func (s *PricingService) PriceList(ctx context.Context, tenantID int64, currency string) ([]*entities.PricedItem, error) {
	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if currency == "" {
		currency = tenant.DefaultCurrency
	}
	if currency == "" {
		currency = entities.DefaultBaseCurrency
	}
	if !currencyCodePattern.MatchString(currency) {
		return nil, apperrors.NewValidationError("invalid currency code")
	}

	items, err := s.priceList.ListByTenant(ctx, tenantID, true)
	if err != nil {
		return nil, err
	}

	out := make([]*entities.PricedItem, 0, len(items))
	for _, item := range items {
		price, converted := s.PriceInCurrency(ctx, item, currency)
		display := currency
		if !converted {
			display = item.Currency
		}
		out = append(out, &entities.PricedItem{
			PriceListItem:   *item,
			DisplayCurrency: display,
			DisplayPrice:    price,
			Converted:       converted && item.Currency != currency,
			Formatted:       FormatPrice(&price, display, tenant.CurrencyLocale),
		})
	}
	return out, nil
}
