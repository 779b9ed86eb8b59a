package services_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/medtourclinic/internal/application/services"
	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	apperrors "github.com/zatekoja/medtourclinic/pkg/errors"
)

const tenantID int64 = 7

func newResolver(t *testing.T, table rateTable, base string) *services.RateResolver {
	t.Helper()
	tenants := new(MockTenantRepository)
	if base == "" {
		tenants.On("GetSettings", mock.Anything, tenantID).Return(nil, apperrors.NewNotFoundError("settings not found")).Maybe()
	} else {
		tenants.On("GetSettings", mock.Anything, tenantID).Return(&entities.TenantSettings{TenantID: tenantID, BaseCurrency: base}, nil).Maybe()
	}
	return services.NewRateResolver(table, tenants, nil)
}

func TestRateResolver_GetRate(t *testing.T) {
	ctx := context.Background()

	t.Run("identity needs no lookup", func(t *testing.T) {
		rates := new(MockCurrencyRateRepository)
		tenants := new(MockTenantRepository)
		resolver := services.NewRateResolver(rates, tenants, nil)

		for _, c := range entities.SupportedCurrencies {
			rate, ok := resolver.GetRate(ctx, tenantID, c, c)
			assert.True(t, ok)
			assert.Equal(t, 1.0, rate)
		}
		rates.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("direct rate", func(t *testing.T) {
		resolver := newResolver(t, rateTable{"USD/TRY": 32.50}, "")

		rate, ok := resolver.GetRate(ctx, tenantID, "USD", "TRY")
		require.True(t, ok)
		assert.Equal(t, 32.50, rate)
	})

	t.Run("reverse rate is the reciprocal", func(t *testing.T) {
		resolver := newResolver(t, rateTable{"USD/TRY": 32.50}, "")

		rate, ok := resolver.GetRate(ctx, tenantID, "TRY", "USD")
		require.True(t, ok)
		assert.InDelta(t, 1/32.50, rate, 1e-12)
	})

	t.Run("direct rate wins over reverse", func(t *testing.T) {
		resolver := newResolver(t, rateTable{"EUR/USD": 1.10, "USD/EUR": 0.95}, "")

		rate, ok := resolver.GetRate(ctx, tenantID, "USD", "EUR")
		require.True(t, ok)
		assert.Equal(t, 0.95, rate)
	})

	t.Run("zero reverse rate is not found", func(t *testing.T) {
		resolver := newResolver(t, rateTable{"USD/TRY": 0}, "USD")

		_, ok := resolver.GetRate(ctx, tenantID, "TRY", "USD")
		assert.False(t, ok)
	})

	t.Run("zero direct rate is returned as stored", func(t *testing.T) {
		resolver := newResolver(t, rateTable{"USD/TRY": 0}, "USD")

		rate, ok := resolver.GetRate(ctx, tenantID, "USD", "TRY")
		assert.True(t, ok)
		assert.Zero(t, rate)
	})

	t.Run("cross rate through default base currency", func(t *testing.T) {
		resolver := newResolver(t, rateTable{"USD/TRY": 32.50, "USD/EUR": 0.92}, "")

		rate, ok := resolver.GetRate(ctx, tenantID, "TRY", "EUR")
		require.True(t, ok)
		assert.InDelta(t, (1/32.50)*0.92, rate, 1e-12)
	})

	t.Run("cross rate through configured base currency", func(t *testing.T) {
		resolver := newResolver(t, rateTable{"TRY/USD": 0.031, "TRY/EUR": 0.028}, "TRY")

		rate, ok := resolver.GetRate(ctx, tenantID, "USD", "EUR")
		require.True(t, ok)
		assert.InDelta(t, (1/0.031)*0.028, rate, 1e-12)
	})

	t.Run("cross rate fails when one leg is missing", func(t *testing.T) {
		resolver := newResolver(t, rateTable{"USD/TRY": 32.50}, "")

		_, ok := resolver.GetRate(ctx, tenantID, "TRY", "EUR")
		assert.False(t, ok)
	})

	t.Run("no cross hop when one side is the base", func(t *testing.T) {
		resolver := newResolver(t, rateTable{"EUR/GBP": 0.85}, "USD")

		_, ok := resolver.GetRate(ctx, tenantID, "USD", "GBP")
		assert.False(t, ok)
	})

	t.Run("cross rate with a zero leg is not found", func(t *testing.T) {
		resolver := newResolver(t, rateTable{"TRY/USD": 0, "USD/EUR": 0.92}, "USD")

		_, ok := resolver.GetRate(ctx, tenantID, "TRY", "EUR")
		assert.False(t, ok)
	})

	t.Run("storage errors degrade to not found", func(t *testing.T) {
		rates := new(MockCurrencyRateRepository)
		rates.On("Get", mock.Anything, tenantID, mock.Anything, mock.Anything).Return(nil, apperrors.NewInternalError("query failed", errors.New("conn reset")))
		tenants := new(MockTenantRepository)
		tenants.On("GetSettings", mock.Anything, tenantID).Return(nil, errors.New("conn reset"))
		resolver := services.NewRateResolver(rates, tenants, nil)

		_, ok := resolver.GetRate(ctx, tenantID, "TRY", "EUR")
		assert.False(t, ok)
	})
}

func TestRateResolver_Convert(t *testing.T) {
	ctx := context.Background()

	t.Run("end to end USD to TRY", func(t *testing.T) {
		resolver := newResolver(t, rateTable{"USD/TRY": 32.50}, "")

		v, ok := resolver.Convert(ctx, tenantID, 1000, "USD", "TRY")
		require.True(t, ok)
		assert.Equal(t, 32500.00, v)
	})

	t.Run("rounds to two decimals", func(t *testing.T) {
		resolver := newResolver(t, rateTable{"USD/TRY": 32.50}, "")

		v, ok := resolver.Convert(ctx, tenantID, 100, "TRY", "USD")
		require.True(t, ok)
		assert.Equal(t, 3.08, v)
	})

	t.Run("halves round away from zero", func(t *testing.T) {
		resolver := newResolver(t, rateTable{"USD/EUR": 0.5}, "")

		v, ok := resolver.Convert(ctx, tenantID, 0.05, "USD", "EUR")
		require.True(t, ok)
		assert.Equal(t, 0.03, v)

		v, ok = resolver.Convert(ctx, tenantID, -0.05, "USD", "EUR")
		require.True(t, ok)
		assert.Equal(t, -0.03, v)
	})

	t.Run("zero amount is not found without a lookup", func(t *testing.T) {
		rates := new(MockCurrencyRateRepository)
		resolver := services.NewRateResolver(rates, new(MockTenantRepository), nil)

		_, ok := resolver.Convert(ctx, tenantID, 0, "USD", "TRY")
		assert.False(t, ok)
		rates.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("zero rate is not found", func(t *testing.T) {
		resolver := newResolver(t, rateTable{"USD/TRY": 0}, "")

		_, ok := resolver.Convert(ctx, tenantID, 100, "USD", "TRY")
		assert.False(t, ok)
	})

	t.Run("missing rate is not found", func(t *testing.T) {
		resolver := newResolver(t, rateTable{}, "")

		_, ok := resolver.Convert(ctx, tenantID, 100, "USD", "JOD")
		assert.False(t, ok)
	})

	t.Run("overflowing product is not found", func(t *testing.T) {
		resolver := newResolver(t, rateTable{"USD/TRY": 32.50}, "")

		assert.NotPanics(t, func() {
			_, ok := resolver.Convert(ctx, tenantID, 1e308, "USD", "TRY")
			assert.False(t, ok)
		})
	})

	t.Run("non-finite amount is not found without a lookup", func(t *testing.T) {
		rates := new(MockCurrencyRateRepository)
		resolver := services.NewRateResolver(rates, new(MockTenantRepository), nil)

		for _, amount := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
			assert.NotPanics(t, func() {
				_, ok := resolver.Convert(ctx, tenantID, amount, "USD", "TRY")
				assert.False(t, ok)
			})
		}
		rates.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("same currency keeps the amount", func(t *testing.T) {
		resolver := newResolver(t, rateTable{}, "")

		v, ok := resolver.Convert(ctx, tenantID, 1234.567, "EUR", "EUR")
		require.True(t, ok)
		assert.Equal(t, 1234.57, v)
	})
}
