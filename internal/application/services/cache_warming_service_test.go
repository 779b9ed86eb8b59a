package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/medtourclinic/internal/application/services"
	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	apperrors "github.com/zatekoja/medtourclinic/pkg/errors"
)

type MockRateRefresher struct {
	mock.Mock
}

func (m *MockRateRefresher) Refresh(ctx context.Context, tenantID int64, from, to string) (float64, bool) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).(float64), args.Bool(1)
}

func TestRateCacheWarmer_WarmTenant(t *testing.T) {
	refresher := new(MockRateRefresher)
	priceList := new(MockPriceListRepository)
	warmer := services.NewRateCacheWarmer(refresher, new(MockTenantRepository), priceList)

	priceList.On("ListByTenant", mock.Anything, tenantID, true).Return([]*entities.PriceListItem{
		{Currency: "TRY"}, {Currency: "TRY"}, {Currency: "EUR"},
	}, nil)
	refresher.On("Refresh", mock.Anything, tenantID, "TRY", "USD").Return(0.03, true)
	refresher.On("Refresh", mock.Anything, tenantID, "EUR", "USD").Return(1.08, true)
	refresher.On("Refresh", mock.Anything, tenantID, mock.Anything, mock.Anything).Return(0.0, false)

	warmed, err := warmer.WarmTenant(context.Background(), tenantID)

	require.NoError(t, err)
	assert.Equal(t, 2, warmed)
	// Each distinct currency is resolved against the ten other supported currencies.
	refresher.AssertNumberOfCalls(t, "Refresh", 2*(len(entities.SupportedCurrencies)-1))
	refresher.AssertNotCalled(t, "Refresh", mock.Anything, tenantID, "TRY", "TRY")
}

func TestRateCacheWarmer_WarmAllSkipsFailingTenant(t *testing.T) {
	refresher := new(MockRateRefresher)
	tenants := new(MockTenantRepository)
	priceList := new(MockPriceListRepository)
	warmer := services.NewRateCacheWarmer(refresher, tenants, priceList)

	tenants.On("ListActive", mock.Anything).Return([]*entities.Tenant{{ID: 1}, {ID: 2}}, nil)
	priceList.On("ListByTenant", mock.Anything, int64(1), true).Return(nil, errors.New("db down"))
	priceList.On("ListByTenant", mock.Anything, int64(2), true).Return([]*entities.PriceListItem{{Currency: "USD"}}, nil)
	refresher.On("Refresh", mock.Anything, int64(2), "USD", mock.Anything).Return(1.5, true)

	total, err := warmer.WarmAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, len(entities.SupportedCurrencies)-1, total)
}

func TestRateCacheWarmer_WarmAllTenantListError(t *testing.T) {
	tenants := new(MockTenantRepository)
	tenants.On("ListActive", mock.Anything).Return(nil, errors.New("db down"))

	_, err := services.NewRateCacheWarmer(new(MockRateRefresher), tenants, new(MockPriceListRepository)).WarmAll(context.Background())
	assert.Error(t, err)
}

func TestRateCacheWarmer_RewritesCachedEntries(t *testing.T) {
	ctx := context.Background()
	cache := newMapCache()
	cache.data["rate:7:TRY:USD"] = []byte("0.02")
	cache.data["rate:7:TRY:EUR"] = []byte("0.03")
	table := rateTable{"TRY/USD": 0.031}
	tenants := new(MockTenantRepository)
	tenants.On("GetSettings", mock.Anything, tenantID).Return(nil, apperrors.NewNotFoundError("settings not found")).Maybe()
	resolver := services.NewCachedRateResolver(services.NewRateResolver(table, tenants, nil), cache, time.Hour, nil)

	priceList := new(MockPriceListRepository)
	priceList.On("ListByTenant", mock.Anything, tenantID, true).Return([]*entities.PriceListItem{{Currency: "TRY"}}, nil)

	warmed, err := services.NewRateCacheWarmer(resolver, tenants, priceList).WarmTenant(ctx, tenantID)

	require.NoError(t, err)
	assert.Equal(t, 1, warmed)
	assert.Equal(t, "0.031", string(cache.data["rate:7:TRY:USD"]), "a cached entry is rewritten, not served")
	assert.Equal(t, time.Hour, cache.ttls["rate:7:TRY:USD"])
	assert.NotContains(t, cache.data, "rate:7:TRY:EUR", "a pair that no longer resolves is evicted")
}
