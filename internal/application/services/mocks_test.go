package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/repositories"
	apperrors "github.com/zatekoja/medtourclinic/pkg/errors"
)

// Mocks

type MockCurrencyRateRepository struct {
	mock.Mock
}

func (m *MockCurrencyRateRepository) Get(ctx context.Context, tenantID int64, base, target string) (*entities.CurrencyRate, error) {
	args := m.Called(ctx, tenantID, base, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CurrencyRate), args.Error(1)
}

func (m *MockCurrencyRateRepository) ListByTenant(ctx context.Context, tenantID int64) ([]*entities.CurrencyRate, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CurrencyRate), args.Error(1)
}

func (m *MockCurrencyRateRepository) Upsert(ctx context.Context, rate *entities.CurrencyRate) (bool, error) {
	args := m.Called(ctx, rate)
	return args.Bool(0), args.Error(1)
}

// rateTable is an in-memory CurrencyRateRepository keyed by base/target
type rateTable map[string]float64

func (t rateTable) Get(_ context.Context, tenantID int64, base, target string) (*entities.CurrencyRate, error) {
	v, ok := t[base+"/"+target]
	if !ok {
		return nil, apperrors.NewNotFoundError("currency rate not found")
	}
	return &entities.CurrencyRate{TenantID: tenantID, BaseCurrency: base, TargetCurrency: target, Rate: v}, nil
}

func (t rateTable) ListByTenant(context.Context, int64) ([]*entities.CurrencyRate, error) {
	return nil, nil
}

func (t rateTable) Upsert(_ context.Context, rate *entities.CurrencyRate) (bool, error) {
	t[rate.BaseCurrency+"/"+rate.TargetCurrency] = rate.Rate
	return true, nil
}

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) GetByID(ctx context.Context, id int64) (*entities.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Tenant), args.Error(1)
}

func (m *MockTenantRepository) ListActive(ctx context.Context) ([]*entities.Tenant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Tenant), args.Error(1)
}

func (m *MockTenantRepository) GetSettings(ctx context.Context, tenantID int64) (*entities.TenantSettings, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TenantSettings), args.Error(1)
}

type MockPriceListRepository struct {
	mock.Mock
}

func (m *MockPriceListRepository) ListByTenant(ctx context.Context, tenantID int64, activeOnly bool) ([]*entities.PriceListItem, error) {
	args := m.Called(ctx, tenantID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PriceListItem), args.Error(1)
}

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entities.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) GetByID(ctx context.Context, tenantID, id int64) (*entities.Lead, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Lead), args.Error(1)
}

func (m *MockLeadRepository) ExistsBySourceID(ctx context.Context, sourceID string) (bool, error) {
	args := m.Called(ctx, sourceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepository) List(ctx context.Context, tenantID int64, filter repositories.LeadFilter) ([]*entities.Lead, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Lead), args.Error(1)
}

func (m *MockLeadRepository) UpdateStatus(ctx context.Context, tenantID, id int64, status entities.LeadStatus) error {
	args := m.Called(ctx, tenantID, id, status)
	return args.Error(0)
}

func (m *MockLeadRepository) Assign(ctx context.Context, tenantID, id, userID int64, status entities.LeadStatus) error {
	args := m.Called(ctx, tenantID, id, userID, status)
	return args.Error(0)
}

func (m *MockLeadRepository) CountByStatus(ctx context.Context, tenantID int64, since time.Time) (map[entities.LeadStatus]int, error) {
	args := m.Called(ctx, tenantID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[entities.LeadStatus]int), args.Error(1)
}

type MockLeadInteractionRepository struct {
	mock.Mock
}

func (m *MockLeadInteractionRepository) Create(ctx context.Context, interaction *entities.LeadInteraction) error {
	args := m.Called(ctx, interaction)
	return args.Error(0)
}

func (m *MockLeadInteractionRepository) ListByLead(ctx context.Context, leadID int64) ([]*entities.LeadInteraction, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LeadInteraction), args.Error(1)
}

func (m *MockLeadInteractionRepository) ListByTenant(ctx context.Context, tenantID int64, since *time.Time) ([]*entities.LeadInteraction, error) {
	args := m.Called(ctx, tenantID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LeadInteraction), args.Error(1)
}

type MockMetaConfigRepository struct {
	mock.Mock
}

func (m *MockMetaConfigRepository) GetByTenant(ctx context.Context, tenantID int64) (*entities.MetaAPIConfig, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MetaAPIConfig), args.Error(1)
}

func (m *MockMetaConfigRepository) ListActive(ctx context.Context) ([]*entities.MetaAPIConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.MetaAPIConfig), args.Error(1)
}

func (m *MockMetaConfigRepository) RecordFetch(ctx context.Context, id int64, at time.Time, lastError *string) error {
	args := m.Called(ctx, id, at, lastError)
	return args.Error(0)
}

type MockChatMessageRepository struct {
	mock.Mock
}

func (m *MockChatMessageRepository) Create(ctx context.Context, msg *entities.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockChatMessageRepository) ListByPatient(ctx context.Context, tenantID, patientID int64, limit int) ([]*entities.ChatMessage, error) {
	args := m.Called(ctx, tenantID, patientID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ChatMessage), args.Error(1)
}

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.DomainEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.DomainEvent, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan *entities.DomainEvent), args.Error(1)
}

func (m *MockEventBus) Close() error {
	return m.Called().Error(0)
}

type MockExchangeRateProvider struct {
	mock.Mock
	name string
}

func (m *MockExchangeRateProvider) Name() string {
	return m.name
}

func (m *MockExchangeRateProvider) LatestRates(ctx context.Context, base string) (string, map[string]float64, error) {
	args := m.Called(ctx, base)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(map[string]float64), args.Error(2)
}

type MockLeadSourceProvider struct {
	mock.Mock
}

func (m *MockLeadSourceProvider) TestConnection(ctx context.Context, cfg *entities.MetaAPIConfig) error {
	return m.Called(ctx, cfg).Error(0)
}

func (m *MockLeadSourceProvider) FetchLeads(ctx context.Context, cfg *entities.MetaAPIConfig, limit int) ([]entities.MetaLead, error) {
	args := m.Called(ctx, cfg, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.MetaLead), args.Error(1)
}

type MockNotificationSender struct {
	mock.Mock
}

func (m *MockNotificationSender) SendText(ctx context.Context, to, body string) (string, error) {
	args := m.Called(ctx, to, body)
	return args.String(0), args.Error(1)
}

type MockCacheInvalidator struct {
	mock.Mock
}

func (m *MockCacheInvalidator) Invalidate(ctx context.Context, tenantID int64, base, target string) error {
	return m.Called(ctx, tenantID, base, target).Error(0)
}

// fixedClock returns a clock stuck at t
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
