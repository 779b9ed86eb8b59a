package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/medtourclinic/internal/application/services"
	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/repositories"
)

type MockPricingService struct {
	mock.Mock
}

func (m *MockPricingService) GetRate(ctx context.Context, tenantID int64, from, to string) (float64, bool) {
	args := m.Called(ctx, tenantID, from, to)
	return args.Get(0).(float64), args.Bool(1)
}

func (m *MockPricingService) Convert(ctx context.Context, tenantID int64, amount float64, from, to string) (float64, bool) {
	args := m.Called(ctx, tenantID, amount, from, to)
	return args.Get(0).(float64), args.Bool(1)
}

func (m *MockPricingService) ConversionPreview(ctx context.Context, tenantID int64, amount float64, from string, targets []string) map[string]float64 {
	args := m.Called(ctx, tenantID, amount, from, targets)
	return args.Get(0).(map[string]float64)
}

func (m *MockPricingService) ListRates(ctx context.Context, tenantID int64) ([]*entities.CurrencyRate, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.CurrencyRate), args.Error(1)
}

func (m *MockPricingService) SetManualRate(ctx context.Context, tenantID int64, base, target string, rate float64) (*entities.CurrencyRate, error) {
	args := m.Called(ctx, tenantID, base, target, rate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.CurrencyRate), args.Error(1)
}

func (m *MockPricingService) PriceList(ctx context.Context, tenantID int64, currency string) ([]*entities.PricedItem, error) {
	args := m.Called(ctx, tenantID, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PricedItem), args.Error(1)
}

type MockRateSyncer struct {
	mock.Mock
}

func (m *MockRateSyncer) SyncTenant(ctx context.Context, tenantID int64) (*services.RateSyncResult, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.RateSyncResult), args.Error(1)
}

type MockLeadService struct {
	mock.Mock
}

func (m *MockLeadService) CreateLead(ctx context.Context, in services.CreateLeadInput) (*entities.Lead, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Lead), args.Error(1)
}

func (m *MockLeadService) GetLead(ctx context.Context, tenantID, id int64) (*entities.ScoredLead, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ScoredLead), args.Error(1)
}

func (m *MockLeadService) ListLeads(ctx context.Context, tenantID int64, filter repositories.LeadFilter) ([]entities.ScoredLead, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.ScoredLead), args.Error(1)
}

func (m *MockLeadService) UpdateStatus(ctx context.Context, tenantID, id int64, status string, userID *int64) (*entities.Lead, error) {
	args := m.Called(ctx, tenantID, id, status, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Lead), args.Error(1)
}

func (m *MockLeadService) Assign(ctx context.Context, tenantID, id, userID int64) (*entities.Lead, error) {
	args := m.Called(ctx, tenantID, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Lead), args.Error(1)
}

func (m *MockLeadService) AddInteraction(ctx context.Context, tenantID, leadID int64, in services.InteractionInput) (*entities.LeadInteraction, error) {
	args := m.Called(ctx, tenantID, leadID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LeadInteraction), args.Error(1)
}

func (m *MockLeadService) ListInteractions(ctx context.Context, tenantID, leadID int64) ([]*entities.LeadInteraction, error) {
	args := m.Called(ctx, tenantID, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LeadInteraction), args.Error(1)
}

func (m *MockLeadService) BatchScores(ctx context.Context, tenantID int64) (map[int64]services.LeadScore, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]services.LeadScore), args.Error(1)
}

func (m *MockLeadService) TopLeads(ctx context.Context, tenantID int64, limit, minScore int) ([]entities.ScoredLead, error) {
	args := m.Called(ctx, tenantID, limit, minScore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.ScoredLead), args.Error(1)
}

func (m *MockLeadService) Recommendations(ctx context.Context, tenantID int64) (*services.LeadRecommendations, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.LeadRecommendations), args.Error(1)
}

func (m *MockLeadService) BulkUpdateStatus(ctx context.Context, tenantID int64, leadIDs []int64, status string, userID *int64) (*services.BulkResult, error) {
	args := m.Called(ctx, tenantID, leadIDs, status, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.BulkResult), args.Error(1)
}

func (m *MockLeadService) BulkAssign(ctx context.Context, tenantID int64, leadIDs []int64, assignTo int64, userID *int64) (*services.BulkResult, error) {
	args := m.Called(ctx, tenantID, leadIDs, assignTo, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.BulkResult), args.Error(1)
}

type MockLeadAnalytics struct {
	mock.Mock
}

func (m *MockLeadAnalytics) ConversionFunnel(ctx context.Context, tenantID int64, days int) (*services.ConversionFunnel, error) {
	args := m.Called(ctx, tenantID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ConversionFunnel), args.Error(1)
}

func (m *MockLeadAnalytics) DailyStats(ctx context.Context, tenantID int64, days int) ([]services.DailyLeadStats, error) {
	args := m.Called(ctx, tenantID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.DailyLeadStats), args.Error(1)
}

func (m *MockLeadAnalytics) SourceBreakdown(ctx context.Context, tenantID int64, days int) ([]services.SourceStats, error) {
	args := m.Called(ctx, tenantID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.SourceStats), args.Error(1)
}

func (m *MockLeadAnalytics) StaffPerformance(ctx context.Context, tenantID int64, days int) ([]services.StaffStats, error) {
	args := m.Called(ctx, tenantID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.StaffStats), args.Error(1)
}

func (m *MockLeadAnalytics) InteractionStats(ctx context.Context, tenantID int64, days int) (map[entities.InteractionType]services.InteractionTypeStats, error) {
	args := m.Called(ctx, tenantID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[entities.InteractionType]services.InteractionTypeStats), args.Error(1)
}

func (m *MockLeadAnalytics) ResponseTimes(ctx context.Context, tenantID int64, days int) (*services.ResponseTimeStats, error) {
	args := m.Called(ctx, tenantID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ResponseTimeStats), args.Error(1)
}

func (m *MockLeadAnalytics) Report(ctx context.Context, tenantID int64, period string) (*services.LeadReport, error) {
	args := m.Called(ctx, tenantID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.LeadReport), args.Error(1)
}

type MockMetaSyncer struct {
	mock.Mock
}

func (m *MockMetaSyncer) TestConnection(ctx context.Context, tenantID int64) error {
	return m.Called(ctx, tenantID).Error(0)
}

func (m *MockMetaSyncer) SyncTenant(ctx context.Context, tenantID int64) (*entities.MetaSyncResult, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MetaSyncResult), args.Error(1)
}

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) HandleInbound(ctx context.Context, in services.InboundMessage) (*services.ChatExchange, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ChatExchange), args.Error(1)
}

func (m *MockChatService) History(ctx context.Context, tenantID, patientID int64, limit int) ([]*entities.ChatMessage, error) {
	args := m.Called(ctx, tenantID, patientID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ChatMessage), args.Error(1)
}
