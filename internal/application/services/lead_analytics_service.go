package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/repositories"
	apperrors "github.com/zatekoja/medtourclinic/pkg/errors"
)

// ConversionFunnel counts leads per status over a period
type ConversionFunnel struct {
	Statuses   map[string]int     `json:"statuses"`
	Rates      map[string]float64 `json:"rates"`
	PeriodDays int                `json:"period_days"`
}

// DailyLeadStats summarises the leads created on one day
type DailyLeadStats struct {
	Date           string  `json:"date"`
	Total          int     `json:"total"`
	New            int     `json:"new"`
	Converted      int     `json:"converted"`
	ConversionRate float64 `json:"conversion_rate"`
}

// SourceStats counts a tenant's leads captured through one source
type SourceStats struct {
	Source         entities.LeadSource `json:"source"`
	Total          int                 `json:"total"`
	New            int                 `json:"new"`
	Contacted      int                 `json:"contacted"`
	Converted      int                 `json:"converted"`
	ConversionRate float64             `json:"conversion_rate"`
}

// StaffStats counts the leads assigned to one staff member
type StaffStats struct {
	UserID         int64   `json:"user_id"`
	Assigned       int     `json:"assigned_count"`
	Contacted      int     `json:"contacted"`
	Converted      int     `json:"converted"`
	ConversionRate float64 `json:"conversion_rate"`
}

// InteractionTypeStats counts interactions of one type by result
type InteractionTypeStats struct {
	Count   int `json:"count"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// ResponseTimeStats measures hours from lead creation to its first interaction
type ResponseTimeStats struct {
	AverageHours float64 `json:"average_hours"`
	MinHours     float64 `json:"min_hours"`
	MaxHours     float64 `json:"max_hours"`
	SampleSize   int     `json:"sample_size"`
}

// LeadReport bundles every analytics view for one period
type LeadReport struct {
	GeneratedAt  time.Time                                         `json:"generated_at"`
	Period       string                                            `json:"period"`
	Days         int                                               `json:"days"`
	Funnel       *ConversionFunnel                                 `json:"funnel"`
	DailyStats   []DailyLeadStats                                  `json:"daily_stats"`
	Sources      []SourceStats                                     `json:"by_source"`
	Staff        []StaffStats                                      `json:"by_user"`
	Interactions map[entities.InteractionType]InteractionTypeStats `json:"interactions"`
	ResponseTime ResponseTimeStats                                 `json:"response_time"`
}

// reportPeriods maps a report period to its length in days
var reportPeriods = map[string]int{
	"daily":   1,
	"weekly":  7,
	"monthly": 30,
}

// LeadAnalyticsService computes funnel, source, staff and interaction statistics
type LeadAnalyticsService struct {
	leads        repositories.LeadRepository
	interactions repositories.LeadInteractionRepository
	now          func() time.Time
}

// NewLeadAnalyticsService creates a new analytics service
func NewLeadAnalyticsService(leads repositories.LeadRepository, interactions repositories.LeadInteractionRepository) *LeadAnalyticsService {
	return &LeadAnalyticsService{leads: leads, interactions: interactions, now: time.Now}
}

// ConversionFunnel counts the tenant's leads created in the last days days.
// Rates are percentages of the total rounded to two decimals and are empty
// when there are no leads.
func (s *LeadAnalyticsService) ConversionFunnel(ctx context.Context, tenantID int64, days int) (*ConversionFunnel, error) {
	if days <= 0 {
		return nil, apperrors.NewValidationError("days must be positive")
	}
	since := s.now().UTC().AddDate(0, 0, -days)

	counts, err := s.leads.CountByStatus(ctx, tenantID, since)
	if err != nil {
		return nil, err
	}

	funnel := &ConversionFunnel{
		Statuses:   map[string]int{},
		Rates:      map[string]float64{},
		PeriodDays: days,
	}
	total := 0
	for _, st := range entities.LeadStatuses {
		funnel.Statuses[string(st)] = counts[st]
		total += counts[st]
	}
	funnel.Statuses["total"] = total

	if total > 0 {
		pct := func(n int) float64 { return roundMoney(float64(n) / float64(total) * 100) }
		funnel.Rates["to_assigned"] = pct(counts[entities.LeadStatusAssigned])
		funnel.Rates["to_contacted"] = pct(counts[entities.LeadStatusContacted])
		funnel.Rates["to_converted"] = pct(counts[entities.LeadStatusConverted])
		funnel.Rates["rejection_rate"] = pct(counts[entities.LeadStatusRejected])
	}
	return funnel, nil
}

// DailyStats returns one entry per UTC day for the last days days, oldest first
func (s *LeadAnalyticsService) DailyStats(ctx context.Context, tenantID int64, days int) ([]DailyLeadStats, error) {
	if days <= 0 {
		return nil, apperrors.NewValidationError("days must be positive")
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -days)

	leads, err := s.leads.List(ctx, tenantID, repositories.LeadFilter{Since: &since})
	if err != nil {
		return nil, err
	}

	stats := make([]DailyLeadStats, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := since.AddDate(0, 0, i).Format("2006-01-02")
		stats[i].Date = date
		index[date] = i
	}

	for _, lead := range leads {
		i, ok := index[lead.CreatedAt.UTC().Format("2006-01-02")]
		if !ok {
			continue
		}
		stats[i].Total++
		switch lead.Status {
		case entities.LeadStatusNew:
			stats[i].New++
		case entities.LeadStatusConverted:
			stats[i].Converted++
		}
	}

	for i := range stats {
		if stats[i].Total > 0 {
			stats[i].ConversionRate = roundMoney(float64(stats[i].Converted) / float64(stats[i].Total) * 100)
		}
	}
	return stats, nil
}

// SourceBreakdown counts leads per source. days limits the leads to those
// created in the last days days; zero means all time.
func (s *LeadAnalyticsService) SourceBreakdown(ctx context.Context, tenantID int64, days int) ([]SourceStats, error) {
	leads, err := s.periodLeads(ctx, tenantID, days)
	if err != nil {
		return nil, err
	}
	return sourceBreakdown(leads), nil
}

// StaffPerformance counts assigned leads per staff member
func (s *LeadAnalyticsService) StaffPerformance(ctx context.Context, tenantID int64, days int) ([]StaffStats, error) {
	leads, err := s.periodLeads(ctx, tenantID, days)
	if err != nil {
		return nil, err
	}
	return staffPerformance(leads), nil
}

// InteractionStats counts interactions per type. Only a "success" result
// counts as a success.
func (s *LeadAnalyticsService) InteractionStats(ctx context.Context, tenantID int64, days int) (map[entities.InteractionType]InteractionTypeStats, error) {
	since, err := s.since(days)
	if err != nil {
		return nil, err
	}
	interactions, err := s.interactions.ListByTenant(ctx, tenantID, since)
	if err != nil {
		return nil, err
	}
	return interactionStats(interactions), nil
}

// ResponseTimes measures time to first contact over leads with at least one interaction
func (s *LeadAnalyticsService) ResponseTimes(ctx context.Context, tenantID int64, days int) (*ResponseTimeStats, error) {
	leads, err := s.periodLeads(ctx, tenantID, days)
	if err != nil {
		return nil, err
	}
	since, _ := s.since(days)
	interactions, err := s.interactions.ListByTenant(ctx, tenantID, since)
	if err != nil {
		return nil, err
	}
	stats := responseTimes(leads, interactions)
	return &stats, nil
}

// Report builds every view for a daily, weekly or monthly period.
// An unknown period is monthly.
func (s *LeadAnalyticsService) Report(ctx context.Context, tenantID int64, period string) (*LeadReport, error) {
	period = strings.ToLower(strings.TrimSpace(period))
	days, ok := reportPeriods[period]
	if !ok {
		period, days = "monthly", reportPeriods["monthly"]
	}

	funnel, err := s.ConversionFunnel(ctx, tenantID, days)
	if err != nil {
		return nil, err
	}
	daily, err := s.DailyStats(ctx, tenantID, days)
	if err != nil {
		return nil, err
	}
	leads, err := s.periodLeads(ctx, tenantID, days)
	if err != nil {
		return nil, err
	}
	since, _ := s.since(days)
	interactions, err := s.interactions.ListByTenant(ctx, tenantID, since)
	if err != nil {
		return nil, err
	}

	return &LeadReport{
		GeneratedAt:  s.now().UTC(),
		Period:       period,
		Days:         days,
		Funnel:       funnel,
		DailyStats:   daily,
		Sources:      sourceBreakdown(leads),
		Staff:        staffPerformance(leads),
		Interactions: interactionStats(interactions),
		ResponseTime: responseTimes(leads, interactions),
	}, nil
}

func (s *LeadAnalyticsService) since(days int) (*time.Time, error) {
	if days < 0 {
		return nil, apperrors.NewValidationError("days must not be negative")
	}
	if days == 0 {
		return nil, nil
	}
	since := s.now().UTC().AddDate(0, 0, -days)
	return &since, nil
}

func (s *LeadAnalyticsService) periodLeads(ctx context.Context, tenantID int64, days int) ([]*entities.Lead, error) {
	since, err := s.since(days)
	if err != nil {
		return nil, err
	}
	return s.leads.List(ctx, tenantID, repositories.LeadFilter{Since: since})
}

func percentOf(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return roundMoney(float64(n) / float64(total) * 100)
}

func sourceBreakdown(leads []*entities.Lead) []SourceStats {
	bySource := map[entities.LeadSource]*SourceStats{}
	for _, lead := range leads {
		st, ok := bySource[lead.Source]
		if !ok {
			st = &SourceStats{Source: lead.Source}
			bySource[lead.Source] = st
		}
		st.Total++
		switch lead.Status {
		case entities.LeadStatusNew:
			st.New++
		case entities.LeadStatusContacted:
			st.Contacted++
		case entities.LeadStatusConverted:
			st.Converted++
		}
	}

	out := make([]SourceStats, 0, len(bySource))
	for _, st := range bySource {
		st.ConversionRate = percentOf(st.Converted, st.Total)
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

func staffPerformance(leads []*entities.Lead) []StaffStats {
	byUser := map[int64]*StaffStats{}
	for _, lead := range leads {
		if lead.AssignedTo == nil {
			continue
		}
		st, ok := byUser[*lead.AssignedTo]
		if !ok {
			st = &StaffStats{UserID: *lead.AssignedTo}
			byUser[*lead.AssignedTo] = st
		}
		st.Assigned++
		switch lead.Status {
		case entities.LeadStatusContacted:
			st.Contacted++
		case entities.LeadStatusConverted:
			st.Converted++
		}
	}

	out := make([]StaffStats, 0, len(byUser))
	for _, st := range byUser {
		st.ConversionRate = percentOf(st.Converted, st.Assigned)
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

func interactionStats(interactions []*entities.LeadInteraction) map[entities.InteractionType]InteractionTypeStats {
	out := map[entities.InteractionType]InteractionTypeStats{}
	for _, in := range interactions {
		st := out[in.Type]
		st.Count++
		if in.Result == "success" {
			st.Success++
		} else {
			st.Failed++
		}
		out[in.Type] = st
	}
	return out
}

// responseTimes takes interactions oldest first; a lead's first interaction
// is its first contact.
func responseTimes(leads []*entities.Lead, interactions []*entities.LeadInteraction) ResponseTimeStats {
	created := make(map[int64]time.Time, len(leads))
	for _, lead := range leads {
		created[lead.ID] = lead.CreatedAt
	}

	var stats ResponseTimeStats
	var sum float64
	seen := map[int64]bool{}
	for _, in := range interactions {
		at, ok := created[in.LeadID]
		if !ok || seen[in.LeadID] {
			continue
		}
		seen[in.LeadID] = true

		hours := in.CreatedAt.Sub(at).Hours()
		if stats.SampleSize == 0 || hours < stats.MinHours {
			stats.MinHours = hours
		}
		if stats.SampleSize == 0 || hours > stats.MaxHours {
			stats.MaxHours = hours
		}
		sum += hours
		stats.SampleSize++
	}

	if stats.SampleSize == 0 {
		return ResponseTimeStats{}
	}
	stats.AverageHours = roundMoney(sum / float64(stats.SampleSize))
	stats.MinHours = roundMoney(stats.MinHours)
	stats.MaxHours = roundMoney(stats.MaxHours)
	return stats
}
