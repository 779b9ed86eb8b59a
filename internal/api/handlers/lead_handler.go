package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/zatekoja/medtourclinic/internal/application/services"
	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/repositories"
	"github.com/zatekoja/medtourclinic/internal/infrastructure/export"
	apperrors "github.com/zatekoja/medtourclinic/pkg/errors"
)

// LeadService defines the lead operations used by the handler.
type LeadService interface {
	CreateLead(ctx context.Context, in services.CreateLeadInput) (*entities.Lead, error)
	GetLead(ctx context.Context, tenantID, id int64) (*entities.ScoredLead, error)
	ListLeads(ctx context.Context, tenantID int64, filter repositories.LeadFilter) ([]entities.ScoredLead, error)
	UpdateStatus(ctx context.Context, tenantID, id int64, status string, userID *int64) (*entities.Lead, error)
	Assign(ctx context.Context, tenantID, id, userID int64) (*entities.Lead, error)
	AddInteraction(ctx context.Context, tenantID, leadID int64, in services.InteractionInput) (*entities.LeadInteraction, error)
	ListInteractions(ctx context.Context, tenantID, leadID int64) ([]*entities.LeadInteraction, error)
	BatchScores(ctx context.Context, tenantID int64) (map[int64]services.LeadScore, error)
	TopLeads(ctx context.Context, tenantID int64, limit, minScore int) ([]entities.ScoredLead, error)
	Recommendations(ctx context.Context, tenantID int64) (*services.LeadRecommendations, error)
	BulkUpdateStatus(ctx context.Context, tenantID int64, leadIDs []int64, status string, userID *int64) (*services.BulkResult, error)
	BulkAssign(ctx context.Context, tenantID int64, leadIDs []int64, assignTo int64, userID *int64) (*services.BulkResult, error)
}

// LeadAnalytics defines the lead statistics used by the handler.
type LeadAnalytics interface {
	ConversionFunnel(ctx context.Context, tenantID int64, days int) (*services.ConversionFunnel, error)
	DailyStats(ctx context.Context, tenantID int64, days int) ([]services.DailyLeadStats, error)
	SourceBreakdown(ctx context.Context, tenantID int64, days int) ([]services.SourceStats, error)
	StaffPerformance(ctx context.Context, tenantID int64, days int) ([]services.StaffStats, error)
	InteractionStats(ctx context.Context, tenantID int64, days int) (map[entities.InteractionType]services.InteractionTypeStats, error)
	ResponseTimes(ctx context.Context, tenantID int64, days int) (*services.ResponseTimeStats, error)
	Report(ctx context.Context, tenantID int64, period string) (*services.LeadReport, error)
}

// LeadHandler handles lead CRM requests
type LeadHandler struct {
	leads     LeadService
	analytics LeadAnalytics
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leads LeadService, analytics LeadAnalytics) *LeadHandler {
	return &LeadHandler{leads: leads, analytics: analytics}
}

type createLeadRequest struct {
	Source    string            `json:"source" validate:"omitempty,oneof=facebook website instagram manual"`
	FirstName string            `json:"first_name" validate:"max=100"`
	LastName  string            `json:"last_name" validate:"max=100"`
	Email     string            `json:"email" validate:"omitempty,email,max=200"`
	Phone     string            `json:"phone" validate:"max=50"`
	Notes     string            `json:"notes" validate:"max=2000"`
	FormData  map[string]string `json:"form_data"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	UserID *int64 `json:"user_id" validate:"omitempty,gt=0"`
}

type assignRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

type interactionRequest struct {
	UserID      *int64 `json:"user_id" validate:"omitempty,gt=0"`
	Type        string `json:"interaction_type" validate:"required,oneof=called emailed sms note status_changed"`
	Description string `json:"description" validate:"max=2000"`
	Result      string `json:"result" validate:"max=200"`
}

type bulkStatusRequest struct {
	LeadIDs []int64 `json:"lead_ids" validate:"required,min=1,max=500"`
	Status  string  `json:"status" validate:"required"`
	UserID  *int64  `json:"user_id" validate:"omitempty,gt=0"`
}

type bulkAssignRequest struct {
	LeadIDs  []int64 `json:"lead_ids" validate:"required,min=1,max=500"`
	AssignTo int64   `json:"assign_to" validate:"required,gt=0"`
	UserID   *int64  `json:"user_id" validate:"omitempty,gt=0"`
}

// tenantLead reads the tenant and lead ids from the path
func tenantLead(r *http.Request) (int64, int64, error) {
	tenantID, err := pathID(r, "tenantID")
	if err != nil {
		return 0, 0, err
	}
	leadID, err := pathID(r, "id")
	if err != nil {
		return 0, 0, err
	}
	return tenantID, leadID, nil
}

// CreateLead handles POST /api/tenants/{tenantID}/leads
func (h *LeadHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	tenantID, err := pathID(r, "tenantID")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	var req createLeadRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	source := entities.LeadSource(req.Source)
	if source == "" {
		source = entities.LeadSourceManual
	}
	lead, err := h.leads.CreateLead(r.Context(), services.CreateLeadInput{
		TenantID:  tenantID,
		Source:    source,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Notes:     req.Notes,
		FormData:  entities.FormData(req.FormData),
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, lead)
}

// ListLeads handles GET /api/tenants/{tenantID}/leads
func (h *LeadHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	tenantID, err := pathID(r, "tenantID")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	filter, err := leadFilter(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	leads, err := h.leads.ListLeads(r.Context(), tenantID, filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"leads": leads, "count": len(leads)})
}

func leadFilter(r *http.Request) (repositories.LeadFilter, error) {
	q := r.URL.Query()
	filter := repositories.LeadFilter{Source: entities.LeadSource(q.Get("source"))}
	if s := q.Get("status"); s != "" {
		status, ok := entities.ParseLeadStatus(s)
		if !ok {
			return filter, apperrors.NewValidationError("unknown lead status: " + s)
		}
		filter.Status = status
	}
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		return filter, err
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		return filter, err
	}
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	filter.Limit = limit
	if offset > 0 {
		filter.Offset = offset
	}
	return filter, nil
}

// GetLead handles GET /api/tenants/{tenantID}/leads/{id}
func (h *LeadHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	tenantID, leadID, err := tenantLead(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	lead, err := h.leads.GetLead(r.Context(), tenantID, leadID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, lead)
}

// UpdateStatus handles PATCH /api/tenants/{tenantID}/leads/{id}/status
func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	tenantID, leadID, err := tenantLead(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	var req updateStatusRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	lead, err := h.leads.UpdateStatus(r.Context(), tenantID, leadID, req.Status, req.UserID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, lead)
}

// Assign handles POST /api/tenants/{tenantID}/leads/{id}/assign
func (h *LeadHandler) Assign(w http.ResponseWriter, r *http.Request) {
	tenantID, leadID, err := tenantLead(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	var req assignRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	lead, err := h.leads.Assign(r.Context(), tenantID, leadID, req.UserID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, lead)
}

// AddInteraction handles POST /api/tenants/{tenantID}/leads/{id}/interactions
func (h *LeadHandler) AddInteraction(w http.ResponseWriter, r *http.Request) {
	tenantID, leadID, err := tenantLead(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	var req interactionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	interaction, err := h.leads.AddInteraction(r.Context(), tenantID, leadID, services.InteractionInput{
		UserID:      req.UserID,
		Type:        entities.InteractionType(req.Type),
		Description: req.Description,
		Result:      req.Result,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, interaction)
}

// ListInteractions handles GET /api/tenants/{tenantID}/leads/{id}/interactions
func (h *LeadHandler) ListInteractions(w http.ResponseWriter, r *http.Request) {
	tenantID, leadID, err := tenantLead(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	interactions, err := h.leads.ListInteractions(r.Context(), tenantID, leadID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"interactions": interactions})
}

// Scores handles GET /api/tenants/{tenantID}/leads/scores
func (h *LeadHandler) Scores(w http.ResponseWriter, r *http.Request) {
	tenantID, err := pathID(r, "tenantID")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	scores, err := h.leads.BatchScores(r.Context(), tenantID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"scores": scores})
}

// TopLeads handles GET /api/tenants/{tenantID}/leads/top
func (h *LeadHandler) TopLeads(w http.ResponseWriter, r *http.Request) {
	tenantID, err := pathID(r, "tenantID")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	minScore, err := queryInt(r, "min_score", 0)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	leads, err := h.leads.TopLeads(r.Context(), tenantID, limit, minScore)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"leads": leads, "count": len(leads)})
}

// Recommendations handles GET /api/tenants/{tenantID}/leads/recommendations
func (h *LeadHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	tenantID, err := pathID(r, "tenantID")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	recs, err := h.leads.Recommendations(r.Context(), tenantID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, recs)
}

// Funnel handles GET /api/tenants/{tenantID}/leads/funnel
func (h *LeadHandler) Funnel(w http.ResponseWriter, r *http.Request) {
	tenantID, err := pathID(r, "tenantID")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	days, err := queryInt(r, "days", 30)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	funnel, err := h.analytics.ConversionFunnel(r.Context(), tenantID, days)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, funnel)
}

// DailyStats handles GET /api/tenants/{tenantID}/leads/stats
func (h *LeadHandler) DailyStats(w http.ResponseWriter, r *http.Request) {
	tenantID, err := pathID(r, "tenantID")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	days, err := queryInt(r, "days", 7)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	stats, err := h.analytics.DailyStats(r.Context(), tenantID, days)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"days": stats})
}

// BulkStatus handles POST /api/tenants/{tenantID}/leads/bulk/status
func (h *LeadHandler) BulkStatus(w http.ResponseWriter, r *http.Request) {
	tenantID, err := pathID(r, "tenantID")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	var req bulkStatusRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	result, err := h.leads.BulkUpdateStatus(r.Context(), tenantID, req.LeadIDs, req.Status, req.UserID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// BulkAssign handles POST /api/tenants/{tenantID}/leads/bulk/assign
func (h *LeadHandler) BulkAssign(w http.ResponseWriter, r *http.Request) {
	tenantID, err := pathID(r, "tenantID")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	var req bulkAssignRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	result, err := h.leads.BulkAssign(r.Context(), tenantID, req.LeadIDs, req.AssignTo, req.UserID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// analyticsScope reads the tenant and the days window; no days means all time
func analyticsScope(r *http.Request) (int64, int, error) {
	tenantID, err := pathID(r, "tenantID")
	if err != nil {
		return 0, 0, err
	}
	days, err := queryInt(r, "days", 0)
	if err != nil {
		return 0, 0, err
	}
	return tenantID, days, nil
}

// Sources handles GET /api/tenants/{tenantID}/leads/analytics/sources
func (h *LeadHandler) Sources(w http.ResponseWriter, r *http.Request) {
	tenantID, days, err := analyticsScope(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	stats, err := h.analytics.SourceBreakdown(r.Context(), tenantID, days)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"sources": stats})
}

// Staff handles GET /api/tenants/{tenantID}/leads/analytics/staff
func (h *LeadHandler) Staff(w http.ResponseWriter, r *http.Request) {
	tenantID, days, err := analyticsScope(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	stats, err := h.analytics.StaffPerformance(r.Context(), tenantID, days)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"staff": stats})
}

// InteractionStats handles GET /api/tenants/{tenantID}/leads/analytics/interactions
func (h *LeadHandler) InteractionStats(w http.ResponseWriter, r *http.Request) {
	tenantID, days, err := analyticsScope(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	stats, err := h.analytics.InteractionStats(r.Context(), tenantID, days)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"interactions": stats})
}

// ResponseTimes handles GET /api/tenants/{tenantID}/leads/analytics/response-times
func (h *LeadHandler) ResponseTimes(w http.ResponseWriter, r *http.Request) {
	tenantID, days, err := analyticsScope(r)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	stats, err := h.analytics.ResponseTimes(r.Context(), tenantID, days)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// Report handles GET /api/tenants/{tenantID}/leads/analytics/report
func (h *LeadHandler) Report(w http.ResponseWriter, r *http.Request) {
	tenantID, err := pathID(r, "tenantID")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	report, err := h.analytics.Report(r.Context(), tenantID, r.URL.Query().Get("period"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}

// Export handles GET /api/tenants/{tenantID}/leads/export
func (h *LeadHandler) Export(w http.ResponseWriter, r *http.Request) {
	tenantID, err := pathID(r, "tenantID")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	leads, err := h.leads.ListLeads(r.Context(), tenantID, repositories.LeadFilter{})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	rows := make([]*entities.ScoredLead, len(leads))
	for i := range leads {
		rows[i] = &leads[i]
	}
	data, err := export.GenerateLeadExport(rows)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	filename := fmt.Sprintf("leads-%d-%s.xlsx", tenantID, time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
