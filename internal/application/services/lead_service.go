package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/providers"
	"github.com/zatekoja/medtourclinic/internal/domain/repositories"
	"github.com/zatekoja/medtourclinic/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/medtourclinic/pkg/errors"
)

// CreateLeadInput holds the fields staff or the website submit for a lead
type CreateLeadInput struct {
	TenantID  int64
	Source    entities.LeadSource
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Notes     string
	FormData  entities.FormData
}

// InteractionInput holds a staff-recorded interaction
type InteractionInput struct {
	UserID      *int64
	Type        entities.InteractionType
	Description string
	Result      string
}

// LeadService handles lead capture and pipeline changes
type LeadService struct {
	leads        repositories.LeadRepository
	interactions repositories.LeadInteractionRepository
	scorer       *LeadScorer
	events       providers.EventBus
	notifier     *LeadNotificationService
	metrics      *observability.Metrics
	now          func() time.Time
}

// NewLeadService creates a new lead service. events and notifier may be nil.
func NewLeadService(
	leads repositories.LeadRepository,
	interactions repositories.LeadInteractionRepository,
	scorer *LeadScorer,
	events providers.EventBus,
	notifier *LeadNotificationService,
	metrics *observability.Metrics,
) *LeadService {
	return &LeadService{
		leads:        leads,
		interactions: interactions,
		scorer:       scorer,
		events:       events,
		notifier:     notifier,
		metrics:      metrics,
		now:          time.Now,
	}
}

// CreateLead stores a manually entered or website lead with status new
func (s *LeadService) CreateLead(ctx context.Context, in CreateLeadInput) (*entities.Lead, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = CleanPhone(in.Phone)

	if in.FirstName == "" && in.LastName == "" && in.Email == "" && in.Phone == "" {
		return nil, apperrors.NewValidationError("a lead needs a name, email or phone")
	}

	source := in.Source
	if source == "" {
		source = entities.LeadSourceManual
	}

	lead := &entities.Lead{
		TenantID:  in.TenantID,
		Source:    source,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Notes:     in.Notes,
		FormData:  in.FormData,
	}
	if err := s.Ingest(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

// Ingest stores a new lead, publishes lead.created and sends the new-lead alert
func (s *LeadService) Ingest(ctx context.Context, lead *entities.Lead) error {
	now := s.now().UTC()
	lead.Status = entities.LeadStatusNew
	if lead.FormData == nil {
		lead.FormData = entities.FormData{}
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}
	lead.UpdatedAt = now

	if err := s.leads.Create(ctx, lead); err != nil {
		return err
	}

	observability.RecordLeadsIngested(ctx, s.metrics, string(lead.Source), 1)
	s.publish(ctx, lead.TenantID, entities.EventLeadCreated, s.scored(lead))

	if s.notifier != nil {
		s.notifier.NotifyNewLead(ctx, lead)
	}
	return nil
}

// GetLead returns a tenant's lead with its score
func (s *LeadService) GetLead(ctx context.Context, tenantID, id int64) (*entities.ScoredLead, error) {
	lead, err := s.leads.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	scored := s.scored(lead)
	return &scored, nil
}

// ListLeads returns a tenant's leads with scores
func (s *LeadService) ListLeads(ctx context.Context, tenantID int64, filter repositories.LeadFilter) ([]entities.ScoredLead, error) {
	leads, err := s.leads.List(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]entities.ScoredLead, 0, len(leads))
	for _, lead := range leads {
		out = append(out, s.scored(lead))
	}
	return out, nil
}

// UpdateStatus moves a lead to status, records a status_changed interaction
// and publishes lead.status_changed.
func (s *LeadService) UpdateStatus(ctx context.Context, tenantID, id int64, status string, userID *int64) (*entities.Lead, error) {
	next, ok := entities.ParseLeadStatus(status)
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown lead status %q", status))
	}

	lead, err := s.leads.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	old := lead.Status
	if err := s.applyStatus(ctx, tenantID, lead, next, userID, fmt.Sprintf("%s → %s", old, next)); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyStatusChange(ctx, lead, old, next)
	}

	observability.LoggerFromContext(ctx).Info().
		Int64("tenant_id", tenantID).
		Int64("lead_id", id).
		Str("old_status", string(old)).
		Str("new_status", string(next)).
		Msg("lead status updated")
	return lead, nil
}

// MaxBulkLeads bounds the lead ids one bulk request may change
const MaxBulkLeads = 500

// BulkResult reports how many leads a bulk change updated and why others were skipped
type BulkResult struct {
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}

// BulkUpdateStatus moves every listed lead to status. Each moved lead gets a
// status_changed interaction and a lead.status_changed event. Missing leads
// are reported in the result; when none exist the call is not found.
func (s *LeadService) BulkUpdateStatus(ctx context.Context, tenantID int64, leadIDs []int64, status string, userID *int64) (*BulkResult, error) {
	next, ok := entities.ParseLeadStatus(status)
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown lead status %q", status))
	}
	return s.bulk(ctx, tenantID, leadIDs, func(lead *entities.Lead) error {
		old := lead.Status
		return s.applyStatus(ctx, tenantID, lead, next, userID, fmt.Sprintf("%s → %s (bulk)", old, next))
	})
}

// BulkAssign gives every listed lead to assignTo; new leads become assigned
func (s *LeadService) BulkAssign(ctx context.Context, tenantID int64, leadIDs []int64, assignTo int64, userID *int64) (*BulkResult, error) {
	if assignTo <= 0 {
		return nil, apperrors.NewValidationError("assign_to is required")
	}
	return s.bulk(ctx, tenantID, leadIDs, func(lead *entities.Lead) error {
		old, err := s.assign(ctx, tenantID, lead, assignTo)
		if err != nil {
			return err
		}
		s.recordInteraction(ctx, &entities.LeadInteraction{
			LeadID:      lead.ID,
			UserID:      userID,
			Type:        entities.InteractionStatusChanged,
			Description: fmt.Sprintf("%s → %s, bulk assigned to user %d", old, lead.Status, assignTo),
			Result:      "success",
		})
		return nil
	})
}

func (s *LeadService) bulk(ctx context.Context, tenantID int64, leadIDs []int64, apply func(*entities.Lead) error) (*BulkResult, error) {
	ids := uniqueIDs(leadIDs)
	if len(ids) == 0 {
		return nil, apperrors.NewValidationError("lead_ids is required")
	}
	if len(ids) > MaxBulkLeads {
		return nil, apperrors.NewValidationError(fmt.Sprintf("at most %d leads per request", MaxBulkLeads))
	}

	result := &BulkResult{Errors: []string{}}
	missing := 0
	for _, id := range ids {
		lead, err := s.leads.GetByID(ctx, tenantID, id)
		if err == nil {
			err = apply(lead)
		}
		if err != nil {
			if apperrors.IsNotFound(err) {
				missing++
			}
			result.Errors = append(result.Errors, fmt.Sprintf("lead %d: %v", id, err))
			continue
		}
		result.Updated++
	}

	if missing == len(ids) {
		return nil, apperrors.NewNotFoundError("no leads found")
	}
	observability.LoggerFromContext(ctx).Info().
		Int64("tenant_id", tenantID).
		Int("requested", len(ids)).
		Int("updated", result.Updated).
		Msg("bulk lead update finished")
	return result, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Assign gives a lead to a staff member; a new lead becomes assigned
func (s *LeadService) Assign(ctx context.Context, tenantID, id, userID int64) (*entities.Lead, error) {
	if userID <= 0 {
		return nil, apperrors.NewValidationError("user_id is required")
	}
	lead, err := s.leads.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.assign(ctx, tenantID, lead, userID); err != nil {
		return nil, err
	}
	return lead, nil
}

// assign stores the assignment, moves a new lead to assigned and publishes
// the status change. It returns the status before the change.
func (s *LeadService) assign(ctx context.Context, tenantID int64, lead *entities.Lead, userID int64) (entities.LeadStatus, error) {
	old := lead.Status
	status := old
	if status == entities.LeadStatusNew {
		status = entities.LeadStatusAssigned
	}
	if err := s.leads.Assign(ctx, tenantID, lead.ID, userID, status); err != nil {
		return old, err
	}
	lead.AssignedTo = &userID
	lead.Status = status
	lead.UpdatedAt = s.now().UTC()

	if old != status {
		s.publish(ctx, tenantID, entities.EventLeadStatusChanged, map[string]interface{}{
			"lead_id":     lead.ID,
			"old_status":  old,
			"new_status":  status,
			"assigned_to": userID,
		})
	}
	return old, nil
}

// AddInteraction records a call, email, SMS or note against a lead
func (s *LeadService) AddInteraction(ctx context.Context, tenantID, leadID int64, in InteractionInput) (*entities.LeadInteraction, error) {
	if !in.Type.IsValid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown interaction type %q", in.Type))
	}
	if _, err := s.leads.GetByID(ctx, tenantID, leadID); err != nil {
		return nil, err
	}

	interaction := &entities.LeadInteraction{
		LeadID:      leadID,
		UserID:      in.UserID,
		Type:        in.Type,
		Description: in.Description,
		Result:      in.Result,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.interactions.Create(ctx, interaction); err != nil {
		return nil, err
	}
	return interaction, nil
}

// ListInteractions returns a lead's interaction history
func (s *LeadService) ListInteractions(ctx context.Context, tenantID, leadID int64) ([]*entities.LeadInteraction, error) {
	if _, err := s.leads.GetByID(ctx, tenantID, leadID); err != nil {
		return nil, err
	}
	return s.interactions.ListByLead(ctx, leadID)
}

// BatchScores scores every lead of a tenant
func (s *LeadService) BatchScores(ctx context.Context, tenantID int64) (map[int64]LeadScore, error) {
	leads, err := s.leads.List(ctx, tenantID, repositories.LeadFilter{})
	if err != nil {
		return nil, err
	}
	return s.scorer.BatchScore(leads), nil
}

// TopLeads returns the tenant's best leads
func (s *LeadService) TopLeads(ctx context.Context, tenantID int64, limit, minScore int) ([]entities.ScoredLead, error) {
	leads, err := s.leads.List(ctx, tenantID, repositories.LeadFilter{})
	if err != nil {
		return nil, err
	}
	return s.scorer.TopLeads(leads, limit, minScore), nil
}

// Recommendations returns leads needing staff attention
func (s *LeadService) Recommendations(ctx context.Context, tenantID int64) (*LeadRecommendations, error) {
	leads, err := s.leads.List(ctx, tenantID, repositories.LeadFilter{})
	if err != nil {
		return nil, err
	}
	recs := s.scorer.Recommendations(leads)
	return &recs, nil
}

// applyStatus stores next, records a status_changed interaction and
// publishes lead.status_changed
func (s *LeadService) applyStatus(ctx context.Context, tenantID int64, lead *entities.Lead, next entities.LeadStatus, userID *int64, description string) error {
	if !lead.Status.CanTransitionTo(next) {
		return apperrors.NewValidationError(fmt.Sprintf("cannot move lead from %s to %s", lead.Status, next))
	}
	old := lead.Status
	if err := s.leads.UpdateStatus(ctx, tenantID, lead.ID, next); err != nil {
		return err
	}
	lead.Status = next
	lead.UpdatedAt = s.now().UTC()

	s.recordInteraction(ctx, &entities.LeadInteraction{
		LeadID:      lead.ID,
		UserID:      userID,
		Type:        entities.InteractionStatusChanged,
		Description: description,
		Result:      "success",
	})

	s.publish(ctx, tenantID, entities.EventLeadStatusChanged, map[string]interface{}{
		"lead_id":    lead.ID,
		"old_status": old,
		"new_status": next,
	})
	return nil
}

func (s *LeadService) scored(lead *entities.Lead) entities.ScoredLead {
	ls := s.scorer.Score(lead)
	return entities.ScoredLead{Lead: lead, Score: ls.Score, Level: ls.Level, Color: ls.Color}
}

func (s *LeadService) recordInteraction(ctx context.Context, interaction *entities.LeadInteraction) {
	interaction.CreatedAt = s.now().UTC()
	if err := s.interactions.Create(ctx, interaction); err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).
			Int64("lead_id", interaction.LeadID).
			Msg("failed to record lead interaction")
	}
}

func (s *LeadService) publish(ctx context.Context, tenantID int64, eventType entities.DomainEventType, payload interface{}) {
	if s.events == nil {
		return
	}
	event, err := entities.NewDomainEvent(tenantID, eventType, payload)
	if err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Str("event", string(eventType)).Msg("failed to build event")
		return
	}
	if err := s.events.Publish(ctx, providers.TenantChannel(tenantID), event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("event", string(eventType)).Msg("failed to publish event")
	}
}

// CleanPhone keeps digits and '+' only
func CleanPhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
