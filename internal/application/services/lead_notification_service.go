package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/providers"
	"github.com/zatekoja/medtourclinic/internal/domain/repositories"
	"github.com/zatekoja/medtourclinic/internal/infrastructure/observability"
)

// MinNotifyScore is the lowest score that triggers a new-lead alert
const MinNotifyScore = 30

// LeadNotificationService alerts a tenant's notification phone about leads
type LeadNotificationService struct {
	sender  providers.NotificationSender
	tenants repositories.TenantRepository
	scorer  *LeadScorer
}

// NewLeadNotificationService creates a notifier; a nil sender disables alerts
func NewLeadNotificationService(sender providers.NotificationSender, tenants repositories.TenantRepository, scorer *LeadScorer) *LeadNotificationService {
	return &LeadNotificationService{
		sender:  sender,
		tenants: tenants,
		scorer:  scorer,
	}
}

// NotifyNewLead sends an alert for leads scoring at least MinNotifyScore.
// Failures are logged and never returned.
func (s *LeadNotificationService) NotifyNewLead(ctx context.Context, lead *entities.Lead) bool {
	score := s.scorer.CalculateScore(lead)
	if score < MinNotifyScore {
		return false
	}
	return s.send(ctx, lead.TenantID, renderNewLead(lead, score))
}

// NotifyStatusChange alerts about a status change of an assigned lead
func (s *LeadNotificationService) NotifyStatusChange(ctx context.Context, lead *entities.Lead, old, next entities.LeadStatus) bool {
	if lead.AssignedTo == nil {
		return false
	}
	body := fmt.Sprintf("Lead status updated: %s (%s → %s)", displayName(lead), old, next)
	return s.send(ctx, lead.TenantID, body)
}

func (s *LeadNotificationService) send(ctx context.Context, tenantID int64, body string) bool {
	if s.sender == nil {
		return false
	}
	logger := observability.LoggerFromContext(ctx)

	tenant, err := s.tenants.GetByID(ctx, tenantID)
	if err != nil {
		logger.Warn().Err(err).Int64("tenant_id", tenantID).Msg("notification skipped, tenant lookup failed")
		return false
	}
	if tenant.NotificationPhone == "" {
		return false
	}

	messageID, err := s.sender.SendText(ctx, tenant.NotificationPhone, body)
	if err != nil {
		logger.Error().Err(err).Int64("tenant_id", tenantID).Msg("failed to send lead notification")
		return false
	}
	logger.Info().Int64("tenant_id", tenantID).Str("message_id", messageID).Msg("lead notification sent")
	return true
}

func renderNewLead(lead *entities.Lead, score int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New lead: %s (score %d/100, %s)\n", displayName(lead), score, ScoreLevel(score))
	fmt.Fprintf(&b, "Email: %s\n", dashIfEmpty(lead.Email))
	fmt.Fprintf(&b, "Phone: %s\n", dashIfEmpty(lead.Phone))
	fmt.Fprintf(&b, "Source: %s", lead.Source)
	for _, key := range entities.ServiceIntentKeys {
		if v := lead.FormData[key]; v != "" {
			fmt.Fprintf(&b, "\nInterest: %s", v)
			break
		}
	}
	return b.String()
}

func displayName(lead *entities.Lead) string {
	if name := lead.FullName(); name != "" {
		return name
	}
	return fmt.Sprintf("#%d", lead.ID)
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
