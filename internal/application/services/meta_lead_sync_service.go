package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/providers"
	"github.com/zatekoja/medtourclinic/internal/domain/repositories"
	"github.com/zatekoja/medtourclinic/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/medtourclinic/pkg/errors"
)

// DefaultMetaFetchLimit is the page size requested from the Graph API
const DefaultMetaFetchLimit = 100

var metaTimeLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
}

// MetaLeadSyncService imports Lead Ads submissions as leads
type MetaLeadSyncService struct {
	configs    repositories.MetaConfigRepository
	source     providers.LeadSourceProvider
	leads      repositories.LeadRepository
	leadSvc    *LeadService
	fetchLimit int
	now        func() time.Time
}

// NewMetaLeadSyncService creates a new Meta sync service
func NewMetaLeadSyncService(
	configs repositories.MetaConfigRepository,
	source providers.LeadSourceProvider,
	leads repositories.LeadRepository,
	leadSvc *LeadService,
	fetchLimit int,
) *MetaLeadSyncService {
	if fetchLimit <= 0 {
		fetchLimit = DefaultMetaFetchLimit
	}
	return &MetaLeadSyncService{
		configs:    configs,
		source:     source,
		leads:      leads,
		leadSvc:    leadSvc,
		fetchLimit: fetchLimit,
		now:        time.Now,
	}
}

// TestConnection checks the tenant's credentials against the Graph API
func (s *MetaLeadSyncService) TestConnection(ctx context.Context, tenantID int64) error {
	cfg, err := s.configs.GetByTenant(ctx, tenantID)
	if err != nil {
		return err
	}
	if !cfg.HasCredentials() {
		return apperrors.NewValidationError("missing API credentials")
	}
	return s.source.TestConnection(ctx, cfg)
}

// SyncTenant runs one sync for the tenant regardless of its fetch interval
func (s *MetaLeadSyncService) SyncTenant(ctx context.Context, tenantID int64) (*entities.MetaSyncResult, error) {
	cfg, err := s.configs.GetByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return s.syncConfig(ctx, cfg), nil
}

// SyncAll syncs every active config whose fetch interval has elapsed
func (s *MetaLeadSyncService) SyncAll(ctx context.Context) ([]*entities.MetaSyncResult, error) {
	configs, err := s.configs.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list meta configs: %w", err)
	}

	now := s.now()
	results := make([]*entities.MetaSyncResult, 0, len(configs))
	for _, cfg := range configs {
		if !isFetchDue(cfg, now) {
			continue
		}
		results = append(results, s.syncConfig(ctx, cfg))
	}
	return results, nil
}

func isFetchDue(cfg *entities.MetaAPIConfig, now time.Time) bool {
	if cfg.LastFetchTime == nil || cfg.FetchIntervalMinutes <= 0 {
		return true
	}
	return !now.Before(cfg.LastFetchTime.Add(time.Duration(cfg.FetchIntervalMinutes) * time.Minute))
}

func (s *MetaLeadSyncService) syncConfig(ctx context.Context, cfg *entities.MetaAPIConfig) *entities.MetaSyncResult {
	ctx, span := observability.StartSpan(ctx, "MetaLeadSyncService.sync")
	defer span.End()

	logger := observability.LoggerFromContext(ctx).With().Int64("tenant_id", cfg.TenantID).Logger()
	result := &entities.MetaSyncResult{TenantID: cfg.TenantID, Errors: []string{}}

	if !cfg.HasCredentials() {
		result.Errors = append(result.Errors, "missing API credentials")
		result.Message = "missing API credentials"
		s.recordFetch(ctx, cfg, result.Errors)
		return result
	}

	raw, err := s.source.FetchLeads(ctx, cfg, s.fetchLimit)
	if err != nil {
		observability.RecordError(span, err)
		logger.Error().Err(err).Msg("meta lead fetch failed")
		result.Errors = append(result.Errors, err.Error())
		result.Message = err.Error()
		s.recordFetch(ctx, cfg, result.Errors)
		return result
	}

	result.Fetched = len(raw)
	result.Success = true
	if len(raw) == 0 {
		result.Message = "no new leads"
		s.recordFetch(ctx, cfg, nil)
		return result
	}

	for _, item := range raw {
		lead, err := ParseMetaLead(item)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		lead.TenantID = cfg.TenantID

		exists, err := s.leads.ExistsBySourceID(ctx, *lead.SourceID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("lead %s: %v", *lead.SourceID, err))
			continue
		}
		if exists {
			continue
		}

		if err := s.leadSvc.Ingest(ctx, lead); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("lead %s: %v", *lead.SourceID, err))
			continue
		}
		result.Stored++
	}

	result.Message = fmt.Sprintf("%d/%d leads stored", result.Stored, result.Fetched)
	s.recordFetch(ctx, cfg, result.Errors)

	logger.Info().
		Int("fetched", result.Fetched).
		Int("stored", result.Stored).
		Int("errors", len(result.Errors)).
		Msg("meta leads synced")
	return result
}

// recordFetch stores the fetch time and the first three errors
func (s *MetaLeadSyncService) recordFetch(ctx context.Context, cfg *entities.MetaAPIConfig, errs []string) {
	var lastError *string
	if len(errs) > 0 {
		n := len(errs)
		if n > 3 {
			n = 3
		}
		joined := strings.Join(errs[:n], "; ")
		lastError = &joined
	}
	now := s.now().UTC()
	if err := s.configs.RecordFetch(ctx, cfg.ID, now, lastError); err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Int64("tenant_id", cfg.TenantID).Msg("failed to record meta fetch")
		return
	}
	cfg.LastFetchTime = &now
	cfg.LastError = lastError
}

// ParseMetaLead maps a Lead Ads submission onto a lead. Name, email and
// phone fields are recognised by field name; everything else goes to
// FormData under its lower-cased name.
func ParseMetaLead(raw entities.MetaLead) (*entities.Lead, error) {
	if raw.ID == "" {
		return nil, apperrors.NewValidationError("meta lead id missing")
	}

	id := raw.ID
	lead := &entities.Lead{
		Source:   entities.LeadSourceFacebook,
		SourceID: &id,
		FormData: entities.FormData{},
	}

	for _, layout := range metaTimeLayouts {
		if t, err := time.Parse(layout, raw.CreatedTime); err == nil {
			t = t.UTC()
			lead.SourceCreatedAt = &t
			break
		}
	}

	for _, field := range raw.FieldData {
		if len(field.Values) == 0 || field.Values[0] == "" {
			continue
		}
		name := strings.ToLower(field.Name)
		value := field.Values[0]

		switch classifyMetaField(name) {
		case metaFieldFullName:
			first, last := splitFullName(value)
			lead.FirstName, lead.LastName = first, last
		case metaFieldLastName:
			lead.LastName = value
		case metaFieldEmail:
			lead.Email = strings.TrimSpace(value)
		case metaFieldPhone:
			lead.Phone = CleanPhone(value)
		case metaFieldFirstName:
			lead.FirstName = value
		default:
			lead.FormData[name] = value
		}
	}
	return lead, nil
}

type metaFieldKind int

const (
	metaFieldOther metaFieldKind = iota
	metaFieldFullName
	metaFieldLastName
	metaFieldEmail
	metaFieldPhone
	metaFieldFirstName
)

// classifyMetaField checks surname before first name so "soyad" never
// lands in the first name; Turkish "ad" only matches as a whole token.
func classifyMetaField(name string) metaFieldKind {
	tokens := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	has := func(want string) bool {
		for _, t := range tokens {
			if t == want {
				return true
			}
		}
		return false
	}

	switch {
	case name == "full_name" || name == "name" || (has("ad") && has("soyad")):
		return metaFieldFullName
	case strings.Contains(name, "soyad") || strings.Contains(name, "last") || strings.Contains(name, "surname"):
		return metaFieldLastName
	case strings.Contains(name, "email") || strings.Contains(name, "e-posta"):
		return metaFieldEmail
	case strings.Contains(name, "telefon") || strings.Contains(name, "phone") || strings.Contains(name, "whatsapp"):
		return metaFieldPhone
	case strings.Contains(name, "first") || has("ad") || has("adı") || has("isim"):
		return metaFieldFirstName
	}
	return metaFieldOther
}

func splitFullName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	}
	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}
