package database

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/repositories"
	"github.com/zatekoja/medtourclinic/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/medtourclinic/pkg/errors"
)

// LeadInteractionAdapter implements LeadInteractionRepository
type LeadInteractionAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.LeadInteractionRepository = (*LeadInteractionAdapter)(nil)

// NewLeadInteractionAdapter creates a new lead interaction adapter
func NewLeadInteractionAdapter(client *postgres.Client) *LeadInteractionAdapter {
	return &LeadInteractionAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts an interaction and sets its ID
func (a *LeadInteractionAdapter) Create(ctx context.Context, interaction *entities.LeadInteraction) error {
	if interaction == nil {
		return apperrors.NewInternalError("interaction is nil", fmt.Errorf("interaction is nil"))
	}

	query, args, err := a.db.Insert("lead_interactions").
		Rows(goqu.Record{
			"lead_id":          interaction.LeadID,
			"user_id":          interaction.UserID,
			"interaction_type": interaction.Type,
			"description":      interaction.Description,
			"result":           interaction.Result,
			"created_at":       interaction.CreatedAt,
		}).
		Returning("id").
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if err := a.client.DB().QueryRowxContext(ctx, query, args...).Scan(&interaction.ID); err != nil {
		return apperrors.NewInternalError("failed to create lead interaction", err)
	}
	return nil
}

// ListByLead returns a lead's interactions, newest first
func (a *LeadInteractionAdapter) ListByLead(ctx context.Context, leadID int64) ([]*entities.LeadInteraction, error) {
	query, args, err := a.db.From("lead_interactions").
		Select("id", "lead_id", "user_id", "interaction_type", "description", "result", "created_at").
		Where(goqu.Ex{"lead_id": leadID}).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	interactions := []*entities.LeadInteraction{}
	if err := a.client.DB().SelectContext(ctx, &interactions, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list lead interactions", err)
	}
	return interactions, nil
}

// ListByTenant returns the interactions of a tenant's leads, oldest first
func (a *LeadInteractionAdapter) ListByTenant(ctx context.Context, tenantID int64, since *time.Time) ([]*entities.LeadInteraction, error) {
	ds := a.db.From(goqu.T("lead_interactions").As("i")).
		Join(goqu.T(leadsTable).As("l"), goqu.On(goqu.I("i.lead_id").Eq(goqu.I("l.id")))).
		Select(
			goqu.I("i.id"), goqu.I("i.lead_id"), goqu.I("i.user_id"), goqu.I("i.interaction_type"),
			goqu.I("i.description"), goqu.I("i.result"), goqu.I("i.created_at"),
		).
		Where(goqu.I("l.tenant_id").Eq(tenantID))
	if since != nil {
		ds = ds.Where(goqu.I("l.created_at").Gte(*since))
	}

	query, args, err := ds.Order(goqu.I("i.created_at").Asc(), goqu.I("i.id").Asc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	interactions := []*entities.LeadInteraction{}
	if err := a.client.DB().SelectContext(ctx, &interactions, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list tenant interactions", err)
	}
	return interactions, nil
}
