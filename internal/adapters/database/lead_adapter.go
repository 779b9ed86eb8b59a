package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/repositories"
	"github.com/zatekoja/medtourclinic/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/medtourclinic/pkg/errors"
)

const leadsTable = "leads"

var leadColumns = []interface{}{
	"id", "tenant_id", "source", "source_id", "first_name", "last_name", "email", "phone",
	"form_data", "status", "assigned_to", "notes", "source_created_at", "created_at", "updated_at",
}

// LeadAdapter implements LeadRepository
type LeadAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.LeadRepository = (*LeadAdapter)(nil)

// NewLeadAdapter creates a new lead adapter
func NewLeadAdapter(client *postgres.Client) *LeadAdapter {
	return &LeadAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a lead and sets its ID
func (a *LeadAdapter) Create(ctx context.Context, lead *entities.Lead) error {
	if lead == nil {
		return apperrors.NewInternalError("lead is nil", fmt.Errorf("lead is nil"))
	}
	if lead.FormData == nil {
		lead.FormData = entities.FormData{}
	}

	record := goqu.Record{
		"tenant_id":         lead.TenantID,
		"source":            lead.Source,
		"source_id":         lead.SourceID,
		"first_name":        lead.FirstName,
		"last_name":         lead.LastName,
		"email":             lead.Email,
		"phone":             lead.Phone,
		"form_data":         lead.FormData,
		"status":            lead.Status,
		"assigned_to":       lead.AssignedTo,
		"notes":             lead.Notes,
		"source_created_at": lead.SourceCreatedAt,
		"created_at":        lead.CreatedAt,
		"updated_at":        lead.UpdatedAt,
	}

	query, args, err := a.db.Insert(leadsTable).Rows(record).Returning("id").ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if err := a.client.DB().QueryRowxContext(ctx, query, args...).Scan(&lead.ID); err != nil {
		return apperrors.NewInternalError("failed to create lead", err)
	}
	return nil
}

// GetByID retrieves a tenant's lead
func (a *LeadAdapter) GetByID(ctx context.Context, tenantID, id int64) (*entities.Lead, error) {
	query, args, err := a.db.From(leadsTable).
		Select(leadColumns...).
		Where(goqu.Ex{"tenant_id": tenantID, "id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var lead entities.Lead
	if err := a.client.DB().GetContext(ctx, &lead, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("lead %d not found", id))
		}
		return nil, apperrors.NewInternalError("failed to get lead", err)
	}
	return &lead, nil
}

// ExistsBySourceID reports whether a lead with the external id is stored
func (a *LeadAdapter) ExistsBySourceID(ctx context.Context, sourceID string) (bool, error) {
	query, args, err := a.db.From(leadsTable).
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"source_id": sourceID}).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build query", err)
	}

	var count int
	if err := a.client.DB().GetContext(ctx, &count, query, args...); err != nil {
		return false, apperrors.NewInternalError("failed to check lead source id", err)
	}
	return count > 0, nil
}

// List retrieves a tenant's leads, newest first
func (a *LeadAdapter) List(ctx context.Context, tenantID int64, filter repositories.LeadFilter) ([]*entities.Lead, error) {
	ds := a.db.From(leadsTable).
		Select(leadColumns...).
		Where(goqu.Ex{"tenant_id": tenantID})

	if filter.Status != "" {
		ds = ds.Where(goqu.Ex{"status": filter.Status})
	}
	if filter.Source != "" {
		ds = ds.Where(goqu.Ex{"source": filter.Source})
	}
	if filter.Since != nil {
		ds = ds.Where(goqu.C("created_at").Gte(*filter.Since))
	}
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.Order(goqu.C("created_at").Desc(), goqu.C("id").Desc()).ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	leads := []*entities.Lead{}
	if err := a.client.DB().SelectContext(ctx, &leads, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list leads", err)
	}
	return leads, nil
}

// UpdateStatus sets a lead's status
func (a *LeadAdapter) UpdateStatus(ctx context.Context, tenantID, id int64, status entities.LeadStatus) error {
	return a.update(ctx, tenantID, id, goqu.Record{
		"status":     status,
		"updated_at": time.Now().UTC(),
	})
}

// Assign sets a lead's assignee and status
func (a *LeadAdapter) Assign(ctx context.Context, tenantID, id, userID int64, status entities.LeadStatus) error {
	return a.update(ctx, tenantID, id, goqu.Record{
		"assigned_to": userID,
		"status":      status,
		"updated_at":  time.Now().UTC(),
	})
}

func (a *LeadAdapter) update(ctx context.Context, tenantID, id int64, record goqu.Record) error {
	query, args, err := a.db.Update(leadsTable).
		Set(record).
		Where(goqu.Ex{"tenant_id": tenantID, "id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update lead", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("lead %d not found", id))
	}
	return nil
}

type statusCount struct {
	Status entities.LeadStatus `db:"status"`
	Count  int                 `db:"count"`
}

// CountByStatus counts a tenant's leads per status created at or after since
func (a *LeadAdapter) CountByStatus(ctx context.Context, tenantID int64, since time.Time) (map[entities.LeadStatus]int, error) {
	query, args, err := a.db.From(leadsTable).
		Select(goqu.C("status"), goqu.COUNT("*").As("count")).
		Where(
			goqu.Ex{"tenant_id": tenantID},
			goqu.C("created_at").Gte(since),
		).
		GroupBy("status").
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var rows []statusCount
	if err := a.client.DB().SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to count leads", err)
	}

	counts := make(map[entities.LeadStatus]int, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
