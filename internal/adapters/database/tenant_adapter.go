package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/repositories"
	"github.com/zatekoja/medtourclinic/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/medtourclinic/pkg/errors"
)

var tenantColumns = []interface{}{
	"id", "name", "email", "notification_phone", "default_currency", "currency_locale", "is_active", "created_at", "updated_at",
}

// TenantAdapter implements TenantRepository
type TenantAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.TenantRepository = (*TenantAdapter)(nil)

// NewTenantAdapter creates a new tenant adapter
func NewTenantAdapter(client *postgres.Client) *TenantAdapter {
	return &TenantAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves a tenant
func (a *TenantAdapter) GetByID(ctx context.Context, id int64) (*entities.Tenant, error) {
	query, args, err := a.db.From("tenants").
		Select(tenantColumns...).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var tenant entities.Tenant
	if err := a.client.DB().GetContext(ctx, &tenant, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("tenant %d not found", id))
		}
		return nil, apperrors.NewInternalError("failed to get tenant", err)
	}
	return &tenant, nil
}

// ListActive retrieves all active tenants
func (a *TenantAdapter) ListActive(ctx context.Context) ([]*entities.Tenant, error) {
	query, args, err := a.db.From("tenants").
		Select(tenantColumns...).
		Where(goqu.Ex{"is_active": true}).
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	tenants := []*entities.Tenant{}
	if err := a.client.DB().SelectContext(ctx, &tenants, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list tenants", err)
	}
	return tenants, nil
}

// GetSettings retrieves a tenant's currency settings
func (a *TenantAdapter) GetSettings(ctx context.Context, tenantID int64) (*entities.TenantSettings, error) {
	query, args, err := a.db.From("tenant_settings").
		Select("tenant_id", "base_currency", "currency_api_source", "updated_at").
		Where(goqu.Ex{"tenant_id": tenantID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var settings entities.TenantSettings
	if err := a.client.DB().GetContext(ctx, &settings, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("settings for tenant %d not found", tenantID))
		}
		return nil, apperrors.NewInternalError("failed to get tenant settings", err)
	}
	return &settings, nil
}
