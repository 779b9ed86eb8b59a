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

var metaConfigColumns = []interface{}{
	"id", "tenant_id", "page_id", "form_id", "access_token", "api_version", "is_active",
	"fetch_interval_minutes", "last_fetch_time", "last_error", "updated_at",
}

// MetaConfigAdapter implements MetaConfigRepository
type MetaConfigAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.MetaConfigRepository = (*MetaConfigAdapter)(nil)

// NewMetaConfigAdapter creates a new Meta config adapter
func NewMetaConfigAdapter(client *postgres.Client) *MetaConfigAdapter {
	return &MetaConfigAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByTenant retrieves a tenant's Meta Lead Ads config
func (a *MetaConfigAdapter) GetByTenant(ctx context.Context, tenantID int64) (*entities.MetaAPIConfig, error) {
	query, args, err := a.db.From("meta_api_configs").
		Select(metaConfigColumns...).
		Where(goqu.Ex{"tenant_id": tenantID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var cfg entities.MetaAPIConfig
	if err := a.client.DB().GetContext(ctx, &cfg, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("meta config for tenant %d not found", tenantID))
		}
		return nil, apperrors.NewInternalError("failed to get meta config", err)
	}
	return &cfg, nil
}

// ListActive retrieves all active configs
func (a *MetaConfigAdapter) ListActive(ctx context.Context) ([]*entities.MetaAPIConfig, error) {
	query, args, err := a.db.From("meta_api_configs").
		Select(metaConfigColumns...).
		Where(goqu.Ex{"is_active": true}).
		Order(goqu.C("tenant_id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	configs := []*entities.MetaAPIConfig{}
	if err := a.client.DB().SelectContext(ctx, &configs, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list meta configs", err)
	}
	return configs, nil
}

// RecordFetch stores the time and outcome of the latest fetch
func (a *MetaConfigAdapter) RecordFetch(ctx context.Context, id int64, at time.Time, lastError *string) error {
	query, args, err := a.db.Update("meta_api_configs").
		Set(goqu.Record{
			"last_fetch_time": at,
			"last_error":      lastError,
			"updated_at":      at,
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to record meta fetch", err)
	}
	return nil
}
