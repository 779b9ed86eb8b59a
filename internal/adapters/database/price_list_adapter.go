package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/repositories"
	"github.com/zatekoja/medtourclinic/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/medtourclinic/pkg/errors"
)

// PriceListAdapter implements PriceListRepository
type PriceListAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.PriceListRepository = (*PriceListAdapter)(nil)

// NewPriceListAdapter creates a new price list adapter
func NewPriceListAdapter(client *postgres.Client) *PriceListAdapter {
	return &PriceListAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListByTenant returns a tenant's price list in display order
func (a *PriceListAdapter) ListByTenant(ctx context.Context, tenantID int64, activeOnly bool) ([]*entities.PriceListItem, error) {
	where := goqu.Ex{"tenant_id": tenantID}
	if activeOnly {
		where["is_active"] = true
	}

	query, args, err := a.db.From("price_list_items").
		Select(
			"id", "tenant_id", "category", "service_code", "name_tr", "name_en", "name_ar",
			"base_price", "currency", "is_active", "is_featured", "display_order", "created_at", "updated_at",
		).
		Where(where).
		Order(goqu.C("category").Asc(), goqu.C("display_order").Asc(), goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	items := []*entities.PriceListItem{}
	if err := a.client.DB().SelectContext(ctx, &items, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list price list items", err)
	}
	return items, nil
}
