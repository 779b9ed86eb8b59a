package repositories

import (
	"context"

	"github.com/zatekoja/medtourclinic/internal/domain/entities"
)

// PriceListRepository defines the interface for a tenant's price list
type PriceListRepository interface {
	// ListByTenant returns price list items ordered by category and display order
	ListByTenant(ctx context.Context, tenantID int64, activeOnly bool) ([]*entities.PriceListItem, error)
}
