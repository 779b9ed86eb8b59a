package repositories

import (
	"context"
	"time"

	"github.com/zatekoja/medtourclinic/internal/domain/entities"
)

// MetaConfigRepository defines the interface for tenants' Lead Ads credentials
type MetaConfigRepository interface {
	// GetByTenant retrieves a tenant's config or a not-found error
	GetByTenant(ctx context.Context, tenantID int64) (*entities.MetaAPIConfig, error)

	// ListActive retrieves all active configs
	ListActive(ctx context.Context) ([]*entities.MetaAPIConfig, error)

	// RecordFetch stores the last fetch time and error (nil clears it)
	RecordFetch(ctx context.Context, id int64, at time.Time, lastError *string) error
}
