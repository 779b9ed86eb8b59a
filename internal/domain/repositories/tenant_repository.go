package repositories

import (
	"context"

	"github.com/zatekoja/medtourclinic/internal/domain/entities"
)

// TenantRepository defines the interface for tenant data operations
type TenantRepository interface {
	// GetByID retrieves a tenant by ID
	GetByID(ctx context.Context, id int64) (*entities.Tenant, error)

	// ListActive retrieves all active tenants
	ListActive(ctx context.Context) ([]*entities.Tenant, error)

	// GetSettings retrieves the tenant's currency settings or a not-found error
	GetSettings(ctx context.Context, tenantID int64) (*entities.TenantSettings, error)
}
