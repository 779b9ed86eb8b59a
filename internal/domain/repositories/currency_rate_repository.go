package repositories

import (
	"context"

	"github.com/zatekoja/medtourclinic/internal/domain/entities"
)

// CurrencyRateRepository defines the interface for stored exchange rates
type CurrencyRateRepository interface {
	// Get returns the stored rate for (tenant, base, target) or a not-found error
	Get(ctx context.Context, tenantID int64, base, target string) (*entities.CurrencyRate, error)

	// ListByTenant returns every stored rate for a tenant
	ListByTenant(ctx context.Context, tenantID int64) ([]*entities.CurrencyRate, error)

	// Upsert inserts or updates the row for (tenant, base, target).
	// A non-manual rate never overwrites a manual one; written reports whether a row changed.
	Upsert(ctx context.Context, rate *entities.CurrencyRate) (written bool, err error)
}
