package providers

import (
	"context"

	"github.com/zatekoja/medtourclinic/internal/domain/entities"
)

// LeadSourceProvider fetches Lead Ads submissions for a tenant's form
type LeadSourceProvider interface {
	// TestConnection checks that the form is reachable with the config's token
	TestConnection(ctx context.Context, cfg *entities.MetaAPIConfig) error

	// FetchLeads returns up to limit raw submissions
	FetchLeads(ctx context.Context, cfg *entities.MetaAPIConfig, limit int) ([]entities.MetaLead, error)
}
