package repositories

import (
	"context"
	"time"

	"github.com/zatekoja/medtourclinic/internal/domain/entities"
)

// LeadRepository defines the interface for lead data operations
type LeadRepository interface {
	// Create stores a new lead and sets its ID
	Create(ctx context.Context, lead *entities.Lead) error

	// GetByID retrieves a tenant's lead
	GetByID(ctx context.Context, tenantID, id int64) (*entities.Lead, error)

	// ExistsBySourceID reports whether a lead with the external source id is stored
	ExistsBySourceID(ctx context.Context, sourceID string) (bool, error)

	// List retrieves a tenant's leads, newest first
	List(ctx context.Context, tenantID int64, filter LeadFilter) ([]*entities.Lead, error)

	// UpdateStatus sets a lead's status
	UpdateStatus(ctx context.Context, tenantID, id int64, status entities.LeadStatus) error

	// Assign sets the assigned staff member and status
	Assign(ctx context.Context, tenantID, id, userID int64, status entities.LeadStatus) error

	// CountByStatus counts a tenant's leads per status created at or after since
	CountByStatus(ctx context.Context, tenantID int64, since time.Time) (map[entities.LeadStatus]int, error)
}

// LeadFilter defines filters for listing leads
type LeadFilter struct {
	Status entities.LeadStatus
	Source entities.LeadSource
	Since  *time.Time
	Limit  int
	Offset int
}

// LeadInteractionRepository defines the interface for lead contact history
type LeadInteractionRepository interface {
	// Create stores an interaction and sets its ID
	Create(ctx context.Context, interaction *entities.LeadInteraction) error

	// ListByLead returns a lead's interactions, newest first
	ListByLead(ctx context.Context, leadID int64) ([]*entities.LeadInteraction, error)

	// ListByTenant returns the interactions of a tenant's leads, oldest first.
	// A non-nil since keeps only leads created at or after it.
	ListByTenant(ctx context.Context, tenantID int64, since *time.Time) ([]*entities.LeadInteraction, error)
}
