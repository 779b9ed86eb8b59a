package entities

import "time"

// InteractionType is the kind of contact staff had with a lead
type InteractionType string

const (
	InteractionCalled        InteractionType = "called"
	InteractionEmailed       InteractionType = "emailed"
	InteractionSMS           InteractionType = "sms"
	InteractionNote          InteractionType = "note"
	InteractionStatusChanged InteractionType = "status_changed"
)

// IsValid reports whether t is a known interaction type
func (t InteractionType) IsValid() bool {
	switch t {
	case InteractionCalled, InteractionEmailed, InteractionSMS, InteractionNote, InteractionStatusChanged:
		return true
	}
	return false
}

// LeadInteraction is one entry in a lead's contact history
type LeadInteraction struct {
	ID          int64           `json:"id" db:"id"`
	LeadID      int64           `json:"lead_id" db:"lead_id"`
	UserID      *int64          `json:"user_id,omitempty" db:"user_id"`
	Type        InteractionType `json:"interaction_type" db:"interaction_type"`
	Description string          `json:"description" db:"description"`
	Result      string          `json:"result" db:"result"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}
