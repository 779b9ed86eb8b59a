package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// LeadStatus represents the pipeline status of a lead
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusAssigned  LeadStatus = "assigned"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusRejected  LeadStatus = "rejected"
)

// LeadStatuses lists every status in funnel order
var LeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusAssigned,
	LeadStatusContacted,
	LeadStatusConverted,
	LeadStatusRejected,
}

// ParseLeadStatus validates a status string
func ParseLeadStatus(s string) (LeadStatus, bool) {
	for _, st := range LeadStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// CanTransitionTo reports whether a lead may move from s to next.
// Any status may move to any other; staff reopen rejected leads.
func (s LeadStatus) CanTransitionTo(next LeadStatus) bool {
	_, ok := ParseLeadStatus(string(next))
	return ok
}

// LeadSource is where a lead was captured
type LeadSource string

const (
	LeadSourceFacebook  LeadSource = "facebook"
	LeadSourceWebsite   LeadSource = "website"
	LeadSourceInstagram LeadSource = "instagram"
	LeadSourceManual    LeadSource = "manual"
)

// FormData holds captured form fields. Only the service intent keys are scored;
// other keys pass through unscored.
type FormData map[string]string

// ServiceIntentKeys are the form keys that indicate an interest in a treatment
var ServiceIntentKeys = []string{"interested_service", "service", "procedure", "treatment"}

// HasServiceIntent reports whether any service intent key has a value
func (f FormData) HasServiceIntent() bool {
	for _, k := range ServiceIntentKeys {
		if f[k] != "" {
			return true
		}
	}
	return false
}

// FilledCount counts entries with a non-empty value
func (f FormData) FilledCount() int {
	n := 0
	for _, v := range f {
		if v != "" {
			n++
		}
	}
	return n
}

// Value stores FormData as JSONB
func (f FormData) Value() (driver.Value, error) {
	if f == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(f)
}

// Scan reads FormData from a JSONB column
func (f *FormData) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*f = FormData{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("form_data: unsupported type %T", src)
	}
	out := FormData{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("form_data: %w", err)
	}
	*f = out
	return nil
}

// Lead is a prospective patient captured from an ad form, the website or staff
type Lead struct {
	ID              int64      `json:"id" db:"id"`
	TenantID        int64      `json:"tenant_id" db:"tenant_id"`
	Source          LeadSource `json:"source" db:"source"`
	SourceID        *string    `json:"source_id,omitempty" db:"source_id"`
	FirstName       string     `json:"first_name" db:"first_name"`
	LastName        string     `json:"last_name" db:"last_name"`
	Email           string     `json:"email" db:"email"`
	Phone           string     `json:"phone" db:"phone"`
	FormData        FormData   `json:"form_data" db:"form_data"`
	Status          LeadStatus `json:"status" db:"status"`
	AssignedTo      *int64     `json:"assigned_to,omitempty" db:"assigned_to"`
	Notes           string     `json:"notes" db:"notes"`
	SourceCreatedAt *time.Time `json:"source_created_at,omitempty" db:"source_created_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// FullName joins first and last name
func (l *Lead) FullName() string {
	return strings.TrimSpace(l.FirstName + " " + l.LastName)
}

// ScoredLead pairs a lead with its quality score
type ScoredLead struct {
	Lead  *Lead  `json:"lead"`
	Score int    `json:"score"`
	Level string `json:"level"`
	Color string `json:"color"`
}
