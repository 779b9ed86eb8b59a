package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DomainEventType identifies what happened
type DomainEventType string

const (
	EventLeadCreated       DomainEventType = "lead.created"
	EventLeadStatusChanged DomainEventType = "lead.status_changed"
	EventChatMessage       DomainEventType = "chat.message"
)

// DomainEvent is pushed to the event bus and forwarded to WebSocket clients
type DomainEvent struct {
	ID        string          `json:"id"`
	Type      DomainEventType `json:"type"`
	TenantID  int64           `json:"tenant_id"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewDomainEvent marshals payload into a new event
func NewDomainEvent(tenantID int64, eventType DomainEventType, payload interface{}) (*DomainEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &DomainEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		TenantID:  tenantID,
		Payload:   raw,
		Timestamp: time.Now().UTC(),
	}, nil
}
