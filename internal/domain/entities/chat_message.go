package entities

import "time"

// ChatMessage is a message in a patient conversation
type ChatMessage struct {
	ID            int64     `json:"id" db:"id"`
	TenantID      int64     `json:"tenant_id" db:"tenant_id"`
	PatientID     int64     `json:"patient_id" db:"patient_id"`
	Body          string    `json:"body" db:"body"`
	SenderIsStaff bool      `json:"sender_is_staff" db:"sender_is_staff"`
	IsBot         bool      `json:"is_bot" db:"is_bot"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// ChatResponseType says how a bot reply was produced
type ChatResponseType string

const (
	ChatResponseKeyword ChatResponseType = "keyword"
	ChatResponseFAQ     ChatResponseType = "faq"
	ChatResponseNone    ChatResponseType = "none"
)

// ChatReply is the outcome of the chatbot for one inbound message
type ChatReply struct {
	Type   ChatResponseType `json:"type"`
	Intent string           `json:"intent,omitempty"`
	Text   string           `json:"text,omitempty"`
}
