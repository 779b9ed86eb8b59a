package repositories

import (
	"context"

	"github.com/zatekoja/medtourclinic/internal/domain/entities"
)

// ChatMessageRepository defines the interface for patient conversation storage
type ChatMessageRepository interface {
	// Create stores a message and sets its ID
	Create(ctx context.Context, msg *entities.ChatMessage) error

	// ListByPatient returns the latest messages of a conversation, newest first
	ListByPatient(ctx context.Context, tenantID, patientID int64, limit int) ([]*entities.ChatMessage, error)
}
