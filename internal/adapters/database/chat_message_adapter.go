package database

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/repositories"
	"github.com/zatekoja/medtourclinic/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/medtourclinic/pkg/errors"
)

// ChatMessageAdapter implements ChatMessageRepository
type ChatMessageAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.ChatMessageRepository = (*ChatMessageAdapter)(nil)

// NewChatMessageAdapter creates a new chat message adapter
func NewChatMessageAdapter(client *postgres.Client) *ChatMessageAdapter {
	return &ChatMessageAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a message and sets its ID
func (a *ChatMessageAdapter) Create(ctx context.Context, msg *entities.ChatMessage) error {
	if msg == nil {
		return apperrors.NewInternalError("message is nil", fmt.Errorf("message is nil"))
	}

	query, args, err := a.db.Insert("chat_messages").
		Rows(goqu.Record{
			"tenant_id":       msg.TenantID,
			"patient_id":      msg.PatientID,
			"body":            msg.Body,
			"sender_is_staff": msg.SenderIsStaff,
			"is_bot":          msg.IsBot,
			"created_at":      msg.CreatedAt,
		}).
		Returning("id").
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if err := a.client.DB().QueryRowxContext(ctx, query, args...).Scan(&msg.ID); err != nil {
		return apperrors.NewInternalError("failed to create chat message", err)
	}
	return nil
}

// ListByPatient returns the latest messages of a conversation, newest first
func (a *ChatMessageAdapter) ListByPatient(ctx context.Context, tenantID, patientID int64, limit int) ([]*entities.ChatMessage, error) {
	query, args, err := a.db.From("chat_messages").
		Select("id", "tenant_id", "patient_id", "body", "sender_is_staff", "is_bot", "created_at").
		Where(goqu.Ex{"tenant_id": tenantID, "patient_id": patientID}).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	messages := []*entities.ChatMessage{}
	if err := a.client.DB().SelectContext(ctx, &messages, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list chat messages", err)
	}
	return messages, nil
}
