package services

import (
	"context"
	"strings"
	"time"

	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/providers"
	"github.com/zatekoja/medtourclinic/internal/domain/repositories"
	"github.com/zatekoja/medtourclinic/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/medtourclinic/pkg/errors"
)

// InboundMessage is a message received in a patient conversation
type InboundMessage struct {
	TenantID      int64
	PatientID     int64
	Body          string
	SenderIsStaff bool
}

// ChatExchange is a stored inbound message and the bot reply, if any
type ChatExchange struct {
	Message *entities.ChatMessage `json:"message"`
	Reply   *entities.ChatMessage `json:"reply,omitempty"`
}

// ChatService stores conversation messages and lets the chatbot answer
type ChatService struct {
	messages repositories.ChatMessageRepository
	bot      *Chatbot
	events   providers.EventBus
	metrics  *observability.Metrics
	now      func() time.Time
}

// NewChatService creates a new chat service; events may be nil
func NewChatService(messages repositories.ChatMessageRepository, bot *Chatbot, events providers.EventBus, metrics *observability.Metrics) *ChatService {
	return &ChatService{
		messages: messages,
		bot:      bot,
		events:   events,
		metrics:  metrics,
		now:      time.Now,
	}
}

// HandleInbound stores msg and, when the chatbot should answer, a signed bot reply
func (s *ChatService) HandleInbound(ctx context.Context, in InboundMessage) (*ChatExchange, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, apperrors.NewValidationError("message body is required")
	}
	if in.PatientID <= 0 {
		return nil, apperrors.NewValidationError("patient_id is required")
	}

	msg := &entities.ChatMessage{
		TenantID:      in.TenantID,
		PatientID:     in.PatientID,
		Body:          body,
		SenderIsStaff: in.SenderIsStaff,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	s.publish(ctx, msg)

	exchange := &ChatExchange{Message: msg}
	if !s.bot.ShouldAutoRespond(ctx, body, in.SenderIsStaff, in.PatientID) {
		return exchange, nil
	}

	reply := s.bot.GenerateResponse(body)
	if reply.Type == entities.ChatResponseNone {
		return exchange, nil
	}

	botMsg := &entities.ChatMessage{
		TenantID:      in.TenantID,
		PatientID:     in.PatientID,
		Body:          reply.Text + s.bot.Signature(),
		SenderIsStaff: true,
		IsBot:         true,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.messages.Create(ctx, botMsg); err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Int64("patient_id", in.PatientID).Msg("failed to store bot reply")
		return exchange, nil
	}
	observability.RecordBotReply(ctx, s.metrics, string(reply.Type))
	s.publish(ctx, botMsg)

	exchange.Reply = botMsg
	return exchange, nil
}

// History returns the latest messages of a conversation
func (s *ChatService) History(ctx context.Context, tenantID, patientID int64, limit int) ([]*entities.ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.messages.ListByPatient(ctx, tenantID, patientID, limit)
}

func (s *ChatService) publish(ctx context.Context, msg *entities.ChatMessage) {
	if s.events == nil {
		return
	}
	event, err := entities.NewDomainEvent(msg.TenantID, entities.EventChatMessage, msg)
	if err != nil {
		return
	}
	if err := s.events.Publish(ctx, providers.TenantChannel(msg.TenantID), event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("failed to publish chat event")
	}
}
