package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/medtourclinic/internal/application/services"
	"github.com/zatekoja/medtourclinic/internal/domain/entities"
)

// ChatService defines the conversation operations used by the handler.
type ChatService interface {
	HandleInbound(ctx context.Context, in services.InboundMessage) (*services.ChatExchange, error)
	History(ctx context.Context, tenantID, patientID int64, limit int) ([]*entities.ChatMessage, error)
}

// ChatHandler handles patient conversation messages
type ChatHandler struct {
	chat ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type inboundMessageRequest struct {
	PatientID     int64  `json:"patient_id" validate:"required,gt=0"`
	Body          string `json:"body" validate:"required,max=4000"`
	SenderIsStaff bool   `json:"sender_is_staff"`
}

// PostMessage handles POST /api/tenants/{tenantID}/chat/messages
func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	tenantID, err := pathID(r, "tenantID")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	var req inboundMessageRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	exchange, err := h.chat.HandleInbound(r.Context(), services.InboundMessage{
		TenantID:      tenantID,
		PatientID:     req.PatientID,
		Body:          req.Body,
		SenderIsStaff: req.SenderIsStaff,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, exchange)
}

// History handles GET /api/tenants/{tenantID}/chat/patients/{patientID}/messages
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	tenantID, err := pathID(r, "tenantID")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	patientID, err := pathID(r, "patientID")
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	messages, err := h.chat.History(r.Context(), tenantID, patientID, limit)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}
