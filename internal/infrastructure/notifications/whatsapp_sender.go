package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/zatekoja/medtourclinic/internal/domain/providers"
	"github.com/zatekoja/medtourclinic/pkg/config"
	apperrors "github.com/zatekoja/medtourclinic/pkg/errors"
)

// WhatsAppCloudSender sends messages via WhatsApp Cloud API
type WhatsAppCloudSender struct {
	phoneNumberID string
	client        *resty.Client
}

var _ providers.NotificationSender = (*WhatsAppCloudSender)(nil)

// NewWhatsAppCloudSender creates a new WhatsApp sender
func NewWhatsAppCloudSender(cfg *config.WhatsAppConfig) (*WhatsAppCloudSender, error) {
	if !cfg.WhatsAppEnabled() {
		return nil, fmt.Errorf("WHATSAPP_ACCESS_TOKEN and WHATSAPP_PHONE_NUMBER_ID must be set")
	}

	return &WhatsAppCloudSender{
		phoneNumberID: cfg.PhoneNumberID,
		client: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(30*time.Second).
			SetAuthToken(cfg.AccessToken).
			SetHeader("Content-Type", "application/json"),
	}, nil
}

// whatsAppTextMessage is the Cloud API payload for a text message
type whatsAppTextMessage struct {
	MessagingProduct string `json:"messaging_product"`
	RecipientType    string `json:"recipient_type"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		PreviewURL bool   `json:"preview_url"`
		Body       string `json:"body"`
	} `json:"text"`
}

// whatsAppResponse is the Cloud API send response
type whatsAppResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type whatsAppError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SendText sends a text message and returns its WhatsApp message id
func (w *WhatsAppCloudSender) SendText(ctx context.Context, to, body string) (string, error) {
	if to == "" {
		return "", apperrors.NewValidationError("recipient phone is required")
	}

	message := whatsAppTextMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
	}
	message.Text.Body = body

	var result whatsAppResponse
	var failure whatsAppError
	resp, err := w.client.R().
		SetContext(ctx).
		SetPathParam("phone", w.phoneNumberID).
		SetBody(message).
		SetResult(&result).
		SetError(&failure).
		Post("/{phone}/messages")
	if err != nil {
		return "", apperrors.NewExternalError("whatsapp request failed", err)
	}
	if resp.IsError() {
		msg := failure.Error.Message
		if msg == "" {
			msg = resp.String()
		}
		return "", apperrors.NewExternalError(fmt.Sprintf("whatsapp api error (status %d)", resp.StatusCode()), fmt.Errorf("%s", msg))
	}
	if len(result.Messages) == 0 {
		return "", apperrors.NewExternalError("whatsapp api returned no message id", nil)
	}
	return result.Messages[0].ID, nil
}
