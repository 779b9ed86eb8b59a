package providers

import "context"

// NotificationSender delivers a plain text message to a phone number
type NotificationSender interface {
	SendText(ctx context.Context, to, body string) (messageID string, err error)
}
