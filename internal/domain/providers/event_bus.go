package providers

import (
	"context"
	"fmt"

	"github.com/zatekoja/medtourclinic/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to domain events
type EventBus interface {
	// Publish publishes an event to all subscribers of channel
	Publish(ctx context.Context, channel string, event *entities.DomainEvent) error

	// Subscribe returns a channel of events that is closed when ctx is done
	Subscribe(ctx context.Context, channel string) (<-chan *entities.DomainEvent, error)

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelTenantPrefix prefixes per-tenant channels
const EventChannelTenantPrefix = "tenant:"

// TenantChannel returns the channel carrying a tenant's lead and chat events
func TenantChannel(tenantID int64) string {
	return fmt.Sprintf("%s%d:events", EventChannelTenantPrefix, tenantID)
}
