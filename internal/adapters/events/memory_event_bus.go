package events

import (
	"context"

	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/providers"
)

// MemoryEventBus is an in-process EventBus for single-instance deployments
type MemoryEventBus struct {
	hub *hub
}

var _ providers.EventBus = (*MemoryEventBus)(nil)

// NewMemoryEventBus creates a new in-memory event bus
func NewMemoryEventBus() *MemoryEventBus {
	return &MemoryEventBus{hub: newHub()}
}

// Publish delivers event to the current subscribers of channel without blocking
func (b *MemoryEventBus) Publish(_ context.Context, channel string, event *entities.DomainEvent) error {
	b.hub.deliver(channel, event)
	return nil
}

// Subscribe returns a channel of events that is closed when ctx is done
func (b *MemoryEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.DomainEvent, error) {
	q := b.hub.add(channel)
	go func() {
		<-ctx.Done()
		b.hub.remove(channel, q)
	}()
	return q, nil
}

// Close closes every subscriber channel
func (b *MemoryEventBus) Close() error {
	b.hub.close()
	return nil
}
