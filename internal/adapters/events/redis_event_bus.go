package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/providers"
	redisclient "github.com/zatekoja/medtourclinic/internal/infrastructure/clients/redis"
)

// RedisEventBus carries tenant events between API instances over Redis
// pub/sub. Each instance holds one Redis subscription per tenant channel
// while it has local subscribers, and fans messages out through a hub.
type RedisEventBus struct {
	client *redisclient.Client
	hub    *hub

	// mu guards pubsubs and orders subscription changes against the hub
	mu      sync.Mutex
	pubsubs map[string]*redis.PubSub
}

var _ providers.EventBus = (*RedisEventBus)(nil)

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) *RedisEventBus {
	return &RedisEventBus{
		client:  client,
		hub:     newHub(),
		pubsubs: make(map[string]*redis.PubSub),
	}
}

// Publish sends event to every instance subscribed to channel
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.DomainEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.client.Client().Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish %s to %s: %w", event.Type, channel, err)
	}
	return nil
}

// Subscribe returns a channel of events that is closed when ctx is done.
// The Redis subscription is confirmed before it returns, so nothing
// published afterwards is missed.
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.DomainEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.pubsubs[channel]; !ok {
		pubsub := b.client.Client().Subscribe(context.WithoutCancel(ctx), channel)
		if _, err := pubsub.Receive(ctx); err != nil {
			_ = pubsub.Close()
			return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
		}
		b.pubsubs[channel] = pubsub
		go b.pump(channel, pubsub)
		log.Debug().Str("channel", channel).Msg("redis subscription opened")
	}

	q := b.hub.add(channel)
	go func() {
		<-ctx.Done()
		b.unsubscribe(channel, q)
	}()
	return q, nil
}

// pump decodes messages until the subscription is closed
func (b *RedisEventBus) pump(channel string, pubsub *redis.PubSub) {
	for msg := range pubsub.Channel() {
		var event entities.DomainEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("dropping undecodable event")
			continue
		}
		b.hub.deliver(channel, &event)
	}
}

// unsubscribe drops q and closes the Redis subscription with the last subscriber
func (b *RedisEventBus) unsubscribe(channel string, q queue) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.hub.remove(channel, q) {
		return
	}
	if pubsub, ok := b.pubsubs[channel]; ok {
		delete(b.pubsubs, channel)
		if err := pubsub.Close(); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("failed to close redis subscription")
		}
	}
}

// Close closes every Redis subscription and subscriber channel
func (b *RedisEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	for channel, pubsub := range b.pubsubs {
		if err := pubsub.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscription %s: %w", channel, err))
		}
		delete(b.pubsubs, channel)
	}
	b.hub.close()
	return errors.Join(errs...)
}
