package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/medtourclinic/internal/adapters/events"
	"github.com/zatekoja/medtourclinic/internal/domain/entities"
	"github.com/zatekoja/medtourclinic/internal/domain/providers"
	redisclient "github.com/zatekoja/medtourclinic/internal/infrastructure/clients/redis"
)

func newLeadEvent(t *testing.T) *entities.DomainEvent {
	t.Helper()
	event, err := entities.NewDomainEvent(7, entities.EventLeadCreated, map[string]interface{}{"lead_id": 11})
	require.NoError(t, err)
	return event
}

func receive(t *testing.T, ch <-chan *entities.DomainEvent) *entities.DomainEvent {
	t.Helper()
	select {
	case event, ok := <-ch:
		require.True(t, ok, "channel closed")
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func assertClosed(t *testing.T, ch <-chan *entities.DomainEvent) {
	t.Helper()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func busContract(t *testing.T, bus providers.EventBus) {
	channel := providers.TenantChannel(7)
	ctx, cancel := context.WithCancel(context.Background())

	first, err := bus.Subscribe(ctx, channel)
	require.NoError(t, err)
	second, err := bus.Subscribe(context.Background(), channel)
	require.NoError(t, err)
	other, err := bus.Subscribe(context.Background(), providers.TenantChannel(8))
	require.NoError(t, err)

	event := newLeadEvent(t)
	require.NoError(t, bus.Publish(context.Background(), channel, event))

	got := receive(t, first)
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, entities.EventLeadCreated, got.Type)
	assert.JSONEq(t, `{"lead_id":11}`, string(got.Payload))
	assert.Equal(t, event.ID, receive(t, second).ID)

	select {
	case e := <-other:
		t.Fatalf("unexpected event on another tenant's channel: %v", e)
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	assertClosed(t, first)

	require.NoError(t, bus.Close())
	assertClosed(t, second)
}

func TestMemoryEventBus(t *testing.T) {
	busContract(t, events.NewMemoryEventBus())
}

func TestRedisEventBus(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redisclient.NewClientFromRedis(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	defer client.Close()

	busContract(t, events.NewRedisEventBus(client))
}

func TestMemoryEventBus_SubscribeAfterClose(t *testing.T) {
	bus := events.NewMemoryEventBus()
	require.NoError(t, bus.Close())

	ch, err := bus.Subscribe(context.Background(), providers.TenantChannel(1))
	require.NoError(t, err)
	assertClosed(t, ch)
}

func TestRedisEventBus_ResubscribesAfterLastSubscriberLeaves(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redisclient.NewClientFromRedis(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	defer client.Close()
	bus := events.NewRedisEventBus(client)
	defer bus.Close()

	channel := providers.TenantChannel(7)
	ctx, cancel := context.WithCancel(context.Background())
	first, err := bus.Subscribe(ctx, channel)
	require.NoError(t, err)
	cancel()
	assertClosed(t, first)

	second, err := bus.Subscribe(context.Background(), channel)
	require.NoError(t, err)

	event := newLeadEvent(t)
	require.NoError(t, bus.Publish(context.Background(), channel, event))
	assert.Equal(t, event.ID, receive(t, second).ID)
}
