package events

import (
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/medtourclinic/internal/domain/entities"
)

// subscriberBuffer is the per-subscriber queue; events are dropped for a full queue
const subscriberBuffer = 100

type queue chan *entities.DomainEvent

// hub fans events out to the local subscriber queues of each channel.
// A queue is closed exactly once: on unsubscribe or when the hub closes.
type hub struct {
	mu     sync.RWMutex
	queues map[string]map[queue]struct{}
	closed bool
}

func newHub() *hub {
	return &hub{queues: make(map[string]map[queue]struct{})}
}

// add registers a new queue. It returns a closed queue once the hub is closed.
func (h *hub) add(channel string) queue {
	q := make(queue, subscriberBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(q)
		return q
	}
	if h.queues[channel] == nil {
		h.queues[channel] = make(map[queue]struct{})
	}
	h.queues[channel][q] = struct{}{}
	return q
}

// remove closes q and reports whether channel has no queues left
func (h *hub) remove(channel string, q queue) (last bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.queues[channel]
	if !ok {
		return false
	}
	if _, ok := subs[q]; ok {
		delete(subs, q)
		close(q)
	}
	if len(subs) == 0 {
		delete(h.queues, channel)
		return true
	}
	return false
}

func (h *hub) deliver(channel string, event *entities.DomainEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for q := range h.queues[channel] {
		select {
		case q <- event:
		default:
			log.Warn().Str("channel", channel).Str("event_id", event.ID).Msg("subscriber queue full, event dropped")
		}
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for channel, subs := range h.queues {
		for q := range subs {
			close(q)
		}
		delete(h.queues, channel)
	}
	h.closed = true
}
