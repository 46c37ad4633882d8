package events

import (
	"context"
	"log/slog"
	"sync"

	"juriscope/internal/logging"
)

const (
	hubQueueSize       = 256
	subscriberCapacity = 32
)

// Hub is an in-process Bus feeding live subscribers such as the SSE endpoint.
// Publish never blocks; events are dropped when the queue or a subscriber is full.
type Hub struct {
	logger *slog.Logger
	in     chan Event

	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logging.OrDefault(logger),
		in:     make(chan Event, hubQueueSize),
		subs:   map[int]chan Event{},
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (h *Hub) Start() {
	go h.run()
}

// Stop ends delivery and closes every subscriber channel.
func (h *Hub) Stop() {
	h.once.Do(func() {
		close(h.stop)
		<-h.done
	})
}

func (h *Hub) Publish(ctx context.Context, e Event) {
	select {
	case <-h.stop:
	case h.in <- e:
	default:
		h.logger.Warn("event hub queue full, dropping event", "type", e.Type, "entity_id", e.EntityID)
	}
}

// Subscribe returns a channel of future events and a cancel func.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan Event, subscriberCapacity)
	h.subs[id] = ch
	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
}

func (h *Hub) run() {
	defer close(h.done)
	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			for id, c := range h.subs {
				delete(h.subs, id)
				close(c)
			}
			h.mu.Unlock()
			return
		case e := <-h.in:
			h.broadcast(e)
		}
	}
}

func (h *Hub) broadcast(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.subs {
		select {
		case c <- e:
		default:
			h.logger.Warn("slow event subscriber, dropping event", "subscriber", id, "type", e.Type)
		}
	}
}
