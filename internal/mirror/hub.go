package mirror

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Event announces that a collection's snapshot was replaced. Revision
// increments on every replacement so clients can detect missed events.
type Event struct {
	Collection string `json:"collection"`
	Revision   uint64 `json:"revision"`
}

// Hub fans collection change events out to subscribers. Channel ids are
// random so deletion is O(1); each subscriber gets its own channel and is
// cleaned up when its context ends.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]chan Event
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]chan Event),
	}
}

// Subscribe registers a new connection. The channel is closed and removed
// when ctx is done.
func (h *Hub) Subscribe(ctx context.Context) (<-chan Event, string) {
	id := "mirror_channel_" + uuid.New().String()
	ch := make(chan Event, 16)

	h.mu.Lock()
	h.connections[id] = ch
	h.mu.Unlock()

	go h.cleanUp(ctx, id)

	return ch, id
}

func (h *Hub) cleanUp(ctx context.Context, id string) {
	<-ctx.Done()

	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.connections[id]; ok {
		delete(h.connections, id)
		close(ch)
	}
}

// Broadcast delivers an event to every subscriber. Slow subscribers with
// a full buffer miss the event; they resync from the snapshot on their
// next read.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.connections {
		select {
		case ch <- event:
		default:
		}
	}
}

// ActiveConnections reports the current subscriber count.
func (h *Hub) ActiveConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}
