package events

import (
	"sync"
	"time"
)

// noticeTTL is how long a transient failure notice stays up before the hub
// pushes the matching clear event.
const noticeTTL = 5 * time.Second

// Event is one UI-facing push message.
type Event struct {
	Type    string `json:"type"`
	Value   bool   `json:"value,omitempty"`
	Level   string `json:"level,omitempty"`
	Message string `json:"message,omitempty"`
}

// Hub fans events out to connected clients. Slow clients drop events rather
// than stall the broadcaster.
type Hub struct {
	mu      sync.Mutex
	clients map[chan Event]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[chan Event]struct{})}
}

// Subscribe registers a client and returns its buffered event channel.
func (h *Hub) Subscribe() chan Event {
	ch := make(chan Event, 16)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (h *Hub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// Broadcast delivers an event to every connected client.
func (h *Hub) Broadcast(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.clients {
		select {
		case ch <- event:
		default:
			// Client is not keeping up; drop rather than block.
		}
	}
}

// LoadingChanged implements conversation.Notifier.
func (h *Hub) LoadingChanged(loading bool) {
	h.Broadcast(Event{Type: "loading", Value: loading})
}

// Notice implements conversation.Notifier. The notice auto-clears after a
// fixed delay; the timer runs to completion harmlessly even when every client
// has already dismissed it.
func (h *Hub) Notice(message string) {
	h.Broadcast(Event{Type: "notice", Level: "error", Message: message})
	time.AfterFunc(noticeTTL, func() {
		h.Broadcast(Event{Type: "notice_cleared"})
	})
}
