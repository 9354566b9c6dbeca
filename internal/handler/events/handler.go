package events

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/darlyn-ai/darlyn/backend/internal/events"
)

// Handler 事件推送的WebSocket处理器：把 loading 状态和瞬时通知推给前端。
type Handler struct {
	hub      *events.Hub
	upgrader websocket.Upgrader
}

// New 创建事件处理器
func New(hub *events.Hub) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册事件相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/events", h.handleEvents)
}

func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[events] upgrade failed: %v", err)
		return
	}

	ch := h.hub.Subscribe()
	defer func() {
		h.hub.Unsubscribe(ch)
		conn.Close()
	}()

	// Discard inbound frames; the read loop only detects disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("[events] write failed: %v", err)
				return
			}
		}
	}
}
