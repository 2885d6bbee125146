package websocket

import (
	"encoding/json"
	"sync"

	"rag-chat-be/internal/pkg/logger"
	"rag-chat-be/pkg/events"
)

// Hub fans indexing events out to every connected client. Connections are
// anonymous progress watchers, so there is no per-user routing.
type Hub struct {
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]struct{}),
		logger:     log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"id": client.ID})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"id": client.ID})
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastEvent sends an event envelope to all connected clients. Slow
// clients are skipped rather than blocking the hub.
func (h *Hub) BroadcastEvent(event events.Event) {
	data, err := json.Marshal(map[string]interface{}{
		"type": event.EventType(),
		"data": event.Payload(),
		"at":   event.Timestamp(),
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode event", map[string]interface{}{"error": err.Error()})
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Dropping event for slow client", map[string]interface{}{"id": client.ID})
		}
	}
}
