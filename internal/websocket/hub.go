package websocket

import (
	"context"
	"log/slog"

	"storefront-gateway/internal/observability"
)

// PushMessage is a payload addressed to every connection of one session.
type PushMessage struct {
	SessionID string
	Message   []byte
}

// Hub tracks active notification connections keyed by session ID. A
// session can hold several connections at once (multiple browser tabs);
// every push is delivered to all of them.
type Hub struct {
	clients map[string]map[*Client]bool

	push       chan *PushMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		push:       make(chan *PushMessage, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run(ctx context.Context) error {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			slog.Info("hub shutting down gracefully")
			return ctx.Err()

		case client := <-h.register:
			if h.clients[client.sessionID] == nil {
				h.clients[client.sessionID] = make(map[*Client]bool)
			}
			h.clients[client.sessionID][client] = true
			observability.NotificationConnectionsActive.Inc()
			slog.Info("notification client registered",
				slog.String("session_id", client.sessionID))

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.push:
			if clients, ok := h.clients[message.SessionID]; ok {
				for client := range clients {
					select {
					case client.send <- message.Message:
					default:
						// Client's send buffer is full, close connection
						h.closeClientSend(client)
						delete(clients, client)
					}
				}
			}
		}
	}
}

// unregisterClient safely removes a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.clients[client.sessionID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			h.closeClientSend(client)
			observability.NotificationConnectionsActive.Dec()
			slog.Info("notification client unregistered",
				slog.String("session_id", client.sessionID))

			if len(clients) == 0 {
				delete(h.clients, client.sessionID)
			}
		}
	}
}

// closeClientSend safely closes a client's send channel
func (h *Hub) closeClientSend(client *Client) {
	select {
	case <-client.send:
		// Channel already closed
	default:
		close(client.send)
	}
}

// shutdown performs graceful cleanup of all connections
func (h *Hub) shutdown() {
	close(h.done)

	for sessionID, clients := range h.clients {
		for client := range clients {
			h.closeClientSend(client)
			slog.Info("closed notification connection",
				slog.String("session_id", sessionID))
		}
	}

	slog.Info("hub shutdown complete")
}

// Push delivers a message to every connection of the given session.
func (h *Hub) Push(sessionID string, message []byte) {
	h.push <- &PushMessage{
		SessionID: sessionID,
		Message:   message,
	}
}

// Register registers a client with the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}
