package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"storefront-gateway/internal/middleware"
	"storefront-gateway/internal/observability"
	ws "storefront-gateway/internal/websocket"
)

// NotificationHandler upgrades authenticated requests to the push stream
// that carries toast notifications for the session.
type NotificationHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

func NewNotificationHandler(hub *ws.Hub, allowedOrigins []string) *NotificationHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	wildcard := false
	for _, origin := range allowedOrigins {
		if origin == "*" {
			wildcard = true
		}
		allowed[origin] = true
	}

	return &NotificationHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if wildcard {
					return true
				}
				origin := r.Header.Get("Origin")
				// Non-browser clients send no Origin header.
				return origin == "" || allowed[origin]
			},
		},
	}
}

// Connect handles GET /ws/notifications.
func (h *NotificationHandler) Connect(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		observability.FromContext(r.Context()).Warn("websocket upgrade failed",
			"session_id", session.ID, "error", err)
		return
	}

	// The request context ends when this handler returns; the client
	// lifetime is bound to the connection instead.
	client := ws.NewClient(context.Background(), h.hub, conn, session.ID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
