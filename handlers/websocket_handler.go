package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/karting-league/middleware"
	"github.com/Dosada05/karting-league/realtime"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler accepts upgrades from allowedOrigins; "*" allows any.
func NewWebSocketHandler(hub *realtime.Hub, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

// ServeNotifications streams the caller's tier movement notifications.
// Clients connect to /ws/notifications?token=<jwt>.
func (h *WebSocketHandler) ServeNotifications(w http.ResponseWriter, r *http.Request) {
	profileID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.WarnContext(r.Context(), "websocket upgrade failed", slog.Int("profile_id", profileID), slog.Any("error", err))
		return
	}
	if _, err := h.hub.Attach(conn, profileID); err != nil {
		slog.WarnContext(r.Context(), "websocket rejected", slog.Int("profile_id", profileID), slog.Any("error", err))
		conn.Close()
	}
}
