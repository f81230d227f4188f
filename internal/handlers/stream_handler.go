package handlers

import (
	"net/http"

	"github.com/anonto42/minired/backend/internal/notifications"
	"github.com/anonto42/minired/backend/internal/presence"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is token-authenticated; origin checks belong to the proxy
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamHandler serves the per-user notification push stream
type StreamHandler struct {
	hub      *notifications.Hub
	presence *presence.Tracker
}

// NewStreamHandler creates a new StreamHandler
func NewStreamHandler(hub *notifications.Hub, tracker *presence.Tracker) *StreamHandler {
	return &StreamHandler{hub: hub, presence: tracker}
}

// RegisterStreamRoutes registers the notification stream route
func (h *StreamHandler) RegisterStreamRoutes(g *echo.Group) {
	g.GET("/notifications/stream", h.StreamNotifications)
}

// StreamNotifications registers the connection with the hub; the hub's
// Redis subscriber delivers new notifications as they are emitted.
func (h *StreamHandler) StreamNotifications(c echo.Context) error {
	actor, err := actorFromContext(c)
	if err != nil {
		return err
	}

	conn, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := h.hub.Register(actor.UID, conn); err != nil {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()))
		return nil
	}
	defer h.hub.Unregister(actor.UID, conn)

	// Block on the read loop; client frames double as activity signals
	ctx := c.Request().Context()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
		h.presence.Touch(ctx, actor.UID)
	}
}
