package handlers

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/escalation-service/internal/auth"
	"github.com/spec-kit/escalation-service/internal/ws"
)

// WSHandler upgrades authenticated connections onto the live notification
// channel.
type WSHandler struct {
	hub    *ws.Hub
	logger *zap.Logger
}

// NewWSHandler constructs handler.
func NewWSHandler(hub *ws.Hub, logger *zap.Logger) *WSHandler {
	return &WSHandler{hub: hub, logger: logger}
}

// Upgrade rejects plain HTTP requests on the websocket route.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// Serve runs one live connection. Auth middleware has already stored the
// user in the request locals, which fiber carries through the upgrade.
func (h *WSHandler) Serve(conn *websocket.Conn) {
	user, ok := auth.UserFromLocals(conn.Locals)
	if !ok {
		h.logger.Warn("websocket connection without authenticated user")
		_ = conn.Close()
		return
	}
	h.hub.Serve(conn, user)
}
