package handler

import (
	"ereader-be/internal/pkg/logger"
	"ereader-be/internal/repository/memory"
	internalWS "ereader-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// SessionHandler upgrades viewer connections onto a reading session's
// push stream. View updates, progress and speech state flow out over the
// socket while the REST surface stays request/response.
type SessionHandler struct {
	registry *memory.SessionRegistry
	hub      *internalWS.Hub
	logger   logger.ILogger
}

func NewSessionHandler(registry *memory.SessionRegistry, hub *internalWS.Hub, log logger.ILogger) *SessionHandler {
	return &SessionHandler{
		registry: registry,
		hub:      hub,
		logger:   log,
	}
}

// ServeWs handles websocket requests from the peer.
func (h *SessionHandler) ServeWs(c *fiber.Ctx) error {
	sessionID := c.Params("sessionId")
	if _, found := h.registry.Get(sessionID); !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found or expired"})
	}
	h.registry.Touch(sessionID)

	// Upgrade via Fiber WebSocket Middleware
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("SessionHandler", "Starting WebSocket session", map[string]interface{}{"session_id": sessionID})
			internalWS.ServeWs(h.hub, conn, sessionID)
			h.logger.Info("SessionHandler", "WebSocket session ended", map[string]interface{}{"session_id": sessionID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *SessionHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/reader/v1/session/:sessionId/ws", h.ServeWs)
}
