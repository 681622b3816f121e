package handler

import (
	"decision-ledger-be/internal/pkg/logger"
	"decision-ledger-be/internal/pkg/serverutils"
	internalWS "decision-ledger-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type FeedHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewFeedHandler(hub *internalWS.Hub, log logger.ILogger) *FeedHandler {
	return &FeedHandler{
		hub:    hub,
		logger: log,
	}
}

func (h *FeedHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws/feed", h.ServeWs)
}

// ServeWs upgrades an authenticated request to the live decision feed of the
// token's workspace.
func (h *FeedHandler) ServeWs(c *fiber.Ctx) error {
	// Browsers cannot set headers on a websocket handshake.
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token"})
	}

	workspaceID, _, err := serverutils.ParseToken(tokenStr)
	if err != nil {
		h.logger.Warn("FEED", "Rejected websocket handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": err.Error()})
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("FEED", "Websocket session started", map[string]interface{}{"workspace_id": workspaceID.String()})
		internalWS.ServeWs(h.hub, conn, workspaceID)
		h.logger.Info("FEED", "Websocket session ended", map[string]interface{}{"workspace_id": workspaceID.String()})
	})(c)
}
