package server

import (
	"log/slog"

	"pulse/internal/featureflags"
	"pulse/internal/middleware"
	"pulse/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RealtimeRequired rejects stream connections when the realtime feed is
// switched off for the caller, and plain HTTP requests on the stream route.
func (s *Server) RealtimeRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.featureFlags.Enabled(featureflags.RealtimeFeed, middleware.ViewerID(c)) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Feature", featureflags.RealtimeFeed))
		}
		if !websocket.IsWebSocketUpgrade(c) {
			return c.Status(fiber.StatusUpgradeRequired).JSON(models.ErrorResponse{Error: "WebSocket upgrade required"})
		}
		return c.Next()
	}
}

// WebsocketHandler streams feed events to the connected viewer. Inbound
// messages are ignored.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(string)
		if userID == "" {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			middleware.Logger.Warn("websocket register failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		go client.WritePump()

		// Read pump runs in the handler goroutine and unregisters on close
		client.ReadPump()
	})
}
