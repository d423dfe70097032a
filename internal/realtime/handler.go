package realtime

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/authctx"
	"github.com/ahmetcoskunkizilkaya/coachdesk/internal/dto"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	pingInterval = 25 * time.Second
	writeTimeout = 10 * time.Second
	localUserID  = "realtime_user_id"
)

// RequireUpgrade runs after JWT middleware and copies the caller ID into
// locals the websocket handler can read.
func RequireUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return c.Status(fiber.StatusUpgradeRequired).JSON(dto.ErrorResponse{
				Error: true, Message: "Websocket upgrade required",
			})
		}
		userID, err := authctx.GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}
		c.Locals(localUserID, userID)
		return c.Next()
	}
}

// Serve streams hub events for the connected user until the socket closes.
func (h *Hub) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals(localUserID).(uuid.UUID)
		if !ok {
			_ = conn.Close()
			return
		}

		client := h.Register(userID)
		slog.Debug("realtime client connected", "user_id", userID.String())

		go writePump(conn, client)

		// Inbound frames are ignored; the read loop only detects disconnects.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		h.Unregister(client)
		slog.Debug("realtime client disconnected", "user_id", userID.String())
	})
}

func writePump(conn *websocket.Conn, client *Client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.Messages():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
