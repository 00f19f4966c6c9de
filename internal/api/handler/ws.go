package handler

import (
	"errors"
	"log"
	"net/http"

	"penpal/backend/internal/api/middleware"
	"penpal/backend/internal/chathub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Дозволяє з'єднання з будь-якого домену; доступ визначає токен.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket оновлює HTTP-з'єднання до WebSocket і під'єднує його до кімнати.
// Upgrade приймається завжди; неавторизованого клієнта потім закриваємо з кодом 1008.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	roomID := c.Param("room_id")
	identity := middleware.CurrentIdentity(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WARNING: Failed to upgrade connection for room %s: %v", roomID, err)
		return
	}

	session := chathub.NewSession(roomID, identity, h.Registry, h.Store)
	client := chathub.NewWebSocketClient(conn, session)
	if err := client.Run(h.ctx); err != nil {
		switch {
		case errors.Is(err, chathub.ErrUnauthenticated):
			log.Printf("INFO: Rejected unauthenticated socket for room %s.", roomID)
		default:
			log.Printf("INFO: Rejected socket of %s for room %s: %v", identity.UserID, roomID, err)
		}
	}
}
