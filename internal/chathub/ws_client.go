package chathub

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"penpal/backend/internal/config"

	"github.com/gorilla/websocket"
)

// WebSocketClient веде Session поверх WebSocket-з'єднання gorilla.
type WebSocketClient struct {
	Session *Session
	Conn    *websocket.Conn
}

func NewWebSocketClient(conn *websocket.Conn, session *Session) *WebSocketClient {
	return &WebSocketClient{Session: session, Conn: conn}
}

// Run відкриває сесію та запускає 'pumps'. ctx має жити довше за HTTP-запит.
// Відхилена сесія отримує close-кадр 1008, а Run повертає причину відмови.
func (c *WebSocketClient) Run(ctx context.Context) error {
	if err := c.Session.Open(ctx); err != nil {
		if !errors.Is(err, ErrSessionState) {
			c.reject()
		}
		return err
	}

	go c.writePump()
	go c.readPump(ctx)
	return nil
}

// Close закриває сесію; writePump завершиться, коли канал Outbound закриється.
func (c *WebSocketClient) Close() {
	c.Session.Close()
}

func (c *WebSocketClient) reject() {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "")
	_ = c.Conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(config.WriteWait))
	_ = c.Conn.Close()
}

// readFrame читає один кадр. Кадр, довший за config.MaxFrameSize, дочитується
// до кінця й відкидається (oversize = true), з'єднання лишається відкритим.
func (c *WebSocketClient) readFrame() (msgType int, data []byte, oversize bool, err error) {
	msgType, r, err := c.Conn.NextReader()
	if err != nil {
		return 0, nil, false, err
	}
	data, err = io.ReadAll(io.LimitReader(r, config.MaxFrameSize+1))
	if err != nil {
		return msgType, nil, false, err
	}
	if len(data) > config.MaxFrameSize {
		if _, err := io.Copy(io.Discard, r); err != nil {
			return msgType, nil, true, err
		}
		return msgType, nil, true, nil
	}
	return msgType, data, false, nil
}

// readPump читає кадри з WebSocket і по черзі передає їх у сесію.
func (c *WebSocketClient) readPump(ctx context.Context) {
	defer func() {
		c.Session.Close()
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		msgType, message, oversize, err := c.readFrame()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("WARNING: error reading message in room %s: %v", c.Session.RoomID(), err)
			}
			return
		}
		if oversize || msgType != websocket.TextMessage {
			continue // Пропускаємо завеликий або не текстовий кадр
		}
		c.Session.HandleFrame(ctx, message)
	}
}

// writePump пише події з Outbound у WebSocket і підтримує з'єднання пінгами.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(config.PingPeriod)
	out := c.Session.Outbound()

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-out:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				// Канал закрито сесією, закриваємо з'єднання WS
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(event); err != nil {
				return
			}

			// Дописуємо те, що накопичилось у черзі, по кадру на подію
			n := len(out)
			for i := 0; i < n; i++ {
				next, ok := <-out
				if !ok {
					c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.Conn.WriteJSON(next); err != nil {
					return
				}
			}

		case <-ticker.C:
			// Надсилаємо Ping для підтримки з'єднання активним
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
