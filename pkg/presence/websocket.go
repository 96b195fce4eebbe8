package presence

import (
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketConnection is a [Connection] writing JSON messages to a websocket. Only the registry
// writes to it, reading is left to the owner of the websocket.
type WebSocketConnection struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
}

func NewWebSocketConnection(conn *websocket.Conn, writeTimeout time.Duration) *WebSocketConnection {
	return &WebSocketConnection{
		conn:         conn,
		writeTimeout: writeTimeout,
	}
}

func (c *WebSocketConnection) Send(payload any) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(payload)
}

func (c *WebSocketConnection) Close() error {
	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(time.Second))
	return c.conn.Close()
}
