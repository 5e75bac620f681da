package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const sendBufferSize = 64

type Client struct {
	ID      string
	UserID  string
	Conn    *websocket.Conn
	Manager *Manager
	Send    chan []byte
}

func NewClient(id, userID string, conn *websocket.Conn, manager *Manager) *Client {
	return &Client{
		ID:      id,
		UserID:  userID,
		Conn:    conn,
		Manager: manager,
		Send:    make(chan []byte, sendBufferSize),
	}
}

func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.Manager.Unregister <- c:
		case <-c.Manager.Done():
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(c.Manager.maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.Manager.pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.Manager.pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Manager.log.Warn().Err(err).Str("client_id", c.ID).Msg("websocket read error")
			}
			break
		}

		select {
		case c.Manager.HandleMessage <- &ClientMessage{Client: c, Message: message}:
		case <-c.Manager.Done():
			return
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(c.Manager.pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One frame per event; clients parse each frame as a single JSON message.
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(c.Manager.writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
