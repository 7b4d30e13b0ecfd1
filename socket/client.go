package socket

import (
	"encoding/json"
	"net/http"
	"time"

	"coedit/internal/gateway"
	"coedit/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CheckOrigin allows connections from the editor's dev server.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one live websocket connection.
type Client struct {
	ID       string
	Username string
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
}

func (c *Client) conn() gateway.Conn {
	return gateway.Conn{ID: c.ID, User: c.Username}
}

// ServeWs upgrades the HTTP request and registers the connection.
// username is empty when the deployment runs without identity tokens.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request, username string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Sugar.Error(err)
		return
	}

	client := &Client{
		ID:       uuid.NewString(),
		Username: username,
		Hub:      hub,
		Conn:     conn,
		Send:     make(chan []byte, 256),
	}

	client.Hub.Register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, rawMessage, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Sugar.Errorf("error: %v", err)
			}
			break
		}

		var event gateway.Event
		if err := json.Unmarshal(rawMessage, &event); err != nil {
			logger.Sugar.Errorf("Error unmarshalling event from %s: %v", c.ID, err)
			continue
		}

		// The gateway serializes per document; events from different
		// connections dispatch concurrently.
		c.Hub.gateway.HandleEvent(c.conn(), event)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second) // Send ping every 30s
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.Send:
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.Conn.WriteMessage(websocket.TextMessage, message)
		case <-ticker.C:
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return // Connection is dead
			}
		}
	}
}
