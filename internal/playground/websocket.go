package playground

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // spectators may connect from any page
	},
}

// WSConnection streams session broadcasts to one spectator and accepts
// commands from it
type WSConnection struct {
	conn        *websocket.Conn
	send        <-chan []byte
	unsubscribe func()
	session     *Session
}

// Command is a message from a spectator. Player and Action drive a player
// that has no bot.
type Command struct {
	Type   string `json:"type"`
	Player int    `json:"player"`
	Action string `json:"action"`
}

// handleWebSocket handles WebSocket connections
func (s *PlaygroundServer) handleWebSocket(c *gin.Context) {
	if s.session == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no live session"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	send, unsubscribe := s.session.Subscribe()
	wsConn := &WSConnection{
		conn:        conn,
		send:        send,
		unsubscribe: unsubscribe,
		session:     s.session,
	}

	// The current frame goes out first so a new spectator sees the kitchen
	// before the next tick
	if data, err := json.Marshal(s.session.Frame()); err == nil {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			unsubscribe()
			conn.Close()
			return
		}
	}

	go wsConn.writePump()
	go wsConn.readPump()
}

// readPump pumps messages from the WebSocket connection to the handler
func (c *WSConnection) readPump() {
	defer func() {
		c.unsubscribe()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(64 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the session to the WebSocket connection
func (c *WSConnection) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes incoming commands
func (c *WSConnection) handleMessage(message []byte) {
	var cmd Command
	if err := json.Unmarshal(message, &cmd); err != nil {
		log.Printf("Error unmarshaling message: %v", err)
		return
	}

	switch cmd.Type {
	case "reset":
		if err := c.session.Reset(); err != nil {
			c.session.Broadcast(gin.H{"type": "error", "error": err.Error()})
		}
	case "action":
		if err := c.session.Interact(cmd.Player, cmd.Action); err != nil {
			c.session.Broadcast(gin.H{"type": "error", "error": err.Error(), "player": cmd.Player})
		}
	default:
		log.Printf("Unknown command type %q", cmd.Type)
	}
}
