package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/bandhannova07/blinders-secure-chat/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	// Generous transport limit; message content is validated separately.
	maxFrameBytes = 1 << 20
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one live websocket connection. It starts unauthenticated;
// the hub binds it to a user after a successful authenticate event.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// mu orders sends against close: fan-out goroutines may enqueue
	// while another connection's disconnect shuts this one down.
	mu     sync.Mutex
	closed bool
	send   chan []byte

	// Set by the hub during Authenticate. Zero until authenticated.
	userID uint
}

// Serve upgrades the HTTP request and runs the connection's pumps.
// Authentication happens over the socket itself, not at upgrade time.
func Serve(h *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		client := &Client{hub: h, conn: conn, send: make(chan []byte, 256)}
		metrics.WsConnections.Inc()

		go client.writePump()
		client.readPump()
	}
}

// enqueue hands an outbound frame to the write pump without blocking.
// Frames for a stalled or closed peer are dropped.
func (c *Client) enqueue(b []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

// shutdown closes the outbound channel exactly once, which ends the
// write pump and with it the connection.
func (c *Client) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Disconnect(c)
		_ = c.conn.Close()
		metrics.WsConnections.Dec()
	}()
	c.conn.SetReadLimit(maxFrameBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		c.dispatch(data)
	}
}

// dispatch decodes one inbound frame and routes it to the hub. Bad
// frames get an error event; the connection stays open.
func (c *Client) dispatch(data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.enqueue(errorEvent(CodeInvalidPayload, "malformed event"))
		return
	}

	switch env.Event {
	case EventAuthenticate:
		var d authenticateData
		if err := json.Unmarshal(env.Data, &d); err != nil || d.Token == "" {
			c.enqueue(authErrorEvent(CodeInvalidPayload, "token required"))
			return
		}
		c.hub.Authenticate(c, d.Token)
	case EventJoinRoom:
		var d roomData
		if err := json.Unmarshal(env.Data, &d); err != nil || d.RoomID == 0 {
			c.enqueue(errorEvent(CodeInvalidPayload, "room_id required"))
			return
		}
		c.hub.Join(c, d.RoomID)
	case EventLeaveRoom:
		var d roomData
		if err := json.Unmarshal(env.Data, &d); err != nil || d.RoomID == 0 {
			c.enqueue(errorEvent(CodeInvalidPayload, "room_id required"))
			return
		}
		c.hub.Leave(c, d.RoomID)
	case EventSendMessage:
		var d sendMessageData
		if err := json.Unmarshal(env.Data, &d); err != nil || d.RoomID == 0 {
			c.enqueue(errorEvent(CodeInvalidPayload, "room_id required"))
			return
		}
		c.hub.Send(c, d.RoomID, d.Content, d.MessageType)
	case EventTyping:
		var d typingData
		if err := json.Unmarshal(env.Data, &d); err != nil || d.RoomID == 0 {
			return
		}
		c.hub.Typing(c, d.RoomID, d.IsTyping)
	default:
		c.enqueue(errorEvent(CodeUnknownEvent, "unknown event: "+env.Event))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if _, err := w.Write(message); err != nil {
				log.Debug().Err(err).Msg("ws write")
			}
			_ = w.Close()
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
