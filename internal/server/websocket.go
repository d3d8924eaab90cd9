package server

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	wshandler "github.com/windfall/vocal_service/internal/handler/ws"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
	sendBuffer     = 32
)

// WebSocketMessage represents a WebSocket message.
type WebSocketMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Client represents a WebSocket client.
type Client struct {
	ID   string
	Hub  *WebSocketHub
	Conn *websocket.Conn
	Send chan []byte
}

// WebSocketHub manages WebSocket connections.
type WebSocketHub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	upgrader   websocket.Upgrader
	mu         sync.RWMutex
	log        zerolog.Logger
}

// NewWebSocketHub creates a new WebSocket hub. Origins are checked against allowedOrigins; "*" allows any.
func NewWebSocketHub(log zerolog.Logger, allowedOrigins []string) *WebSocketHub {
	h := &WebSocketHub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(r.Header.Get("Origin"), allowedOrigins)
		},
	}
	return h
}

func originAllowed(origin string, allowed []string) bool {
	if origin == "" || len(allowed) == 0 {
		return true
	}
	return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
}

// Run starts the WebSocket hub. Cancelling ctx closes every connection.
func (h *WebSocketHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.log.Info().Msg("WebSocket hub shutting down")
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				client.Conn.Close()
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.log.Info().Str("client_id", client.ID).Msg("Client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, client)
			h.mu.Unlock()
			h.log.Info().Str("client_id", client.ID).Msg("Client disconnected")
		}
	}
}

// HandleWebSocket handles WebSocket upgrade and connection.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request, handler *wshandler.Handler) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to upgrade connection")
		return
	}

	client := &Client{
		ID:   uuid.NewString(),
		Hub:  h,
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	// The request context ends once the handler returns.
	ctx, cancel := context.WithCancel(context.Background())
	go client.writePump()
	go client.readPump(ctx, cancel, handler)
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (c *Client) readPump(ctx context.Context, cancel context.CancelFunc, handler *wshandler.Handler) {
	// readPump is the only sender on c.Send, so it owns closing it.
	defer func() {
		cancel()
		close(c.Send)
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.Warn().Err(err).Str("client_id", c.ID).Msg("WebSocket read error")
			}
			return
		}

		var msg WebSocketMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.Hub.log.Warn().Err(err).Str("client_id", c.ID).Msg("Failed to parse WebSocket message")
			continue
		}

		response, err := handler.Handle(ctx, c.ID, msg.Type, msg.Payload)
		if err != nil {
			c.Hub.log.Error().Err(err).Str("type", msg.Type).Msg("Failed to handle message")
			continue
		}

		if response != nil {
			c.Send <- response
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.Hub.log.Debug().Err(err).Str("client_id", c.ID).Msg("WebSocket write failed")
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
