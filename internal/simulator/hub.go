package simulator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// wsClient is one connected push subscriber.
type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	mu   sync.Mutex
}

func newWSClient(conn *websocket.Conn) *wsClient {
	return &wsClient{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, 256),
	}
}

// writeLoop drains the send channel and keeps the connection alive.
func (c *wsClient) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.close()
			return
		case msg, ok := <-c.send:
			if !ok {
				c.close()
				return
			}
			c.mu.Lock()
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			_ = c.conn.WriteMessage(websocket.TextMessage, msg)
			c.mu.Unlock()
		case <-ticker.C:
			c.mu.Lock()
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			_ = c.conn.WriteMessage(websocket.PingMessage, []byte("ping"))
			c.mu.Unlock()
		}
	}
}

func (c *wsClient) close() {
	c.mu.Lock()
	_ = c.conn.Close()
	c.mu.Unlock()
}

func (c *wsClient) sendMessage(msg []byte) {
	select {
	case c.send <- msg:
	default:
		// Channel full, message dropped
	}
}

// Hub fans out push events to every connected subscriber.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*wsClient
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*wsClient)}
}

func (h *Hub) register(c *wsClient) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends a payload to all connected subscribers.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.RLock()
	for _, c := range h.clients {
		c.sendMessage(payload)
	}
	h.mu.RUnlock()
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
