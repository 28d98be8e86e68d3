// Package monitor streams delivered items to operators over websockets.
package monitor

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/crystaldolphin/conversebank/internal/delivery"
	"github.com/crystaldolphin/conversebank/internal/messenger"
)

const (
	writeWait  = 5 * time.Second
	clientSize = 64
)

// Event describes one delivered item.
type Event struct {
	Sender  string                 `json:"sender"`
	Index   int                    `json:"index"`
	Kind    string                 `json:"kind"`
	Action  messenger.SenderAction `json:"action,omitempty"`
	Payload json.RawMessage        `json:"payload,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans events out to connected websocket clients. Slow clients drop
// events rather than block delivery.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Observe adapts the hub to a delivery observer.
func (h *Hub) Observe(recipient string, index int, item delivery.Item) {
	ev := Event{Sender: recipient, Index: index, Action: item.Action}
	if !item.Message.IsZero() {
		ev.Kind = string(item.Message.Kind())
		if data, err := json.Marshal(item.Message); err == nil {
			ev.Payload = data
		}
	} else {
		ev.Kind = "sender_action"
	}
	h.Broadcast(ev)
}

// Broadcast sends ev to every connected client.
func (h *Hub) Broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Warn("monitor: marshal event", "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slog.Debug("monitor: client too slow, event dropped")
		}
	}
}

// ServeHTTP upgrades the request and streams events until the client
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("monitor: upgrade failed", "err", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientSize)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	slog.Info("monitor: client connected", "remote", r.RemoteAddr)

	done := make(chan struct{})
	go h.readLoop(c, done)
	h.writeLoop(c, done)

	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	_ = conn.Close()
	slog.Info("monitor: client disconnected", "remote", r.RemoteAddr)
}

// readLoop discards client frames and closes done when the peer goes away.
func (h *Hub) readLoop(c *client, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client, done <-chan struct{}) {
	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
