// Package progress carries live pipeline updates from a running job to
// connected browsers.
package progress

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Event is one progress update from a pipeline run. Done and Total are
// record counters within the current stage; Total is 0 while unknown.
type Event struct {
	JobID   string    `json:"job_id"`
	Stage   string    `json:"stage"`
	Message string    `json:"message"`
	Done    int       `json:"done"`
	Total   int       `json:"total"`
	Time    time.Time `json:"time"`
}

// Hub fans events out to all connected websocket clients. Register,
// Unregister and the broadcast queue are serviced by Run; start it in its
// own goroutine before accepting connections.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mutex      sync.RWMutex
}

// NewHub returns a hub ready for Run.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

// Run services the hub until the context is cancelled, then closes every
// remaining client connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			slog.Info("Progress client connected", "total", total)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			total := len(h.clients)
			h.mutex.Unlock()
			slog.Info("Progress client disconnected", "total", total)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					slog.Warn("Failed to send progress event", "error", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Register adds a client connection to the hub.
func (h *Hub) Register(client *websocket.Conn) {
	h.register <- client
}

// Unregister removes a client connection and closes it.
func (h *Hub) Unregister(client *websocket.Conn) {
	h.unregister <- client
}

// Publish queues an event for broadcast. Events are dropped rather than
// blocking the pipeline when the hub is not draining.
func (h *Hub) Publish(event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal progress event", "error", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		slog.Debug("Dropped progress event")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
