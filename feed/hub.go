// Package feed publishes live session events (frames, progress, renders)
// to websocket clients. Slow clients are dropped rather than back-pressuring
// the capture session.
package feed

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vocality-nexus/vocal-mirror/logging"
	"github.com/vocality-nexus/vocal-mirror/mirror"
)

// Event is one message published to connected clients
type Event struct {
	Type     string                `json:"type"` // "frame" | "progress" | "render"
	Frame    *mirror.FeatureFrame  `json:"frame,omitempty"`
	Progress *mirror.ProgressState `json:"progress,omitempty"`
	Render   *mirror.RenderModel   `json:"render,omitempty"`
}

// clientQueueSize is the per-client outbound buffer; a client that falls
// this far behind is disconnected.
const clientQueueSize = 16

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Hub fans events out to websocket clients
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
	logger  logging.Logger
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		logger: logging.WithFields(logging.Fields{
			"component": "feed_hub",
		}),
	}
}

// Publish marshals the event once and queues it to every client. Clients
// with full queues are dropped.
func (h *Hub) Publish(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.logger.Warn("event marshal failed", logging.Fields{"error": err.Error()})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			delete(h.clients, c)
			c.close()
			h.logger.Debug("slow client dropped")
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and rejects future registrations
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
}
