package feed

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vocality-nexus/vocal-mirror/logging"
)

const writeTimeout = 10 * time.Second

// Handler upgrades GET requests to websocket connections and registers them
// with the hub.
type Handler struct {
	Hub    *Hub
	Logger logging.Logger
}

// NewHandler creates a websocket handler for the hub
func NewHandler(hub *Hub) *Handler {
	return &Handler{
		Hub: hub,
		Logger: logging.WithFields(logging.Fields{
			"component": "feed_handler",
		}),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, clientQueueSize),
	}
	if !h.Hub.add(c) {
		conn.Close()
		return
	}
	h.Logger.Debug("client connected", logging.Fields{"remote": conn.RemoteAddr().String()})

	go h.writeLoop(c)
	go h.readLoop(c)
}

// writeLoop drains the client queue until it closes
func (h *Handler) writeLoop(c *client) {
	defer c.conn.Close()
	for payload := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.Hub.remove(c)
			return
		}
	}
}

// readLoop discards inbound messages and detects disconnects
func (h *Handler) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.Hub.remove(c)
			return
		}
	}
}
