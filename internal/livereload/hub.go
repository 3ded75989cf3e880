// Package livereload notifies connected browsers over WebSocket when
// templates or static files change, so pages refresh without a manual
// reload during development.
package livereload

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/velumweb/velum/internal/logging"
)

// Message is what the hub broadcasts to browsers.
type Message struct {
	Type      string    `json:"type"`
	Path      string    `json:"path,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub manages WebSocket connections and broadcasts reload messages.
// Connection registration and broadcasting run through a single
// goroutine; the clients map is only touched there.
type Hub struct {
	logger logging.Logger

	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
}

// NewHub creates a hub; call Run before accepting connections.
func NewHub(logger logging.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		logger:     logger.WithComponent("livereload"),
		register:   make(chan *websocket.Conn, 8),
		unregister: make(chan *websocket.Conn, 8),
		broadcast:  make(chan []byte, 8),
		ctx:        ctx,
		cancel:     cancel,
		clients:    make(map[*websocket.Conn]struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.Shutdown()
			return
		case <-h.ctx.Done():
			return
		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = struct{}{}
			h.mu.Unlock()
		case conn := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(h.clients))
			for conn := range h.clients {
				conns = append(conns, conn)
			}
			h.mu.RUnlock()
			for _, conn := range conns {
				writeCtx, cancel := context.WithTimeout(h.ctx, 5*time.Second)
				if err := conn.Write(writeCtx, websocket.MessageText, msg); err != nil {
					h.unregister <- conn
				}
				cancel()
			}
		}
	}
}

// NotifyReload broadcasts a reload message for a changed path.
func (h *Hub) NotifyReload(path string) {
	msg, err := json.Marshal(Message{Type: "reload", Path: path, Timestamp: time.Now()})
	if err != nil {
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		// A reload is already queued; one is enough.
	}
}

// ClientCount returns the number of connected browsers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request to a WebSocket and keeps it open until
// the browser disconnects or the hub shuts down.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		h.logger.Warn(r.Context(), err, "websocket accept failed")
		return
	}
	h.register <- conn

	// The browser never sends application messages; CloseRead keeps the
	// connection alive and signals when it drops.
	readCtx := conn.CloseRead(h.ctx)
	<-readCtx.Done()
	h.unregister <- conn
	conn.Close(websocket.StatusNormalClosure, "")
}

// Shutdown closes every connection and stops the hub.
func (h *Hub) Shutdown() {
	h.cancel()
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close(websocket.StatusServiceRestart, "server shutting down")
	}
	h.clients = make(map[*websocket.Conn]struct{})
}

// Script is the client snippet pages can include during development.
const Script = `<script>
(function () {
  var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/livereload");
  ws.onmessage = function () { location.reload(); };
})();
</script>`
