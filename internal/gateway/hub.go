package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/Hector-302/projecto-taberna/pkg/chat"
)

const writeTimeout = 5 * time.Second

// Hub pushes every display event to all connected WebSocket clients. It
// implements chat.Renderer so the flows can emit straight into it.
type Hub struct {
	logger  *slog.Logger
	metrics *Metrics

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// Compile-time interface check.
var _ chat.Renderer = (*Hub)(nil)

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger: logger,
		conns:  make(map[*websocket.Conn]struct{}),
	}
}

// ServeHTTP upgrades the connection and holds it until the client leaves.
// The feed is one-way; inbound frames are drained and dropped.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err)
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	n := len(h.conns)
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.ClientConnected()
	}
	h.logger.Debug("transcript client connected", "clients", n)

	// Read loop exists only to observe the close; the feed never expects
	// client frames.
	for {
		if _, _, err := conn.Read(r.Context()); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.ClientDisconnected()
	}
	_ = conn.Close(websocket.StatusNormalClosure, "")
	h.logger.Debug("transcript client disconnected")
}

// SetMetrics wires the client gauge; safe to leave unset in tests.
func (h *Hub) SetMetrics(m *Metrics) { h.metrics = m }

// Render implements chat.Renderer, fanning the event out to every client.
// A client that cannot keep up is dropped rather than allowed to stall the
// turn flow.
func (h *Hub) Render(ev chat.DisplayEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("transcript event marshal failed", "error", err)
		return
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := c.Write(ctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			h.logger.Warn("dropping slow transcript client", "error", err)
			h.mu.Lock()
			delete(h.conns, c)
			h.mu.Unlock()
			_ = c.Close(websocket.StatusPolicyViolation, "write timeout")
		}
	}
}

// CloseAll disconnects every client, used at shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.conns = make(map[*websocket.Conn]struct{})
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.Close(websocket.StatusGoingAway, "server shutting down")
	}
}
