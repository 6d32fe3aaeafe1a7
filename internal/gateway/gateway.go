// Package gateway exposes the game over HTTP: the turn and story endpoints,
// persona administration, save management, a WebSocket transcript feed,
// health and Prometheus metrics.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/Hector-302/projecto-taberna/internal/orchestrator"
	"github.com/Hector-302/projecto-taberna/internal/prompt"
	"github.com/Hector-302/projecto-taberna/internal/session"
	"github.com/Hector-302/projecto-taberna/pkg/chat"
)

// Config holds the gateway settings.
type Config struct {
	// Addr is the listen address, host:port.
	Addr string

	// AuthToken, when non-empty, is required as a Bearer token on /api routes.
	AuthToken string

	// SavePath is the target of POST /api/save.
	SavePath string

	// ShutdownTimeout bounds graceful shutdown. Defaults to 10s.
	ShutdownTimeout time.Duration
}

func (c Config) shutdownTimeoutOrDefault() time.Duration {
	if c.ShutdownTimeout > 0 {
		return c.ShutdownTimeout
	}
	return 10 * time.Second
}

// TurnRunner is the roleplay flow as the gateway needs it.
type TurnRunner interface {
	Submit(ctx context.Context, req orchestrator.TurnRequest) (<-chan orchestrator.TurnResult, error)
	Busy() bool
	Reset() error
	Catalog() *prompt.Catalog
	Store() session.Store
}

// StoryStepper is the interactive-story flow.
type StoryStepper interface {
	Step(ctx context.Context, action string) ([]chat.DisplayEvent, error)
}

// Reloader rebuilds the persona catalog on demand.
type Reloader interface {
	HandleReload(ctx context.Context) error
}

// Gateway is the HTTP server tying the flows to their routes.
type Gateway struct {
	config   Config
	logger   *slog.Logger
	turns    TurnRunner
	story    StoryStepper
	reloader Reloader
	metrics  *Metrics
	hub      *Hub
	server   *http.Server
}

// New creates a gateway. Story and reloader may be nil; their routes then
// answer 404.
func New(cfg Config, turns TurnRunner, story StoryStepper, reloader Reloader, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gateway{
		config:   cfg,
		logger:   logger,
		turns:    turns,
		story:    story,
		reloader: reloader,
		metrics:  NewMetrics(),
		hub:      NewHub(logger),
	}
	g.hub.SetMetrics(g.metrics)
	return g
}

// Hub returns the WebSocket transcript hub, a chat.Renderer the flows can
// emit display events into.
func (g *Gateway) Hub() *Hub { return g.hub }

// Metrics returns the gateway metrics for the flows to record into.
func (g *Gateway) Metrics() *Metrics { return g.metrics }

// Start binds the listener and serves in the background. A bind failure is
// returned synchronously.
func (g *Gateway) Start() error {
	g.server = &http.Server{
		Addr:         g.config.Addr,
		Handler:      g.buildRouter(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // turn responses wait on the model
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", g.config.Addr)
	if err != nil {
		return errors.New("gateway: listen failed: " + err.Error())
	}

	go func() {
		g.logger.Info("gateway listening", "addr", g.config.Addr)
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway serve error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully shuts the server down, closing transcript connections.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, g.config.shutdownTimeoutOrDefault())
	defer cancel()

	g.hub.CloseAll()
	g.logger.Info("gateway shutting down")
	return g.server.Shutdown(shutdownCtx)
}
