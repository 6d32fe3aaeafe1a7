package reload

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Hector-302/projecto-taberna/internal/prompt"
)

// CatalogSink receives freshly loaded prompt catalogs.
type CatalogSink interface {
	SetCatalog(*prompt.Catalog)
}

// Handler rebuilds the prompt catalog from the persona file and swaps it
// into the sink.
type Handler struct {
	sink   CatalogSink
	logger *slog.Logger
	path   string
}

// NewHandler creates a reload handler for the given persona file.
func NewHandler(sink CatalogSink, logger *slog.Logger, path string) *Handler {
	return &Handler{
		sink:   sink,
		logger: logger,
		path:   path,
	}
}

// HandleReload loads the persona file and swaps the resulting catalog in.
// Loading never fails outright (a broken file degrades to defaults with a
// warning), so an in-flight game survives any edit.
func (h *Handler) HandleReload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	catalog := prompt.Load(h.path, h.logger)
	h.sink.SetCatalog(catalog)

	h.logger.Info("persona catalog reloaded", "path", h.path, "personas", len(catalog.Personas()))
	return nil
}

// Run consumes watcher events and SIGHUP until the context ends, reloading
// on each. It blocks; run it on its own goroutine.
func (h *Handler) Run(ctx context.Context, events <-chan Event) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-events:
			if err := h.HandleReload(ctx); err != nil {
				h.logger.Error("persona reload failed", "error", err)
			}
		case <-hup:
			h.logger.Info("SIGHUP received, reloading personas")
			if err := h.HandleReload(ctx); err != nil {
				h.logger.Error("persona reload failed", "error", err)
			}
		}
	}
}
