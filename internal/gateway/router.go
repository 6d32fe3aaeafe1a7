package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Public — no auth required.
	r.Get("/health", g.handleHealth())
	r.Get("/metrics", promhttp.HandlerFor(g.metrics.Registry(), promhttp.HandlerOpts{}).ServeHTTP)

	// Transcript WebSocket — read-only event feed, no auth.
	r.Get("/ws", g.hub.ServeHTTP)

	// Game API — bearer auth when a token is configured.
	r.Group(func(r chi.Router) {
		if g.config.AuthToken != "" {
			r.Use(authMiddleware(g.config.AuthToken))
		}
		r.Route("/api", func(r chi.Router) {
			r.Post("/chat", g.handleChat())
			r.Post("/story", g.handleStory())
			r.Post("/reset", g.handleReset())
			r.Post("/save", g.handleSave())
			r.Post("/load", g.handleLoad())
			r.Get("/personas", g.handlePersonas())
			r.Post("/personas/reload", g.handlePersonasReload())
		})
	})

	return r
}
