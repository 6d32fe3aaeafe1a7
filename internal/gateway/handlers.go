package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Hector-302/projecto-taberna/internal/llm"
	"github.com/Hector-302/projecto-taberna/internal/orchestrator"
	"github.com/Hector-302/projecto-taberna/internal/session"
	"github.com/Hector-302/projecto-taberna/pkg/chat"
)

// chatRequest is the POST /api/chat body.
type chatRequest struct {
	Character string `json:"character,omitempty"`
	Persona   string `json:"persona"`
	Text      string `json:"text"`
}

// turnResponse is the success body of /api/chat and /api/story.
type turnResponse struct {
	Events []chat.DisplayEvent `json:"events"`
}

// errorResponse is the body of every non-2xx answer.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handleChat runs one roleplay turn. A turn already in flight answers 409;
// a backend failure answers 502 so clients can tell the model apart from
// the gateway.
func (g *Gateway) handleChat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "text is required"})
			return
		}
		if strings.TrimSpace(req.Persona) == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "persona is required"})
			return
		}

		// A dispatched turn runs to completion even if the client hangs up;
		// only the response wait below follows the request context.
		start := time.Now()
		done, err := g.turns.Submit(context.WithoutCancel(r.Context()), orchestrator.TurnRequest{
			CharacterID: req.Character,
			PersonaID:   req.Persona,
			Text:        req.Text,
		})
		if err != nil {
			if errors.Is(err, orchestrator.ErrTurnInFlight) {
				writeJSON(w, http.StatusConflict, errorResponse{Error: "a turn is already in flight"})
				return
			}
			g.metrics.RecordTurn("chat", OutcomeError, time.Since(start))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}

		select {
		case res := <-done:
			g.metrics.RecordTurn("chat", turnOutcome(res), time.Since(start))
			if res.Outcome == orchestrator.OutcomeGuard {
				g.metrics.RecordGuardHit()
			}
			if res.ParseFailed {
				g.metrics.RecordParseFailure()
			}
			if res.Err != nil {
				status := http.StatusInternalServerError
				if llm.IsTransport(res.Err) {
					status = http.StatusBadGateway
				}
				writeJSON(w, status, errorResponse{Error: res.Err.Error()})
				return
			}
			writeJSON(w, http.StatusOK, turnResponse{Events: res.Events})
		case <-r.Context().Done():
			g.metrics.RecordTurn("chat", OutcomeError, time.Since(start))
			// 499 has no exported constant; the client is gone anyway.
			w.WriteHeader(http.StatusRequestTimeout)
		}
	}
}

func turnOutcome(res orchestrator.TurnResult) string {
	switch res.Outcome {
	case orchestrator.OutcomeGuard:
		return OutcomeGuard
	case orchestrator.OutcomeFallback:
		return OutcomeFallback
	case orchestrator.OutcomeError:
		return OutcomeError
	default:
		if res.Err != nil {
			return OutcomeError
		}
		return OutcomeOK
	}
}

// storyRequest is the POST /api/story body.
type storyRequest struct {
	Action string `json:"action"`
}

func (g *Gateway) handleStory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.story == nil {
			http.NotFound(w, r)
			return
		}
		var req storyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}
		if strings.TrimSpace(req.Action) == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "action is required"})
			return
		}

		start := time.Now()
		events, err := g.story.Step(context.WithoutCancel(r.Context()), req.Action)
		if err != nil {
			g.metrics.RecordTurn("story", OutcomeError, time.Since(start))
			status := http.StatusInternalServerError
			if llm.IsTransport(err) {
				status = http.StatusBadGateway
			}
			writeJSON(w, status, errorResponse{Error: err.Error()})
			return
		}
		g.metrics.RecordTurn("story", OutcomeOK, time.Since(start))
		writeJSON(w, http.StatusOK, turnResponse{Events: events})
	}
}

// handleReset clears all history, the "new game" action.
func (g *Gateway) handleReset() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if err := g.turns.Reset(); err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleSave writes the history to the configured save file.
func (g *Gateway) handleSave() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if err := session.SaveFile(g.turns.Store(), g.config.SavePath); err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		g.logger.Info("game saved", "path", g.config.SavePath)
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleLoad restores the history from the save file. A missing file is a
// no-op success so a fresh install behaves like a new game.
func (g *Gateway) handleLoad() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if err := session.LoadFile(g.turns.Store(), g.config.SavePath); err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		g.logger.Info("game loaded", "path", g.config.SavePath)
		w.WriteHeader(http.StatusNoContent)
	}
}

// personaEntry is one element of the GET /api/personas listing.
type personaEntry struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type personasResponse struct {
	Tavern     string         `json:"tavern"`
	Personas   []personaEntry `json:"personas"`
	Characters []personaEntry `json:"characters"`
}

func (g *Gateway) handlePersonas() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		cat := g.turns.Catalog()
		resp := personasResponse{Tavern: cat.TavernName()}
		for _, p := range cat.Personas() {
			resp.Personas = append(resp.Personas, personaEntry{ID: p.ID, DisplayName: p.DisplayName})
		}
		for _, c := range cat.Characters() {
			resp.Characters = append(resp.Characters, personaEntry{ID: c.ID, DisplayName: c.DisplayName})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (g *Gateway) handlePersonasReload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.reloader == nil {
			http.NotFound(w, r)
			return
		}
		if err := g.reloader.HandleReload(r.Context()); err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// healthResponse is the JSON response for GET /health.
type healthResponse struct {
	Status   string `json:"status"`
	Busy     bool   `json:"busy"`
	Personas int    `json:"personas"`
}

func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{
			Status:   "ok",
			Busy:     g.turns.Busy(),
			Personas: len(g.turns.Catalog().Personas()),
		})
	}
}
