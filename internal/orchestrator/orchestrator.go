// Package orchestrator coordinates a chat turn: prompt assembly, the guard
// short-circuit, the backend round trip, reply post-processing, history
// updates and display-event emission.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/Hector-302/projecto-taberna/internal/guard"
	"github.com/Hector-302/projecto-taberna/internal/llm"
	"github.com/Hector-302/projecto-taberna/internal/parser"
	"github.com/Hector-302/projecto-taberna/internal/prompt"
	"github.com/Hector-302/projecto-taberna/internal/session"
	"github.com/Hector-302/projecto-taberna/internal/turnlog"
	"github.com/Hector-302/projecto-taberna/pkg/chat"
)

// ErrTurnInFlight is returned by Submit while a previous turn is still
// waiting on the backend. Exactly one round trip may be outstanding.
var ErrTurnInFlight = errors.New("orchestrator: a turn is already in flight")

const (
	defaultTemperature  = 0.45
	defaultMaxTokens    = 220
	defaultMaxNarration = 180
)

// Config tunes the turn flow.
type Config struct {
	// Temperature and MaxTokens are passed to the completion backend.
	Temperature float64
	MaxTokens   int
	// MaxNarration caps narration length in runes; longer text is cut and
	// suffixed with an ellipsis. Defaults to 180.
	MaxNarration int
	// CharacterID selects the active player character; empty falls back to
	// the catalog's first character.
	CharacterID string
}

func (c Config) withDefaults() Config {
	if c.Temperature == 0 {
		c.Temperature = defaultTemperature
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = defaultMaxTokens
	}
	if c.MaxNarration == 0 {
		c.MaxNarration = defaultMaxNarration
	}
	return c
}

// TurnRequest is one user submission.
type TurnRequest struct {
	// CharacterID optionally overrides the configured player character.
	CharacterID string
	// PersonaID names the NPC being addressed.
	PersonaID string
	// Text is the player's utterance.
	Text string
}

// Outcome classifies how a turn resolved.
type Outcome string

const (
	// OutcomeReply is a model reply delivered as-is.
	OutcomeReply Outcome = "reply"
	// OutcomeGuard is a local redirect; the backend was never called.
	OutcomeGuard Outcome = "guard"
	// OutcomeFallback means the reply was replaced by the persona's canned
	// texts, either world-breaking output or empty dialogue.
	OutcomeFallback Outcome = "fallback"
	// OutcomeError is a transport or storage failure.
	OutcomeError Outcome = "error"
)

// TurnResult delivers the outcome of one turn: the reply display events, or
// the transport failure that aborted it.
type TurnResult struct {
	Events  []chat.DisplayEvent
	Outcome Outcome
	// ParseFailed marks a reply that did not match the JSON contract and
	// was treated as literal dialogue.
	ParseFailed bool
	Err         error
}

// Orchestrator drives the per-turn state machine: Idle, then AwaitingReply
// while the backend call is outstanding, then Idle again. The guard path
// completes synchronously and is back to Idle before Submit returns.
type Orchestrator struct {
	store   session.Store
	guard   *guard.Guard
	client  llm.Client
	turnLog turnlog.Logger
	logger  *slog.Logger
	config  Config

	// renderer receives every display event as it is applied; may be nil.
	renderer chat.Renderer

	mu      sync.Mutex
	catalog *prompt.Catalog
	busy    bool
}

// New creates an orchestrator. Catalog, store, guard and client are required;
// renderer and turn log may be nil.
func New(catalog *prompt.Catalog, store session.Store, g *guard.Guard, client llm.Client,
	tl turnlog.Logger, renderer chat.Renderer, logger *slog.Logger, cfg Config) *Orchestrator {
	if tl == nil {
		tl = turnlog.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:    store,
		guard:    g,
		client:   client,
		turnLog:  tl,
		logger:   logger,
		config:   cfg.withDefaults(),
		renderer: renderer,
		catalog:  catalog,
	}
}

// SetRenderer attaches the display-event sink. Call before the first Submit;
// the renderer is read without locking on the turn path.
func (o *Orchestrator) SetRenderer(r chat.Renderer) { o.renderer = r }

// Busy reports whether a turn is awaiting its backend reply. The input
// surface queries this to disable itself.
func (o *Orchestrator) Busy() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.busy
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	o.busy = false
	o.mu.Unlock()
}

// SetCatalog swaps in a freshly loaded prompt catalog. The swap is atomic;
// an in-flight turn keeps the catalog it started with.
func (o *Orchestrator) SetCatalog(c *prompt.Catalog) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.catalog = c
}

// Catalog returns the current prompt catalog.
func (o *Orchestrator) Catalog() *prompt.Catalog {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.catalog
}

// Reset clears all conversation history (the "new game" action).
func (o *Orchestrator) Reset() error {
	return o.store.Reset()
}

// Store exposes the conversation store for persistence operations.
func (o *Orchestrator) Store() session.Store { return o.store }

// Submit runs one turn. The returned channel (capacity 1) delivers the
// result; the guard path delivers immediately, the network path after the
// backend answers. ErrTurnInFlight is returned while a turn is outstanding.
func (o *Orchestrator) Submit(ctx context.Context, req TurnRequest) (<-chan TurnResult, error) {
	// The slot is claimed under the same lock as the check so two racing
	// Submits can never both dispatch. Every non-dispatching exit below
	// must release it.
	o.mu.Lock()
	if o.busy {
		o.mu.Unlock()
		return nil, ErrTurnInFlight
	}
	o.busy = true
	cat := o.catalog
	o.mu.Unlock()

	character := cat.ActiveCharacter(firstNonEmpty(req.CharacterID, o.config.CharacterID))
	persona, ok := cat.Persona(req.PersonaID)
	if !ok {
		o.logger.Warn("persona not in catalog, proceeding with empty prompt", "persona", req.PersonaID)
		persona = prompt.Persona{
			ID:          strings.ToLower(strings.TrimSpace(req.PersonaID)),
			DisplayName: strings.TrimSpace(req.PersonaID),
		}
	}
	key := chat.ConversationKey{CharacterID: character.ID, PersonaID: persona.ID}

	// History snapshot is taken before the new user message so the outbound
	// list carries it exactly once, at the end.
	history, err := o.store.Snapshot(key)
	if err != nil {
		o.release()
		return nil, err
	}
	if err := o.store.AppendUser(key, req.Text); err != nil {
		o.release()
		return nil, err
	}
	o.emit(chat.DisplayEvent{Kind: chat.EventUser, Speaker: character.DisplayName, Text: req.Text})

	done := make(chan TurnResult, 1)

	// Guard short-circuit: a local reply, no network call, straight back to
	// Idle. The redirect is recorded as assistant history; the synthetic
	// narration is not.
	if o.guard.IsOutOfWorld(req.Text) {
		defer o.release()
		reply := persona.RedirectReply(character.DisplayName)
		if reply == "" {
			reply = expandDefaultRedirect(character.DisplayName)
		}
		if err := o.store.AppendAssistant(key, reply); err != nil {
			return nil, err
		}

		events := []chat.DisplayEvent{
			chat.Narration(firstNonEmpty(persona.RedirectNarration, defaultRedirectNarration)),
			chat.Dialogue(persona.DisplayName, reply),
		}
		for _, ev := range events {
			o.emit(ev)
		}
		done <- TurnResult{Events: events, Outcome: OutcomeGuard}
		return done, nil
	}

	messages := o.buildMessages(cat, character, persona, history, req.Text)

	// The backend call runs off the caller's path; the result is marshaled
	// back through finish, the single mutation path for this turn.
	go func() {
		raw, err := o.client.Complete(ctx, messages, llm.Options{
			Temperature: o.config.Temperature,
			MaxTokens:   o.config.MaxTokens,
		})
		done <- o.finish(key, persona, req.Text, raw, err)
	}()

	return done, nil
}

// buildMessages assembles the outbound conversation in contract order:
// player rules, world rules, state reminder, output contract, persona prompt,
// history, then the new user message.
func (o *Orchestrator) buildMessages(cat *prompt.Catalog, character prompt.Character,
	persona prompt.Persona, history []chat.Message, userText string) []llm.Message {

	var out []llm.Message
	system := func(content string) {
		if strings.TrimSpace(content) != "" {
			out = append(out, llm.Message{Role: string(chat.RoleSystem), Content: content})
		}
	}

	system(character.BehaviorRules)
	system(cat.WorldPrompt())
	system(cat.StateReminder(character.DisplayName))
	system(cat.OutputContract())
	system(persona.Prompt())

	for _, m := range history {
		out = append(out, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	return append(out, llm.Message{Role: string(chat.RoleUser), Content: userText})
}

// finish post-processes the backend reply and applies it: history and display
// events move together, or not at all on the failure path.
func (o *Orchestrator) finish(key chat.ConversationKey, persona prompt.Persona,
	userText, raw string, err error) TurnResult {

	defer o.release()

	if err != nil {
		o.turnLog.LogTurn(turnlog.Entry{
			UserInput:   userText,
			RawResponse: "[ERROR] " + err.Error(),
			Error:       err.Error(),
		})
		ev := chat.Error("Error al llamar al modelo: " + err.Error())
		o.emit(ev)
		return TurnResult{Events: []chat.DisplayEvent{ev}, Outcome: OutcomeError, Err: err}
	}

	raw = strings.TrimSpace(raw)
	reply, parsedJSON := parser.ParseNarrationDialogue(raw)

	var diagnostic string
	if !parsedJSON {
		diagnostic = "reply treated as literal dialogue"
	}

	// Post-network forbidden-term checkpoint: world-breaking output and
	// empty dialogue both collapse to the persona's canned fallback.
	outcome := OutcomeReply
	if o.guard.HasForbidden(reply.Narration+"\n"+reply.Dialogue) || reply.Dialogue == "" {
		reply.Narration = firstNonEmpty(persona.FallbackNarration, defaultFallbackNarration)
		reply.Dialogue = firstNonEmpty(persona.FallbackDialogue, defaultFallbackDialogue)
		outcome = OutcomeFallback
	}

	reply.Narration = truncateNarration(reply.Narration, o.config.MaxNarration)

	o.turnLog.LogTurn(turnlog.Entry{
		UserInput:   userText,
		RawResponse: raw,
		ParseOK:     parsedJSON,
		FormatOK:    parsedJSON && reply.Dialogue != "",
		Error:       diagnostic,
	})

	// Only the spoken dialogue enters history; narration is cosmetic and
	// must not contaminate future prompt context.
	if err := o.store.AppendAssistant(key, reply.Dialogue); err != nil {
		ev := chat.Error("No se pudo guardar el turno: " + err.Error())
		o.emit(ev)
		return TurnResult{Events: []chat.DisplayEvent{ev}, Outcome: OutcomeError, Err: err}
	}

	var events []chat.DisplayEvent
	if reply.Narration != "" {
		events = append(events, chat.Narration(reply.Narration))
	}
	events = append(events, chat.Dialogue(persona.DisplayName, reply.Dialogue))
	for _, ev := range events {
		o.emit(ev)
	}
	return TurnResult{Events: events, Outcome: outcome, ParseFailed: !parsedJSON}
}

func (o *Orchestrator) emit(ev chat.DisplayEvent) {
	if o.renderer != nil {
		o.renderer.Render(ev)
	}
}

// truncateNarration cuts narration to at most max runes, marking the cut
// with an ellipsis.
func truncateNarration(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimRight(string(runes[:max-3]), " ") + "..."
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Generic texts for personas that carry no canned replies of their own.
const (
	defaultRedirectNarration = "El murmullo de la sala tapa el resto."
	defaultFallbackNarration = "La conversacion se queda en la mesa un momento."
	defaultFallbackDialogue  = "Aqui se habla de comida, cama, trabajo o rumores. Elige."
)

func expandDefaultRedirect(playerName string) string {
	return "\"Aqui dentro, " + playerName + ", se habla de cosas de la taberna. Lo demas no existe.\""
}
