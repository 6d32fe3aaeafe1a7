package orchestrator

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Hector-302/projecto-taberna/internal/llm"
	"github.com/Hector-302/projecto-taberna/internal/parser"
	"github.com/Hector-302/projecto-taberna/internal/turnlog"
	"github.com/Hector-302/projecto-taberna/pkg/chat"
)

const (
	storyTemperature = 0.7
	storyMaxTokens   = 1024
)

// StoryGrammar is a GBNF grammar pinning the interactive-story reply to the
// events/choices envelope, for backends that accept formal grammars.
const StoryGrammar = `root ::= "{" ws "\"events\"" ws ":" ws events ws "," ws "\"choices\"" ws ":" ws choices ws "}"
events ::= "[" ws (event (ws "," ws event)*)? ws "]"
event ::= narration | dialogue
narration ::= "{" ws "\"type\"" ws ":" ws "\"narration\"" ws "," ws "\"text\"" ws ":" ws string ws "}"
dialogue ::= "{" ws "\"type\"" ws ":" ws "\"dialogue\"" ws "," ws "\"name\"" ws ":" ws string ws "," ws "\"text\"" ws ":" ws string ws "}"
choices ::= "[" ws string ws "," ws string (ws "," ws string)? (ws "," ws string)? ws "]"
string ::= "\"" ([^"\\] | "\\" .)* "\""
ws ::= [ \t\n]*`

// StoryRunner drives the interactive-story flow: one prompt prefix, no
// conversation history, grammar-constrained completions parsed against the
// strict events/choices contract.
type StoryRunner struct {
	client   llm.Client
	turnLog  turnlog.Logger
	logger   *slog.Logger
	renderer chat.Renderer

	// Prefix is prepended to every user action before completion.
	Prefix string
	// Grammar constrains the backend output; empty disables the constraint.
	Grammar string
}

// NewStoryRunner creates a runner. Turn log and renderer may be nil.
func NewStoryRunner(client llm.Client, tl turnlog.Logger, renderer chat.Renderer, logger *slog.Logger) *StoryRunner {
	if tl == nil {
		tl = turnlog.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StoryRunner{
		client:   client,
		turnLog:  tl,
		logger:   logger,
		renderer: renderer,
		Grammar:  StoryGrammar,
	}
}

// SetRenderer attaches the display-event sink. Call before the first Step.
func (r *StoryRunner) SetRenderer(renderer chat.Renderer) { r.renderer = renderer }

// Step runs one story beat for the given player action and returns the
// display events: narration and dialogue in model order, then the choices.
// A reply that decodes but misses the contract is surfaced verbatim as a raw
// event rather than dropped.
func (r *StoryRunner) Step(ctx context.Context, action string) ([]chat.DisplayEvent, error) {
	prompt := action
	if r.Prefix != "" {
		prompt = r.Prefix + "\n\n" + action
	}

	raw, err := r.client.CompleteWithGrammar(ctx, prompt, r.Grammar, llm.Options{
		Temperature: storyTemperature,
		MaxTokens:   storyMaxTokens,
	})
	if err != nil {
		r.turnLog.LogTurn(turnlog.Entry{
			UserInput:   action,
			RawResponse: "[ERROR] " + err.Error(),
			Error:       err.Error(),
		})
		ev := chat.Error("Error al llamar al modelo: " + err.Error())
		r.emit(ev)
		return []chat.DisplayEvent{ev}, err
	}

	raw = strings.TrimSpace(raw)
	outcome := parser.Parse(raw)
	r.turnLog.LogTurn(turnlog.Entry{
		UserInput:   action,
		RawResponse: raw,
		ParseOK:     outcome.ParseOK,
		FormatOK:    outcome.FormatOK,
		Error:       outcome.Error,
	})

	structured, ok := outcome.Structured()
	if !ok {
		r.logger.Warn("story reply failed the contract", "error", outcome.Error)
		ev := chat.DisplayEvent{Kind: chat.EventRaw, Text: raw}
		r.emit(ev)
		return []chat.DisplayEvent{ev}, nil
	}

	var events []chat.DisplayEvent
	for _, e := range structured.Events {
		switch e.Type {
		case parser.EventNarration:
			events = append(events, chat.Narration(e.Text))
		case parser.EventDialogue:
			events = append(events, chat.Dialogue(e.Name, e.Text))
		}
	}
	events = append(events, chat.DisplayEvent{Kind: chat.EventChoices, Choices: structured.Choices})
	for _, ev := range events {
		r.emit(ev)
	}
	return events, nil
}

func (r *StoryRunner) emit(ev chat.DisplayEvent) {
	if r.renderer != nil {
		r.renderer.Render(ev)
	}
}
