// Package guard keeps the roleplay in world. It holds two distinct
// checkpoints over one kind of word list: the pre-network trigger check that
// short-circuits a turn before any model call, and the post-network forbidden
// check that vetoes model output after the call.
package guard

import "strings"

// DefaultTriggers are the out-of-world phrases that short-circuit a turn
// before the model is consulted.
var DefaultTriggers = []string{
	"prompt", "system", "modelo", "openai", "api", "ignora", "olvida la historia",
	"sal de la taberna", "teletransport", "internet", "gpu", "debug",
}

// DefaultForbidden are the terms that, appearing in model output, replace the
// reply with the persona's canned fallback.
var DefaultForbidden = []string{
	"guano", "parroquiano", "openai", "api", "prompt", "system", "modelo",
	"internet", "gpu", "debug",
}

// WordList matches text against a fixed vocabulary, case-insensitively and on
// substrings. The over-match is documented behavior: "I like system of a
// down" matches "system".
type WordList struct {
	words []string
}

// NewWordList builds a list from the given words; the words are lowercased
// once at construction.
func NewWordList(words []string) WordList {
	lowered := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			lowered = append(lowered, w)
		}
	}
	return WordList{words: lowered}
}

// Matches reports whether any list entry occurs in text.
func (l WordList) Matches(text string) bool {
	t := strings.ToLower(text)
	for _, w := range l.words {
		if strings.Contains(t, w) {
			return true
		}
	}
	return false
}

// Guard bundles both checkpoints. Stateless and safe for concurrent use.
type Guard struct {
	triggers  WordList
	forbidden WordList
}

// New creates a Guard. Nil slices fall back to the default vocabularies.
func New(triggers, forbidden []string) *Guard {
	if triggers == nil {
		triggers = DefaultTriggers
	}
	if forbidden == nil {
		forbidden = DefaultForbidden
	}
	return &Guard{
		triggers:  NewWordList(triggers),
		forbidden: NewWordList(forbidden),
	}
}

// IsOutOfWorld reports whether user input tries to leave the fiction.
// Runs before any network call.
func (g *Guard) IsOutOfWorld(userText string) bool {
	return g.triggers.Matches(userText)
}

// HasForbidden reports whether model output contains a world-breaking term.
// Runs after the network call, over the combined narration and dialogue.
func (g *Guard) HasForbidden(text string) bool {
	return g.forbidden.Matches(text)
}
