package parser

import (
	"encoding/json"
	"strings"
)

// Reply is the closed sum of shapes a model answer can take after parsing:
// the structured events envelope, the flat narration/dialogue pair, or the
// raw text fallback. Callers branch exhaustively over the three variants.
type Reply interface{ reply() }

// EventType discriminates structured reply events.
type EventType string

// Event type constants.
const (
	EventNarration EventType = "narration"
	EventDialogue  EventType = "dialogue"
)

// Event is one entry of a structured reply: narration, or dialogue with a
// speaker name.
type Event struct {
	Type EventType
	Name string
	Text string
}

// Structured is a validated schema-A document: ordered events plus 2-4
// suggested choices.
type Structured struct {
	Events  []Event
	Choices []string
}

// NarrationDialogue is the flat schema-B reply shape.
type NarrationDialogue struct {
	Narration string
	Dialogue  string
}

// RawText carries a reply that never matched any schema; shown literally.
type RawText struct {
	Text string
}

func (Structured) reply()        {}
func (NarrationDialogue) reply() {}
func (RawText) reply()           {}

// Structured converts a validated outcome's data into typed events and
// cleaned choices. Returns false when the outcome did not pass schema-A
// validation.
func (o Outcome) Structured() (Structured, bool) {
	if !o.ParseOK || !o.FormatOK || o.Data == nil {
		return Structured{}, false
	}

	var s Structured
	events, _ := o.Data["events"].([]any)
	for _, raw := range events {
		ev, _ := raw.(map[string]any)
		typ, _ := ev["type"].(string)
		text, _ := ev["text"].(string)
		name, _ := ev["name"].(string)
		s.Events = append(s.Events, Event{Type: EventType(typ), Name: strings.TrimSpace(name), Text: text})
	}

	choices, _ := o.Data["choices"].([]any)
	for _, c := range choices {
		if str, ok := c.(string); ok && strings.TrimSpace(str) != "" {
			s.Choices = append(s.Choices, strings.TrimSpace(str))
		}
	}
	return s, true
}

// Decode parses raw model output into the Reply sum: a validated structured
// document when possible, otherwise the literal text.
func Decode(raw string) Reply {
	out := Parse(raw)
	if s, ok := out.Structured(); ok {
		return s
	}
	return RawText{Text: strings.TrimSpace(raw)}
}

// ParseNarrationDialogue decodes the flat schema-B pair with best effort and
// reports whether the text decoded as JSON. On any failure the whole raw text
// becomes the dialogue and narration stays empty; this path never errors, it
// degrades.
func ParseNarrationDialogue(raw string) (NarrationDialogue, bool) {
	raw = strings.TrimSpace(raw)

	var doc struct {
		Narration string `json:"narration"`
		Dialogue  string `json:"dialogue"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &doc); err != nil {
		return NarrationDialogue{Dialogue: raw}, false
	}
	return NarrationDialogue{
		Narration: strings.TrimSpace(doc.Narration),
		Dialogue:  strings.TrimSpace(doc.Dialogue),
	}, true
}
