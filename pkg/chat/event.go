package chat

// EventKind discriminates the variant stored in a DisplayEvent.
type EventKind string

// Supported display event kinds.
const (
	EventUser      EventKind = "user"
	EventNarration EventKind = "narration"
	EventCharacter EventKind = "character"
	EventChoices   EventKind = "choices"
	EventRaw       EventKind = "raw"
	EventError     EventKind = "error"
)

// DisplayEvent is a normalized, presentation-free unit of transcript output.
// The core emits these; renderers decide colors, fonts and layout.
type DisplayEvent struct {
	Kind    EventKind `json:"kind"`
	Speaker string    `json:"speaker,omitempty"`
	Text    string    `json:"text,omitempty"`
	Choices []string  `json:"choices,omitempty"`
}

// Narration builds a narration event.
func Narration(text string) DisplayEvent {
	return DisplayEvent{Kind: EventNarration, Text: text}
}

// Dialogue builds a character dialogue event.
func Dialogue(speaker, text string) DisplayEvent {
	return DisplayEvent{Kind: EventCharacter, Speaker: speaker, Text: text}
}

// Error builds an error event.
func Error(text string) DisplayEvent {
	return DisplayEvent{Kind: EventError, Text: text}
}

// Renderer receives display events as they are produced. Implementations
// must not block: the core calls Render on its single mutation goroutine.
type Renderer interface {
	Render(ev DisplayEvent)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ev DisplayEvent)

// Render implements Renderer.
func (f RendererFunc) Render(ev DisplayEvent) { f(ev) }
