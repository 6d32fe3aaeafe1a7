// Package term renders display events as a styled terminal transcript for
// the interactive play mode.
package term

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Hector-302/projecto-taberna/pkg/chat"
)

// Styles groups the lipgloss styles for each event kind.
type Styles struct {
	Narration lipgloss.Style
	Speaker   lipgloss.Style
	Player    lipgloss.Style
	Choice    lipgloss.Style
	Error     lipgloss.Style
	Raw       lipgloss.Style
}

// DefaultStyles returns the tavern palette. Speaker colors come from the
// catalog's accent colors where set; these are the fallbacks.
func DefaultStyles() Styles {
	return Styles{
		Narration: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true),
		Speaker: lipgloss.NewStyle().
			Foreground(lipgloss.Color("178")).
			Bold(true),
		Player: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1f6feb")).
			Bold(true),
		Choice: lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true),
		Raw: lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")),
	}
}

// Renderer writes styled transcript lines to an io.Writer.
type Renderer struct {
	out    io.Writer
	styles Styles

	// PlayerName marks which speaker gets the player style.
	PlayerName string
}

// Compile-time interface check.
var _ chat.Renderer = (*Renderer)(nil)

// NewRenderer creates a terminal renderer writing to out.
func NewRenderer(out io.Writer, playerName string) *Renderer {
	return &Renderer{
		out:        out,
		styles:     DefaultStyles(),
		PlayerName: playerName,
	}
}

// Render implements chat.Renderer.
func (r *Renderer) Render(ev chat.DisplayEvent) {
	fmt.Fprintln(r.out, r.Line(ev))
}

// Line formats one event as a transcript line without writing it.
func (r *Renderer) Line(ev chat.DisplayEvent) string {
	switch ev.Kind {
	case chat.EventNarration:
		return r.styles.Narration.Render(ev.Text)
	case chat.EventUser:
		return r.styles.Player.Render(ev.Speaker+":") + " " + ev.Text
	case chat.EventCharacter:
		style := r.styles.Speaker
		if ev.Speaker == r.PlayerName {
			style = r.styles.Player
		}
		return style.Render(ev.Speaker+":") + " " + ev.Text
	case chat.EventChoices:
		var b strings.Builder
		b.WriteString(r.styles.Choice.Render("Opciones:"))
		for i, c := range ev.Choices {
			b.WriteString("\n")
			b.WriteString(r.styles.Choice.Render(fmt.Sprintf("  %d. %s", i+1, c)))
		}
		return b.String()
	case chat.EventError:
		return r.styles.Error.Render(ev.Text)
	default:
		return r.styles.Raw.Render(ev.Text)
	}
}
