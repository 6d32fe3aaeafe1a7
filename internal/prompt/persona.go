// Package prompt holds the static prompt catalog: the world rules, the
// output-format contract, the persona (NPC) entries, and the player
// characters. A Catalog is immutable after construction; reloads build a new
// one and callers swap it atomically.
package prompt

import "strings"

// Example is a worked narration/dialogue pair shown to the model.
type Example struct {
	Narration string `yaml:"narration"`
	Dialogue  string `yaml:"dialogue"`
}

// Persona is the entity the user converses with. Structured fields compose
// into the persona system prompt; the redirect and fallback texts feed the
// guard short-circuit and the forbidden-term substitution.
type Persona struct {
	ID            string    `yaml:"-"`
	DisplayName   string    `yaml:"display_name"`
	Description   string    `yaml:"description"`
	Objectives    []string  `yaml:"objectives"`
	ContentLimits []string  `yaml:"content_limits"`
	Style         []string  `yaml:"style"`
	Examples      []Example `yaml:"examples"`

	// Redirect is the deterministic in-character refusal used when the guard
	// fires. {player} expands to the active character's display name.
	Redirect string `yaml:"redirect"`
	// RedirectNarration is the narrator line shown next to the redirect.
	RedirectNarration string `yaml:"redirect_narration"`
	// FallbackNarration and FallbackDialogue replace model output that is
	// empty or contains forbidden terms.
	FallbackNarration string `yaml:"fallback_narration"`
	FallbackDialogue  string `yaml:"fallback_dialogue"`
}

// Character is the in-fiction identity the human user portrays.
type Character struct {
	ID            string `yaml:"id"`
	DisplayName   string `yaml:"display_name"`
	AccentColor   string `yaml:"accent_color"`
	BehaviorRules string `yaml:"behavior_rules"`
}

// RedirectReply renders the persona's refusal for the given player name.
func (p Persona) RedirectReply(playerName string) string {
	return expandPlayer(p.Redirect, playerName)
}

// Prompt composes the persona system prompt: description, objectives,
// content limits, style, then worked examples. Empty sections are omitted
// entirely; sections are joined by a blank line.
func (p Persona) Prompt() string {
	var sections []string

	if d := strings.TrimSpace(p.Description); d != "" {
		sections = append(sections, d)
	}
	if s := bulletSection("OBJETIVOS", p.Objectives); s != "" {
		sections = append(sections, s)
	}
	if s := bulletSection("LIMITES DE CONTENIDO", p.ContentLimits); s != "" {
		sections = append(sections, s)
	}
	if s := bulletSection("ESTILO", p.Style); s != "" {
		sections = append(sections, s)
	}
	if s := exampleSection(p.Examples); s != "" {
		sections = append(sections, s)
	}

	return strings.TrimSpace(strings.Join(sections, "\n\n"))
}

func bulletSection(header string, items []string) string {
	var lines []string
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			lines = append(lines, "- "+it)
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return header + "\n" + strings.Join(lines, "\n")
}

func exampleSection(examples []Example) string {
	var lines []string
	for _, ex := range examples {
		n := strings.TrimSpace(ex.Narration)
		d := strings.TrimSpace(ex.Dialogue)
		if n == "" && d == "" {
			continue
		}
		if n != "" {
			lines = append(lines, "Narracion: "+n)
		}
		if d != "" {
			lines = append(lines, "Dialogo: "+d)
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "EJEMPLOS\n" + strings.Join(lines, "\n")
}

func expandPlayer(text, playerName string) string {
	return strings.ReplaceAll(text, "{player}", playerName)
}
