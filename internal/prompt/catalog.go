package prompt

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog is the read-only prompt store: world rules, output contract,
// personas and player characters. Construct once at startup; Load builds a
// fresh instance on reload and the owner swaps the reference atomically.
type Catalog struct {
	world         string
	contract      string
	stateReminder string
	personas      map[string]Persona
	characters    []Character
}

// Default returns a catalog holding only the compiled-in content.
func Default() *Catalog {
	return &Catalog{
		world:         defaultWorldPrompt,
		contract:      defaultOutputContract,
		stateReminder: defaultStateReminder,
		personas:      defaultPersonas(),
		characters:    defaultCharacters(),
	}
}

// WorldPrompt returns the world rules system prompt.
func (c *Catalog) WorldPrompt() string { return c.world }

// OutputContract returns the serialized reply-schema contract, sent as a
// system message.
func (c *Catalog) OutputContract() string { return c.contract }

// StateReminder returns the fixed-setting reminder for the given player name.
func (c *Catalog) StateReminder(playerName string) string {
	return expandPlayer(c.stateReminder, playerName)
}

// TavernName returns the display name of the scene.
func (c *Catalog) TavernName() string { return defaultTavernName }

// Persona looks up a persona by id, case-insensitively.
func (c *Catalog) Persona(id string) (Persona, bool) {
	p, ok := c.personas[strings.ToLower(strings.TrimSpace(id))]
	return p, ok
}

// PersonaPrompt returns the composed system prompt for a persona. A missing
// persona yields an empty prompt and false; it is never an error.
func (c *Catalog) PersonaPrompt(id string) (string, bool) {
	p, ok := c.Persona(id)
	if !ok {
		return "", false
	}
	return p.Prompt(), true
}

// Personas returns all personas in stable id order.
func (c *Catalog) Personas() []Persona {
	ids := make([]string, 0, len(c.personas))
	for id := range c.personas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Persona, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.personas[id])
	}
	return out
}

// Characters returns the player characters in catalog order.
func (c *Catalog) Characters() []Character {
	out := make([]Character, len(c.characters))
	copy(out, c.characters)
	return out
}

// ActiveCharacter resolves the selected character id, falling back to the
// first defined character when the id is unset or unknown.
func (c *Catalog) ActiveCharacter(id string) Character {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, ch := range c.characters {
		if strings.ToLower(ch.ID) == id {
			return ch
		}
	}
	return c.characters[0]
}

// overrideFile is the on-disk shape of a prompt override document.
type overrideFile struct {
	WorldPrompt    string                     `yaml:"world_prompt"`
	OutputContract string                     `yaml:"output_contract"`
	StateReminder  string                     `yaml:"state_reminder"`
	Personas       map[string]personaOverride `yaml:"personas"`
	Characters     []Character                `yaml:"characters"`
}

// personaOverride mirrors Persona but keeps examples as raw nodes so a single
// malformed entry can be dropped without rejecting the whole persona.
type personaOverride struct {
	DisplayName       string      `yaml:"display_name"`
	Description       string      `yaml:"description"`
	Objectives        []string    `yaml:"objectives"`
	ContentLimits     []string    `yaml:"content_limits"`
	Style             []string    `yaml:"style"`
	Examples          []yaml.Node `yaml:"examples"`
	Redirect          string      `yaml:"redirect"`
	RedirectNarration string      `yaml:"redirect_narration"`
	FallbackNarration string      `yaml:"fallback_narration"`
	FallbackDialogue  string      `yaml:"fallback_dialogue"`
}

// Load builds a catalog from the override file at path, merged field by field
// onto the compiled-in defaults. A missing file returns the defaults; a
// malformed document logs a diagnostic and returns the defaults. Load never
// fails.
func Load(path string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	cat := Default()
	if path == "" {
		return cat
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("prompt override file unreadable, using defaults", "path", path, "error", err)
		}
		return cat
	}

	var file overrideFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		logger.Warn("prompt override file malformed, using defaults", "path", path, "error", err)
		return cat
	}

	if s := strings.TrimSpace(file.WorldPrompt); s != "" {
		cat.world = s
	}
	if s := strings.TrimSpace(file.OutputContract); s != "" {
		cat.contract = s
	}
	if s := strings.TrimSpace(file.StateReminder); s != "" {
		cat.stateReminder = s
	}
	if len(file.Characters) > 0 {
		cat.characters = file.Characters
	}

	for id, ov := range file.Personas {
		id = strings.ToLower(strings.TrimSpace(id))
		base := cat.personas[id] // zero Persona for new ids
		base.ID = id
		if base.DisplayName == "" {
			base.DisplayName = id
		}
		cat.personas[id] = mergePersona(base, ov, logger)
	}

	return cat
}

// mergePersona overlays the provided override fields onto base. Each field
// falls back independently: an omitted field keeps the compiled-in value.
func mergePersona(base Persona, ov personaOverride, logger *slog.Logger) Persona {
	if ov.DisplayName != "" {
		base.DisplayName = ov.DisplayName
	}
	if ov.Description != "" {
		base.Description = ov.Description
	}
	if len(ov.Objectives) > 0 {
		base.Objectives = ov.Objectives
	}
	if len(ov.ContentLimits) > 0 {
		base.ContentLimits = ov.ContentLimits
	}
	if len(ov.Style) > 0 {
		base.Style = ov.Style
	}
	if len(ov.Examples) > 0 {
		base.Examples = decodeExamples(base.ID, ov.Examples, logger)
	}
	if ov.Redirect != "" {
		base.Redirect = ov.Redirect
	}
	if ov.RedirectNarration != "" {
		base.RedirectNarration = ov.RedirectNarration
	}
	if ov.FallbackNarration != "" {
		base.FallbackNarration = ov.FallbackNarration
	}
	if ov.FallbackDialogue != "" {
		base.FallbackDialogue = ov.FallbackDialogue
	}
	return base
}

// decodeExamples decodes example nodes one by one, dropping malformed entries
// with a diagnostic instead of failing the persona.
func decodeExamples(personaID string, nodes []yaml.Node, logger *slog.Logger) []Example {
	out := make([]Example, 0, len(nodes))
	for i, node := range nodes {
		var ex Example
		if err := node.Decode(&ex); err != nil {
			logger.Warn("dropping malformed persona example",
				"persona", personaID, "index", i, "error", err)
			continue
		}
		if strings.TrimSpace(ex.Narration) == "" && strings.TrimSpace(ex.Dialogue) == "" {
			logger.Warn("dropping empty persona example",
				"persona", personaID, "index", i)
			continue
		}
		out = append(out, ex)
	}
	return out
}

// Intro returns the opening narration for a fresh game.
func (c *Catalog) Intro(playerName string) string {
	return fmt.Sprintf("Entras en %s. Huele a madera humeda, guiso y lana mojada.\n"+
		"A la barra, Maela limpia vasos. En una mesa lateral, Sable observa en silencio.\n"+
		"Tu nombre es %s. Elige con quien hablar y escribe tu primera frase.",
		defaultTavernName, playerName)
}
