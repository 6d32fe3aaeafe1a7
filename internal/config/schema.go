// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for taberna.
package config

import "time"

// Config is the top-level configuration structure.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	LLM     LLMConfig     `yaml:"llm"`
	Session SessionConfig `yaml:"session"`
	Prompts PromptsConfig `yaml:"prompts"`
	Guard   GuardConfig   `yaml:"guard"`
	Log     LogConfig     `yaml:"log"`
	Player  PlayerConfig  `yaml:"player"`
}

// ServerConfig controls the HTTP gateway.
type ServerConfig struct {
	// Addr is the listen address, host:port.
	Addr string `yaml:"addr"`

	// AuthToken, when set, is required as a Bearer token on /api routes.
	AuthToken string `yaml:"auth_token"`
}

// LLMConfig points at the OpenAI-compatible completion backend.
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`

	// Timeout is the response-header timeout as a duration string, e.g. "60s".
	Timeout string `yaml:"timeout"`

	// Temperature and MaxTokens apply to roleplay turns; story mode uses
	// its own fixed settings.
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`

	// GrammarFile optionally replaces the built-in story grammar.
	GrammarFile string `yaml:"grammar_file"`
}

// ParsedTimeout parses Timeout as a time.Duration.
func (c LLMConfig) ParsedTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Timeout)
}

// SessionConfig controls conversation history and persistence.
type SessionConfig struct {
	// MaxTurns bounds remembered exchanges per conversation; the store keeps
	// at most twice this many messages.
	MaxTurns int `yaml:"max_turns"`

	// SavePath is the JSON save file written by /api/save and autosave.
	SavePath string `yaml:"save_path"`

	// Autosave is a cron expression for periodic saves; empty disables it.
	Autosave string `yaml:"autosave"`

	// Store selects the history backend: "memory" or "sqlite".
	Store string `yaml:"store"`

	// SQLitePath is the database file; required when store is "sqlite".
	SQLitePath string `yaml:"sqlite_path"`
}

// PromptsConfig points at optional catalog override files.
type PromptsConfig struct {
	// Path is the persona override file, watched for hot reload.
	Path string `yaml:"path"`

	// StoryPromptPath optionally replaces the story-mode prompt prefix.
	StoryPromptPath string `yaml:"story_prompt_path"`
}

// GuardConfig replaces the built-in word lists when non-empty.
type GuardConfig struct {
	Triggers  []string `yaml:"triggers"`
	Forbidden []string `yaml:"forbidden"`
}

// LogConfig controls application and turn logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// TurnLogPath is the per-turn exchange log; empty disables it.
	TurnLogPath string `yaml:"turn_log_path"`
}

// PlayerConfig selects the active player character.
type PlayerConfig struct {
	// Character is a character id from the catalog; empty picks the first.
	Character string `yaml:"character"`
}

// Default returns a configuration with all defaults applied, the same
// values an absent config file would produce.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8787"
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "http://localhost:10000/v1"
	}
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = "local"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "anything"
	}
	if c.LLM.Timeout == "" {
		c.LLM.Timeout = "60s"
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.45
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 220
	}
	if c.Session.MaxTurns == 0 {
		c.Session.MaxTurns = 12
	}
	if c.Session.SavePath == "" {
		c.Session.SavePath = "savegame.json"
	}
	if c.Session.Store == "" {
		c.Session.Store = "memory"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.TurnLogPath == "" {
		c.Log.TurnLogPath = "outputs/log_partida.txt"
	}
}
