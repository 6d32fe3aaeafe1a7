package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
)

// Validate checks the structural validity of a Config. All problems are
// reported at once so a broken file needs one fix pass, not several.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.Addr != "" {
		if _, _, err := net.SplitHostPort(cfg.Server.Addr); err != nil {
			errs = append(errs, fmt.Errorf("config: server.addr %q: %w", cfg.Server.Addr, err))
		}
	}

	errs = append(errs, validateLLM(cfg.LLM)...)
	errs = append(errs, validateSession(cfg.Session)...)

	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validateLLM(llm LLMConfig) []error {
	var errs []error

	u, err := url.Parse(llm.BaseURL)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("config: llm.base_url %q: %w", llm.BaseURL, err))
	case u.Scheme != "http" && u.Scheme != "https":
		errs = append(errs, fmt.Errorf("config: llm.base_url %q: scheme must be http or https", llm.BaseURL))
	}

	if d, err := llm.ParsedTimeout(); err != nil {
		errs = append(errs, fmt.Errorf("config: llm.timeout %q: %w", llm.Timeout, err))
	} else if d < 0 {
		errs = append(errs, errors.New("config: llm.timeout must not be negative"))
	}
	if llm.Temperature < 0 || llm.Temperature > 2 {
		errs = append(errs, fmt.Errorf("config: llm.temperature %v out of range [0, 2]", llm.Temperature))
	}
	if llm.MaxTokens < 0 {
		errs = append(errs, errors.New("config: llm.max_tokens must not be negative"))
	}

	return errs
}

func validateSession(s SessionConfig) []error {
	var errs []error

	if s.MaxTurns < 1 {
		errs = append(errs, fmt.Errorf("config: session.max_turns must be at least 1, got %d", s.MaxTurns))
	}

	switch s.Store {
	case "memory":
	case "sqlite":
		if s.SQLitePath == "" {
			errs = append(errs, errors.New("config: session.store is \"sqlite\" but sqlite_path is empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: session.store %q (supported: \"memory\", \"sqlite\")", s.Store))
	}

	return errs
}

// ParseLevel maps a config log level string to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("config: unknown log.level %q", level)
	}
}
