package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Hector-302/projecto-taberna/internal/config"
	"github.com/Hector-302/projecto-taberna/internal/guard"
	"github.com/Hector-302/projecto-taberna/internal/llm"
	"github.com/Hector-302/projecto-taberna/internal/orchestrator"
	"github.com/Hector-302/projecto-taberna/internal/prompt"
	"github.com/Hector-302/projecto-taberna/internal/session"
	"github.com/Hector-302/projecto-taberna/internal/turnlog"
	"github.com/Hector-302/projecto-taberna/pkg/chat"
)

// game bundles the assembled flows and their shared state.
type game struct {
	cfg     *config.Config
	logger  *slog.Logger
	catalog *prompt.Catalog
	store   session.Store
	orch    *orchestrator.Orchestrator
	story   *orchestrator.StoryRunner

	// closeStore releases the SQLite handle when one is open.
	closeStore func() error
}

// buildGame wires the full turn pipeline from the config. The renderer may
// be nil; the gateway attaches its WebSocket hub, play mode its terminal
// renderer.
func buildGame(cfg *config.Config, logger *slog.Logger, renderer chat.Renderer) (*game, error) {
	catalog := prompt.Load(cfg.Prompts.Path, logger)

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	timeout, err := cfg.LLM.ParsedTimeout()
	if err != nil {
		return nil, fmt.Errorf("llm timeout: %w", err)
	}
	client := llm.NewHTTPClient(llm.Config{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Timeout: timeout,
	})

	var tl turnlog.Logger = turnlog.Nop{}
	if cfg.Log.TurnLogPath != "" {
		tl = turnlog.NewFileLogger(cfg.Log.TurnLogPath, logger)
	}

	g := guard.New(cfg.Guard.Triggers, cfg.Guard.Forbidden)

	orch := orchestrator.New(catalog, store, g, client, tl, renderer, logger, orchestrator.Config{
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		CharacterID: cfg.Player.Character,
	})

	story := orchestrator.NewStoryRunner(client, tl, renderer, logger)
	if cfg.Prompts.StoryPromptPath != "" {
		raw, err := os.ReadFile(cfg.Prompts.StoryPromptPath)
		if err != nil {
			logger.Warn("story prompt file unreadable, using none", "path", cfg.Prompts.StoryPromptPath, "error", err)
		} else {
			story.Prefix = string(raw)
		}
	}
	if cfg.LLM.GrammarFile != "" {
		raw, err := os.ReadFile(cfg.LLM.GrammarFile)
		if err != nil {
			logger.Warn("grammar file unreadable, using built-in", "path", cfg.LLM.GrammarFile, "error", err)
		} else {
			story.Grammar = string(raw)
		}
	}

	return &game{
		cfg:        cfg,
		logger:     logger,
		catalog:    catalog,
		store:      store,
		orch:       orch,
		story:      story,
		closeStore: closeStore,
	}, nil
}

// openStore builds the configured history backend. The memory store resumes
// from the save file; SQLite carries its own persistence.
func openStore(cfg *config.Config, logger *slog.Logger) (session.Store, func() error, error) {
	switch cfg.Session.Store {
	case "sqlite":
		st, err := session.OpenSQLiteStore(cfg.Session.SQLitePath, cfg.Session.MaxTurns)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		logger.Info("history store opened", "backend", "sqlite", "path", cfg.Session.SQLitePath)
		return st, st.Close, nil
	default:
		st := session.NewMemoryStore(cfg.Session.MaxTurns)
		if err := session.LoadFile(st, cfg.Session.SavePath); err != nil {
			logger.Warn("save file unreadable, starting fresh", "path", cfg.Session.SavePath, "error", err)
		}
		return st, func() error { return nil }, nil
	}
}

// close saves the game (memory backend) and releases resources.
func (g *game) close() {
	if _, ok := g.store.(*session.MemoryStore); ok {
		if err := session.SaveFile(g.store, g.cfg.Session.SavePath); err != nil {
			g.logger.Error("saving game on shutdown failed", "error", err)
		}
	}
	if err := g.closeStore(); err != nil {
		g.logger.Error("closing history store failed", "error", err)
	}
}
