package reload

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Hector-302/projecto-taberna/internal/prompt"
)

type captureSink struct {
	mu       sync.Mutex
	catalogs []*prompt.Catalog
}

func (s *captureSink) SetCatalog(c *prompt.Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalogs = append(s.catalogs, c)
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.catalogs)
}

func (s *captureSink) last() *prompt.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.catalogs) == 0 {
		return nil
	}
	return s.catalogs[len(s.catalogs)-1]
}

func discard() *slog.Logger { return slog.New(slog.DiscardHandler) }

func TestHandleReload_SwapsCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "personas.yaml")
	content := "personas:\n  brath:\n    display_name: Brath\n    description: Herrero de paso.\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing persona file: %v", err)
	}

	sink := &captureSink{}
	h := NewHandler(sink, discard(), path)

	if err := h.HandleReload(context.Background()); err != nil {
		t.Fatalf("HandleReload: %v", err)
	}
	if sink.count() != 1 {
		t.Fatalf("sink received %d catalogs, want 1", sink.count())
	}
	if _, ok := sink.last().Persona("brath"); !ok {
		t.Error("reloaded catalog missing the new persona")
	}
}

func TestHandleReload_BrokenFileDegrades(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "personas.yaml")
	if err := os.WriteFile(path, []byte("personas: [not a map\n"), 0o644); err != nil {
		t.Fatalf("writing persona file: %v", err)
	}

	sink := &captureSink{}
	h := NewHandler(sink, discard(), path)

	// A broken file still swaps in a working (default) catalog.
	if err := h.HandleReload(context.Background()); err != nil {
		t.Fatalf("HandleReload: %v", err)
	}
	if _, ok := sink.last().Persona("maela"); !ok {
		t.Error("degraded catalog should keep the defaults")
	}
}

func TestHandleReload_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &captureSink{}
	h := NewHandler(sink, discard(), "personas.yaml")
	if err := h.HandleReload(ctx); err == nil {
		t.Fatal("expected context error")
	}
	if sink.count() != 0 {
		t.Error("cancelled reload must not swap the catalog")
	}
}

func TestRun_ReloadsOnWatcherEvent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "personas.yaml")
	if err := os.WriteFile(path, []byte("tavern_name: El Cuervo\n"), 0o644); err != nil {
		t.Fatalf("writing persona file: %v", err)
	}

	sink := &captureSink{}
	h := NewHandler(sink, discard(), path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan Event, 1)
	done := make(chan struct{})
	go func() {
		h.Run(ctx, events)
		close(done)
	}()

	events <- Event{Type: EventModified, Path: path}

	deadline := time.After(2 * time.Second)
	for sink.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("watcher event did not trigger a reload")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancel")
	}
}
