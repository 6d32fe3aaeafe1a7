package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taberna.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  addr: \":9000\"\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Session.MaxTurns != 12 {
		t.Errorf("max_turns default = %d, want 12", cfg.Session.MaxTurns)
	}
	if cfg.LLM.Temperature != 0.45 {
		t.Errorf("temperature default = %v, want 0.45", cfg.LLM.Temperature)
	}
	if cfg.Session.Store != "memory" {
		t.Errorf("store default = %q, want memory", cfg.Session.Store)
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("TABERNA_TEST_KEY", "sk-secret")
	cfg, err := Load(writeConfig(t, "llm:\n  api_key: ${TABERNA_TEST_KEY}\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.APIKey != "sk-secret" {
		t.Errorf("api_key = %q", cfg.LLM.APIKey)
	}
}

func TestLoad_EnvDefault(t *testing.T) {
	os.Unsetenv("TABERNA_TEST_MISSING")
	cfg, err := Load(writeConfig(t, "llm:\n  model: ${TABERNA_TEST_MISSING:-llama3}\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Model != "llama3" {
		t.Errorf("model = %q, want fallback llama3", cfg.LLM.Model)
	}
}

func TestLoad_UnresolvedVariable(t *testing.T) {
	os.Unsetenv("TABERNA_TEST_MISSING")
	_, err := Load(writeConfig(t, "llm:\n  api_key: ${TABERNA_TEST_MISSING}\n"))
	if err == nil {
		t.Fatal("expected error for unresolved variable")
	}
	if !strings.Contains(err.Error(), "TABERNA_TEST_MISSING") {
		t.Errorf("error should name the variable: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "server: [broken\n")); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestLoad_RejectsInvalidConfig(t *testing.T) {
	_, err := Load(writeConfig(t, "session:\n  store: redis\n"))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "session.store") {
		t.Errorf("error should name the bad field: %v", err)
	}
}

func TestLoad_DurationString(t *testing.T) {
	cfg, err := Load(writeConfig(t, "llm:\n  timeout: 90s\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d, err := cfg.LLM.ParsedTimeout()
	if err != nil {
		t.Fatalf("ParsedTimeout: %v", err)
	}
	if d.Seconds() != 90 {
		t.Errorf("timeout = %v, want 90s", d)
	}
}
