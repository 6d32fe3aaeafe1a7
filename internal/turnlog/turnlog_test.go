package turnlog_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Hector-302/projecto-taberna/internal/turnlog"
)

func TestFileLogger_AppendsBlocks(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "outputs", "log_partida.txt")
	l := turnlog.NewFileLogger(path, slog.New(slog.DiscardHandler))

	l.LogTurn(turnlog.Entry{
		UserInput:   "quiero cerveza",
		RawResponse: `{"narration":"x","dialogue":"y"}`,
		ParseOK:     true,
		FormatOK:    true,
	})
	l.LogTurn(turnlog.Entry{
		UserInput:   "otra",
		RawResponse: "no json",
		Error:       "json decode: algo",
	})

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	got := string(raw)

	for _, want := range []string{
		"USER: quiero cerveza",
		"PARSE_OK: true",
		"FORMAT_OK: true",
		`RAW:` + "\n" + `{"narration":"x","dialogue":"y"}`,
		"USER: otra",
		"PARSE_OK: false",
		"ERROR: json decode: algo",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("log missing %q:\n%s", want, got)
		}
	}

	// Each block header wraps its timestamp in two dash runs.
	if strings.Count(got, "-----") != 4 {
		t.Errorf("expected two block headers, log:\n%s", got)
	}
}

func TestFileLogger_UnwritablePathIsSwallowed(t *testing.T) {
	t.Parallel()

	// A directory path cannot be opened as a file; LogTurn must not panic
	// or surface the failure.
	dir := t.TempDir()
	l := turnlog.NewFileLogger(dir, slog.New(slog.DiscardHandler))
	l.LogTurn(turnlog.Entry{UserInput: "x", RawResponse: "y"})
}

func TestNop(t *testing.T) {
	t.Parallel()
	turnlog.Nop{}.LogTurn(turnlog.Entry{UserInput: "x"})
}
