// Package turnlog appends one observability block per chat turn to a plain
// text file. Logging must never break a turn: every failure here is swallowed.
package turnlog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Entry is one turn's worth of observability data.
type Entry struct {
	UserInput   string
	RawResponse string
	ParseOK     bool
	FormatOK    bool
	Error       string
}

// Logger appends turn entries to a file.
type Logger interface {
	LogTurn(e Entry)
}

// FileLogger writes entries to an append-only text file.
type FileLogger struct {
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// Compile-time interface check.
var _ Logger = (*FileLogger)(nil)

// NewFileLogger creates a logger writing to path, creating the parent
// directory when needed. Directory creation failure is logged and tolerated.
func NewFileLogger(path string, logger *slog.Logger) *FileLogger {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Debug("turn log directory not created", "dir", dir, "error", err)
		}
	}
	return &FileLogger{path: path, logger: logger, now: time.Now}
}

// LogTurn appends one entry. Write failures never propagate.
func (l *FileLogger) LogTurn(e Entry) {
	var b strings.Builder
	fmt.Fprintf(&b, "\n----- %s -----\n", l.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "USER: %s\n", e.UserInput)
	fmt.Fprintf(&b, "PARSE_OK: %v\n", e.ParseOK)
	fmt.Fprintf(&b, "FORMAT_OK: %v\n", e.FormatOK)
	if e.Error != "" {
		fmt.Fprintf(&b, "ERROR: %s\n", e.Error)
	}
	fmt.Fprintf(&b, "RAW:\n%s\n", e.RawResponse)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		l.logger.Debug("turn log open failed", "path", l.path, "error", err)
		return
	}
	defer f.Close() //nolint:errcheck // best-effort close
	if _, err := f.WriteString(b.String()); err != nil {
		l.logger.Debug("turn log write failed", "path", l.path, "error", err)
	}
}

// Nop discards all entries; useful default and test double.
type Nop struct{}

// LogTurn implements Logger.
func (Nop) LogTurn(Entry) {}
