package schedule

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Hector-302/projecto-taberna/internal/session"
)

// AutosaveJob periodically writes the conversation history to the save file.
type AutosaveJob struct {
	Store        session.Store
	Path         string
	Logger       *slog.Logger
	ScheduleExpr string // empty = default "@every 2m"
}

// Compile-time interface check.
var _ Job = (*AutosaveJob)(nil)

// Name implements Job.
func (j *AutosaveJob) Name() string { return "autosave" }

// Schedule implements Job.
func (j *AutosaveJob) Schedule() string {
	if j.ScheduleExpr != "" {
		return j.ScheduleExpr
	}
	return "@every 2m"
}

// Run writes the current history snapshot to disk.
func (j *AutosaveJob) Run(ctx context.Context) error {
	if ctx.Err() != nil {
		return fmt.Errorf("schedule: autosave cancelled: %w", ctx.Err())
	}
	if err := session.SaveFile(j.Store, j.Path); err != nil {
		return fmt.Errorf("schedule: autosave: %w", err)
	}
	j.Logger.Debug("schedule: game autosaved", "path", j.Path)
	return nil
}
