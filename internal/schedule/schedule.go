// Package schedule provides a job scheduler for periodic background tasks
// such as game autosave.
package schedule

import "context"

// Job defines a periodic background task.
type Job interface {
	// Name returns a unique identifier for this job (used for logging and dedup).
	Name() string

	// Schedule returns a cron expression, 5-field or @every form
	// (e.g. "*/5 * * * *", "@every 2m").
	Schedule() string

	// Run executes the job. Implementations should check ctx.Done() for
	// graceful cancellation.
	Run(ctx context.Context) error
}
