package store

import (
	"context"

	"github.com/sgurin/geosync/models"
)

// RunRepository archives finished pipeline runs for later triage. Archival
// is best-effort: callers treat failures as warnings, never as run failures.
type RunRepository interface {
	// SaveRun persists one finished run.
	SaveRun(ctx context.Context, record models.RunRecord) error

	// RecentRuns returns up to n archived runs, newest first.
	RecentRuns(ctx context.Context, n int) ([]models.RunRecord, error)

	// FindRun retrieves one archived run by its ID, or [ErrRunNotFound].
	FindRun(ctx context.Context, runID string) (models.RunRecord, error)

	// Prune deletes everything but the keep most recent runs and reports
	// how many rows were removed.
	Prune(ctx context.Context, keep int) (int64, error)
}
