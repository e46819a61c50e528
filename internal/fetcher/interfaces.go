package fetcher

import (
	"context"
	"time"
)

// Export describes one downloaded export file.
type Export struct {
	// LocalPath is the deterministic location of the downloaded file inside
	// the run's scratch directory.
	LocalPath string

	// Name is the remote file name the export was selected under.
	Name string

	// Size is the byte size of the verified download.
	Size int64

	// FetchedAt is when the download finished.
	FetchedAt time.Time
}

// Fetcher retrieves the newest matching export file from the remote file
// server into destDir.
type Fetcher interface {
	Fetch(ctx context.Context, destDir string) (Export, error)
}
