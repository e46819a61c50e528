package fetcher

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/sgurin/geosync/internal/logger"
)

// runDirFormat names per-run scratch directories; runDirPattern matches them
// when deciding which old directories are eligible for deletion.
const runDirFormat = "20060102-150405"

var runDirPattern = regexp.MustCompile(`^run_[0-9]{8}-[0-9]{6}$`)

// Rotator creates a fresh per-run directory under a base scratch directory
// and prunes old run directories, logging as it goes. Deletion failures are
// reported as warnings, never as errors: a stale directory is an
// inconvenience, not a reason to skip a run.
type Rotator struct {
	baseDir string
	logger  *logger.Logger
}

// NewRotator returns a Rotator over baseDir. The directory is created if it
// does not exist yet.
func NewRotator(baseDir string, log *logger.Logger) (*Rotator, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch base dir %s: %w", baseDir, err)
	}
	return &Rotator{baseDir: baseDir, logger: log}, nil
}

// NewRunDir deletes all but the keep most recent run directories, then
// creates and returns a new timestamped directory. Deletion happens before
// creation so the fresh directory can never be rotated away. The returned
// warnings describe directories that could not be deleted.
func (r *Rotator) NewRunDir(keep int) (string, []string, error) {
	var warnings []string

	for _, stale := range r.staleRunDirs(keep) {
		r.logger.Debug().Str("dir", stale).Msg("deleting rotated scratch dir")
		if err := os.RemoveAll(stale); err != nil {
			warning := fmt.Sprintf("could not delete scratch dir %s; delete manually", stale)
			r.logger.Warn().Err(err).Str("dir", stale).Msg("scratch rotation delete failed")
			warnings = append(warnings, warning)
		}
	}

	dir := filepath.Join(r.baseDir, "run_"+time.Now().Format(runDirFormat))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", warnings, fmt.Errorf("create run dir %s: %w", dir, err)
	}
	r.logger.Debug().Str("dir", dir).Msg("created run scratch dir")

	return dir, warnings, nil
}

// staleRunDirs returns every run directory except the keep most recent ones.
// The timestamped naming makes lexical order chronological.
func (r *Rotator) staleRunDirs(keep int) []string {
	entries, err := os.ReadDir(r.baseDir)
	if err != nil {
		return nil
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() && runDirPattern.MatchString(entry.Name()) {
			dirs = append(dirs, filepath.Join(r.baseDir, entry.Name()))
		}
	}
	if keep >= len(dirs) {
		return nil
	}

	sort.Strings(dirs)
	return dirs[:len(dirs)-keep]
}
