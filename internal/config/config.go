// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sergei Gurin

package config

import (
	"time"
)

// Config is the top-level configuration container for the geosync pipeline.
// It aggregates all non-secret tunables and is populated by merging values
// from environment variables, command-line flags, an optional JSON file, and
// built-in defaults (in that priority order, first source wins).
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type Config struct {
	// Fetch holds remote-export retrieval settings.
	Fetch Fetch `envPrefix:"FETCH_"`

	// Sync holds reconciliation settings: column mapping, rejection
	// threshold, batch sizing and the missing-key deletion policy.
	Sync Sync `envPrefix:"SYNC_"`

	// Symbology holds map-renderer classification settings.
	Symbology Symbology `envPrefix:"SYMBOLOGY_"`

	// Archive holds run-history database settings.
	Archive Archive `envPrefix:"ARCHIVE_"`

	// Adapter holds feature-service client settings.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds scheduled-execution settings. A zero SyncInterval means
	// the process performs a single run and exits; a positive interval keeps
	// it alive re-running on a ticker.
	Workers Workers `envPrefix:"WORKERS_"`

	// SecretsPath is the path to the mounted JSON credential bundle.
	// Populated via the SECRETS environment variable or the -secrets flag.
	SecretsPath string `env:"SECRETS"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged below the values already
	// loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Fetch groups settings for the remote file fetcher.
type Fetch struct {
	// ExportPattern is the regular expression an export file name must match
	// to be considered for download (e.g. `^ERAP_PAYMENTS.*\.csv$`).
	// Env: FETCH_EXPORT_PATTERN
	ExportPattern string `env:"EXPORT_PATTERN"`

	// ScratchDir is the local base directory that per-run download
	// directories are created under.
	// Env: FETCH_SCRATCH_DIR
	ScratchDir string `env:"SCRATCH_DIR"`

	// KeepScratchDirs is how many previous run directories are kept when the
	// scratch directory is rotated at the start of a run.
	// Env: FETCH_KEEP_SCRATCH_DIRS
	KeepScratchDirs int `env:"KEEP_SCRATCH_DIRS"`
}

// Sync groups reconciliation settings.
type Sync struct {
	// KeyColumn is the export column holding the stable unique key shared
	// with the feature layer.
	// Env: SYNC_KEY_COLUMN
	KeyColumn string `env:"KEY_COLUMN"`

	// SyncColumn is the numeric export column that is synced and later
	// classified for symbology.
	// Env: SYNC_SYNC_COLUMN
	SyncColumn string `env:"SYNC_COLUMN"`

	// TextColumns are the remaining required export columns, synced verbatim
	// as text.
	// Env: SYNC_TEXT_COLUMNS (comma-separated)
	TextColumns []string `env:"TEXT_COLUMNS"`

	// RejectionThreshold is the fraction of rejected rows (0..1) at or above
	// which the run aborts instead of silently accepting a corrupt export.
	// Env: SYNC_REJECTION_THRESHOLD
	RejectionThreshold float64 `env:"REJECTION_THRESHOLD"`

	// BatchSize is the maximum number of edits submitted to the feature
	// service in a single call.
	// Env: SYNC_BATCH_SIZE
	BatchSize int `env:"BATCH_SIZE"`

	// DeleteMissing controls what happens to remote keys absent from the
	// export: false (default) leaves them untouched, true deletes them.
	// Env: SYNC_DELETE_MISSING
	DeleteMissing bool `env:"DELETE_MISSING"`
}

// Symbology groups map-renderer classification settings.
type Symbology struct {
	// ClassCount is the number of renderer classes (break values) to compute.
	// Env: SYMBOLOGY_CLASS_COUNT
	ClassCount int `env:"CLASS_COUNT"`

	// Method names the classification method: "equal-interval" or
	// "quantile". There is no default; an empty or unknown method fails
	// validation.
	// Env: SYMBOLOGY_METHOD
	Method string `env:"METHOD"`
}

// Archive groups run-history database settings.
type Archive struct {
	// DSN is the sqlite data source name of the run-history database
	// (a file path; ":memory:" is rejected by validation).
	// Env: ARCHIVE_DSN
	DSN string `env:"DSN"`

	// KeepRuns is how many archived runs are retained when old rows are
	// pruned after a run.
	// Env: ARCHIVE_KEEP_RUNS
	KeepRuns int `env:"KEEP_RUNS"`
}

// Adapter groups feature-service client settings.
type Adapter struct {
	// RequestTimeout is the maximum duration of a single feature-service
	// request (e.g. "30s", "2m").
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Workers groups scheduled-execution settings.
type Workers struct {
	// SyncInterval is the period between runs in daemon mode. Zero disables
	// the ticker and the process exits after one run.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`
}

// GetConfig loads, merges, and validates the pipeline configuration from all
// available sources in the following priority order (first source wins for
// non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Built-in defaults
//
// Returns a fully populated *Config or an error if any source fails to load
// or the final config fails validation.
func GetConfig() (*Config, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		withDefaults().
		build()
}
