package config

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a fully valid configuration tests can break one field
// at a time.
func validConfig() *Config {
	return &Config{
		Fetch: Fetch{
			ExportPattern:   `^PAYMENTS.*\.csv$`,
			ScratchDir:      "scratch",
			KeepScratchDirs: 10,
		},
		Sync: Sync{
			KeyColumn:          "zip5",
			SyncColumn:         "Amount",
			TextColumns:        []string{"County", "UpdateDate"},
			RejectionThreshold: 0.1,
			BatchSize:          500,
		},
		Symbology:   Symbology{ClassCount: 5, Method: "equal-interval"},
		Archive:     Archive{DSN: "geosync_runs.db", KeepRuns: 50},
		Adapter:     Adapter{RequestTimeout: time.Minute},
		SecretsPath: "/secrets/geosync.json",
	}
}

// ── validate ──────────────────────────────────────────────────────────────────

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr error
	}{
		{
			name:    "missing export pattern",
			mutate:  func(cfg *Config) { cfg.Fetch.ExportPattern = "" },
			wantErr: ErrInvalidFetchConfigs,
		},
		{
			name:    "malformed export pattern",
			mutate:  func(cfg *Config) { cfg.Fetch.ExportPattern = "([" },
			wantErr: ErrInvalidFetchConfigs,
		},
		{
			name:    "zero kept scratch dirs",
			mutate:  func(cfg *Config) { cfg.Fetch.KeepScratchDirs = 0 },
			wantErr: ErrInvalidFetchConfigs,
		},
		{
			name:    "missing key column",
			mutate:  func(cfg *Config) { cfg.Sync.KeyColumn = "" },
			wantErr: ErrInvalidSyncConfigs,
		},
		{
			name:    "threshold above one",
			mutate:  func(cfg *Config) { cfg.Sync.RejectionThreshold = 1.5 },
			wantErr: ErrInvalidSyncConfigs,
		},
		{
			name:    "zero threshold",
			mutate:  func(cfg *Config) { cfg.Sync.RejectionThreshold = 0 },
			wantErr: ErrInvalidSyncConfigs,
		},
		{
			name:    "single symbology class",
			mutate:  func(cfg *Config) { cfg.Symbology.ClassCount = 1 },
			wantErr: ErrInvalidSymbologyConfigs,
		},
		{
			name:    "method not silently defaulted",
			mutate:  func(cfg *Config) { cfg.Symbology.Method = "" },
			wantErr: ErrInvalidSymbologyConfigs,
		},
		{
			name:    "unknown method",
			mutate:  func(cfg *Config) { cfg.Symbology.Method = "jenks" },
			wantErr: ErrInvalidSymbologyConfigs,
		},
		{
			name:    "in-memory archive rejected",
			mutate:  func(cfg *Config) { cfg.Archive.DSN = ":memory:" },
			wantErr: ErrInvalidArchiveConfigs,
		},
		{
			name:    "zero request timeout",
			mutate:  func(cfg *Config) { cfg.Adapter.RequestTimeout = 0 },
			wantErr: ErrInvalidAdapterConfigs,
		},
		{
			name:    "missing secrets path",
			mutate:  func(cfg *Config) { cfg.SecretsPath = "" },
			wantErr: ErrNoSecretsPath,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.validate(), tt.wantErr)
		})
	}
}

// ── builder ───────────────────────────────────────────────────────────────────

func TestBuild_HigherPrioritySourceWins(t *testing.T) {
	b := newConfigBuilder()
	flags := validConfig()
	flags.Sync.BatchSize = 250

	fromJSON := validConfig()
	fromJSON.Sync.BatchSize = 100
	fromJSON.Archive.KeepRuns = 25

	b.configs = append(b.configs, flags, fromJSON)

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.Sync.BatchSize, "earlier source wins")
	assert.Equal(t, 25, cfg.Archive.KeepRuns, "later source fills gaps")
}

func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newConfigBuilder()
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestWithDefaults_LowestPriority(t *testing.T) {
	b := newConfigBuilder()
	explicit := validConfig()
	explicit.Sync.BatchSize = 42
	b.configs = append(b.configs, explicit)

	cfg, err := b.withDefaults().build()
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Sync.BatchSize)
	assert.Equal(t, 10, cfg.Fetch.KeepScratchDirs)
	assert.Equal(t, 60*time.Second, cfg.Adapter.RequestTimeout)
}

func TestWithDefaults_AloneFailsValidation(t *testing.T) {
	// Defaults deliberately carry no export pattern, columns or method.
	_, err := newConfigBuilder().withDefaults().build()
	assert.Error(t, err)
}

// ── flags ─────────────────────────────────────────────────────────────────────

func newTestFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("geosync-test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func TestParseFlags_AllFlags(t *testing.T) {
	cfg := parseFlags(newTestFlagSet(), []string{
		"-config", "/etc/geosync.json",
		"-secrets", "/secrets/geosync.json",
		"-export-pattern", `^PAYMENTS.*\.csv$`,
		"-scratch-dir", "/tmp/scratch",
		"-key-column", "zip5",
		"-sync-column", "Amount",
		"-text-columns", "County, UpdateDate",
		"-rejection-threshold", "0.2",
		"-batch-size", "100",
		"-class-count", "7",
		"-class-method", "quantile",
		"-archive-dsn", "/var/lib/geosync/runs.db",
		"-sync-interval", "24h",
		"-request-timeout", "30s",
	})

	assert.Equal(t, "/etc/geosync.json", cfg.JSONFilePath)
	assert.Equal(t, "/secrets/geosync.json", cfg.SecretsPath)
	assert.Equal(t, `^PAYMENTS.*\.csv$`, cfg.Fetch.ExportPattern)
	assert.Equal(t, "/tmp/scratch", cfg.Fetch.ScratchDir)
	assert.Equal(t, "zip5", cfg.Sync.KeyColumn)
	assert.Equal(t, "Amount", cfg.Sync.SyncColumn)
	assert.Equal(t, []string{"County", "UpdateDate"}, cfg.Sync.TextColumns)
	assert.Equal(t, 0.2, cfg.Sync.RejectionThreshold)
	assert.Equal(t, 100, cfg.Sync.BatchSize)
	assert.Equal(t, 7, cfg.Symbology.ClassCount)
	assert.Equal(t, "quantile", cfg.Symbology.Method)
	assert.Equal(t, "/var/lib/geosync/runs.db", cfg.Archive.DSN)
	assert.Equal(t, 24*time.Hour, cfg.Workers.SyncInterval)
	assert.Equal(t, 30*time.Second, cfg.Adapter.RequestTimeout)
}

func TestParseFlags_NoFlagsIsZeroConfig(t *testing.T) {
	cfg := parseFlags(newTestFlagSet(), nil)
	assert.Equal(t, &Config{}, cfg)
}

func TestParseFlags_ShortConfigAlias(t *testing.T) {
	cfg := parseFlags(newTestFlagSet(), []string{"-c", "short.json"})
	assert.Equal(t, "short.json", cfg.JSONFilePath)
}

// ── json ──────────────────────────────────────────────────────────────────────

func TestParseJSON_Success(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.json")
	jsonBody := `{
		"fetch": {
			"export_pattern": "^PAYMENTS.*\\.csv$",
			"scratch_dir": "/tmp/scratch",
			"keep_scratch_dirs": 5
		},
		"sync": {
			"key_column": "zip5",
			"sync_column": "Amount",
			"text_columns": ["County", "UpdateDate"],
			"rejection_threshold": 0.15,
			"batch_size": 200,
			"delete_missing": true
		},
		"symbology": { "class_count": 5, "method": "equal-interval" },
		"archive": { "dsn": "/var/lib/geosync/runs.db", "keep_runs": 30 },
		"adapter": { "request_timeout": "45s" },
		"workers": { "sync_interval": "12h" },
		"secrets_path": "/secrets/geosync.json"
	}`
	require.NoError(t, os.WriteFile(p, []byte(jsonBody), 0o600))

	cfg, err := parseJSON(p)
	require.NoError(t, err)

	assert.Equal(t, `^PAYMENTS.*\.csv$`, cfg.Fetch.ExportPattern)
	assert.Equal(t, 5, cfg.Fetch.KeepScratchDirs)
	assert.Equal(t, "zip5", cfg.Sync.KeyColumn)
	assert.True(t, cfg.Sync.DeleteMissing)
	assert.Equal(t, 0.15, cfg.Sync.RejectionThreshold)
	assert.Equal(t, 45*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, 12*time.Hour, cfg.Workers.SyncInterval)
	assert.Equal(t, "/secrets/geosync.json", cfg.SecretsPath)
}

func TestParseJSON_MissingFile(t *testing.T) {
	_, err := parseJSON(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestParseJSON_Malformed(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(p, []byte("{not json"), 0o600))

	_, err := parseJSON(p)
	assert.Error(t, err)
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	var d Duration

	require.NoError(t, d.UnmarshalJSON([]byte(`"90s"`)))
	assert.Equal(t, Duration(90*time.Second), d)

	require.NoError(t, d.UnmarshalJSON([]byte(`1000000000`)))
	assert.Equal(t, Duration(time.Second), d)

	assert.Error(t, d.UnmarshalJSON([]byte(`"ninety seconds"`)))
}

func TestDuration_MarshalJSON(t *testing.T) {
	data, err := Duration(time.Hour).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1h0m0s"`, string(data))
}
