package config

import (
	"flag"
	"io"
	"os"
	"strings"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-c/-config json file path with configs
//	-secrets path to the mounted JSON credential bundle
//	-export-pattern regexp an export file name must match
//	-scratch-dir local base directory for per-run downloads
//	-key-column export column holding the unique key
//	-sync-column numeric export column to sync and classify
//	-text-columns remaining required columns (comma-separated)
//	-rejection-threshold fatal rejected-row fraction (0..1)
//	-batch-size maximum edits per feature-service call
//	-class-count number of symbology classes
//	-class-method classification method (equal-interval, quantile)
//	-archive-dsn run-history sqlite path
//	-sync-interval period between runs in daemon mode (e.g. "24h")
//	-request-timeout feature-service request timeout (e.g. "30s", "1m")
func ParseFlags() *Config {
	fs := flag.NewFlagSet("geosync", flag.ContinueOnError)
	fs.SetOutput(io.Discard) // unknown flags (e.g. test binary flags) are not ours to report
	return parseFlags(fs, os.Args[1:])
}

func parseFlags(fs *flag.FlagSet, args []string) *Config {
	var (
		jsonConfigPath     string
		secretsPath        string
		exportPattern      string
		scratchDir         string
		keyColumn          string
		syncColumn         string
		textColumns        string
		rejectionThreshold float64
		batchSize          int
		classCount         int
		classMethod        string
		archiveDSN         string
		syncInterval       time.Duration
		requestTimeout     time.Duration
	)

	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&secretsPath, "secrets", "", "Secrets JSON file path")
	fs.StringVar(&exportPattern, "export-pattern", "", "Export file name pattern (regexp)")
	fs.StringVar(&scratchDir, "scratch-dir", "", "Scratch base directory")
	fs.StringVar(&keyColumn, "key-column", "", "Unique key column name")
	fs.StringVar(&syncColumn, "sync-column", "", "Numeric sync column name")
	fs.StringVar(&textColumns, "text-columns", "", "Comma-separated text column names")
	fs.Float64Var(&rejectionThreshold, "rejection-threshold", 0, "Fatal rejected-row fraction (0..1)")
	fs.IntVar(&batchSize, "batch-size", 0, "Maximum edits per batch")
	fs.IntVar(&classCount, "class-count", 0, "Number of symbology classes")
	fs.StringVar(&classMethod, "class-method", "", "Classification method (equal-interval, quantile)")
	fs.StringVar(&archiveDSN, "archive-dsn", "", "Run-history sqlite path")
	fs.DurationVar(&syncInterval, "sync-interval", 0, "Period between runs in daemon mode (e.g. 24h)")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Feature-service request timeout (e.g. 30s, 1m)")

	_ = fs.Parse(args)

	var columns []string
	if textColumns != "" {
		for _, c := range strings.Split(textColumns, ",") {
			if c = strings.TrimSpace(c); c != "" {
				columns = append(columns, c)
			}
		}
	}

	return &Config{
		Fetch: Fetch{
			ExportPattern: exportPattern,
			ScratchDir:    scratchDir,
		},
		Sync: Sync{
			KeyColumn:          keyColumn,
			SyncColumn:         syncColumn,
			TextColumns:        columns,
			RejectionThreshold: rejectionThreshold,
			BatchSize:          batchSize,
		},
		Symbology: Symbology{
			ClassCount: classCount,
			Method:     classMethod,
		},
		Archive: Archive{
			DSN: archiveDSN,
		},
		Adapter: Adapter{
			RequestTimeout: requestTimeout,
		},
		Workers: Workers{
			SyncInterval: syncInterval,
		},
		SecretsPath:  secretsPath,
		JSONFilePath: jsonConfigPath,
	}
}
