package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type jsonConfig struct {
	Fetch struct {
		ExportPattern   string `json:"export_pattern"`
		ScratchDir      string `json:"scratch_dir"`
		KeepScratchDirs int    `json:"keep_scratch_dirs"`
	} `json:"fetch,omitempty"`

	Sync struct {
		KeyColumn          string   `json:"key_column"`
		SyncColumn         string   `json:"sync_column"`
		TextColumns        []string `json:"text_columns"`
		RejectionThreshold float64  `json:"rejection_threshold"`
		BatchSize          int      `json:"batch_size"`
		DeleteMissing      bool     `json:"delete_missing"`
	} `json:"sync,omitempty"`

	Symbology struct {
		ClassCount int    `json:"class_count"`
		Method     string `json:"method"`
	} `json:"symbology,omitempty"`

	Archive struct {
		DSN      string `json:"dsn"`
		KeepRuns int    `json:"keep_runs"`
	} `json:"archive,omitempty"`

	Adapter struct {
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"adapter,omitempty"`

	Workers struct {
		SyncInterval Duration `json:"sync_interval"`
	} `json:"workers,omitempty"`

	SecretsPath string `json:"secrets_path"`
}

func parseJSON(jsonFilePath string) (*Config, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg jsonConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &Config{
		Fetch: Fetch{
			ExportPattern:   jsonCfg.Fetch.ExportPattern,
			ScratchDir:      jsonCfg.Fetch.ScratchDir,
			KeepScratchDirs: jsonCfg.Fetch.KeepScratchDirs,
		},
		Sync: Sync{
			KeyColumn:          jsonCfg.Sync.KeyColumn,
			SyncColumn:         jsonCfg.Sync.SyncColumn,
			TextColumns:        jsonCfg.Sync.TextColumns,
			RejectionThreshold: jsonCfg.Sync.RejectionThreshold,
			BatchSize:          jsonCfg.Sync.BatchSize,
			DeleteMissing:      jsonCfg.Sync.DeleteMissing,
		},
		Symbology: Symbology{
			ClassCount: jsonCfg.Symbology.ClassCount,
			Method:     jsonCfg.Symbology.Method,
		},
		Archive: Archive{
			DSN:      jsonCfg.Archive.DSN,
			KeepRuns: jsonCfg.Archive.KeepRuns,
		},
		Adapter: Adapter{
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
		},
		Workers: Workers{
			SyncInterval: time.Duration(jsonCfg.Workers.SyncInterval),
		},
		SecretsPath: jsonCfg.SecretsPath,
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
