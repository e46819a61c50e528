// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sergei Gurin

package config

import (
	"regexp"
	"strings"
)

// validate checks that the final merged [Config] satisfies all pipeline
// invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or a sentinel error otherwise.
func (cfg *Config) validate() error {
	if cfg.Fetch.ExportPattern == "" {
		return ErrInvalidFetchConfigs
	}
	if _, err := regexp.Compile(cfg.Fetch.ExportPattern); err != nil {
		return ErrInvalidFetchConfigs
	}
	if cfg.Fetch.ScratchDir == "" || cfg.Fetch.KeepScratchDirs < 1 {
		return ErrInvalidFetchConfigs
	}

	if cfg.Sync.KeyColumn == "" || cfg.Sync.SyncColumn == "" {
		return ErrInvalidSyncConfigs
	}
	if cfg.Sync.RejectionThreshold <= 0 || cfg.Sync.RejectionThreshold > 1 {
		return ErrInvalidSyncConfigs
	}
	if cfg.Sync.BatchSize < 1 {
		return ErrInvalidSyncConfigs
	}

	if cfg.Symbology.ClassCount < 2 {
		return ErrInvalidSymbologyConfigs
	}
	switch cfg.Symbology.Method {
	case "equal-interval", "quantile":
	default:
		return ErrInvalidSymbologyConfigs
	}

	if cfg.Archive.DSN == "" || strings.Contains(cfg.Archive.DSN, "memory") {
		return ErrInvalidArchiveConfigs
	}
	if cfg.Archive.KeepRuns < 1 {
		return ErrInvalidArchiveConfigs
	}

	if cfg.Adapter.RequestTimeout == 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.SecretsPath == "" {
		return ErrNoSecretsPath
	}

	return nil
}
