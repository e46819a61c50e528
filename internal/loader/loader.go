// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sergei Gurin

// Package loader parses a downloaded export file into a validated table of
// typed records. Individual bad rows are rejected and counted; a rejection
// ratio at or above the configured threshold fails the whole run so a
// corrupt export is never silently accepted.
package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sgurin/geosync/internal/config"
	"github.com/sgurin/geosync/internal/logger"
	"github.com/sgurin/geosync/models"
)

// Table is the validated output of a load: the accepted records plus the
// rejection bookkeeping the run summary needs.
type Table struct {
	Records          []models.ExportRecord
	RowsRead         int
	Rejected         int
	RejectionSamples []string
	Warnings         []string
}

// Loader parses an export file at path into a Table.
type Loader interface {
	Load(path string, provenance models.Provenance) (*Table, error)
}

type csvLoader struct {
	cfg    config.Sync
	logger *logger.Logger
}

// NewCSVLoader returns a Loader for comma-separated exports configured by
// cfg: cfg.KeyColumn and cfg.SyncColumn plus cfg.TextColumns are the
// mandatory schema, cfg.RejectionThreshold caps the tolerated bad-row
// fraction.
func NewCSVLoader(cfg config.Sync, log *logger.Logger) Loader {
	return &csvLoader{cfg: cfg, logger: log}
}

// Load implements [Loader]. The first record is the header; every mandatory
// column must appear in it or the load fails with ErrSchema. Rows with a
// blank key or a non-numeric sync value are rejected and sampled. Duplicate
// keys keep the last occurrence and produce a warning.
func (l *csvLoader) Load(path string, provenance models.Provenance) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read export file: %s", ErrSchema, err)
	}
	data = []byte(strings.ToValidUTF8(string(data), ""))

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse csv: %s", ErrSchema, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: export file is empty", ErrSchema)
	}

	columns, err := l.mapColumns(rows[0])
	if err != nil {
		return nil, err
	}

	table := &Table{}
	byKey := make(map[string]int)
	duplicates := 0

	for i, row := range rows[1:] {
		table.RowsRead++
		rowNum := i + 2 // 1-based, after the header

		record, reason := l.parseRow(row, columns, provenance)
		if reason != "" {
			table.Rejected++
			if len(table.RejectionSamples) < 10 {
				table.RejectionSamples = append(table.RejectionSamples, fmt.Sprintf("row %d: %s", rowNum, reason))
			}
			continue
		}

		if at, seen := byKey[record.Key]; seen {
			table.Records[at] = record // last occurrence wins
			duplicates++
			continue
		}
		byKey[record.Key] = len(table.Records)
		table.Records = append(table.Records, record)
	}

	if duplicates > 0 {
		table.Warnings = append(table.Warnings, fmt.Sprintf("%d duplicate keys in export; last occurrence kept", duplicates))
	}

	if table.RowsRead == 0 {
		return nil, fmt.Errorf("%w: export has a header but no data rows", ErrDataQuality)
	}
	if ratio := float64(table.Rejected) / float64(table.RowsRead); ratio >= l.cfg.RejectionThreshold {
		return nil, fmt.Errorf("%w: %d of %d rows rejected (%.1f%%, threshold %.1f%%)",
			ErrDataQuality, table.Rejected, table.RowsRead, ratio*100, l.cfg.RejectionThreshold*100)
	}

	l.logger.Info().
		Int("rows", table.RowsRead).
		Int("rejected", table.Rejected).
		Int("accepted", len(table.Records)).
		Msg("export loaded")

	return table, nil
}

// mapColumns locates every mandatory column in the header row, failing with
// ErrSchema on the first one missing.
func (l *csvLoader) mapColumns(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	required := append([]string{l.cfg.KeyColumn, l.cfg.SyncColumn}, l.cfg.TextColumns...)
	columns := make(map[string]int, len(required))
	for _, name := range required {
		at, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("%w: required column %q missing", ErrSchema, name)
		}
		columns[name] = at
	}

	return columns, nil
}

// parseRow validates one data row. It returns the record and an empty
// reason on success, or a zero record and the rejection reason.
func (l *csvLoader) parseRow(row []string, columns map[string]int, provenance models.Provenance) (models.ExportRecord, string) {
	cell := func(name string) (string, bool) {
		at := columns[name]
		if at >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[at]), true
	}

	key, ok := cell(l.cfg.KeyColumn)
	if !ok {
		return models.ExportRecord{}, "row shorter than header"
	}
	if key == "" {
		return models.ExportRecord{}, fmt.Sprintf("missing key in column %q", l.cfg.KeyColumn)
	}

	raw, ok := cell(l.cfg.SyncColumn)
	if !ok {
		return models.ExportRecord{}, "row shorter than header"
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return models.ExportRecord{}, fmt.Sprintf("non-numeric value %q in column %q", raw, l.cfg.SyncColumn)
	}

	attributes := map[string]any{
		l.cfg.KeyColumn:  key,
		l.cfg.SyncColumn: value,
	}
	for _, name := range l.cfg.TextColumns {
		text, ok := cell(name)
		if !ok {
			return models.ExportRecord{}, "row shorter than header"
		}
		attributes[name] = text
	}

	return models.ExportRecord{Key: key, Attributes: attributes, Provenance: provenance}, ""
}
