package models

import "time"

// ExportRecord is one validated row of the remote export file. Records are
// immutable once parsed: the loader builds them, downstream stages only read.
type ExportRecord struct {
	// Key is the value of the configured unique-key column (e.g. a zip code).
	Key string `json:"key"`

	// Attributes holds every synced column keyed by column name. The value of
	// the configured numeric sync column is always a float64; other columns
	// stay strings.
	Attributes map[string]any `json:"attributes"`

	// Provenance records where the row came from.
	Provenance Provenance `json:"provenance"`
}

// Provenance ties a record back to the export file it was parsed from.
type Provenance struct {
	SourceFile string    `json:"source_file"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// SyncValue returns the numeric sync-column value of the record.
// The loader guarantees the column is present and coerced to float64.
func (r ExportRecord) SyncValue(column string) (float64, bool) {
	v, ok := r.Attributes[column].(float64)
	return v, ok
}
