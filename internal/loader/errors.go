package loader

import "errors"

var (
	// ErrSchema means the export file is structurally unusable: unreadable,
	// empty, or missing a mandatory column. Always fatal.
	ErrSchema = errors.New("export schema invalid")

	// ErrDataQuality means the fraction of rejected rows reached the
	// configured threshold, so the export is treated as corrupt rather than
	// partially accepted. Always fatal; nothing is written downstream.
	ErrDataQuality = errors.New("export data quality below threshold")
)
