package models

import "time"

// RunRecord is one archived pipeline run as stored in the local run history
// database.
type RunRecord struct {
	RunID        string    `json:"run_id"`
	Started      time.Time `json:"started"`
	Finished     time.Time `json:"finished"`
	Status       string    `json:"status"`
	SourceFile   string    `json:"source_file"`
	RowsRead     int       `json:"rows_read"`
	RowsRejected int       `json:"rows_rejected"`
	Inserted     int       `json:"inserted"`
	Updated      int       `json:"updated"`
	Summary      string    `json:"summary"`
}
