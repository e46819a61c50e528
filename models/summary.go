package models

import (
	"fmt"
	"time"
)

// RunStatus is the terminal classification of a pipeline run.
type RunStatus string

const (
	StatusSucceeded    RunStatus = "succeeded"
	StatusWithWarnings RunStatus = "succeeded with warnings"
	StatusFailed       RunStatus = "failed"
)

// maxRejectionSamples caps how many rejected-row descriptions the summary
// carries for triage.
const maxRejectionSamples = 10

// RunSummary accumulates counts and warnings across the pipeline stages.
// It is created at run start, appended to throughout, consumed once by the
// reporter and then discarded.
type RunSummary struct {
	RunID    string    `json:"run_id"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`

	SourceFile       string   `json:"source_file,omitempty"`
	RowsRead         int      `json:"rows_read"`
	RowsRejected     int      `json:"rows_rejected"`
	RejectionSamples []string `json:"rejection_samples,omitempty"`

	Inserted      int `json:"inserted"`
	Updated       int `json:"updated"`
	Deleted       int `json:"deleted"`
	WriteFailures int `json:"write_failures"`

	SymbologyUpdated bool `json:"symbology_updated"`

	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// NewRunSummary returns a summary stamped with the run ID and start time.
func NewRunSummary(runID string, started time.Time) *RunSummary {
	return &RunSummary{RunID: runID, Started: started}
}

// AddWarning records a non-fatal condition.
func (s *RunSummary) AddWarning(format string, args ...any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

// AddRejectionSample keeps at most maxRejectionSamples row-level rejection
// descriptions; further samples are dropped (the count is still tracked in
// RowsRejected).
func (s *RunSummary) AddRejectionSample(sample string) {
	if len(s.RejectionSamples) < maxRejectionSamples {
		s.RejectionSamples = append(s.RejectionSamples, sample)
	}
}

// Fail marks the run as failed with err as the terminal cause.
func (s *RunSummary) Fail(err error) {
	if err != nil {
		s.Error = err.Error()
	}
}

// Status classifies the finished run.
func (s *RunSummary) Status() RunStatus {
	switch {
	case s.Error != "":
		return StatusFailed
	case len(s.Warnings) > 0:
		return StatusWithWarnings
	default:
		return StatusSucceeded
	}
}

// Duration returns the elapsed wall time of the run.
func (s *RunSummary) Duration() time.Duration {
	return s.Finished.Sub(s.Started)
}
