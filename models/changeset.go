package models

// ChangeSet is the per-run partition of the validated export table against
// the remote layer. Every export record lands in exactly one of Inserts or
// Updates; remote keys missing from the export end up in Deletes only when
// missing-key deletion is enabled, otherwise they are left untouched.
type ChangeSet struct {
	Inserts []ExportRecord  `json:"inserts"`
	Updates []FeatureUpdate `json:"updates"`
	Deletes []int64         `json:"deletes,omitempty"`
}

// Empty reports whether the change set contains no work at all.
func (c ChangeSet) Empty() bool {
	return len(c.Inserts) == 0 && len(c.Updates) == 0 && len(c.Deletes) == 0
}

// Size returns the total number of pending edits.
func (c ChangeSet) Size() int {
	return len(c.Inserts) + len(c.Updates) + len(c.Deletes)
}
