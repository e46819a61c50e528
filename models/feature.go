package models

// RemoteFeature is one existing record of the hosted feature layer. The layer
// owns it; the pipeline reads keys and object IDs and proposes edits.
type RemoteFeature struct {
	Key        string         `json:"key"`
	ObjectID   int64          `json:"object_id"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// FeatureUpdate pairs an existing feature's object ID with the export record
// whose attribute values should replace the feature's.
type FeatureUpdate struct {
	ObjectID int64        `json:"object_id"`
	Record   ExportRecord `json:"record"`
}

// EditResult is the per-item outcome reported by the feature service for one
// add or update inside a batch.
type EditResult struct {
	Key      string `json:"key"`
	ObjectID int64  `json:"object_id"`
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
}
