package adapter

import (
	"context"

	"github.com/sgurin/geosync/models"
)

// LayerAdapter is the pipeline's handle to the hosted feature layer and the
// webmap that renders it. Implementations wrap collaborator-specific failure
// modes into this package's sentinel errors so the orchestrator stays
// collaborator-agnostic.
type LayerAdapter interface {
	// QueryKeys bulk-fetches every existing feature's unique key and
	// object ID in one paged query.
	QueryKeys(ctx context.Context) (map[string]int64, error)

	// ApplyEdits submits one batch of adds and updates and returns the
	// service's per-item outcomes in order (adds first, then updates).
	ApplyEdits(ctx context.Context, adds []models.ExportRecord, updates []models.FeatureUpdate) ([]models.EditResult, error)

	// DeleteFeatures removes the features with the given object IDs.
	// Only used when missing-key deletion is configured.
	DeleteFeatures(ctx context.Context, objectIDs []int64) ([]models.EditResult, error)

	// QueryValues returns every non-null value of the given numeric
	// attribute across the layer.
	QueryValues(ctx context.Context, field string) ([]float64, error)

	// UpdateRenderer rewrites the webmap layer's class break values in a
	// single item update.
	UpdateRenderer(ctx context.Context, breaks models.ClassBreaks) error
}
