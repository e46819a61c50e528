package symbology

import (
	"context"
	"fmt"

	"github.com/sgurin/geosync/internal/adapter"
	"github.com/sgurin/geosync/internal/config"
	"github.com/sgurin/geosync/internal/logger"
	"github.com/sgurin/geosync/models"
)

// Updater reads the post-write attribute distribution and rewrites the map
// renderer's break values.
type Updater struct {
	layer   adapter.LayerAdapter
	column  string
	method  models.ClassMethod
	classes int
	logger  *logger.Logger
}

// NewUpdater wires an Updater for the configured sync column and
// classification settings.
func NewUpdater(layer adapter.LayerAdapter, syncCfg config.Sync, symCfg config.Symbology, log *logger.Logger) *Updater {
	return &Updater{
		layer:   layer,
		column:  syncCfg.SyncColumn,
		method:  models.ClassMethod(symCfg.Method),
		classes: symCfg.ClassCount,
		logger:  log,
	}
}

// Refresh queries the layer's current values, computes fresh breaks and
// writes them to the webmap renderer in one update call. It must only run
// after all reconciliation writes have completed or been recorded as failed,
// since it reads post-write state.
//
// Returns ErrInsufficientData (wrapped) when the distribution cannot fill
// the configured class count; the renderer is left untouched in that case.
func (u *Updater) Refresh(ctx context.Context) (models.ClassBreaks, error) {
	values, err := u.layer.QueryValues(ctx, u.column)
	if err != nil {
		return models.ClassBreaks{}, fmt.Errorf("query %s distribution: %w", u.column, err)
	}

	breaks, err := ComputeBreaks(values, u.method, u.classes)
	if err != nil {
		return models.ClassBreaks{}, err
	}

	if err = u.layer.UpdateRenderer(ctx, breaks); err != nil {
		return models.ClassBreaks{}, fmt.Errorf("write renderer breaks: %w", err)
	}

	u.logger.Info().
		Str("method", string(breaks.Method)).
		Int("classes", len(breaks.Values)).
		Msg("symbology refreshed")

	return breaks, nil
}
