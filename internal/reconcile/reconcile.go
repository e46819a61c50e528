// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sergei Gurin

// Package reconcile computes and applies the difference between a validated
// export table and the hosted feature layer. Partitioning is pure; applying
// goes through the layer adapter in batches, retrying the failed subset of a
// batch exactly once before degrading to recorded warnings.
package reconcile

import (
	"context"
	"fmt"

	"github.com/sgurin/geosync/internal/adapter"
	"github.com/sgurin/geosync/internal/logger"
	"github.com/sgurin/geosync/models"
)

// Partition classifies every export record against the existing key set:
// keys already on the layer become updates, unknown keys become inserts.
// Remote keys absent from the export become deletes only when deleteMissing
// is set; otherwise they are left untouched. A record never lands in more
// than one set, so re-running with the same inputs yields the same
// classification.
func Partition(records []models.ExportRecord, existing map[string]int64, deleteMissing bool) models.ChangeSet {
	var cs models.ChangeSet

	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		seen[record.Key] = struct{}{}
		if objectID, ok := existing[record.Key]; ok {
			cs.Updates = append(cs.Updates, models.FeatureUpdate{ObjectID: objectID, Record: record})
			continue
		}
		cs.Inserts = append(cs.Inserts, record)
	}

	if deleteMissing {
		for key, objectID := range existing {
			if _, ok := seen[key]; !ok {
				cs.Deletes = append(cs.Deletes, objectID)
			}
		}
	}

	return cs
}

// Result tallies what Apply managed to write.
type Result struct {
	Inserted int
	Updated  int
	Deleted  int
	Failed   int
	Warnings []string
}

// Engine applies change sets through a layer adapter.
type Engine struct {
	layer     adapter.LayerAdapter
	batchSize int
	logger    *logger.Logger
}

// NewEngine returns an Engine that submits at most batchSize edits per
// feature-service call.
func NewEngine(layer adapter.LayerAdapter, batchSize int, log *logger.Logger) *Engine {
	return &Engine{layer: layer, batchSize: batchSize, logger: log}
}

// Apply writes the change set. Edits are chunked under the batch size; a
// batch whose transport fails outright is retried once and then treated as
// fatal, while per-item failures inside a successful batch are collected,
// retried once as their own subset, and finally recorded as warnings. All
// writes are finished or accounted for when Apply returns, so post-write
// readers observe the final state.
func (e *Engine) Apply(ctx context.Context, cs models.ChangeSet) (Result, error) {
	var res Result

	failedAdds, failedUpdates, err := e.applyEdits(ctx, cs.Inserts, cs.Updates, &res)
	if err != nil {
		return res, err
	}

	if len(failedAdds)+len(failedUpdates) > 0 {
		e.logger.Warn().
			Int("adds", len(failedAdds)).
			Int("updates", len(failedUpdates)).
			Msg("retrying failed subset once")

		failedAdds, failedUpdates, err = e.applyEdits(ctx, failedAdds, failedUpdates, &res)
		if err != nil {
			return res, err
		}

		for _, record := range failedAdds {
			res.Failed++
			res.Warnings = append(res.Warnings, fmt.Sprintf("insert failed for key %s after retry", record.Key))
		}
		for _, update := range failedUpdates {
			res.Failed++
			res.Warnings = append(res.Warnings, fmt.Sprintf("update failed for key %s after retry", update.Record.Key))
		}
	}

	if err = e.applyDeletes(ctx, cs.Deletes, &res); err != nil {
		return res, err
	}

	return res, nil
}

// applyEdits submits adds and updates in batches and returns the items the
// service rejected. A transport-level failure is retried once per batch and
// escalated if it persists.
func (e *Engine) applyEdits(ctx context.Context, adds []models.ExportRecord, updates []models.FeatureUpdate, res *Result) ([]models.ExportRecord, []models.FeatureUpdate, error) {
	var failedAdds []models.ExportRecord
	var failedUpdates []models.FeatureUpdate

	addsByKey := make(map[string]models.ExportRecord, len(adds))
	for _, record := range adds {
		addsByKey[record.Key] = record
	}
	updatesByKey := make(map[string]models.FeatureUpdate, len(updates))
	for _, update := range updates {
		updatesByKey[update.Record.Key] = update
	}

	for len(adds) > 0 || len(updates) > 0 {
		var batchAdds []models.ExportRecord
		var batchUpdates []models.FeatureUpdate
		batchAdds, adds = take(adds, e.batchSize)
		batchUpdates, updates = take(updates, e.batchSize-len(batchAdds))

		results, err := e.layer.ApplyEdits(ctx, batchAdds, batchUpdates)
		if err != nil {
			e.logger.Warn().Err(err).Msg("batch transport failed; retrying batch once")
			results, err = e.layer.ApplyEdits(ctx, batchAdds, batchUpdates)
			if err != nil {
				return nil, nil, fmt.Errorf("apply batch: %w", err)
			}
		}

		for _, item := range results {
			if record, ok := addsByKey[item.Key]; ok {
				if item.Success {
					res.Inserted++
				} else {
					failedAdds = append(failedAdds, record)
				}
				continue
			}
			if update, ok := updatesByKey[item.Key]; ok {
				if item.Success {
					res.Updated++
				} else {
					failedUpdates = append(failedUpdates, update)
				}
			}
		}
	}

	return failedAdds, failedUpdates, nil
}

func (e *Engine) applyDeletes(ctx context.Context, objectIDs []int64, res *Result) error {
	for len(objectIDs) > 0 {
		var batch []int64
		batch, objectIDs = take(objectIDs, e.batchSize)

		results, err := e.layer.DeleteFeatures(ctx, batch)
		if err != nil {
			e.logger.Warn().Err(err).Msg("delete batch transport failed; retrying batch once")
			results, err = e.layer.DeleteFeatures(ctx, batch)
			if err != nil {
				return fmt.Errorf("delete batch: %w", err)
			}
		}

		for _, item := range results {
			if item.Success {
				res.Deleted++
				continue
			}
			res.Failed++
			res.Warnings = append(res.Warnings, fmt.Sprintf("delete failed for object id %d: %s", item.ObjectID, item.Message))
		}
	}

	return nil
}

func take[T any](items []T, n int) ([]T, []T) {
	if n <= 0 {
		return nil, items
	}
	if len(items) <= n {
		return items, nil
	}
	return items[:n], items[n:]
}
