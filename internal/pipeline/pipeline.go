// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sergei Gurin

// Package pipeline sequences one sync run end to end: rotate scratch, fetch
// the newest export, load and validate it, reconcile it against the feature
// layer, refresh the renderer breaks, archive the run and notify the sink.
// A fatal stage error skips the remaining stages; archival and notification
// still happen so a failed run is as visible as a successful one.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sgurin/geosync/internal/adapter"
	"github.com/sgurin/geosync/internal/config"
	"github.com/sgurin/geosync/internal/fetcher"
	"github.com/sgurin/geosync/internal/loader"
	"github.com/sgurin/geosync/internal/logger"
	"github.com/sgurin/geosync/internal/reconcile"
	"github.com/sgurin/geosync/internal/report"
	"github.com/sgurin/geosync/internal/store"
	"github.com/sgurin/geosync/internal/symbology"
	"github.com/sgurin/geosync/models"
)

// Pipeline wires the stage collaborators together. All remote interactions go
// through injected interfaces so every stage can be exercised in isolation.
type Pipeline struct {
	cfg       *config.Config
	rotator   *fetcher.Rotator
	fetcher   fetcher.Fetcher
	loader    loader.Loader
	layer     adapter.LayerAdapter
	symbology *symbology.Updater
	notifier  report.Notifier
	runs      store.RunRepository
	logger    *logger.Logger
}

// New assembles a Pipeline from its collaborators. runs may be nil when run
// archival is disabled.
func New(
	cfg *config.Config,
	rotator *fetcher.Rotator,
	fetch fetcher.Fetcher,
	load loader.Loader,
	layer adapter.LayerAdapter,
	notifier report.Notifier,
	runs store.RunRepository,
	log *logger.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		rotator:   rotator,
		fetcher:   fetch,
		loader:    load,
		layer:     layer,
		symbology: symbology.NewUpdater(layer, cfg.Sync, cfg.Symbology, log),
		notifier:  notifier,
		runs:      runs,
		logger:    log,
	}
}

// Run executes one sync run and returns its summary. The returned error is
// the fatal stage failure, if any; warnings accumulate in the summary
// instead. The notifier and the run archive always see the summary, even for
// failed runs.
func (p *Pipeline) Run(ctx context.Context) (*models.RunSummary, error) {
	summary := models.NewRunSummary(uuid.NewString(), time.Now())
	log := &logger.Logger{Logger: p.logger.With().Str("run_id", summary.RunID).Logger()}
	ctx = log.WithContext(ctx)

	log.Info().Msg("sync run started")
	err := p.run(ctx, summary)
	summary.Fail(err)
	summary.Finished = time.Now()

	p.archive(ctx, summary)
	p.notify(ctx, summary)

	if err != nil {
		log.Error().Err(err).Msg("sync run failed")
		return summary, err
	}
	log.Info().
		Int("inserted", summary.Inserted).
		Int("updated", summary.Updated).
		Int("deleted", summary.Deleted).
		Str("status", string(summary.Status())).
		Msg("sync run finished")
	return summary, nil
}

func (p *Pipeline) run(ctx context.Context, summary *models.RunSummary) error {
	runDir, warnings, err := p.rotator.NewRunDir(p.cfg.Fetch.KeepScratchDirs)
	if err != nil {
		return err
	}
	for _, warning := range warnings {
		summary.AddWarning("%s", warning)
	}

	export, err := p.fetcher.Fetch(ctx, runDir)
	if err != nil {
		return err
	}
	summary.SourceFile = export.Name

	table, err := p.loader.Load(export.LocalPath, models.Provenance{
		SourceFile: export.Name,
		FetchedAt:  export.FetchedAt,
	})
	if err != nil {
		return err
	}
	summary.RowsRead = table.RowsRead
	summary.RowsRejected = table.Rejected
	for _, sample := range table.RejectionSamples {
		summary.AddRejectionSample(sample)
	}
	for _, warning := range table.Warnings {
		summary.AddWarning("%s", warning)
	}

	existing, err := p.layer.QueryKeys(ctx)
	if err != nil {
		return err
	}

	cs := reconcile.Partition(table.Records, existing, p.cfg.Sync.DeleteMissing)
	engine := reconcile.NewEngine(p.layer, p.cfg.Sync.BatchSize, p.logger)
	res, err := engine.Apply(ctx, cs)
	summary.Inserted = res.Inserted
	summary.Updated = res.Updated
	summary.Deleted = res.Deleted
	summary.WriteFailures = res.Failed
	for _, warning := range res.Warnings {
		summary.AddWarning("%s", warning)
	}
	if err != nil {
		return err
	}

	// Symbology reads post-write state, so it runs strictly after Apply.
	if _, err = p.symbology.Refresh(ctx); err != nil {
		if errors.Is(err, symbology.ErrInsufficientData) {
			summary.AddWarning("symbology skipped: %s", err)
			return nil
		}
		return err
	}
	summary.SymbologyUpdated = true

	return nil
}

// archive persists the run record and prunes old rows. Archive failures are
// warnings only: losing a history row must never fail a run that synced data.
func (p *Pipeline) archive(ctx context.Context, summary *models.RunSummary) {
	if p.runs == nil {
		return
	}

	record := models.RunRecord{
		RunID:        summary.RunID,
		Started:      summary.Started,
		Finished:     summary.Finished,
		Status:       string(summary.Status()),
		SourceFile:   summary.SourceFile,
		RowsRead:     summary.RowsRead,
		RowsRejected: summary.RowsRejected,
		Inserted:     summary.Inserted,
		Updated:      summary.Updated,
		Summary:      report.Render(summary),
	}
	if err := p.runs.SaveRun(ctx, record); err != nil {
		p.logger.Warn().Err(err).Msg("run archival failed")
		summary.AddWarning("run archival failed: %s", err)
		return
	}
	if _, err := p.runs.Prune(ctx, p.cfg.Archive.KeepRuns); err != nil {
		p.logger.Warn().Err(err).Msg("run archive prune failed")
		summary.AddWarning("run archive prune failed: %s", err)
	}
}

func (p *Pipeline) notify(ctx context.Context, summary *models.RunSummary) {
	ok := summary.Status() != models.StatusFailed
	if err := p.notifier.Notify(ctx, summary, ok); err != nil {
		p.logger.Warn().Err(err).Msg("run notification failed")
	}
}
