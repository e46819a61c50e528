// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sergei Gurin

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/sgurin/geosync/internal/logger"
	"github.com/sgurin/geosync/models"
)

// runRepository is the sqlite-backed implementation of [RunRepository]. It
// keeps a rolling history of pipeline runs in the "runs" table so failures
// can be triaged without digging through the host's log retention.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured tracing of database interactions.
type runRepository struct {
	logger *logger.Logger
	db     *DB
}

var runColumns = []string{
	"run_id", "started", "finished", "status", "source_file",
	"rows_read", "rows_rejected", "inserted", "updated", "summary",
}

// NewRunRepository constructs a [RunRepository] backed by the provided
// database connection and logger.
func NewRunRepository(db *DB, logger *logger.Logger) RunRepository {
	logger.Debug().Msg("creating run repository")
	return &runRepository{
		db:     db,
		logger: logger,
	}
}

// SaveRun persists one finished run. Run IDs are unique per run, so a
// conflict means the same run is archived twice and the second write wins.
func (r *runRepository) SaveRun(ctx context.Context, record models.RunRecord) error {
	log := logger.FromContext(ctx)

	query, args, err := sq.
		Replace("runs").
		Columns(runColumns...).
		Values(
			record.RunID, record.Started, record.Finished, record.Status, record.SourceFile,
			record.RowsRead, record.RowsRejected, record.Inserted, record.Updated, record.Summary,
		).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*runRepository.SaveRun").Msg("error: building query")
		return fmt.Errorf("build save run query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*runRepository.SaveRun").Msg("error: saving run")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}

// RecentRuns returns up to n archived runs, newest first.
func (r *runRepository) RecentRuns(ctx context.Context, n int) ([]models.RunRecord, error) {
	log := logger.FromContext(ctx)

	query, args, err := sq.
		Select(runColumns...).
		From("runs").
		OrderBy("started DESC").
		Limit(uint64(n)).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*runRepository.RecentRuns").Msg("error: building query")
		return nil, fmt.Errorf("build recent runs query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*runRepository.RecentRuns").Msg("error: querying runs")
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer rows.Close()

	var records []models.RunRecord
	for rows.Next() {
		var record models.RunRecord
		if err := rows.Scan(
			&record.RunID, &record.Started, &record.Finished, &record.Status, &record.SourceFile,
			&record.RowsRead, &record.RowsRejected, &record.Inserted, &record.Updated, &record.Summary,
		); err != nil {
			log.Err(err).Str("func", "*runRepository.RecentRuns").Msg("error: scanning error")
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		log.Err(err).Str("func", "*runRepository.RecentRuns").Msg("error: iterating rows")
		return nil, err
	}

	return records, nil
}

// FindRun retrieves one archived run by its ID.
func (r *runRepository) FindRun(ctx context.Context, runID string) (models.RunRecord, error) {
	log := logger.FromContext(ctx)

	query, args, err := sq.
		Select(runColumns...).
		From("runs").
		Where(sq.Eq{"run_id": runID}).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*runRepository.FindRun").Msg("error: building query")
		return models.RunRecord{}, fmt.Errorf("build find run query: %w", err)
	}

	var record models.RunRecord
	row := r.db.QueryRowContext(ctx, query, args...)
	if err := row.Scan(
		&record.RunID, &record.Started, &record.Finished, &record.Status, &record.SourceFile,
		&record.RowsRead, &record.RowsRejected, &record.Inserted, &record.Updated, &record.Summary,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RunRecord{}, ErrRunNotFound
		}
		log.Err(err).Str("func", "*runRepository.FindRun").Msg("error: scanning error")
		return models.RunRecord{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return record, nil
}

// Prune deletes all but the keep most recent runs.
func (r *runRepository) Prune(ctx context.Context, keep int) (int64, error) {
	log := logger.FromContext(ctx)

	// squirrel has no subquery support for DELETE, keep the statement literal
	query := `DELETE FROM runs
		WHERE run_id NOT IN (SELECT run_id FROM runs ORDER BY started DESC LIMIT ?);`

	result, err := r.db.ExecContext(ctx, query, keep)
	if err != nil {
		log.Err(err).Str("func", "*runRepository.Prune").Msg("error: pruning runs")
		return 0, fmt.Errorf("unexpected DB error: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", "*runRepository.Prune").Msg("error: reading rows affected")
		return 0, err
	}
	if deleted > 0 {
		log.Debug().Str("func", "*runRepository.Prune").Int64("deleted", deleted).Msg("pruned archived runs")
	}

	return deleted, nil
}
