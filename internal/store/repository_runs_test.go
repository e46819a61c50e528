package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sgurin/geosync/internal/logger"
	"github.com/sgurin/geosync/models"
)

func newTestRunRepo(t *testing.T) (*runRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.Nop()
	repo := &runRepository{
		db:     &DB{DB: db, logger: l},
		logger: l,
	}
	return repo, mock, db
}

func sampleRun(id string, started time.Time) models.RunRecord {
	return models.RunRecord{
		RunID:        id,
		Started:      started,
		Finished:     started.Add(time.Minute),
		Status:       "succeeded",
		SourceFile:   "PAYMENTS_20260823.csv",
		RowsRead:     100,
		RowsRejected: 5,
		Inserted:     12,
		Updated:      83,
		Summary:      "digest",
	}
}

func runRows(records ...models.RunRecord) *sqlmock.Rows {
	rows := sqlmock.NewRows(runColumns)
	for _, r := range records {
		rows.AddRow(r.RunID, r.Started, r.Finished, r.Status, r.SourceFile,
			r.RowsRead, r.RowsRejected, r.Inserted, r.Updated, r.Summary)
	}
	return rows
}

func TestSaveRun_Success(t *testing.T) {
	repo, mock, db := newTestRunRepo(t)
	defer db.Close()

	record := sampleRun("run-1", time.Now())

	mock.ExpectExec("REPLACE INTO runs").
		WithArgs(record.RunID, record.Started, record.Finished, record.Status, record.SourceFile,
			record.RowsRead, record.RowsRejected, record.Inserted, record.Updated, record.Summary).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.SaveRun(context.Background(), record); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSaveRun_DBError(t *testing.T) {
	repo, mock, db := newTestRunRepo(t)
	defer db.Close()

	mock.ExpectExec("REPLACE INTO runs").
		WillReturnError(errors.New("db locked"))

	err := repo.SaveRun(context.Background(), sampleRun("run-1", time.Now()))
	if err == nil || !strings.Contains(err.Error(), "unexpected DB error") {
		t.Fatalf("expected wrapped unexpected DB error, got %v", err)
	}
}

func TestRecentRuns_NewestFirst(t *testing.T) {
	repo, mock, db := newTestRunRepo(t)
	defer db.Close()

	now := time.Now()
	newer := sampleRun("run-2", now)
	older := sampleRun("run-1", now.Add(-time.Hour))

	mock.ExpectQuery("SELECT (.+) FROM runs ORDER BY started DESC").
		WillReturnRows(runRows(newer, older))

	records, err := repo.RecentRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].RunID != "run-2" || records[1].RunID != "run-1" {
		t.Errorf("expected newest first, got %s, %s", records[0].RunID, records[1].RunID)
	}
}

func TestRecentRuns_Empty(t *testing.T) {
	repo, mock, db := newTestRunRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM runs").
		WillReturnRows(runRows())

	records, err := repo.RecentRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestFindRun_Success(t *testing.T) {
	repo, mock, db := newTestRunRepo(t)
	defer db.Close()

	record := sampleRun("run-1", time.Now())

	mock.ExpectQuery("SELECT (.+) FROM runs WHERE run_id").
		WithArgs("run-1").
		WillReturnRows(runRows(record))

	found, err := repo.FindRun(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.RunID != "run-1" || found.RowsRead != 100 {
		t.Errorf("unexpected record: %+v", found)
	}
}

func TestFindRun_NotFound(t *testing.T) {
	repo, mock, db := newTestRunRepo(t)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM runs WHERE run_id").
		WithArgs("run-404").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindRun(context.Background(), "run-404")
	if !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestPrune_ReportsDeleted(t *testing.T) {
	repo, mock, db := newTestRunRepo(t)
	defer db.Close()

	mock.ExpectExec("DELETE FROM runs").
		WithArgs(50).
		WillReturnResult(sqlmock.NewResult(0, 7))

	deleted, err := repo.Prune(context.Background(), 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 7 {
		t.Errorf("expected 7 deleted, got %d", deleted)
	}
}

func TestPrune_DBError(t *testing.T) {
	repo, mock, db := newTestRunRepo(t)
	defer db.Close()

	mock.ExpectExec("DELETE FROM runs").
		WillReturnError(errors.New("db locked"))

	_, err := repo.Prune(context.Background(), 50)
	if err == nil || !strings.Contains(err.Error(), "unexpected DB error") {
		t.Fatalf("expected wrapped unexpected DB error, got %v", err)
	}
}
