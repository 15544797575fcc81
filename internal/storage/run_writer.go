package storage

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// RunRecord is one coverage run as stored in the history.
type RunRecord struct {
	RunID        string
	StartedAt    time.Time
	SnapshotPath string
	Total        int
	Documented   int
	Undocumented int
	Unchanged    int
	Modified     int
	Added        int
	Removed      int
	FailedFiles  int
	Duration     time.Duration
	Passed       bool
	Files        []*RunFile // Empty when listed, filled by GetRun
}

// RunFile is the coverage of one file within a run.
type RunFile struct {
	FilePath   string
	Documented int
	Total      int
}

// Percent is the documented share of the run, 100 when nothing is counted.
func (r *RunRecord) Percent() float64 {
	if r.Total == 0 {
		return 100
	}
	return float64(r.Documented) * 100 / float64(r.Total)
}

// RunWriter records runs in the history database.
type RunWriter struct {
	db *sql.DB
}

// NewRunWriter creates a RunWriter instance.
// DB must have schema already created via CreateSchema().
func NewRunWriter(db *sql.DB) *RunWriter {
	return &RunWriter{db: db}
}

// WriteRun stores a run and its per-file rows in a single transaction.
// A missing RunID is filled with a new UUID; the ID used is returned.
func (w *RunWriter) WriteRun(run *RunRecord) (string, error) {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}

	tx, err := w.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	_, err = sq.Insert("runs").
		Columns(
			"run_id", "started_at", "snapshot_path",
			"total", "documented", "undocumented",
			"unchanged", "modified", "added", "removed",
			"failed_files", "duration_ms", "passed",
		).
		Values(
			run.RunID,
			run.StartedAt.UTC().Format(time.RFC3339Nano),
			run.SnapshotPath,
			run.Total,
			run.Documented,
			run.Undocumented,
			run.Unchanged,
			run.Modified,
			run.Added,
			run.Removed,
			run.FailedFiles,
			run.Duration.Milliseconds(),
			run.Passed,
		).
		RunWith(tx).
		Exec()
	if err != nil {
		return "", fmt.Errorf("failed to write run %s: %w", run.RunID, err)
	}

	if len(run.Files) > 0 {
		// Build the query once with Squirrel, then prepare it for the batch
		sqlStr, _, err := sq.Insert("run_files").
			Columns("run_id", "file_path", "documented", "total").
			Values("", "", 0, 0).
			ToSql()
		if err != nil {
			return "", fmt.Errorf("failed to build SQL: %w", err)
		}

		stmt, err := tx.Prepare(sqlStr)
		if err != nil {
			return "", fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, f := range run.Files {
			if _, err := stmt.Exec(run.RunID, f.FilePath, f.Documented, f.Total); err != nil {
				return "", fmt.Errorf("failed to insert file %s: %w", f.FilePath, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	return run.RunID, nil
}

// Prune keeps the newest keep runs and deletes the rest, returning how many were removed.
// Per-file rows go with their run through the foreign key cascade.
func (w *RunWriter) Prune(keep int) (int64, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must be non-negative, got %d", keep)
	}

	newest := sq.Select("run_id").
		From("runs").
		OrderBy("started_at DESC").
		Limit(uint64(keep))

	result, err := sq.Delete("runs").
		Where(sq.Expr("run_id NOT IN (?)", newest)).
		RunWith(w.db).
		Exec()
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	return result.RowsAffected()
}
