package storage

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

var runColumns = []string{
	"run_id", "started_at", "snapshot_path",
	"total", "documented", "undocumented",
	"unchanged", "modified", "added", "removed",
	"failed_files", "duration_ms", "passed",
}

// RunReader reads recorded runs from the history database.
type RunReader struct {
	db *sql.DB
}

// NewRunReader creates a RunReader instance.
// DB should have schema already created.
func NewRunReader(db *sql.DB) *RunReader {
	return &RunReader{db: db}
}

// ListRuns returns the newest runs first, without per-file rows.
// A limit of zero or less returns every run.
func (r *RunReader) ListRuns(limit int) ([]*RunRecord, error) {
	query := sq.Select(runColumns...).
		From("runs").
		OrderBy("started_at DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	rows, err := query.RunWith(r.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// GetRun retrieves one run with its per-file rows sorted by path.
// Returns (nil, nil) if the run is not found.
func (r *RunReader) GetRun(runID string) (*RunRecord, error) {
	row := sq.Select(runColumns...).
		From("runs").
		Where(sq.Eq{"run_id": runID}).
		RunWith(r.db).
		QueryRow()

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := sq.Select("file_path", "documented", "total").
		From("run_files").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("file_path").
		RunWith(r.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query files of run %s: %w", runID, err)
	}
	defer rows.Close()

	for rows.Next() {
		f := &RunFile{}
		if err := rows.Scan(&f.FilePath, &f.Documented, &f.Total); err != nil {
			return nil, fmt.Errorf("failed to scan run file: %w", err)
		}
		run.Files = append(run.Files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run files: %w", err)
	}
	return run, nil
}

// CountRuns returns the number of recorded runs.
func (r *RunReader) CountRuns() (int, error) {
	var count int
	err := sq.Select("COUNT(*)").From("runs").RunWith(r.db).QueryRow().Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*RunRecord, error) {
	run := &RunRecord{}
	var startedAt string
	var durationMS int64

	err := row.Scan(
		&run.RunID,
		&startedAt,
		&run.SnapshotPath,
		&run.Total,
		&run.Documented,
		&run.Undocumented,
		&run.Unchanged,
		&run.Modified,
		&run.Added,
		&run.Removed,
		&run.FailedFiles,
		&durationMS,
		&run.Passed,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return run, nil
}
