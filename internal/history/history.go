// package history provides the persistence layer for the fetch journal.
//
// Each fetch run is recorded with its outcome counts and per-job failures.
// The journal is best-effort: callers log and continue when writes fail.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/ytmm/internal/shared"
)

// Run is one recorded fetch run.
type Run struct {
	ID         string
	Sequence   int
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Succeeded  int
	Failed     int
	Errors     []RunError
}

// RunError is one failed job within a run.
type RunError struct {
	SourceID string
	Reason   string
}

// NextSequence atomically increments and returns the next sequence number
// for the given table. Sequence numbers provide human-readable ordering for
// journal entries.
func NextSequence(db *sql.DB, table string) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sequenceTable := table + "_sequence"

	if _, err := tx.Exec(fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", sequenceTable)); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	if err := tx.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE id = 1", sequenceTable)).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sequence transaction: %w", err)
	}

	return sequence, nil
}

// RunRepository handles journal reads and writes over a SQLite database.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a run and its errors with generated ID and sequence.
func (r *RunRepository) Create(run *Run) error {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	run.ID = shared.GenerateID()
	run.Sequence = sequence

	query := `
		INSERT INTO runs (id, sequence, started_at, finished_at, total, succeeded, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		run.ID,
		run.Sequence,
		run.StartedAt,
		run.FinishedAt,
		run.Total,
		run.Succeeded,
		run.Failed,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, runErr := range run.Errors {
		query := `INSERT INTO run_errors (id, run_id, source_id, reason) VALUES (?, ?, ?, ?)`
		if _, err := r.db.Exec(query, shared.GenerateID(), run.ID, runErr.SourceID, runErr.Reason); err != nil {
			return fmt.Errorf("failed to insert run error: %w", err)
		}
	}

	return nil
}

// ListRecent returns the most recent runs, newest first, with their errors
// attached.
func (r *RunRepository) ListRecent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, sequence, started_at, finished_at, total, succeeded, failed
		FROM runs
		ORDER BY sequence DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Sequence, &run.StartedAt, &run.FinishedAt, &run.Total, &run.Succeeded, &run.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	for i := range runs {
		errs, err := r.errorsFor(runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Errors = errs
	}

	return runs, nil
}

func (r *RunRepository) errorsFor(runID string) ([]RunError, error) {
	query := `SELECT source_id, reason FROM run_errors WHERE run_id = ?`
	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run errors: %w", err)
	}
	defer rows.Close()

	var errs []RunError
	for rows.Next() {
		var re RunError
		if err := rows.Scan(&re.SourceID, &re.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan run error: %w", err)
		}
		errs = append(errs, re)
	}
	return errs, rows.Err()
}
