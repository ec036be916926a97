package scraper

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"bangumi/pkg/models"
)

// Run states recorded in the ledger.
const (
	RunRunning   = "running"
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)

// RunRecord is one pipeline run as stored in the ledger.
type RunRecord struct {
	ID         string
	Username   string
	Status     string
	Error      string
	Counts     map[string]int
	Skipped    int
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Ledger records the outcome of every pipeline run.
type Ledger struct {
	DB *sql.DB
}

// NewLedger wraps db. The schema must already be migrated.
func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{DB: db}
}

// Start inserts a running row for the run.
func (l *Ledger) Start(ctx context.Context, id, username string, startedAt time.Time) error {
	_, err := l.DB.ExecContext(ctx, `
		INSERT INTO runs (id, username, status, started_at)
		VALUES (?, ?, ?, ?)
	`, id, username, RunRunning, startedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert run %s: %w", id, err)
	}
	return nil
}

// Finish stores the final state of the run described by report.
func (l *Ledger) Finish(ctx context.Context, report *RunReport, runErr error) error {
	status, msg := RunSucceeded, ""
	if runErr != nil {
		status, msg = RunFailed, runErr.Error()
	}
	_, err := l.DB.ExecContext(ctx, `
		UPDATE runs
		SET status = ?, error = ?, want = ?, watched = ?, watching = ?, skipped = ?, finished_at = ?
		WHERE id = ?
	`,
		status, msg,
		report.Counts[models.CategoryWant], report.Counts[models.CategoryWatched], report.Counts[models.CategoryWatching],
		report.Skipped, report.FinishedAt.UTC(), report.RunID,
	)
	if err != nil {
		return fmt.Errorf("update run %s: %w", report.RunID, err)
	}
	return nil
}

// List returns the most recent runs first. limit <= 0 means 20.
func (l *Ledger) List(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.DB.QueryContext(ctx, `
		SELECT id, username, status, error, want, watched, watching, skipped, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			r                       RunRecord
			want, watched, watching int
			finished                sql.NullTime
		)
		if err := rows.Scan(&r.ID, &r.Username, &r.Status, &r.Error, &want, &watched, &watching, &r.Skipped, &r.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Counts = map[string]int{
			models.CategoryWant:     want,
			models.CategoryWatched:  watched,
			models.CategoryWatching: watching,
		}
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
