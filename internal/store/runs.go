package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Kvnq-Poza/a11y-live/idgen"
	"github.com/Kvnq-Poza/a11y-live/internal/dbopen"
	"github.com/Kvnq-Poza/a11y-live/report"
	"github.com/Kvnq-Poza/a11y-live/rules"
)

// Run is one persisted analysis cycle.
type Run struct {
	ID       string
	Page     string
	Started  time.Time
	Duration time.Duration
	Total    int
	Errors   int
	Warnings int
	Info     int
}

// InsertRun persists a completed cycle and its results in one
// transaction, returning the run id.
func (s *Store) InsertRun(ctx context.Context, page string, started time.Time, duration time.Duration, summary report.Summary, results []*report.Result) (string, error) {
	id := idgen.Prefixed("run_", idgen.Default)()

	err := dbopen.RunTx(ctx, s.DB, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO runs (id, page, started_at, duration_ms, total, errors, warnings, info)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, page, started.UnixMilli(), duration.Milliseconds(),
			summary.Total, summary.Errors, summary.Warnings, summary.Info)
		if err != nil {
			return fmt.Errorf("store: insert run: %w", err)
		}
		for i, res := range results {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO violations (run_id, position, rule_id, severity, category, wcag, selector, impact, message, location)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				id, i, res.RuleID, string(res.Severity), string(res.Category),
				res.WCAG, res.Selector, res.Impact, res.Message, res.Location)
			if err != nil {
				return fmt.Errorf("store: insert violation %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, page, started_at, duration_ms, total, errors, warnings, info
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r          Run
			startedMS  int64
			durationMS int64
		)
		if err := rows.Scan(&r.ID, &r.Page, &startedMS, &durationMS,
			&r.Total, &r.Errors, &r.Warnings, &r.Info); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		r.Started = time.UnixMilli(startedMS)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunViolations returns the persisted violations of one run in stored
// order.
func (s *Store) RunViolations(ctx context.Context, runID string) ([]*report.Result, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT rule_id, severity, category, wcag, selector, impact, message, location
		 FROM violations WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("store: run violations: %w", err)
	}
	defer rows.Close()

	var out []*report.Result
	for rows.Next() {
		var (
			res      report.Result
			severity string
			category string
		)
		if err := rows.Scan(&res.RuleID, &severity, &category, &res.WCAG,
			&res.Selector, &res.Impact, &res.Message, &res.Location); err != nil {
			return nil, fmt.Errorf("store: scan violation: %w", err)
		}
		res.Severity = rules.Severity(severity)
		res.Category = rules.Category(category)
		out = append(out, &res)
	}
	return out, rows.Err()
}
