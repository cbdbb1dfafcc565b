package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/nijaru/yt-transcript/errors"
)

const (
	RunSucceeded = "succeeded"
	// RunPartial is a continue-on-fail run where at least one item failed.
	RunPartial = "partial"
	RunFailed  = "failed"

	ItemSucceeded = "succeeded"
	ItemFailed    = "failed"
	ItemSkipped   = "skipped"
)

type Run struct {
	ID          string    `json:"id"`
	Node        string    `json:"node"`
	Status      string    `json:"status"`
	InputCount  int       `json:"input_count"`
	OutputCount int       `json:"output_count"`
	FailedCount int       `json:"failed_count"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	Items       []RunItem `json:"items,omitempty"`
}

type RunItem struct {
	Index      int             `json:"index"`
	URL        string          `json:"url,omitempty"`
	Status     string          `json:"status"`
	Error      string          `json:"error,omitempty"`
	Transcript json.RawMessage `json:"transcript,omitempty"`
}

// SaveRun inserts run and its items in one transaction.
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	const op = "Store.SaveRun"

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	err := withTransaction(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO runs (id, node, status, input_count, output_count, failed_count, error, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, run.Node, run.Status, run.InputCount, run.OutputCount, run.FailedCount,
			nullString(run.Error), run.CreatedAt,
		)
		if err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO run_items (run_id, item_index, url, status, error, transcript, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, item := range run.Items {
			_, err := stmt.ExecContext(ctx, run.ID, item.Index, nullString(item.URL), item.Status,
				nullString(item.Error), nullString(string(item.Transcript)), run.CreatedAt)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Internal(op, err, "failed to save run")
	}
	return nil
}

// GetRun loads a run with its items ordered by index.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	const op = "Store.GetRun"

	run, err := scanRun(s.db.QueryRowContext(ctx, `
		SELECT id, node, status, input_count, output_count, failed_count, error, created_at
		FROM runs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound(op, err, "Run not found")
	}
	if err != nil {
		return nil, errors.Internal(op, err, "failed to get run")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT item_index, url, status, error, transcript
		FROM run_items WHERE run_id = ? ORDER BY item_index`, id)
	if err != nil {
		return nil, errors.Internal(op, err, "failed to get run items")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item                    RunItem
			url, errMsg, transcript sql.NullString
		)
		if err := rows.Scan(&item.Index, &url, &item.Status, &errMsg, &transcript); err != nil {
			return nil, errors.Internal(op, err, "failed to scan run item")
		}
		item.URL = url.String
		item.Error = errMsg.String
		if transcript.Valid && transcript.String != "" {
			item.Transcript = json.RawMessage(transcript.String)
		}
		run.Items = append(run.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal(op, err, "failed to read run items")
	}
	return run, nil
}

// ListRuns returns the most recent runs without their items.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	const op = "Store.ListRuns"

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, node, status, input_count, output_count, failed_count, error, created_at
		FROM runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Internal(op, err, "failed to list runs")
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, errors.Internal(op, err, "failed to scan run")
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal(op, err, "failed to read runs")
	}
	return runs, nil
}

func (s *Store) DeleteRun(ctx context.Context, id string) error {
	const op = "Store.DeleteRun"

	var affected int64
	err := withTransaction(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM run_items WHERE run_id = ?", id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return errors.Internal(op, err, "failed to delete run")
	}
	if affected == 0 {
		return errors.NotFound(op, nil, "Run not found")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run    Run
		errMsg sql.NullString
	)
	err := row.Scan(&run.ID, &run.Node, &run.Status, &run.InputCount, &run.OutputCount,
		&run.FailedCount, &errMsg, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	run.Error = errMsg.String
	return &run, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
