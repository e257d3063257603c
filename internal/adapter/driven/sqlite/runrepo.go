package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mapops/volcsync/internal/domain/model"
	"github.com/mapops/volcsync/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RunStore = (*RunRepo)(nil)

// RunRepo is the SQLite implementation of the RunStore port interface.
// Runs are append-only; rows are never updated or deleted.
type RunRepo struct {
	db *DB
}

// NewRunRepo creates a new RunRepo.
func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// Append records a completed run and returns its assigned ID.
func (r *RunRepo) Append(ctx context.Context, rec model.RunRecord) (int64, error) {
	const query = `
		INSERT INTO runs (started_at, finished_at, duration_ms, state, dataset_path, dataset_bytes, item_id, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.Writer.ExecContext(ctx, query,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
		rec.Duration.Milliseconds(),
		string(rec.State),
		rec.DatasetPath,
		rec.DatasetBytes,
		rec.ItemID,
		rec.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("append run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append run id: %w", err)
	}
	return id, nil
}

// ListRecent returns up to limit runs, most recent first.
func (r *RunRepo) ListRecent(ctx context.Context, limit int) ([]model.RunRecord, error) {
	const query = `
		SELECT id, started_at, finished_at, duration_ms, state, dataset_path, dataset_bytes, item_id, error
		FROM runs ORDER BY id DESC LIMIT ?`

	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var recs []model.RunRecord
	for rows.Next() {
		var rec model.RunRecord
		var startedAt, finishedAt, state string
		var durationMS int64
		if err := rows.Scan(&rec.ID, &startedAt, &finishedAt, &durationMS, &state,
			&rec.DatasetPath, &rec.DatasetBytes, &rec.ItemID, &rec.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}

		if rec.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at for run %d: %w", rec.ID, err)
		}
		if rec.FinishedAt, err = parseTime(finishedAt); err != nil {
			return nil, fmt.Errorf("parse finished_at for run %d: %w", rec.ID, err)
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		rec.State = model.RunState(state)

		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return recs, nil
}
