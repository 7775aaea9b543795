package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	domain "github.com/analogtools/gmsweep/internal/domain/sweep"
)

type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Save inserts or updates a run record, failed coordinates as JSONB.
func (r *RunRepository) Save(ctx context.Context, run *domain.Run) error {
	const q = `
INSERT INTO sweep_runs
(id, device, triggered_at, status, attempted, succeeded,
 failed_points, archive_path, archive_url, duration_ms)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
 status=EXCLUDED.status,
 attempted=EXCLUDED.attempted, succeeded=EXCLUDED.succeeded,
 failed_points=EXCLUDED.failed_points,
 archive_path=EXCLUDED.archive_path, archive_url=EXCLUDED.archive_url,
 duration_ms=EXCLUDED.duration_ms;
`
	failedJSON, err := json.Marshal(run.Failed)
	if err != nil {
		return err
	}
	triggered := run.TriggeredAt
	if triggered.IsZero() {
		triggered = time.Now()
	}

	_, err = r.db.ExecContext(ctx, q,
		run.ID, run.Device, triggered, run.Status,
		run.Attempted, run.Succeeded,
		string(failedJSON), run.ArchivePath, run.ArchiveURL, run.DurationMS,
	)
	return err
}

// Get by ID.
func (r *RunRepository) Get(ctx context.Context, id domain.RunID) (*domain.Run, error) {
	const q = `
SELECT id, device, triggered_at, status, attempted, succeeded,
       failed_points, archive_path, archive_url, duration_ms
FROM sweep_runs
WHERE id=$1 LIMIT 1;
`
	return scanRun(r.db.QueryRowContext(ctx, q, id))
}

// Latest runs, newest first.
func (r *RunRepository) Latest(ctx context.Context, limit int) ([]*domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, device, triggered_at, status, attempted, succeeded,
       failed_points, archive_path, archive_url, duration_ms
FROM sweep_runs
ORDER BY triggered_at DESC LIMIT $1;
`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.Run, error) {
	var run domain.Run
	var failedJSON string
	if err := row.Scan(
		&run.ID, &run.Device, &run.TriggeredAt, &run.Status,
		&run.Attempted, &run.Succeeded,
		&failedJSON, &run.ArchivePath, &run.ArchiveURL, &run.DurationMS,
	); err != nil {
		return nil, err
	}
	if failedJSON != "" {
		if err := json.Unmarshal([]byte(failedJSON), &run.Failed); err != nil {
			return nil, err
		}
	}
	return &run, nil
}
