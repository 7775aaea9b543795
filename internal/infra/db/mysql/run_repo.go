package mysql

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

// Save inserts or updates a run record. Failed coordinates are stored as
// JSON on the row so targeted re-runs read the summary atomically.
func (r *RunRepository) Save(ctx context.Context, run *domain.Run) error {
	const q = `
INSERT INTO sweep_runs
(id, device, triggered_at, status, attempted, succeeded,
 failed_points, archive_path, archive_url, duration_ms)
VALUES (?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 status=VALUES(status),
 attempted=VALUES(attempted), succeeded=VALUES(succeeded),
 failed_points=VALUES(failed_points),
 archive_path=VALUES(archive_path), archive_url=VALUES(archive_url),
 duration_ms=VALUES(duration_ms);
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
WHERE id=? LIMIT 1;
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
ORDER BY triggered_at DESC LIMIT ?;
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
