package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"netpulse-lab/internal/domain/models"
)

// ErrNoRuns is returned when the run history is empty.
var ErrNoRuns = errors.New("no pipeline runs recorded")

// RunRepository persists pipeline run history.
type RunRepository struct {
	pool *pgxpool.Pool
}

// NewRunRepository creates a new run repository
func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

const runSchema = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
	id             UUID PRIMARY KEY,
	started_at     TIMESTAMPTZ NOT NULL,
	completed_at   TIMESTAMPTZ NOT NULL,
	status         TEXT NOT NULL,
	seed           BIGINT NOT NULL,
	event_count    INTEGER NOT NULL,
	operator_count INTEGER NOT NULL,
	region_count   INTEGER NOT NULL,
	tower_count    INTEGER NOT NULL,
	error          TEXT NOT NULL DEFAULT ''
);
`

// EnsureSchema creates the run history table if it does not exist.
func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, runSchema)
	if err != nil {
		return fmt.Errorf("failed to create run schema: %w", err)
	}
	return nil
}

// Record inserts a completed run.
func (r *RunRepository) Record(ctx context.Context, run *models.PipelineRun) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO pipeline_runs
			(id, started_at, completed_at, status, seed,
			 event_count, operator_count, region_count, tower_count, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		run.ID, run.StartedAt, run.CompletedAt, string(run.Status), run.Seed,
		run.EventCount, run.OperatorCount, run.RegionCount, run.TowerCount, run.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record pipeline run: %w", err)
	}
	return nil
}

// Latest returns the most recently started run.
func (r *RunRepository) Latest(ctx context.Context) (*models.PipelineRun, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, started_at, completed_at, status, seed,
		       event_count, operator_count, region_count, tower_count, error
		FROM pipeline_runs
		ORDER BY started_at DESC
		LIMIT 1`)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoRuns
		}
		return nil, fmt.Errorf("failed to fetch latest run: %w", err)
	}
	return run, nil
}

// ListRecent returns up to limit runs, newest first.
func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]*models.PipelineRun, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, started_at, completed_at, status, seed,
		       event_count, operator_count, region_count, tower_count, error
		FROM pipeline_runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.PipelineRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanRun(row pgx.Row) (*models.PipelineRun, error) {
	var run models.PipelineRun
	var status string
	err := row.Scan(
		&run.ID, &run.StartedAt, &run.CompletedAt, &status, &run.Seed,
		&run.EventCount, &run.OperatorCount, &run.RegionCount, &run.TowerCount, &run.Error,
	)
	if err != nil {
		return nil, err
	}
	run.Status = models.RunStatus(status)
	return &run, nil
}
