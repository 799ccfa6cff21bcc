package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories bundles all warehouse repositories
type Repositories struct {
	Exports *ExportRepository
	Runs    *RunRepository

	pool *pgxpool.Pool
}

// NewRepositories creates all repositories sharing one pool
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Exports: NewExportRepository(pool),
		Runs:    NewRunRepository(pool),
		pool:    pool,
	}
}

// Ping verifies the warehouse connection is alive.
func (r *Repositories) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// EnsureSchema creates all warehouse tables if they do not exist.
func (r *Repositories) EnsureSchema(ctx context.Context) error {
	if err := r.Exports.EnsureSchema(ctx); err != nil {
		return err
	}
	return r.Runs.EnsureSchema(ctx)
}
