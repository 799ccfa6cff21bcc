package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"netpulse-lab/internal/domain/models"
)

// ExportRepository loads export bundles into the dashboard warehouse.
// Each run replaces the previous contents: the dashboard always sees
// exactly one bundle.
type ExportRepository struct {
	pool *pgxpool.Pool
}

// NewExportRepository creates a new export repository
func NewExportRepository(pool *pgxpool.Pool) *ExportRepository {
	return &ExportRepository{pool: pool}
}

const exportSchema = `
CREATE TABLE IF NOT EXISTS network_events (
	run_id               UUID NOT NULL,
	event_timestamp      TIMESTAMPTZ NOT NULL,
	tower_id             TEXT NOT NULL,
	region               TEXT NOT NULL,
	operator_id          TEXT NOT NULL,
	issue_type           TEXT NOT NULL,
	has_issue            BOOLEAN NOT NULL,
	is_critical          BOOLEAN NOT NULL,
	response_time_min    DOUBLE PRECISION NOT NULL,
	resolution_time_min  DOUBLE PRECISION NOT NULL,
	network_uptime_pct   DOUBLE PRECISION NOT NULL,
	data_throughput_mbps DOUBLE PRECISION NOT NULL,
	performance_score    DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS operator_metrics (
	run_id                      UUID NOT NULL,
	operator_id                 TEXT NOT NULL,
	total_issues                INTEGER NOT NULL,
	total_events                INTEGER NOT NULL,
	avg_response_time           DOUBLE PRECISION NOT NULL,
	avg_resolution_time         DOUBLE PRECISION NOT NULL,
	efficiency_score            DOUBLE PRECISION NOT NULL,
	total_complaints            INTEGER NOT NULL,
	performance_score           DOUBLE PRECISION NOT NULL,
	detection_rate              DOUBLE PRECISION NOT NULL,
	performance_improvement_pct DOUBLE PRECISION NOT NULL,
	efficiency_rank             INTEGER NOT NULL,
	performance_rank            INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS regional_summary (
	run_id           UUID NOT NULL,
	region           TEXT NOT NULL,
	total_issues     INTEGER NOT NULL,
	total_events     INTEGER NOT NULL,
	avg_uptime       DOUBLE PRECISION NOT NULL,
	avg_performance  DOUBLE PRECISION NOT NULL,
	total_complaints INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tower_performance (
	run_id            UUID NOT NULL,
	tower_id          TEXT NOT NULL,
	total_issues      INTEGER NOT NULL,
	avg_uptime        DOUBLE PRECISION NOT NULL,
	performance_score DOUBLE PRECISION NOT NULL
);
`

// EnsureSchema creates the export tables if they do not exist.
func (r *ExportRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, exportSchema)
	if err != nil {
		return fmt.Errorf("failed to create export schema: %w", err)
	}
	return nil
}

// StoreBundle replaces the warehouse contents with the given bundle in a
// single transaction. Events go in via CopyFrom; the rollup tables are
// small enough that CopyFrom is still the simplest batch path.
func (r *ExportRepository) StoreBundle(ctx context.Context, b *models.ExportBundle) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, table := range []string{
		models.TableNetworkEvents,
		models.TableOperatorMetrics,
		models.TableRegionalSummary,
		models.TableTowerPerformance,
	} {
		if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+table); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}

	if err := copyEvents(ctx, tx, b); err != nil {
		return err
	}
	if err := copyOperators(ctx, tx, b); err != nil {
		return err
	}
	if err := copyRegions(ctx, tx, b); err != nil {
		return err
	}
	if err := copyTowers(ctx, tx, b); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func copyEvents(ctx context.Context, tx pgx.Tx, b *models.ExportBundle) error {
	rows := make([][]any, len(b.NetworkEvents))
	for i, e := range b.NetworkEvents {
		rows[i] = []any{
			b.RunID, e.Timestamp, e.TowerID, e.Region, e.OperatorID,
			string(e.IssueType), e.HasIssue, e.IsCritical,
			e.ResponseTimeMin, e.ResolutionTimeMin,
			e.NetworkUptimePct, e.DataThroughputMbps, e.PerformanceScore,
		}
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{models.TableNetworkEvents},
		[]string{
			"run_id", "event_timestamp", "tower_id", "region", "operator_id",
			"issue_type", "has_issue", "is_critical",
			"response_time_min", "resolution_time_min",
			"network_uptime_pct", "data_throughput_mbps", "performance_score",
		},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy network events: %w", err)
	}
	return nil
}

func copyOperators(ctx context.Context, tx pgx.Tx, b *models.ExportBundle) error {
	rows := make([][]any, len(b.OperatorMetrics))
	for i, m := range b.OperatorMetrics {
		rows[i] = []any{
			b.RunID, m.OperatorID, m.TotalIssues, m.TotalEvents,
			m.AvgResponseTime, m.AvgResolutionTime, m.EfficiencyScore,
			m.TotalComplaints, m.PerformanceScore,
			m.DetectionRate, m.PerformanceImprovementPct,
			m.EfficiencyRank, m.PerformanceRank,
		}
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{models.TableOperatorMetrics},
		[]string{
			"run_id", "operator_id", "total_issues", "total_events",
			"avg_response_time", "avg_resolution_time", "efficiency_score",
			"total_complaints", "performance_score",
			"detection_rate", "performance_improvement_pct",
			"efficiency_rank", "performance_rank",
		},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy operator metrics: %w", err)
	}
	return nil
}

func copyRegions(ctx context.Context, tx pgx.Tx, b *models.ExportBundle) error {
	rows := make([][]any, len(b.RegionalSummary))
	for i, s := range b.RegionalSummary {
		rows[i] = []any{
			b.RunID, s.Region, s.TotalIssues, s.TotalEvents,
			s.AvgUptime, s.AvgPerformance, s.TotalComplaints,
		}
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{models.TableRegionalSummary},
		[]string{
			"run_id", "region", "total_issues", "total_events",
			"avg_uptime", "avg_performance", "total_complaints",
		},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy regional summary: %w", err)
	}
	return nil
}

func copyTowers(ctx context.Context, tx pgx.Tx, b *models.ExportBundle) error {
	rows := make([][]any, len(b.TowerPerformance))
	for i, t := range b.TowerPerformance {
		rows[i] = []any{
			b.RunID, t.TowerID, t.TotalIssues, t.AvgUptime, t.PerformanceScore,
		}
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{models.TableTowerPerformance},
		[]string{"run_id", "tower_id", "total_issues", "avg_uptime", "performance_score"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy tower performance: %w", err)
	}
	return nil
}
