package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"netpulse-lab/internal/domain/models"
	"netpulse-lab/pkg/logger"
)

// Exporter shapes analyzed events and operator metrics into the four
// export-ready tables. It draws no randomness: the output is a pure
// projection/aggregation of its inputs, with rollups sorted by group key
// so repeated runs produce row-identical tables.
type Exporter struct {
	logger *logger.Logger
}

// NewExporter creates a new Exporter
func NewExporter(log *logger.Logger) *Exporter {
	return &Exporter{
		logger: log.WithComponent("exporter"),
	}
}

type regionAccumulator struct {
	issues     int
	events     int
	complaints int
	uptimeSum  float64
	scoreSum   float64
}

type towerAccumulator struct {
	issues    int
	events    int
	uptimeSum float64
	scoreSum  float64
}

// BuildExports builds the four dashboard tables. Both inputs must come
// from prior stages; an empty one means a stage was skipped.
func (e *Exporter) BuildExports(ctx context.Context, analyzed []models.AnalyzedEvent, operators []models.OperatorMetrics) (*models.ExportBundle, error) {
	if len(analyzed) == 0 {
		return nil, ErrNoAnalysis
	}
	if len(operators) == 0 {
		return nil, ErrNoOperatorMetrics
	}

	events := make([]models.EventExport, len(analyzed))
	regionAcc := make(map[string]*regionAccumulator)
	towerAcc := make(map[string]*towerAccumulator)

	for i, a := range analyzed {
		events[i] = models.EventExport{
			Timestamp:          a.Timestamp,
			TowerID:            a.TowerID,
			Region:             a.Region,
			OperatorID:         a.OperatorID,
			IssueType:          a.IssueType,
			HasIssue:           a.HasIssue,
			IsCritical:         a.IsCritical,
			ResponseTimeMin:    a.ResponseTimeMin,
			ResolutionTimeMin:  a.ResolutionTimeMin,
			NetworkUptimePct:   a.NetworkUptimePct,
			DataThroughputMbps: a.DataThroughputMbps,
			PerformanceScore:   a.PerformanceScore,
		}

		r, ok := regionAcc[a.Region]
		if !ok {
			r = &regionAccumulator{}
			regionAcc[a.Region] = r
		}
		if a.HasIssue {
			r.issues++
		}
		r.events++
		r.complaints += a.CustomerComplaints
		r.uptimeSum += a.NetworkUptimePct
		r.scoreSum += a.PerformanceScore

		t, ok := towerAcc[a.TowerID]
		if !ok {
			t = &towerAccumulator{}
			towerAcc[a.TowerID] = t
		}
		if a.HasIssue {
			t.issues++
		}
		t.events++
		t.uptimeSum += a.NetworkUptimePct
		t.scoreSum += a.PerformanceScore
	}

	bundle := &models.ExportBundle{
		RunID:            uuid.New(),
		GeneratedAt:      time.Now().UTC(),
		NetworkEvents:    events,
		OperatorMetrics:  operators,
		RegionalSummary:  buildRegionalSummary(regionAcc),
		TowerPerformance: buildTowerPerformance(towerAcc),
	}

	e.logger.Info().
		Int("network_events", len(bundle.NetworkEvents)).
		Int("operator_metrics", len(bundle.OperatorMetrics)).
		Int("regional_summary", len(bundle.RegionalSummary)).
		Int("tower_performance", len(bundle.TowerPerformance)).
		Msg("built dashboard exports")

	return bundle, nil
}

func buildRegionalSummary(acc map[string]*regionAccumulator) []models.RegionalSummary {
	names := make([]string, 0, len(acc))
	for name := range acc {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]models.RegionalSummary, len(names))
	for i, name := range names {
		r := acc[name]
		n := float64(r.events)
		rows[i] = models.RegionalSummary{
			Region:          name,
			TotalIssues:     r.issues,
			TotalEvents:     r.events,
			AvgUptime:       r.uptimeSum / n,
			AvgPerformance:  r.scoreSum / n,
			TotalComplaints: r.complaints,
		}
	}
	return rows
}

func buildTowerPerformance(acc map[string]*towerAccumulator) []models.TowerMetrics {
	ids := make([]string, 0, len(acc))
	for id := range acc {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	rows := make([]models.TowerMetrics, len(ids))
	for i, id := range ids {
		t := acc[id]
		n := float64(t.events)
		rows[i] = models.TowerMetrics{
			TowerID:          id,
			TotalIssues:      t.issues,
			AvgUptime:        t.uptimeSum / n,
			PerformanceScore: t.scoreSum / n,
		}
	}
	return rows
}
