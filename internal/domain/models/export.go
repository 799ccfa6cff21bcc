package models

import (
	"time"

	"github.com/google/uuid"
)

// Export table names consumed by the dashboard import step.
const (
	TableNetworkEvents    = "network_events"
	TableOperatorMetrics  = "operator_metrics"
	TableRegionalSummary  = "regional_summary"
	TableTowerPerformance = "tower_performance"
)

// EventExport is the column projection of AnalyzedEvent handed to the
// dashboard. Complaints stay out of the event-level export; they only
// surface in the regional rollup.
type EventExport struct {
	Timestamp          time.Time `json:"timestamp" db:"event_timestamp"`
	TowerID            string    `json:"tower_id" db:"tower_id"`
	Region             string    `json:"region" db:"region"`
	OperatorID         string    `json:"operator_id" db:"operator_id"`
	IssueType          IssueType `json:"issue_type" db:"issue_type"`
	HasIssue           bool      `json:"has_issue" db:"has_issue"`
	IsCritical         bool      `json:"is_critical" db:"is_critical"`
	ResponseTimeMin    float64   `json:"response_time_min" db:"response_time_min"`
	ResolutionTimeMin  float64   `json:"resolution_time_min" db:"resolution_time_min"`
	NetworkUptimePct   float64   `json:"network_uptime_pct" db:"network_uptime_pct"`
	DataThroughputMbps float64   `json:"data_throughput_mbps" db:"data_throughput_mbps"`
	PerformanceScore   float64   `json:"performance_score" db:"performance_score"`
}

// ExportBundle holds the four export-ready tables for one pipeline run.
type ExportBundle struct {
	RunID       uuid.UUID `json:"run_id"`
	Seed        int64     `json:"seed"`
	GeneratedAt time.Time `json:"generated_at"`

	NetworkEvents    []EventExport     `json:"network_events"`
	OperatorMetrics  []OperatorMetrics `json:"operator_metrics"`
	RegionalSummary  []RegionalSummary `json:"regional_summary"`
	TowerPerformance []TowerMetrics    `json:"tower_performance"`
}

// Stats summarizes a bundle for the dashboard landing view.
type Stats struct {
	RunID             uuid.UUID `json:"run_id"`
	GeneratedAt       time.Time `json:"generated_at"`
	TotalEvents       int       `json:"total_events"`
	EventsWithIssues  int       `json:"events_with_issues"`
	CriticalEvents    int       `json:"critical_events"`
	IssueRatePct      float64   `json:"issue_rate_pct"`
	AvgUptimePct      float64   `json:"avg_uptime_pct"`
	AvgResponseTime   float64   `json:"avg_response_time_min"`
	OperatorsAnalyzed int       `json:"operators_analyzed"`
	RegionsCovered    int       `json:"regions_covered"`
	TowersCovered     int       `json:"towers_covered"`
	AvgDetectionRate  float64   `json:"avg_detection_rate"`
	AvgImprovementPct float64   `json:"avg_improvement_pct"`
}

// ComputeStats derives the summary view from the bundle tables.
func (b *ExportBundle) ComputeStats() Stats {
	s := Stats{
		RunID:             b.RunID,
		GeneratedAt:       b.GeneratedAt,
		TotalEvents:       len(b.NetworkEvents),
		OperatorsAnalyzed: len(b.OperatorMetrics),
		RegionsCovered:    len(b.RegionalSummary),
		TowersCovered:     len(b.TowerPerformance),
	}

	var uptimeSum, responseSum float64
	for _, e := range b.NetworkEvents {
		if e.HasIssue {
			s.EventsWithIssues++
		}
		if e.IsCritical {
			s.CriticalEvents++
		}
		uptimeSum += e.NetworkUptimePct
		responseSum += e.ResponseTimeMin
	}
	if s.TotalEvents > 0 {
		s.IssueRatePct = 100 * float64(s.EventsWithIssues) / float64(s.TotalEvents)
		s.AvgUptimePct = uptimeSum / float64(s.TotalEvents)
		s.AvgResponseTime = responseSum / float64(s.TotalEvents)
	}

	var detectionSum, improvementSum float64
	for _, m := range b.OperatorMetrics {
		detectionSum += m.DetectionRate
		improvementSum += m.PerformanceImprovementPct
	}
	if len(b.OperatorMetrics) > 0 {
		s.AvgDetectionRate = detectionSum / float64(len(b.OperatorMetrics))
		s.AvgImprovementPct = improvementSum / float64(len(b.OperatorMetrics))
	}

	return s
}
