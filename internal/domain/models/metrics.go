package models

// OperatorMetrics is the per-operator rollup of analyzed events.
type OperatorMetrics struct {
	OperatorID        string  `json:"operator_id" db:"operator_id"`
	TotalIssues       int     `json:"total_issues" db:"total_issues"`
	TotalEvents       int     `json:"total_events" db:"total_events"`
	AvgResponseTime   float64 `json:"avg_response_time" db:"avg_response_time"`
	AvgResolutionTime float64 `json:"avg_resolution_time" db:"avg_resolution_time"`
	EfficiencyScore   float64 `json:"efficiency_score" db:"efficiency_score"`
	TotalComplaints   int     `json:"total_complaints" db:"total_complaints"`
	PerformanceScore  float64 `json:"performance_score" db:"performance_score"`

	// DetectionRate and PerformanceImprovementPct are presentational
	// placeholders drawn from a seeded overlay stream. They are not
	// derivable from the event data and must not be read as measurements.
	DetectionRate             float64 `json:"detection_rate" db:"detection_rate"`
	PerformanceImprovementPct float64 `json:"performance_improvement_pct" db:"performance_improvement_pct"`

	// Ranks run 1..n, best first. Ties are broken by operator ID ascending.
	EfficiencyRank  int `json:"efficiency_rank" db:"efficiency_rank"`
	PerformanceRank int `json:"performance_rank" db:"performance_rank"`
}

// RegionalSummary is the per-region rollup of analyzed events.
type RegionalSummary struct {
	Region          string  `json:"region" db:"region"`
	TotalIssues     int     `json:"total_issues" db:"total_issues"`
	TotalEvents     int     `json:"total_events" db:"total_events"`
	AvgUptime       float64 `json:"avg_uptime" db:"avg_uptime"`
	AvgPerformance  float64 `json:"avg_performance" db:"avg_performance"`
	TotalComplaints int     `json:"total_complaints" db:"total_complaints"`
}

// TowerMetrics is the per-tower rollup of analyzed events.
type TowerMetrics struct {
	TowerID          string  `json:"tower_id" db:"tower_id"`
	TotalIssues      int     `json:"total_issues" db:"total_issues"`
	AvgUptime        float64 `json:"avg_uptime" db:"avg_uptime"`
	PerformanceScore float64 `json:"performance_score" db:"performance_score"`
}
