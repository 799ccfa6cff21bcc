package models

import "time"

// IssueType classifies a network event.
type IssueType string

const (
	IssueNone             IssueType = "No Issue"
	IssueCallDrop         IssueType = "Call Drop"
	IssueLowSignal        IssueType = "Low Signal"
	IssueCongestion       IssueType = "Network Congestion"
	IssueEquipmentFailure IssueType = "Equipment Failure"
)

// IsIssue reports whether the event represents an actual service issue.
func (t IssueType) IsIssue() bool {
	return t != IssueNone
}

// IsCritical reports whether the issue type is service-critical.
// Criticality is a function of the issue type alone.
func (t IssueType) IsCritical() bool {
	return t == IssueEquipmentFailure || t == IssueCongestion
}

// NetworkEvent is a single synthetic network observation.
type NetworkEvent struct {
	Timestamp          time.Time `json:"timestamp" db:"event_timestamp"`
	TowerID            string    `json:"tower_id" db:"tower_id"`
	Region             string    `json:"region" db:"region"`
	OperatorID         string    `json:"operator_id" db:"operator_id"`
	IssueType          IssueType `json:"issue_type" db:"issue_type"`
	ResponseTimeMin    float64   `json:"response_time_min" db:"response_time_min"`
	ResolutionTimeMin  float64   `json:"resolution_time_min" db:"resolution_time_min"`
	CustomerComplaints int       `json:"customer_complaints" db:"customer_complaints"`
	NetworkUptimePct   float64   `json:"network_uptime_pct" db:"network_uptime_pct"`
	DataThroughputMbps float64   `json:"data_throughput_mbps" db:"data_throughput_mbps"`
}

// AnalyzedEvent is a NetworkEvent with derived quality fields attached.
type AnalyzedEvent struct {
	NetworkEvent

	HasIssue   bool `json:"has_issue" db:"has_issue"`
	IsCritical bool `json:"is_critical" db:"is_critical"`

	// PerformanceScore is a weighted composite of uptime, issue-free
	// status and responsiveness, roughly in [0, 1].
	PerformanceScore float64 `json:"performance_score" db:"performance_score"`

	// ResolutionEfficiency is 1.0 for issue-free events; otherwise the
	// inverse of the resolution time normalized against the batch maximum.
	ResolutionEfficiency float64 `json:"resolution_efficiency" db:"resolution_efficiency"`
}
