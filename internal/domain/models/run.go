package models

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus is the lifecycle state of a pipeline run.
type RunStatus string

const (
	RunStatusInProgress RunStatus = "in_progress"
	RunStatusSuccess    RunStatus = "success"
	RunStatusFailed     RunStatus = "failed"
)

// PipelineRun records one execution of the full pipeline.
type PipelineRun struct {
	ID            uuid.UUID `json:"id" db:"id"`
	StartedAt     time.Time `json:"started_at" db:"started_at"`
	CompletedAt   time.Time `json:"completed_at" db:"completed_at"`
	Status        RunStatus `json:"status" db:"status"`
	Seed          int64     `json:"seed" db:"seed"`
	EventCount    int       `json:"event_count" db:"event_count"`
	OperatorCount int       `json:"operator_count" db:"operator_count"`
	RegionCount   int       `json:"region_count" db:"region_count"`
	TowerCount    int       `json:"tower_count" db:"tower_count"`
	Error         string    `json:"error,omitempty" db:"error"`
}

// Duration returns how long the run took.
func (r *PipelineRun) Duration() time.Duration {
	if r.CompletedAt.IsZero() {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}
