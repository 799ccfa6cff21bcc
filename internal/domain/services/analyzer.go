package services

import (
	"context"
	"math"

	"netpulse-lab/internal/domain/models"
	"netpulse-lab/pkg/logger"
)

// Performance score weights. They sum to 1 so the composite stays
// roughly within [0, 1].
const (
	weightUptime     = 0.4
	weightIssueFree  = 0.3
	weightResponse   = 0.3
	responseDecayMin = 60.0
)

// Analyzer derives per-event quality fields from generated events.
type Analyzer struct {
	logger *logger.Logger
}

// NewAnalyzer creates a new Analyzer
func NewAnalyzer(log *logger.Logger) *Analyzer {
	return &Analyzer{
		logger: log.WithComponent("analyzer"),
	}
}

// Analyze computes derived fields for every event. Resolution efficiency
// is normalized against the batch maximum resolution time, so this is an
// explicit two-pass transform: the whole batch must be reduced before any
// row can be finalized. It cannot be computed row-at-a-time.
func (a *Analyzer) Analyze(ctx context.Context, events []models.NetworkEvent) ([]models.AnalyzedEvent, error) {
	if len(events) == 0 {
		return nil, ErrNoEvents
	}

	// Pass 1: batch maximum resolution time.
	var maxResolution float64
	for _, e := range events {
		if e.ResolutionTimeMin > maxResolution {
			maxResolution = e.ResolutionTimeMin
		}
	}

	// Pass 2: per-row derivation.
	analyzed := make([]models.AnalyzedEvent, len(events))
	var issues, critical int
	for i, e := range events {
		hasIssue := e.IssueType.IsIssue()
		isCritical := e.IssueType.IsCritical()

		issueFree := 1.0
		if hasIssue {
			issueFree = 0.0
			issues++
		}
		if isCritical {
			critical++
		}

		score := weightUptime*(e.NetworkUptimePct/100) +
			weightIssueFree*issueFree +
			weightResponse*math.Exp(-e.ResponseTimeMin/responseDecayMin)

		efficiency := 1.0
		if hasIssue && maxResolution > 0 {
			efficiency = 1 - e.ResolutionTimeMin/maxResolution
		}

		analyzed[i] = models.AnalyzedEvent{
			NetworkEvent:         e,
			HasIssue:             hasIssue,
			IsCritical:           isCritical,
			PerformanceScore:     score,
			ResolutionEfficiency: efficiency,
		}
	}

	a.logger.Info().
		Int("events", len(analyzed)).
		Int("with_issues", issues).
		Int("critical", critical).
		Float64("max_resolution_min", maxResolution).
		Msg("analyzed network issues")

	return analyzed, nil
}
