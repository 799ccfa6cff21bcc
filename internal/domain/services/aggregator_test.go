package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netpulse-lab/internal/domain/models"
)

func TestAggregateEmptyInput(t *testing.T) {
	g := NewAggregator(testPipelineConfig(0, 42), testLogger())

	_, err := g.Aggregate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoAnalysis)
}

func TestAggregateSmallFixture(t *testing.T) {
	analyzed := []models.AnalyzedEvent{
		{
			NetworkEvent: models.NetworkEvent{
				OperatorID:         "OP_002",
				IssueType:          models.IssueCallDrop,
				ResponseTimeMin:    10,
				ResolutionTimeMin:  100,
				CustomerComplaints: 3,
			},
			HasIssue:             true,
			PerformanceScore:     0.5,
			ResolutionEfficiency: 0.2,
		},
		{
			NetworkEvent: models.NetworkEvent{
				OperatorID:         "OP_001",
				IssueType:          models.IssueNone,
				ResponseTimeMin:    20,
				ResolutionTimeMin:  40,
				CustomerComplaints: 1,
			},
			PerformanceScore:     0.9,
			ResolutionEfficiency: 1.0,
		},
		{
			NetworkEvent: models.NetworkEvent{
				OperatorID:         "OP_002",
				IssueType:          models.IssueNone,
				ResponseTimeMin:    30,
				ResolutionTimeMin:  60,
				CustomerComplaints: 0,
			},
			PerformanceScore:     0.7,
			ResolutionEfficiency: 1.0,
		},
	}

	metrics, err := NewAggregator(testPipelineConfig(3, 42), testLogger()).Aggregate(context.Background(), analyzed)
	require.NoError(t, err)
	require.Len(t, metrics, 2)

	// Sorted by operator ID.
	op1, op2 := metrics[0], metrics[1]
	assert.Equal(t, "OP_001", op1.OperatorID)
	assert.Equal(t, "OP_002", op2.OperatorID)

	assert.Equal(t, 0, op1.TotalIssues)
	assert.Equal(t, 1, op1.TotalEvents)
	assert.Equal(t, 1, op1.TotalComplaints)
	assert.InDelta(t, 20.0, op1.AvgResponseTime, 1e-12)
	assert.InDelta(t, 40.0, op1.AvgResolutionTime, 1e-12)
	assert.InDelta(t, 1.0, op1.EfficiencyScore, 1e-12)
	assert.InDelta(t, 0.9, op1.PerformanceScore, 1e-12)

	assert.Equal(t, 1, op2.TotalIssues)
	assert.Equal(t, 2, op2.TotalEvents)
	assert.Equal(t, 3, op2.TotalComplaints)
	assert.InDelta(t, 20.0, op2.AvgResponseTime, 1e-12)
	assert.InDelta(t, 80.0, op2.AvgResolutionTime, 1e-12)
	assert.InDelta(t, 0.6, op2.EfficiencyScore, 1e-12)
	assert.InDelta(t, 0.6, op2.PerformanceScore, 1e-12)

	// OP_001 wins on both scores.
	assert.Equal(t, 1, op1.EfficiencyRank)
	assert.Equal(t, 1, op1.PerformanceRank)
	assert.Equal(t, 2, op2.EfficiencyRank)
	assert.Equal(t, 2, op2.PerformanceRank)
}

func TestAggregateOverlayBounds(t *testing.T) {
	metrics := aggregateFullRun(t, 42)

	for _, m := range metrics {
		assert.GreaterOrEqual(t, m.DetectionRate, 0.70)
		assert.LessOrEqual(t, m.DetectionRate, 0.85)
		assert.GreaterOrEqual(t, m.PerformanceImprovementPct, 30.0)
		assert.LessOrEqual(t, m.PerformanceImprovementPct, 45.0)
	}
}

func TestAggregateOverlayDeterministic(t *testing.T) {
	first := aggregateFullRun(t, 42)
	second := aggregateFullRun(t, 42)

	assert.Equal(t, first, second, "same seed must reproduce the same metrics")
}

func TestAggregateRanksArePermutation(t *testing.T) {
	metrics := aggregateFullRun(t, 42)

	effSeen := make(map[int]bool)
	perfSeen := make(map[int]bool)
	for _, m := range metrics {
		assert.False(t, effSeen[m.EfficiencyRank], "duplicate efficiency rank %d", m.EfficiencyRank)
		assert.False(t, perfSeen[m.PerformanceRank], "duplicate performance rank %d", m.PerformanceRank)
		effSeen[m.EfficiencyRank] = true
		perfSeen[m.PerformanceRank] = true

		assert.GreaterOrEqual(t, m.EfficiencyRank, 1)
		assert.LessOrEqual(t, m.EfficiencyRank, len(metrics))
		assert.GreaterOrEqual(t, m.PerformanceRank, 1)
		assert.LessOrEqual(t, m.PerformanceRank, len(metrics))
	}
}

func TestAggregateRankOrdering(t *testing.T) {
	metrics := aggregateFullRun(t, 42)

	byEffRank := make([]models.OperatorMetrics, len(metrics))
	byPerfRank := make([]models.OperatorMetrics, len(metrics))
	for _, m := range metrics {
		byEffRank[m.EfficiencyRank-1] = m
		byPerfRank[m.PerformanceRank-1] = m
	}

	for i := 1; i < len(byEffRank); i++ {
		assert.GreaterOrEqual(t, byEffRank[i-1].EfficiencyScore, byEffRank[i].EfficiencyScore)
		assert.GreaterOrEqual(t, byPerfRank[i-1].PerformanceScore, byPerfRank[i].PerformanceScore)
	}
}

func aggregateFullRun(t *testing.T, seed int64) []models.OperatorMetrics {
	t.Helper()
	ctx := context.Background()
	cfg := testPipelineConfig(2000, seed)

	events, err := NewGenerator(cfg, testLogger()).Generate(ctx, 2000)
	require.NoError(t, err)
	analyzed, err := NewAnalyzer(testLogger()).Analyze(ctx, events)
	require.NoError(t, err)
	metrics, err := NewAggregator(cfg, testLogger()).Aggregate(ctx, analyzed)
	require.NoError(t, err)
	require.NotEmpty(t, metrics)
	return metrics
}
