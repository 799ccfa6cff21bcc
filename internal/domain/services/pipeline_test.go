package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netpulse-lab/internal/domain/models"
)

func TestPipelineRun(t *testing.T) {
	cfg := testPipelineConfig(100, 42)
	p := NewPipeline(cfg, testLogger())

	bundle, run, err := p.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, bundle)
	require.NotNil(t, run)

	assert.Equal(t, models.RunStatusSuccess, run.Status)
	assert.Equal(t, int64(42), run.Seed)
	assert.Equal(t, 100, run.EventCount)
	assert.Equal(t, len(bundle.OperatorMetrics), run.OperatorCount)
	assert.Equal(t, len(bundle.RegionalSummary), run.RegionCount)
	assert.Equal(t, len(bundle.TowerPerformance), run.TowerCount)
	assert.Empty(t, run.Error)
	assert.False(t, run.CompletedAt.IsZero())

	assert.Equal(t, run.ID, bundle.RunID)
	assert.Equal(t, int64(42), bundle.Seed)
	assert.Len(t, bundle.NetworkEvents, 100)
	assert.LessOrEqual(t, len(bundle.OperatorMetrics), 20)
	assert.LessOrEqual(t, len(bundle.RegionalSummary), 5)
}

func TestPipelineRunFailure(t *testing.T) {
	cfg := testPipelineConfig(0, 42)
	p := NewPipeline(cfg, testLogger())

	bundle, run, err := p.Run(context.Background())
	assert.ErrorIs(t, err, ErrInvalidRecordCount)
	assert.Nil(t, bundle)
	require.NotNil(t, run)
	assert.Equal(t, models.RunStatusFailed, run.Status)
	assert.NotEmpty(t, run.Error)
}

func TestPipelineDeterministicTables(t *testing.T) {
	cfg := testPipelineConfig(500, 42)

	first, _, err := NewPipeline(cfg, testLogger()).Run(context.Background())
	require.NoError(t, err)
	second, _, err := NewPipeline(cfg, testLogger()).Run(context.Background())
	require.NoError(t, err)

	// Run identity differs; the table contents must not.
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.NetworkEvents, second.NetworkEvents)
	assert.Equal(t, first.OperatorMetrics, second.OperatorMetrics)
	assert.Equal(t, first.RegionalSummary, second.RegionalSummary)
	assert.Equal(t, first.TowerPerformance, second.TowerPerformance)
}

func TestPipelineStageAccessors(t *testing.T) {
	p := NewPipeline(testPipelineConfig(10, 1), testLogger())

	assert.NotNil(t, p.Generator())
	assert.NotNil(t, p.Analyzer())
	assert.NotNil(t, p.Aggregator())
	assert.NotNil(t, p.Exporter())
}
