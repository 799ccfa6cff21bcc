package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netpulse-lab/internal/config"
	"netpulse-lab/internal/domain/models"
	"netpulse-lab/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}

func testPipelineConfig(records int, seed int64) config.PipelineConfig {
	return config.PipelineConfig{
		Records:   records,
		Seed:      seed,
		StartDate: "2024-01-01",
	}
}

func TestGenerateDeterministic(t *testing.T) {
	cfg := testPipelineConfig(200, 42)

	first, err := NewGenerator(cfg, testLogger()).Generate(context.Background(), 200)
	require.NoError(t, err)
	second, err := NewGenerator(cfg, testLogger()).Generate(context.Background(), 200)
	require.NoError(t, err)

	assert.Equal(t, first, second, "same seed must reproduce the same events")
}

func TestGenerateSeedChangesOutput(t *testing.T) {
	ctx := context.Background()

	a, err := NewGenerator(testPipelineConfig(100, 42), testLogger()).Generate(ctx, 100)
	require.NoError(t, err)
	b, err := NewGenerator(testPipelineConfig(100, 43), testLogger()).Generate(ctx, 100)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestGenerateInvalidCount(t *testing.T) {
	g := NewGenerator(testPipelineConfig(0, 42), testLogger())

	_, err := g.Generate(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidRecordCount)

	_, err = g.Generate(context.Background(), -5)
	assert.ErrorIs(t, err, ErrInvalidRecordCount)
}

func TestGenerateFieldBounds(t *testing.T) {
	g := NewGenerator(testPipelineConfig(5000, 42), testLogger())
	events, err := g.Generate(context.Background(), 5000)
	require.NoError(t, err)
	require.Len(t, events, 5000)

	towers := toSet(g.Towers())
	operators := toSet(g.Operators())
	regionSet := toSet(Regions())
	issueTypes := map[models.IssueType]bool{
		models.IssueNone:             true,
		models.IssueCallDrop:         true,
		models.IssueLowSignal:        true,
		models.IssueCongestion:       true,
		models.IssueEquipmentFailure: true,
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, e := range events {
		assert.True(t, towers[e.TowerID], "unknown tower %q", e.TowerID)
		assert.True(t, operators[e.OperatorID], "unknown operator %q", e.OperatorID)
		assert.True(t, regionSet[e.Region], "unknown region %q", e.Region)
		assert.True(t, issueTypes[e.IssueType], "unknown issue type %q", e.IssueType)

		assert.Equal(t, start.Add(time.Duration(i)*time.Hour), e.Timestamp)
		assert.GreaterOrEqual(t, e.ResponseTimeMin, 0.0)
		assert.GreaterOrEqual(t, e.ResolutionTimeMin, 0.0)
		assert.GreaterOrEqual(t, e.CustomerComplaints, 0)
		assert.GreaterOrEqual(t, e.NetworkUptimePct, 75.0)
		assert.LessOrEqual(t, e.NetworkUptimePct, 100.0)
		assert.GreaterOrEqual(t, e.DataThroughputMbps, 10.0)
		assert.LessOrEqual(t, e.DataThroughputMbps, 100.0)
	}
}

func TestGenerateIssueShare(t *testing.T) {
	g := NewGenerator(testPipelineConfig(5000, 42), testLogger())
	events, err := g.Generate(context.Background(), 5000)
	require.NoError(t, err)

	var clean int
	for _, e := range events {
		if e.IssueType == models.IssueNone {
			clean++
		}
	}

	// ~70% of events carry no issue; allow generous sampling slack.
	share := float64(clean) / float64(len(events))
	assert.InDelta(t, 0.70, share, 0.05)
}

func TestGenerateLabelSets(t *testing.T) {
	g := NewGenerator(testPipelineConfig(10, 1), testLogger())

	assert.Len(t, g.Towers(), 50)
	assert.Equal(t, "TOWER_001", g.Towers()[0])
	assert.Equal(t, "TOWER_050", g.Towers()[49])

	assert.Len(t, g.Operators(), 20)
	assert.Equal(t, "OP_001", g.Operators()[0])
	assert.Equal(t, "OP_020", g.Operators()[19])

	assert.Equal(t, []string{"North", "South", "East", "West", "Central"}, Regions())
}

func toSet(labels []string) map[string]bool {
	set := make(map[string]bool, len(labels))
	for _, l := range labels {
		set[l] = true
	}
	return set
}
