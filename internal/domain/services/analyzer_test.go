package services

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netpulse-lab/internal/domain/models"
)

func TestAnalyzeEmptyInput(t *testing.T) {
	a := NewAnalyzer(testLogger())

	_, err := a.Analyze(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoEvents)

	_, err = a.Analyze(context.Background(), []models.NetworkEvent{})
	assert.ErrorIs(t, err, ErrNoEvents)
}

func TestAnalyzeFlags(t *testing.T) {
	events := []models.NetworkEvent{
		{IssueType: models.IssueNone},
		{IssueType: models.IssueCallDrop},
		{IssueType: models.IssueLowSignal},
		{IssueType: models.IssueCongestion},
		{IssueType: models.IssueEquipmentFailure},
	}

	analyzed, err := NewAnalyzer(testLogger()).Analyze(context.Background(), events)
	require.NoError(t, err)
	require.Len(t, analyzed, 5)

	assert.False(t, analyzed[0].HasIssue)
	assert.False(t, analyzed[0].IsCritical)

	assert.True(t, analyzed[1].HasIssue)
	assert.False(t, analyzed[1].IsCritical)

	assert.True(t, analyzed[2].HasIssue)
	assert.False(t, analyzed[2].IsCritical)

	assert.True(t, analyzed[3].HasIssue)
	assert.True(t, analyzed[3].IsCritical)

	assert.True(t, analyzed[4].HasIssue)
	assert.True(t, analyzed[4].IsCritical)
}

func TestAnalyzePerformanceScore(t *testing.T) {
	events := []models.NetworkEvent{
		{
			IssueType:        models.IssueNone,
			NetworkUptimePct: 90,
			ResponseTimeMin:  30,
		},
		{
			IssueType:        models.IssueCallDrop,
			NetworkUptimePct: 80,
			ResponseTimeMin:  60,
		},
	}

	analyzed, err := NewAnalyzer(testLogger()).Analyze(context.Background(), events)
	require.NoError(t, err)

	want0 := 0.4*0.9 + 0.3 + 0.3*math.Exp(-0.5)
	want1 := 0.4*0.8 + 0.3*math.Exp(-1.0)
	assert.InDelta(t, want0, analyzed[0].PerformanceScore, 1e-12)
	assert.InDelta(t, want1, analyzed[1].PerformanceScore, 1e-12)
}

func TestAnalyzeResolutionEfficiency(t *testing.T) {
	events := []models.NetworkEvent{
		// Issue-free rows always get efficiency 1, even with a huge
		// resolution time on record.
		{IssueType: models.IssueNone, ResolutionTimeMin: 500},
		// This row holds the batch maximum among all rows.
		{IssueType: models.IssueEquipmentFailure, ResolutionTimeMin: 500},
		{IssueType: models.IssueCallDrop, ResolutionTimeMin: 250},
		{IssueType: models.IssueLowSignal, ResolutionTimeMin: 0},
	}

	analyzed, err := NewAnalyzer(testLogger()).Analyze(context.Background(), events)
	require.NoError(t, err)

	assert.Equal(t, 1.0, analyzed[0].ResolutionEfficiency)
	assert.InDelta(t, 0.0, analyzed[1].ResolutionEfficiency, 1e-12)
	assert.InDelta(t, 0.5, analyzed[2].ResolutionEfficiency, 1e-12)
	assert.InDelta(t, 1.0, analyzed[3].ResolutionEfficiency, 1e-12)
}

func TestAnalyzeEfficiencyBounds(t *testing.T) {
	g := NewGenerator(testPipelineConfig(1000, 7), testLogger())
	events, err := g.Generate(context.Background(), 1000)
	require.NoError(t, err)

	analyzed, err := NewAnalyzer(testLogger()).Analyze(context.Background(), events)
	require.NoError(t, err)

	for _, e := range analyzed {
		assert.GreaterOrEqual(t, e.ResolutionEfficiency, 0.0)
		assert.LessOrEqual(t, e.ResolutionEfficiency, 1.0)
		if !e.HasIssue {
			assert.Equal(t, 1.0, e.ResolutionEfficiency)
		}
	}
}

func TestAnalyzePreservesInput(t *testing.T) {
	g := NewGenerator(testPipelineConfig(50, 42), testLogger())
	events, err := g.Generate(context.Background(), 50)
	require.NoError(t, err)

	analyzed, err := NewAnalyzer(testLogger()).Analyze(context.Background(), events)
	require.NoError(t, err)
	require.Len(t, analyzed, 50)

	for i := range analyzed {
		assert.Equal(t, events[i], analyzed[i].NetworkEvent)
	}
}
