package services

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netpulse-lab/internal/domain/models"
)

func TestBuildExportsPreconditions(t *testing.T) {
	e := NewExporter(testLogger())
	ctx := context.Background()

	_, err := e.BuildExports(ctx, nil, []models.OperatorMetrics{{OperatorID: "OP_001"}})
	assert.ErrorIs(t, err, ErrNoAnalysis)

	_, err = e.BuildExports(ctx, []models.AnalyzedEvent{{}}, nil)
	assert.ErrorIs(t, err, ErrNoOperatorMetrics)
}

func TestBuildExportsTables(t *testing.T) {
	ctx := context.Background()
	cfg := testPipelineConfig(1000, 42)

	events, err := NewGenerator(cfg, testLogger()).Generate(ctx, 1000)
	require.NoError(t, err)
	analyzed, err := NewAnalyzer(testLogger()).Analyze(ctx, events)
	require.NoError(t, err)
	operators, err := NewAggregator(cfg, testLogger()).Aggregate(ctx, analyzed)
	require.NoError(t, err)

	bundle, err := NewExporter(testLogger()).BuildExports(ctx, analyzed, operators)
	require.NoError(t, err)

	assert.Len(t, bundle.NetworkEvents, 1000)
	assert.Equal(t, operators, bundle.OperatorMetrics)
	assert.Len(t, bundle.RegionalSummary, 5)
	assert.NotEmpty(t, bundle.TowerPerformance)
	assert.LessOrEqual(t, len(bundle.TowerPerformance), 50)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", bundle.RunID.String())
	assert.False(t, bundle.GeneratedAt.IsZero())

	// Rollups come out sorted by group key.
	assert.True(t, sort.SliceIsSorted(bundle.RegionalSummary, func(i, j int) bool {
		return bundle.RegionalSummary[i].Region < bundle.RegionalSummary[j].Region
	}))
	assert.True(t, sort.SliceIsSorted(bundle.TowerPerformance, func(i, j int) bool {
		return bundle.TowerPerformance[i].TowerID < bundle.TowerPerformance[j].TowerID
	}))

	// Regional rows must account for every event exactly once.
	var regionEvents, regionIssues int
	for _, r := range bundle.RegionalSummary {
		regionEvents += r.TotalEvents
		regionIssues += r.TotalIssues
	}
	assert.Equal(t, 1000, regionEvents)

	var eventIssues int
	for _, ev := range bundle.NetworkEvents {
		if ev.HasIssue {
			eventIssues++
		}
	}
	assert.Equal(t, eventIssues, regionIssues)
}

func TestBuildExportsEventProjection(t *testing.T) {
	analyzed := []models.AnalyzedEvent{
		{
			NetworkEvent: models.NetworkEvent{
				TowerID:            "TOWER_007",
				Region:             "North",
				OperatorID:         "OP_003",
				IssueType:          models.IssueCongestion,
				ResponseTimeMin:    12.5,
				ResolutionTimeMin:  80,
				CustomerComplaints: 4,
				NetworkUptimePct:   91.5,
				DataThroughputMbps: 44.0,
			},
			HasIssue:         true,
			IsCritical:       true,
			PerformanceScore: 0.61,
		},
	}
	operators := []models.OperatorMetrics{{OperatorID: "OP_003", TotalEvents: 1}}

	bundle, err := NewExporter(testLogger()).BuildExports(context.Background(), analyzed, operators)
	require.NoError(t, err)
	require.Len(t, bundle.NetworkEvents, 1)

	row := bundle.NetworkEvents[0]
	assert.Equal(t, "TOWER_007", row.TowerID)
	assert.Equal(t, "North", row.Region)
	assert.Equal(t, "OP_003", row.OperatorID)
	assert.Equal(t, models.IssueCongestion, row.IssueType)
	assert.True(t, row.HasIssue)
	assert.True(t, row.IsCritical)
	assert.Equal(t, 12.5, row.ResponseTimeMin)
	assert.Equal(t, 80.0, row.ResolutionTimeMin)
	assert.Equal(t, 91.5, row.NetworkUptimePct)
	assert.Equal(t, 44.0, row.DataThroughputMbps)
	assert.Equal(t, 0.61, row.PerformanceScore)
}

func TestBuildExportsRegionalAverages(t *testing.T) {
	analyzed := []models.AnalyzedEvent{
		{
			NetworkEvent: models.NetworkEvent{
				TowerID: "TOWER_001", Region: "East", OperatorID: "OP_001",
				IssueType: models.IssueCallDrop, NetworkUptimePct: 90, CustomerComplaints: 2,
			},
			HasIssue: true, PerformanceScore: 0.4,
		},
		{
			NetworkEvent: models.NetworkEvent{
				TowerID: "TOWER_001", Region: "East", OperatorID: "OP_001",
				IssueType: models.IssueNone, NetworkUptimePct: 100, CustomerComplaints: 1,
			},
			PerformanceScore: 0.8,
		},
	}
	operators := []models.OperatorMetrics{{OperatorID: "OP_001", TotalEvents: 2}}

	bundle, err := NewExporter(testLogger()).BuildExports(context.Background(), analyzed, operators)
	require.NoError(t, err)

	require.Len(t, bundle.RegionalSummary, 1)
	region := bundle.RegionalSummary[0]
	assert.Equal(t, "East", region.Region)
	assert.Equal(t, 1, region.TotalIssues)
	assert.Equal(t, 2, region.TotalEvents)
	assert.Equal(t, 3, region.TotalComplaints)
	assert.InDelta(t, 95.0, region.AvgUptime, 1e-12)
	assert.InDelta(t, 0.6, region.AvgPerformance, 1e-12)

	require.Len(t, bundle.TowerPerformance, 1)
	tower := bundle.TowerPerformance[0]
	assert.Equal(t, "TOWER_001", tower.TowerID)
	assert.Equal(t, 1, tower.TotalIssues)
	assert.InDelta(t, 95.0, tower.AvgUptime, 1e-12)
	assert.InDelta(t, 0.6, tower.PerformanceScore, 1e-12)
}
