package services

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"netpulse-lab/internal/config"
	"netpulse-lab/internal/domain/models"
	"netpulse-lab/pkg/logger"
)

// Fixed label sets: 50 towers across 5 regions, 20 operators.
const (
	towerCount    = 50
	operatorCount = 20
)

var regions = []string{"North", "South", "East", "West", "Central"}

// issueDistribution is the sampling distribution over issue types.
// Probabilities must sum to 1.
var issueDistribution = []struct {
	Type models.IssueType
	P    float64
}{
	{models.IssueNone, 0.70},
	{models.IssueCallDrop, 0.12},
	{models.IssueLowSignal, 0.08},
	{models.IssueCongestion, 0.06},
	{models.IssueEquipmentFailure, 0.04},
}

// Continuous field parameters.
const (
	meanResponseMin   = 30.0
	meanResolutionMin = 120.0
	meanComplaints    = 2.0
	uptimeMean        = 95.0
	uptimeStdev       = 5.0
	uptimeMin         = 75.0
	uptimeMax         = 100.0
	throughputMean    = 50.0
	throughputStdev   = 15.0
	throughputMin     = 10.0
	throughputMax     = 100.0
)

// Generator synthesizes network events from a seeded random source.
type Generator struct {
	config    config.PipelineConfig
	logger    *logger.Logger
	towers    []string
	operators []string
}

// NewGenerator creates a new Generator
func NewGenerator(cfg config.PipelineConfig, log *logger.Logger) *Generator {
	towers := make([]string, towerCount)
	for i := range towers {
		towers[i] = fmt.Sprintf("TOWER_%03d", i+1)
	}
	operators := make([]string, operatorCount)
	for i := range operators {
		operators[i] = fmt.Sprintf("OP_%03d", i+1)
	}

	return &Generator{
		config:    cfg,
		logger:    log.WithComponent("generator"),
		towers:    towers,
		operators: operators,
	}
}

// Generate draws n independent events starting at the configured start
// time, one per hour. The same seed and n produce bit-identical output;
// that determinism is part of the contract, so the draw order per row
// must not change.
func (g *Generator) Generate(ctx context.Context, n int) ([]models.NetworkEvent, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRecordCount, n)
	}

	rng := rand.New(rand.NewSource(g.config.Seed))
	start := g.config.Start()

	events := make([]models.NetworkEvent, n)
	for i := range events {
		events[i] = models.NetworkEvent{
			Timestamp:          start.Add(time.Duration(i) * time.Hour),
			TowerID:            g.towers[rng.Intn(len(g.towers))],
			Region:             regions[rng.Intn(len(regions))],
			OperatorID:         g.operators[rng.Intn(len(g.operators))],
			IssueType:          sampleIssueType(rng),
			ResponseTimeMin:    rng.ExpFloat64() * meanResponseMin,
			ResolutionTimeMin:  rng.ExpFloat64() * meanResolutionMin,
			CustomerComplaints: poisson(rng, meanComplaints),
			NetworkUptimePct:   clamp(uptimeMean+rng.NormFloat64()*uptimeStdev, uptimeMin, uptimeMax),
			DataThroughputMbps: clamp(throughputMean+rng.NormFloat64()*throughputStdev, throughputMin, throughputMax),
		}
	}

	g.logger.Info().
		Int("events", n).
		Int64("seed", g.config.Seed).
		Int("towers", len(g.towers)).
		Int("regions", len(regions)).
		Int("operators", len(g.operators)).
		Msg("generated network events")

	return events, nil
}

// Towers returns the fixed tower label set.
func (g *Generator) Towers() []string { return g.towers }

// Operators returns the fixed operator label set.
func (g *Generator) Operators() []string { return g.operators }

// Regions returns the fixed region label set.
func Regions() []string { return regions }

// sampleIssueType draws an issue type from the fixed distribution.
func sampleIssueType(rng *rand.Rand) models.IssueType {
	u := rng.Float64()
	for _, bucket := range issueDistribution {
		if u < bucket.P {
			return bucket.Type
		}
		u -= bucket.P
	}
	return issueDistribution[len(issueDistribution)-1].Type
}

// poisson draws from a Poisson distribution using Knuth's product method.
// Fine for the small means used here.
func poisson(rng *rand.Rand, mean float64) int {
	limit := math.Exp(-mean)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

// clamp bounds v to [lo, hi]
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
