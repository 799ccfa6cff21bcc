package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"netpulse-lab/internal/config"
	"netpulse-lab/internal/domain/models"
	"netpulse-lab/pkg/logger"
)

// Pipeline runs the four stages in strict order, passing each stage's
// output directly into the next. No intermediate table is held between
// runs: every run starts from nothing and the stages share no state.
type Pipeline struct {
	config     config.PipelineConfig
	generator  *Generator
	analyzer   *Analyzer
	aggregator *Aggregator
	exporter   *Exporter
	logger     *logger.Logger
}

// NewPipeline creates a Pipeline wired with all four stages.
func NewPipeline(cfg config.PipelineConfig, log *logger.Logger) *Pipeline {
	return &Pipeline{
		config:     cfg,
		generator:  NewGenerator(cfg, log),
		analyzer:   NewAnalyzer(log),
		aggregator: NewAggregator(cfg, log),
		exporter:   NewExporter(log),
		logger:     log.WithComponent("pipeline"),
	}
}

// Generator exposes the generation stage for partial-pipeline use.
func (p *Pipeline) Generator() *Generator { return p.generator }

// Analyzer exposes the analysis stage for partial-pipeline use.
func (p *Pipeline) Analyzer() *Analyzer { return p.analyzer }

// Aggregator exposes the aggregation stage for partial-pipeline use.
func (p *Pipeline) Aggregator() *Aggregator { return p.aggregator }

// Exporter exposes the export stage for partial-pipeline use.
func (p *Pipeline) Exporter() *Exporter { return p.exporter }

// Run executes generate → analyze → aggregate → export and returns the
// export bundle together with the run record. Stage errors are fatal to
// the run and surfaced to the caller.
func (p *Pipeline) Run(ctx context.Context) (*models.ExportBundle, *models.PipelineRun, error) {
	run := &models.PipelineRun{
		ID:        uuid.New(),
		StartedAt: time.Now().UTC(),
		Status:    models.RunStatusInProgress,
		Seed:      p.config.Seed,
	}

	log := p.logger.WithRunID(run.ID.String())
	log.Info().Int("records", p.config.Records).Int64("seed", p.config.Seed).Msg("pipeline run started")

	events, err := p.generator.Generate(ctx, p.config.Records)
	if err != nil {
		return nil, p.fail(run, "generate", err), fmt.Errorf("generate stage: %w", err)
	}

	analyzed, err := p.analyzer.Analyze(ctx, events)
	if err != nil {
		return nil, p.fail(run, "analyze", err), fmt.Errorf("analyze stage: %w", err)
	}

	operators, err := p.aggregator.Aggregate(ctx, analyzed)
	if err != nil {
		return nil, p.fail(run, "aggregate", err), fmt.Errorf("aggregate stage: %w", err)
	}

	bundle, err := p.exporter.BuildExports(ctx, analyzed, operators)
	if err != nil {
		return nil, p.fail(run, "export", err), fmt.Errorf("export stage: %w", err)
	}

	// Stamp the bundle with this run's identity.
	bundle.RunID = run.ID
	bundle.Seed = p.config.Seed

	run.CompletedAt = time.Now().UTC()
	run.Status = models.RunStatusSuccess
	run.EventCount = len(bundle.NetworkEvents)
	run.OperatorCount = len(bundle.OperatorMetrics)
	run.RegionCount = len(bundle.RegionalSummary)
	run.TowerCount = len(bundle.TowerPerformance)

	log.Info().
		Dur("duration", run.Duration()).
		Int("events", run.EventCount).
		Int("operators", run.OperatorCount).
		Msg("pipeline run completed")

	return bundle, run, nil
}

func (p *Pipeline) fail(run *models.PipelineRun, stage string, err error) *models.PipelineRun {
	run.CompletedAt = time.Now().UTC()
	run.Status = models.RunStatusFailed
	run.Error = err.Error()
	p.logger.Error().Err(err).Str("stage", stage).Str("run_id", run.ID.String()).Msg("pipeline run failed")
	return run
}
