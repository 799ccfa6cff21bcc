package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"netpulse-lab/internal/config"
	"netpulse-lab/internal/domain/services"
	"netpulse-lab/internal/export"
	"netpulse-lab/internal/infrastructure/cache"
	"netpulse-lab/internal/infrastructure/database"
	"netpulse-lab/internal/infrastructure/database/repository"
	"netpulse-lab/pkg/logger"
)

const (
	// Lock settings for multi-instance deployments
	lockTTL = 5 * time.Minute
	lockKey = "pipeline:worker"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	once := flag.Bool("once", false, "run the pipeline once and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.NewDevelopment()
	}
	log = log.WithComponent("pipeline-worker")
	logger.SetGlobal(log)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting NetPulse pipeline worker")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize infrastructure
	db, redisCache, err := initInfrastructure(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize infrastructure")
	}
	defer func() {
		if db != nil {
			db.Close()
		}
		if redisCache != nil {
			redisCache.Close()
		}
	}()

	// Initialize repositories
	var repos *repository.Repositories
	if db != nil {
		repos = repository.NewRepositories(db.Pool())
		if err := repos.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ensure warehouse schema")
		}
		log.Info().Msg("repositories initialized with database")
	} else {
		log.Warn().Msg("running without database - bundles will not be persisted")
	}

	// Create worker
	worker := NewPipelineWorker(cfg, repos, redisCache, log)

	if *once {
		if err := worker.RunOnce(ctx); err != nil {
			log.Fatal().Err(err).Msg("pipeline run failed")
		}
		return
	}

	// Handle shutdown signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start worker
	go func() {
		if err := worker.Run(ctx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("worker stopped with error")
			cancel()
		}
	}()

	// Wait for shutdown signal
	select {
	case <-quit:
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down pipeline worker...")
	cancel()

	// Give time for graceful shutdown
	time.Sleep(2 * time.Second)
	log.Info().Msg("shutdown complete")
}

// PipelineWorker runs the pipeline on a schedule and delivers each
// bundle to every configured sink: CSV files, the warehouse, and the
// cache.
type PipelineWorker struct {
	config   *config.Config
	repos    *repository.Repositories
	cache    *cache.RedisCache
	pipeline *services.Pipeline
	csv      *export.Writer
	logger   *logger.Logger
}

// NewPipelineWorker creates a new pipeline worker
func NewPipelineWorker(
	cfg *config.Config,
	repos *repository.Repositories,
	c *cache.RedisCache,
	log *logger.Logger,
) *PipelineWorker {
	var csvWriter *export.Writer
	if cfg.Export.Enabled {
		csvWriter = export.NewWriter(cfg.Export.Dir, log)
	}

	return &PipelineWorker{
		config:   cfg,
		repos:    repos,
		cache:    c,
		pipeline: services.NewPipeline(cfg.Pipeline, log),
		csv:      csvWriter,
		logger:   log,
	}
}

// Run executes the pipeline on the configured interval until ctx is
// cancelled.
func (w *PipelineWorker) Run(ctx context.Context) error {
	if w.config.Pipeline.RunOnStart {
		if err := w.RunOnce(ctx); err != nil {
			w.logger.Error().Err(err).Msg("initial pipeline run failed")
		}
	}

	ticker := time.NewTicker(w.config.Pipeline.Interval)
	defer ticker.Stop()

	w.logger.Info().Dur("interval", w.config.Pipeline.Interval).Msg("worker schedule started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.RunOnce(ctx); err != nil {
				w.logger.Error().Err(err).Msg("scheduled pipeline run failed")
			}
		}
	}
}

// RunOnce executes one pipeline run end to end and delivers the bundle.
func (w *PipelineWorker) RunOnce(ctx context.Context) error {
	// Only one instance runs the pipeline at a time.
	if w.cache != nil {
		acquired, err := w.cache.AcquireLock(ctx, lockKey, lockTTL)
		if err != nil {
			w.logger.Warn().Err(err).Msg("lock acquisition failed, running anyway")
		} else if !acquired {
			w.logger.Info().Msg("another worker holds the lock, skipping run")
			return nil
		} else {
			defer func() {
				if err := w.cache.ReleaseLock(ctx, lockKey); err != nil {
					w.logger.Warn().Err(err).Msg("failed to release worker lock")
				}
			}()
		}
	}

	bundle, run, err := w.pipeline.Run(ctx)

	// Record the run even when it failed, so the history shows it.
	if w.repos != nil && run != nil {
		if recErr := w.repos.Runs.Record(ctx, run); recErr != nil {
			w.logger.Error().Err(recErr).Msg("failed to record pipeline run")
		}
	}
	if err != nil {
		return err
	}

	log := w.logger.WithRunID(run.ID.String())

	if w.csv != nil {
		paths, err := w.csv.WriteBundle(bundle)
		if err != nil {
			return fmt.Errorf("csv export: %w", err)
		}
		log.Info().Int("files", len(paths)).Msg("CSV export written")
	}

	if w.repos != nil {
		if err := w.repos.Exports.StoreBundle(ctx, bundle); err != nil {
			return fmt.Errorf("warehouse load: %w", err)
		}
		log.Info().Msg("bundle loaded into warehouse")
	}

	if w.cache != nil {
		ttl := w.config.Pipeline.CacheTTL
		if err := w.cache.CacheBundle(ctx, bundle, ttl); err != nil {
			log.Warn().Err(err).Msg("failed to cache bundle")
		}
		stats := bundle.ComputeStats()
		if err := w.cache.SetJSON(ctx, cache.KeyStats, stats, ttl); err != nil {
			log.Warn().Err(err).Msg("failed to cache stats")
		}
		if err := w.cache.SetJSON(ctx, cache.KeyLatestRun, run, ttl); err != nil {
			log.Warn().Err(err).Msg("failed to cache run record")
		}
	}

	return nil
}

// initInfrastructure connects to the optional backing services.
func initInfrastructure(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.PostgresDB, *cache.RedisCache, error) {
	var db *database.PostgresDB
	if cfg.Database.Enabled {
		var err error
		db, err = database.NewPostgres(ctx, cfg.Database, log)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
	}

	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		var err error
		redisCache, err = cache.NewRedis(ctx, cfg.Redis, log)
		if err != nil {
			if db != nil {
				db.Close()
			}
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
	}

	log.Info().
		Bool("database", db != nil).
		Bool("redis", redisCache != nil).
		Bool("csv_export", cfg.Export.Enabled).
		Msg("infrastructure initialized")

	return db, redisCache, nil
}
