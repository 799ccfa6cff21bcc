package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"netpulse-lab/internal/api"
	"netpulse-lab/internal/api/handlers"
	"netpulse-lab/internal/config"
	"netpulse-lab/internal/domain/services"
	"netpulse-lab/internal/infrastructure/cache"
	"netpulse-lab/internal/infrastructure/database"
	"netpulse-lab/internal/infrastructure/database/repository"
	"netpulse-lab/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
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
	logger.SetGlobal(log)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Msg("starting NetPulse API")

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
		log.Warn().Msg("running without database - run history unavailable")
	}

	// Initialize the pipeline; export endpoints fall back to in-memory
	// runs when no worker has populated the cache yet.
	pipeline := services.NewPipeline(cfg.Pipeline, log)

	// Create handlers and router
	h := handlers.NewHandlers(handlers.Dependencies{
		Pipeline: pipeline,
		Cache:    redisCache,
		Repos:    repos,
		Logger:   log,
		CacheTTL: cfg.Pipeline.CacheTTL,
	})
	router := api.NewRouter(*cfg, h, redisCache, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server error")
			cancel()
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("shutdown signal received")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("shutdown complete")
}

// initInfrastructure connects to the optional backing services. Both
// the warehouse and Redis are opt-in: the API serves in-memory runs
// without them.
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

	// Surface the effective topology once at startup.
	log.Info().
		Bool("database", db != nil).
		Bool("redis", redisCache != nil).
		Dur("cache_ttl", cfg.Pipeline.CacheTTL).
		Msg("infrastructure initialized")

	return db, redisCache, nil
}
