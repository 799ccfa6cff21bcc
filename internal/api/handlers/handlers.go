package handlers

import (
	"time"

	"netpulse-lab/internal/domain/services"
	"netpulse-lab/internal/infrastructure/cache"
	"netpulse-lab/internal/infrastructure/database/repository"
	"netpulse-lab/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health  *HealthHandler
	Exports *ExportsHandler
	Stats   *StatsHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Pipeline *services.Pipeline
	Cache    *cache.RedisCache
	Repos    *repository.Repositories
	Logger   *logger.Logger
	// CacheTTL bounds how long a served bundle stays cached.
	CacheTTL time.Duration
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(deps.Cache, deps.Repos, deps.Logger),
		Exports: NewExportsHandler(deps.Pipeline, deps.Cache, deps.Repos, deps.CacheTTL, deps.Logger),
		Stats:   NewStatsHandler(deps.Pipeline, deps.Cache, deps.CacheTTL, deps.Logger),
	}
}
