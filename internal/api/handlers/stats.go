package handlers

import (
	"net/http"
	"time"

	"netpulse-lab/internal/domain/models"
	"netpulse-lab/internal/domain/services"
	"netpulse-lab/internal/infrastructure/cache"
	"netpulse-lab/pkg/logger"
)

// StatsHandler serves the dashboard summary view
type StatsHandler struct {
	pipeline *services.Pipeline
	cache    *cache.RedisCache
	cacheTTL time.Duration
	logger   *logger.Logger
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(p *services.Pipeline, c *cache.RedisCache, ttl time.Duration, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		pipeline: p,
		cache:    c,
		cacheTTL: ttl,
		logger:   log.WithComponent("stats"),
	}
}

// Get handles GET /api/v1/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.cache != nil {
		var cached models.Stats
		if err := h.cache.GetJSON(ctx, cache.KeyStats, &cached); err == nil {
			writeJSON(w, http.StatusOK, cached)
			return
		}

		// No precomputed stats; derive them from the cached bundle if present.
		var bundle models.ExportBundle
		if err := h.cache.GetCachedBundle(ctx, &bundle); err == nil {
			stats := bundle.ComputeStats()
			_ = h.cache.SetJSON(ctx, cache.KeyStats, stats, h.cacheTTL)
			writeJSON(w, http.StatusOK, stats)
			return
		}
	}

	bundle, _, err := h.pipeline.Run(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("in-memory pipeline run failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	stats := bundle.ComputeStats()
	if h.cache != nil {
		_ = h.cache.CacheBundle(ctx, bundle, h.cacheTTL)
		_ = h.cache.SetJSON(ctx, cache.KeyStats, stats, h.cacheTTL)
	}

	writeJSON(w, http.StatusOK, stats)
}
