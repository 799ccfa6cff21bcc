package handlers

import (
	"net/http"
	"sync"
	"time"

	"netpulse-lab/internal/domain/models"
	"netpulse-lab/internal/domain/services"
	"netpulse-lab/internal/infrastructure/cache"
	"netpulse-lab/internal/infrastructure/database/repository"
	"netpulse-lab/pkg/logger"
)

// ExportsHandler serves the four export tables. It prefers the cached
// bundle from the last worker run; on a cache miss it runs the pipeline
// in memory, which is cheap and deterministic for a given seed.
type ExportsHandler struct {
	pipeline *services.Pipeline
	cache    *cache.RedisCache
	repos    *repository.Repositories
	cacheTTL time.Duration
	logger   *logger.Logger

	mu     sync.Mutex
	bundle *models.ExportBundle
}

// NewExportsHandler creates a new ExportsHandler
func NewExportsHandler(p *services.Pipeline, c *cache.RedisCache, repos *repository.Repositories, ttl time.Duration, log *logger.Logger) *ExportsHandler {
	return &ExportsHandler{
		pipeline: p,
		cache:    c,
		repos:    repos,
		cacheTTL: ttl,
		logger:   log.WithComponent("exports"),
	}
}

// Events handles GET /api/v1/exports/events
func (h *ExportsHandler) Events(w http.ResponseWriter, r *http.Request) {
	b, err := h.getBundle(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, b.NetworkEvents)
}

// Operators handles GET /api/v1/exports/operators
func (h *ExportsHandler) Operators(w http.ResponseWriter, r *http.Request) {
	b, err := h.getBundle(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, b.OperatorMetrics)
}

// Regions handles GET /api/v1/exports/regions
func (h *ExportsHandler) Regions(w http.ResponseWriter, r *http.Request) {
	b, err := h.getBundle(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, b.RegionalSummary)
}

// Towers handles GET /api/v1/exports/towers
func (h *ExportsHandler) Towers(w http.ResponseWriter, r *http.Request) {
	b, err := h.getBundle(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, b.TowerPerformance)
}

// Bundle handles GET /api/v1/exports - the whole bundle at once
func (h *ExportsHandler) Bundle(w http.ResponseWriter, r *http.Request) {
	b, err := h.getBundle(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// LatestRun handles GET /api/v1/runs/latest
func (h *ExportsHandler) LatestRun(w http.ResponseWriter, r *http.Request) {
	if h.repos == nil {
		writeError(w, http.StatusServiceUnavailable, "run history requires a database")
		return
	}
	run, err := h.repos.Runs.Latest(r.Context())
	if err != nil {
		if err == repository.ErrNoRuns {
			writeError(w, http.StatusNotFound, "no pipeline runs recorded yet")
			return
		}
		h.logger.Error().Err(err).Msg("failed to fetch latest run")
		writeError(w, http.StatusInternalServerError, "failed to fetch latest run")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// Runs handles GET /api/v1/runs
func (h *ExportsHandler) Runs(w http.ResponseWriter, r *http.Request) {
	if h.repos == nil {
		writeError(w, http.StatusServiceUnavailable, "run history requires a database")
		return
	}
	runs, err := h.repos.Runs.ListRecent(r.Context(), 20)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list runs")
		writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// getBundle returns the freshest available bundle: redis, then the local
// copy, then a fresh in-memory pipeline run.
func (h *ExportsHandler) getBundle(r *http.Request) (*models.ExportBundle, error) {
	if h.cache != nil {
		var b models.ExportBundle
		if err := h.cache.GetCachedBundle(r.Context(), &b); err == nil {
			return &b, nil
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.bundle != nil {
		return h.bundle, nil
	}

	bundle, _, err := h.pipeline.Run(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("in-memory pipeline run failed")
		return nil, err
	}
	h.bundle = bundle

	if h.cache != nil {
		_ = h.cache.CacheBundle(r.Context(), bundle, h.cacheTTL)
	}

	return bundle, nil
}
