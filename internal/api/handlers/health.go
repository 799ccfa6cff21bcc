package handlers

import (
	"net/http"
	"time"

	"netpulse-lab/internal/infrastructure/cache"
	"netpulse-lab/internal/infrastructure/database/repository"
	"netpulse-lab/pkg/logger"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	cache  *cache.RedisCache
	repos  *repository.Repositories
	logger *logger.Logger
	start  time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(c *cache.RedisCache, repos *repository.Repositories, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		cache:  c,
		repos:  repos,
		logger: log.WithComponent("health"),
		start:  time.Now(),
	}
}

// Check handles GET /health - liveness probe
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(h.start).String(),
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready handles GET /ready - readiness probe checking backing services.
// Both the warehouse and the cache are optional; a disabled backend
// reports "disabled" and never fails readiness.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	healthy := true

	if h.repos != nil {
		if err := h.repos.Ping(r.Context()); err != nil {
			h.logger.Error().Err(err).Msg("database readiness check failed")
			checks["database"] = "unhealthy"
			healthy = false
		} else {
			checks["database"] = "healthy"
		}
	} else {
		checks["database"] = "disabled"
	}

	if h.cache != nil {
		if err := h.cache.Client().Ping(r.Context()).Err(); err != nil {
			h.logger.Error().Err(err).Msg("redis readiness check failed")
			checks["redis"] = "unhealthy"
			healthy = false
		} else {
			checks["redis"] = "healthy"
		}
	} else {
		checks["redis"] = "disabled"
	}

	status := http.StatusOK
	overall := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "not ready"
	}

	writeJSON(w, status, map[string]any{
		"status": overall,
		"checks": checks,
	})
}
