package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"netpulse-lab/internal/api/handlers"
	apimiddleware "netpulse-lab/internal/api/middleware"
	"netpulse-lab/internal/config"
	"netpulse-lab/internal/infrastructure/cache"
	"netpulse-lab/pkg/logger"
)

// Router holds dependencies for the API router
type Router struct {
	config   config.Config
	handlers *handlers.Handlers
	cache    *cache.RedisCache
	logger   *logger.Logger
}

// NewRouter creates a new Router instance
func NewRouter(cfg config.Config, h *handlers.Handlers, c *cache.RedisCache, log *logger.Logger) *Router {
	return &Router{
		config:   cfg,
		handlers: h,
		cache:    c,
		logger:   log.WithComponent("router"),
	}
}

// Setup sets up the Chi router with all routes and middleware
func (r *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Core middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(apimiddleware.Logger(r.logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   r.config.CORS.AllowedOrigins,
		AllowedMethods:   r.config.CORS.AllowedMethods,
		AllowedHeaders:   r.config.CORS.AllowedHeaders,
		AllowCredentials: r.config.CORS.AllowCredentials,
		MaxAge:           r.config.CORS.MaxAge,
	}))

	// Rate limiting needs Redis for the counters
	if r.config.RateLimit.Enabled && r.cache != nil {
		router.Use(apimiddleware.RateLimiter(r.cache, r.config.RateLimit))
	}

	// Health checks
	router.Get("/health", r.handlers.Health.Check)
	router.Get("/ready", r.handlers.Health.Ready)

	// API v1 routes
	router.Route("/api/v1", func(api chi.Router) {
		api.Get("/stats", r.handlers.Stats.Get)

		// Dashboard export tables
		api.Route("/exports", func(exp chi.Router) {
			exp.Get("/", r.handlers.Exports.Bundle)
			exp.Get("/events", r.handlers.Exports.Events)
			exp.Get("/operators", r.handlers.Exports.Operators)
			exp.Get("/regions", r.handlers.Exports.Regions)
			exp.Get("/towers", r.handlers.Exports.Towers)
		})

		// Pipeline run history
		api.Route("/runs", func(runs chi.Router) {
			runs.Get("/", r.handlers.Exports.Runs)
			runs.Get("/latest", r.handlers.Exports.LatestRun)
		})
	})

	return router
}
