// main.go - Standalone NetPulse demo server (no external services needed)
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"netpulse-lab/internal/config"
	"netpulse-lab/internal/domain/models"
	"netpulse-lab/internal/domain/services"
	"netpulse-lab/pkg/logger"
)

// ============================================================================
// DATA MODELS
// ============================================================================

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ============================================================================
// GLOBAL STATE
// ============================================================================

var (
	mu     sync.RWMutex
	bundle *models.ExportBundle
)

// ============================================================================
// PIPELINE
// ============================================================================

func refreshBundle(cfg config.PipelineConfig) error {
	log.Printf("[Pipeline] Running with %d records, seed %d...", cfg.Records, cfg.Seed)

	p := services.NewPipeline(cfg, logger.NewDevelopment())
	b, run, err := p.Run(context.Background())
	if err != nil {
		return err
	}

	mu.Lock()
	bundle = b
	mu.Unlock()

	log.Printf("[Pipeline] Run %s completed: %d events, %d operators, %d regions, %d towers",
		run.ID, run.EventCount, run.OperatorCount, run.RegionCount, run.TowerCount)
	return nil
}

func currentBundle() *models.ExportBundle {
	mu.RLock()
	defer mu.RUnlock()
	return bundle
}

// ============================================================================
// HTTP HANDLERS
// ============================================================================

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "ok",
	})
}

func handleGetEvents(w http.ResponseWriter, r *http.Request) {
	b := currentBundle()
	if b == nil {
		respondWithError(w, http.StatusServiceUnavailable, "No pipeline run completed yet")
		return
	}
	respondWithJSON(w, http.StatusOK, APIResponse{Success: true, Data: b.NetworkEvents})
}

func handleGetOperators(w http.ResponseWriter, r *http.Request) {
	b := currentBundle()
	if b == nil {
		respondWithError(w, http.StatusServiceUnavailable, "No pipeline run completed yet")
		return
	}
	respondWithJSON(w, http.StatusOK, APIResponse{Success: true, Data: b.OperatorMetrics})
}

func handleGetRegions(w http.ResponseWriter, r *http.Request) {
	b := currentBundle()
	if b == nil {
		respondWithError(w, http.StatusServiceUnavailable, "No pipeline run completed yet")
		return
	}
	respondWithJSON(w, http.StatusOK, APIResponse{Success: true, Data: b.RegionalSummary})
}

func handleGetTowers(w http.ResponseWriter, r *http.Request) {
	b := currentBundle()
	if b == nil {
		respondWithError(w, http.StatusServiceUnavailable, "No pipeline run completed yet")
		return
	}
	respondWithJSON(w, http.StatusOK, APIResponse{Success: true, Data: b.TowerPerformance})
}

func handleGetStats(w http.ResponseWriter, r *http.Request) {
	b := currentBundle()
	if b == nil {
		respondWithError(w, http.StatusServiceUnavailable, "No pipeline run completed yet")
		return
	}
	respondWithJSON(w, http.StatusOK, b.ComputeStats())
}

// Re-run the pipeline, optionally with a different seed or record count.
func handleRefresh(w http.ResponseWriter, r *http.Request) {
	cfg := defaultPipelineConfig()

	if s := r.URL.Query().Get("seed"); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid seed parameter")
			return
		}
		cfg.Seed = seed
	}
	if s := r.URL.Query().Get("records"); s != "" {
		records, err := strconv.Atoi(s)
		if err != nil || records <= 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid records parameter")
			return
		}
		cfg.Records = records
	}

	if err := refreshBundle(cfg); err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Pipeline refreshed",
	})
}

// ============================================================================
// HELPER FUNCTIONS
// ============================================================================

func defaultPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		Records:   5000,
		Seed:      42,
		StartDate: "2024-01-01",
	}
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, APIResponse{
		Success: false,
		Error:   message,
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ============================================================================
// MAIN
// ============================================================================

func main() {
	// Run the pipeline once at startup so every endpoint has data
	log.Println("Initializing NetPulse demo server...")
	if err := refreshBundle(defaultPipelineConfig()); err != nil {
		log.Fatalf("Initial pipeline run failed: %v", err)
	}

	// Setup router
	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/health", handleHealth).Methods("GET")
	r.HandleFunc("/api/v1/stats", handleGetStats).Methods("GET")
	r.HandleFunc("/api/v1/exports/events", handleGetEvents).Methods("GET")
	r.HandleFunc("/api/v1/exports/operators", handleGetOperators).Methods("GET")
	r.HandleFunc("/api/v1/exports/regions", handleGetRegions).Methods("GET")
	r.HandleFunc("/api/v1/exports/towers", handleGetTowers).Methods("GET")
	r.HandleFunc("/api/v1/refresh", handleRefresh).Methods("POST")

	// Apply CORS middleware
	handler := corsMiddleware(r)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("NetPulse demo server starting on port %s", port)
	log.Fatal(server.ListenAndServe())
}
