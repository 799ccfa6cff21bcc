package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netpulse-lab/internal/config"
	"netpulse-lab/internal/domain/models"
	"netpulse-lab/internal/domain/services"
	"netpulse-lab/pkg/logger"
)

// testHandlers wires handlers with no backing services; endpoints fall
// back to in-memory pipeline runs.
func testHandlers(records int) *Handlers {
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	pipeline := services.NewPipeline(config.PipelineConfig{
		Records:   records,
		Seed:      42,
		StartDate: "2024-01-01",
	}, log)

	return NewHandlers(Dependencies{
		Pipeline: pipeline,
		Logger:   log,
		CacheTTL: time.Minute,
	})
}

func TestHealthCheck(t *testing.T) {
	h := testHandlers(10)

	rec := httptest.NewRecorder()
	h.Health.Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestReadyWithoutBackends(t *testing.T) {
	h := testHandlers(10)

	rec := httptest.NewRecorder()
	h.Health.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	// Disabled backends never fail readiness.
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, "disabled", body.Checks["database"])
	assert.Equal(t, "disabled", body.Checks["redis"])
}

func TestExportsEvents(t *testing.T) {
	h := testHandlers(100)

	rec := httptest.NewRecorder()
	h.Exports.Events(rec, httptest.NewRequest(http.MethodGet, "/api/v1/exports/events", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var events []models.EventExport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	assert.Len(t, events, 100)
}

func TestExportsOperators(t *testing.T) {
	h := testHandlers(100)

	rec := httptest.NewRecorder()
	h.Exports.Operators(rec, httptest.NewRequest(http.MethodGet, "/api/v1/exports/operators", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var operators []models.OperatorMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &operators))
	assert.NotEmpty(t, operators)
	assert.LessOrEqual(t, len(operators), 20)
}

func TestExportsBundleReused(t *testing.T) {
	h := testHandlers(50)

	first := httptest.NewRecorder()
	h.Exports.Bundle(first, httptest.NewRequest(http.MethodGet, "/api/v1/exports/", nil))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	h.Exports.Bundle(second, httptest.NewRequest(http.MethodGet, "/api/v1/exports/", nil))
	require.Equal(t, http.StatusOK, second.Code)

	var a, b models.ExportBundle
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))

	// Same in-memory bundle serves both requests.
	assert.Equal(t, a.RunID, b.RunID)
}

func TestLatestRunWithoutDatabase(t *testing.T) {
	h := testHandlers(10)

	rec := httptest.NewRecorder()
	h.Exports.LatestRun(rec, httptest.NewRequest(http.MethodGet, "/api/v1/runs/latest", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStats(t *testing.T) {
	h := testHandlers(200)

	rec := httptest.NewRecorder()
	h.Stats.Get(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 200, stats.TotalEvents)
	assert.NotZero(t, stats.OperatorsAnalyzed)
	assert.InDelta(t, 30.0, stats.IssueRatePct, 15.0)
	assert.GreaterOrEqual(t, stats.AvgDetectionRate, 0.70)
	assert.LessOrEqual(t, stats.AvgDetectionRate, 0.85)
}
