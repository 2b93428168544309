// Package handler provides HTTP handlers for all API endpoints.
// Handlers talk to the in-memory player store and the fetch orchestrator;
// response shapes mirror the legacy scouting frontend contract.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ferranmarti/scoutdesk/internal/api/respond"
	"github.com/ferranmarti/scoutdesk/internal/config"
	"github.com/ferranmarti/scoutdesk/internal/db"
	"github.com/ferranmarti/scoutdesk/internal/fetch"
	"github.com/ferranmarti/scoutdesk/internal/provider"
	"github.com/ferranmarti/scoutdesk/internal/store"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	store    *store.Store
	orch     *fetch.Orchestrator
	searcher provider.Searcher
	pool     *db.Pool // nil when no DATABASE_URL is configured
	cfg      *config.Config
	logger   *slog.Logger
}

// New creates a Handler with shared dependencies. pool may be nil.
func New(s *store.Store, orch *fetch.Orchestrator, searcher provider.Searcher, pool *db.Pool, cfg *config.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:    s,
		orch:     orch,
		searcher: searcher,
		pool:     pool,
		cfg:      cfg,
		logger:   logger,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status, and available optimizations.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"name":    "ScoutDesk API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
		"optimizations": []string{
			"request_coalescing",
			"bounded_parallel_fetching",
			"in_memory_player_store",
			"gzip_compression",
		},
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies archive database connectivity.
// @Summary Database health check
// @Description Verifies Postgres archive connectivity. Reports disabled when no archive is configured.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if h.pool == nil {
		respond.JSON(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"database":  "disabled",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	if err := h.pool.HealthCheck(r.Context()); err != nil {
		respond.JSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns player store statistics.
// @Summary Store health check
// @Description Returns in-memory player store statistics.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.store.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
