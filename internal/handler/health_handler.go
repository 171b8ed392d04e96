// ===========================================
// Package handler - Health Check Handler
// ===========================================
// 1. Liveness: "Is the process alive?" - Basic, fast
// 2. Readiness: "Can the process handle requests?" - Checks dependencies
// ===========================================

package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rdrlink/shortener/internal/models"
)

// Checker is a dependency that can report its health.
type Checker interface {
	Health(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	checks  map[string]Checker
	version string
}

// NewHealthHandler creates a new health handler. checks maps a dependency
// name ("postgres", "redis", ...) to its checker; nil entries are skipped.
func NewHealthHandler(checks map[string]Checker, version string) *HealthHandler {
	active := make(map[string]Checker, len(checks))
	for name, check := range checks {
		if check != nil {
			active[name] = check
		}
	}
	return &HealthHandler{checks: active, version: version}
}

// ===========================================
// GET /health
// ===========================================
// Response (200 - healthy):
//
//	{
//	  "status": "healthy",
//	  "version": "1.0.0",
//	  "services": {"postgres": "ok", "redis": "ok"}
//	}
//
// Response (503 - unhealthy): same shape, failing services carry
// "error: ..." and status is "unhealthy".
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	services := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check.Health(ctx); err != nil {
			services[name] = "error: " + err.Error()
			healthy = false
			continue
		}
		services[name] = "ok"
	}

	response := models.HealthResponse{
		Version:  h.version,
		Services: services,
	}

	if healthy {
		response.Status = "healthy"
		c.JSON(http.StatusOK, response)
		return
	}
	response.Status = "unhealthy"
	// 503 tells load balancers to route traffic elsewhere
	c.JSON(http.StatusServiceUnavailable, response)
}

// ===========================================
// GET /ready
// ===========================================
// Just 200 or 503. Checks run in name order and stop at the first failure.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := h.checks[name].Health(ctx); err != nil {
			c.Status(http.StatusServiceUnavailable)
			return
		}
	}
	c.Status(http.StatusOK)
}

// ===========================================
// GET /live
// ===========================================
// Does NOT check dependencies (that's for readiness).
func (h *HealthHandler) Live(c *gin.Context) {
	c.Status(http.StatusOK)
}
