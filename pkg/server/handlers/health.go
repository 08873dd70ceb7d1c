package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lexigraph/lexigraph"
	"github.com/lexigraph/lexigraph/pkg/server/dto"
)

// pingTimeout bounds the store probe inside a health check.
const pingTimeout = 3 * time.Second

// HealthHandler serves liveness and readiness endpoints.
type HealthHandler struct {
	engine lexigraph.Engine
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(engine lexigraph.Engine) *HealthHandler {
	return &HealthHandler{engine: engine}
}

// Live handles GET /live: the process is up.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Health handles GET /health. A persistently unreachable graph store is the
// one process-level failure retrieval cannot degrade around, so it turns
// the health check red.
func (h *HealthHandler) Health(c *gin.Context) {
	if !h.engine.Healthy() {
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "unavailable", Store: "open"})
		return
	}

	probe, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	if err := h.engine.Ping(probe); err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "unavailable", Store: "unreachable"})
		return
	}
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Store: "reachable"})
}
