package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/nmby204/SGE/internal/service"
)

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	db      *sqlx.DB
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(metrics *service.MetricsService, db *sqlx.DB) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, db: db}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for liveness usage.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready verifies the database connection before reporting readiness.
func (h *MetricsHandler) Ready(c *gin.Context) {
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
