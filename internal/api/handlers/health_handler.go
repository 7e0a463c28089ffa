package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status    string                 `json:"status" example:"healthy"`
	Component string                 `json:"component,omitempty" example:"cache"`
	Error     string                 `json:"error,omitempty"`
	Metrics   map[string]interface{} `json:"metrics,omitempty"`
	Timestamp time.Time              `json:"timestamp" example:"2025-04-17T02:00:00Z"`
}

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// CacheProbe is a Pinger that also exposes hit/miss counters.
type CacheProbe interface {
	Pinger
	GetMetrics() map[string]interface{}
}

type HealthHandler struct {
	db    Pinger
	cache CacheProbe
}

// NewHealthHandler accepts a nil cache when Redis is disabled.
func NewHealthHandler(db Pinger, cache CacheProbe) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Health reports liveness
// @Summary Health check endpoint
// @Description Get the current health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Timestamp: time.Now().UTC()})
}

// Ready reports whether the database answers
// @Summary Readiness check endpoint
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health/ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.db != nil {
		if err := h.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, HealthResponse{
				Status:    "unavailable",
				Component: "database",
				Error:     err.Error(),
				Timestamp: time.Now().UTC(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, HealthResponse{Status: "ready", Timestamp: time.Now().UTC()})
}

// Cache reports Redis health and counters
// @Summary Cache health
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health/cache [get]
func (h *HealthHandler) Cache(c *gin.Context) {
	if h.cache == nil {
		c.JSON(http.StatusOK, HealthResponse{Status: "disabled", Component: "cache", Timestamp: time.Now().UTC()})
		return
	}
	if err := h.cache.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:    "unhealthy",
			Component: "cache",
			Error:     err.Error(),
			Timestamp: time.Now().UTC(),
		})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Component: "cache",
		Metrics:   h.cache.GetMetrics(),
		Timestamp: time.Now().UTC(),
	})
}
