package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ais-api/internal/service"
	"github.com/noah-isme/ais-api/pkg/response"
)

// SystemHandler serves health and runtime statistics endpoints.
type SystemHandler struct {
	metrics *service.MetricsService
}

// NewSystemHandler constructs the handler.
func NewSystemHandler(metrics *service.MetricsService) *SystemHandler {
	return &SystemHandler{metrics: metrics}
}

// Health godoc
// @Summary Service liveness probe with runtime counters
// @Tags System
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	payload := gin.H{"status": "ok"}
	if h.metrics != nil {
		payload["metrics"] = h.metrics.Snapshot()
	}
	response.JSON(c, http.StatusOK, payload, nil)
}

// Ready godoc
// @Summary Service readiness probe
// @Tags System
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /ready [get]
func (h *SystemHandler) Ready(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"status": "ready"}, nil)
}
