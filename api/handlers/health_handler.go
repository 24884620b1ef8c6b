package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// HealthHandler handles health check requests
type HealthHandler struct {
	service DownloadService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service DownloadService) *HealthHandler {
	return &HealthHandler{service: service}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Download struct {
		Status string `json:"status"`
		RunID  string `json:"run_id,omitempty"`
	} `json:"download"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	state := h.service.Status()

	response := HealthResponse{
		Status:  "ok",
		Version: Version,
	}
	response.Download.Status = string(state.Status)
	response.Download.RunID = state.RunID

	c.JSON(http.StatusOK, response)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.service.Ready(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
