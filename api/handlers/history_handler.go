package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HistoryHandler serves the download history
type HistoryHandler struct {
	service DownloadService
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(service DownloadService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// List handles GET /api/history
func (h *HistoryHandler) List(c *gin.Context) {
	entries := h.service.History()
	c.JSON(http.StatusOK, gin.H{
		"count":   len(entries),
		"entries": entries,
	})
}
