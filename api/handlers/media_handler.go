package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// MediaHandler answers questions about URLs and paths before a download starts
type MediaHandler struct {
	service DownloadService
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(service DownloadService) *MediaHandler {
	return &MediaHandler{service: service}
}

// CheckURLRequest is the body of POST /api/check-url
type CheckURLRequest struct {
	URL string `json:"url"`
}

// CheckURL handles POST /api/check-url
func (h *MediaHandler) CheckURL(c *gin.Context) {
	var req CheckURLRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No URL provided"})
		return
	}

	c.JSON(http.StatusOK, h.service.ResolveMetadata(c.Request.Context(), req.URL))
}

// GetDefaultPath handles GET /api/get-default-path
func (h *MediaHandler) GetDefaultPath(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"path": h.service.DefaultPath()})
}
