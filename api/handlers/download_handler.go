package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/yt-media-backup/internal/domain"
)

// DownloadHandler handles download-related HTTP requests
type DownloadHandler struct {
	service DownloadService
	logger  *zap.Logger
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(service DownloadService, logger *zap.Logger) *DownloadHandler {
	return &DownloadHandler{
		service: service,
		logger:  logger,
	}
}

// StartDownload handles POST /api/download
func (h *DownloadHandler) StartDownload(c *gin.Context) {
	var req domain.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No URL provided"})
		return
	}

	runID, err := h.service.StartDownload(req)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrEmptyURL):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No URL provided"})
		return
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, domain.ErrDownloadInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	default:
		h.logger.Error("Failed to start download", zap.String("url", req.URL), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.logger.Info("Download started",
		zap.String("run_id", runID),
		zap.String("url", req.URL),
		zap.String("type", string(req.DownloadType)),
		zap.String("mode", string(req.PlaylistMode)))

	c.JSON(http.StatusOK, gin.H{"status": "started", "run_id": runID})
}

// CancelDownload handles POST /api/cancel-download
func (h *DownloadHandler) CancelDownload(c *gin.Context) {
	h.service.CancelDownload()
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// GetStatus handles GET /api/download-status
func (h *DownloadHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Status())
}

// OpenFolderRequest is the body of POST /api/open-folder
type OpenFolderRequest struct {
	Path string `json:"path"`
}

// OpenFolder handles POST /api/open-folder
func (h *DownloadHandler) OpenFolder(c *gin.Context) {
	var req OpenFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, domain.FolderResult{Status: "error", Message: "No path provided"})
		return
	}

	c.JSON(http.StatusOK, h.service.OpenFolder(req.Path))
}
