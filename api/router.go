package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/yt-media-backup/api/handlers"
	"github.com/yourusername/yt-media-backup/api/middleware"
	"github.com/yourusername/yt-media-backup/pkg/logger"
)

// SetupRouter sets up the HTTP router. Access logs go to the web category,
// handler logs to the download category.
func SetupRouter(service handlers.DownloadService, logAdapter *logger.LoggerAdapter) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.AccessLog(logAdapter))
	router.Use(middleware.Recovery(logAdapter))
	router.Use(middleware.CORS())

	healthHandler := handlers.NewHealthHandler(service)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	api := router.Group("/api")
	{
		mediaHandler := handlers.NewMediaHandler(service)
		api.POST("/check-url", mediaHandler.CheckURL)
		api.GET("/get-default-path", mediaHandler.GetDefaultPath)

		downloadHandler := handlers.NewDownloadHandler(service, logAdapter.Download())
		api.POST("/download", downloadHandler.StartDownload)
		api.POST("/cancel-download", downloadHandler.CancelDownload)
		api.GET("/download-status", downloadHandler.GetStatus)
		api.POST("/open-folder", downloadHandler.OpenFolder)

		historyHandler := handlers.NewHistoryHandler(service)
		api.GET("/history", historyHandler.List)

		if logsDir := logAdapter.LogsDir(); logsDir != "" {
			logHandler := handlers.NewLogHandler(logsDir)
			wsHandler := handlers.NewLogWebSocketHandler(logsDir, logAdapter.Web(), middleware.IsLocalOrigin)
			logs := api.Group("/logs")
			{
				logs.GET("/categories", logHandler.GetCategories)
				logs.GET("/ws", wsHandler.HandleWebSocket)
				logs.GET("/:category", logHandler.GetLogs)
				logs.GET("/:category/search", logHandler.SearchLogs)
				logs.GET("/:category/export", logHandler.ExportLogs)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
