package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/yt-media-backup/pkg/logger"
)

// quietPaths are polled by the UI and the CLI; successful hits log at debug
var quietPaths = map[string]bool{
	"/api/download-status": true,
	"/health":              true,
}

// AccessLog logs every request to the web category. Server errors are
// copied to the error category.
func AccessLog(logAdapter *logger.LoggerAdapter) gin.HandlerFunc {
	web := logAdapter.Web()

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			logAdapter.LogError(logger.CategoryWeb, "HTTP error response", fields...)
		case quietPaths[path] && status < 400:
			web.Debug("HTTP request", fields...)
		default:
			web.Info("HTTP request", fields...)
		}
	}
}
