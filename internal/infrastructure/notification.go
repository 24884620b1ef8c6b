package infrastructure

import (
	"fmt"
	"os/exec"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/yourusername/yt-media-backup/internal/domain"
)

// NotificationService sends desktop notifications
type NotificationService struct {
	config *domain.NotificationConfig
	logger *zap.Logger
	run    func(name string, args ...string) error
}

// NewNotificationService creates a new notification service
func NewNotificationService(config *domain.NotificationConfig, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		config: config,
		logger: logger,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// Send sends a notification
func (n *NotificationService) Send(title, message string) error {
	if !n.config.Enabled {
		n.logger.Debug("Notifications disabled, skipping",
			zap.String("title", title),
			zap.String("message", message))
		return nil
	}

	var err error
	switch n.config.Method {
	case "osascript":
		script := fmt.Sprintf(`display notification %s with title %s`, appleScriptString(message), appleScriptString(title))
		if n.config.Sound {
			script += ` sound name "default"`
		}
		err = n.run("osascript", "-e", script)
	case "notify-send":
		err = n.run("notify-send", "--app-name=YT Media Backup", title, message)
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}

	if err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", n.config.Method),
			zap.Error(err))
		return err
	}

	n.logger.Debug("Notification sent",
		zap.String("title", title),
		zap.String("message", message))
	return nil
}

// NotifyRunFinished sends one notification describing how a run ended
func (n *NotificationService) NotifyRunFinished(state domain.DownloadState, title string) {
	name := truncateString(title, 40)

	var heading, message string
	switch state.Status {
	case domain.StatusCompleted:
		heading = "Download Completed"
		message = name
		if state.IsPlaylist {
			message = fmt.Sprintf("%s (%d files)", name, state.CompletedFiles)
		}
	case domain.StatusCompletedWithErrors:
		heading = "Download Incomplete"
		message = fmt.Sprintf("%s: %s", name, state.Message)
	case domain.StatusCancelled:
		heading = "Download Cancelled"
		message = name
	case domain.StatusError:
		heading = "Download Failed"
		message = fmt.Sprintf("%s: %s", name, state.Message)
	default:
		return
	}

	_ = n.Send(heading, message)
}

// appleScriptString quotes s as an AppleScript string literal
func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// truncateString truncates a string to maxLen runes
func truncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}
