package handlers

import (
	"context"

	"github.com/yourusername/yt-media-backup/internal/domain"
)

// DownloadService is the part of app.DownloadManager the HTTP layer uses
type DownloadService interface {
	ResolveMetadata(ctx context.Context, url string) *domain.MediaInfo
	StartDownload(req domain.DownloadRequest) (string, error)
	CancelDownload()
	Status() domain.DownloadState
	OpenFolder(path string) domain.FolderResult
	DefaultPath() string
	History() []domain.HistoryEntry
	Ready() error
}
