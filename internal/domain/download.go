package domain

import (
	"strings"
)

// DownloadStatus represents the current status of a download run
type DownloadStatus string

const (
	StatusIdle                DownloadStatus = "idle"
	StatusStarting            DownloadStatus = "starting"
	StatusDownloading         DownloadStatus = "downloading"
	StatusProcessing          DownloadStatus = "processing"
	StatusCompleted           DownloadStatus = "completed"
	StatusCompletedWithErrors DownloadStatus = "completed_with_errors"
	StatusCancelled           DownloadStatus = "cancelled"
	StatusError               DownloadStatus = "error"
)

// IsTerminal checks if the status ends a run. StatusError is also set for a
// failed playlist item while the run goes on; DownloadState.Active tells the two apart.
func (s DownloadStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCompletedWithErrors, StatusCancelled, StatusError:
		return true
	}
	return false
}

// DownloadType selects what is extracted from the media
type DownloadType string

const (
	TypeAudio DownloadType = "audio"
	TypeVideo DownloadType = "video"
)

// PlaylistMode represents what the user wants when a URL references a playlist
type PlaylistMode string

const (
	PlaylistModeSingle   PlaylistMode = "single"   // Only the referenced video
	PlaylistModePlaylist PlaylistMode = "playlist" // Every entry of the playlist
)

// ValidateDownloadType checks if a download type is valid
func ValidateDownloadType(t DownloadType) bool {
	return t == TypeAudio || t == TypeVideo
}

// ValidatePlaylistMode checks if a playlist mode is valid
func ValidatePlaylistMode(mode PlaylistMode) bool {
	return mode == PlaylistModeSingle || mode == PlaylistModePlaylist
}

// DownloadRequest is a user request to start a run
type DownloadRequest struct {
	URL          string       `json:"url"`
	OutputDir    string       `json:"output_dir,omitempty"`
	DownloadType DownloadType `json:"download_type,omitempty"`
	PlaylistMode PlaylistMode `json:"playlist_mode,omitempty"`
}

// Normalize fills defaults for the optional fields and validates the request.
// An empty URL yields ErrEmptyURL.
func (r *DownloadRequest) Normalize(defaultDir string, defaultType DownloadType, defaultMode PlaylistMode) error {
	r.URL = strings.TrimSpace(r.URL)
	if r.URL == "" {
		return ErrEmptyURL
	}
	if r.OutputDir == "" {
		r.OutputDir = defaultDir
	}
	if r.DownloadType == "" {
		r.DownloadType = defaultType
	}
	if r.PlaylistMode == "" {
		r.PlaylistMode = defaultMode
	}
	if !ValidateDownloadType(r.DownloadType) {
		return &RequestError{Field: "download_type", Value: string(r.DownloadType)}
	}
	if !ValidatePlaylistMode(r.PlaylistMode) {
		return &RequestError{Field: "playlist_mode", Value: string(r.PlaylistMode)}
	}
	return nil
}

// DownloadState describes the in-flight (or most recent) run.
// One instance exists per process and is overwritten by every new run.
type DownloadState struct {
	RunID          string         `json:"run_id"`
	Active         bool           `json:"active"` // A run goroutine is still working on RunID
	OutputPath     string         `json:"output_path"`
	Status         DownloadStatus `json:"status"`
	Progress       float64        `json:"progress"`       // Current file, 0-100
	TotalProgress  float64        `json:"total_progress"` // Whole playlist, 0-100
	Message        string         `json:"message"`
	CurrentFile    string         `json:"current_file"`
	TotalFiles     int            `json:"total_files"`
	CompletedFiles int            `json:"completed_files"`
	IsPlaylist     bool           `json:"is_playlist"`
	PlaylistTitle  string         `json:"playlist_title"`
	SelectedMode   string         `json:"selected_mode"`

	DownloadedBytes int64   `json:"downloaded_bytes"`
	TotalBytes      int64   `json:"total_bytes"`
	Speed           float64 `json:"speed"`
	ETA             int64   `json:"eta"`
}

// NewDownloadState returns the state reported before any run has started
func NewDownloadState() DownloadState {
	return DownloadState{
		Status:       StatusIdle,
		SelectedMode: string(PlaylistModeSingle),
	}
}
