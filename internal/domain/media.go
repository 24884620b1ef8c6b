package domain

import "context"

// MediaInfo is the answer to a "check URL" request
type MediaInfo struct {
	IsPlaylist        bool   `json:"is_playlist"`
	IsVideoInPlaylist bool   `json:"is_video_in_playlist,omitempty"`
	Title             string `json:"title"`
	VideoTitle        string `json:"video_title,omitempty"`
	Entries           int    `json:"entries,omitempty"`
	URL               string `json:"url"`
	VideoURL          string `json:"video_url,omitempty"`
	PlaylistURL       string `json:"playlist_url,omitempty"`
	Error             string `json:"error,omitempty"`
}

// ProbeEntry is one flat playlist entry returned by a probe
type ProbeEntry struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// ProbeResult is the metadata-only view of a URL
type ProbeResult struct {
	Type       string       `json:"_type"`
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	WebpageURL string       `json:"webpage_url"`
	Entries    []ProbeEntry `json:"entries"`
}

// IsPlaylist reports whether the probed URL is a playlist
func (p *ProbeResult) IsPlaylist() bool {
	return p.Type == "playlist"
}

// FetchStrategy selects the extraction profile used by the fetcher
type FetchStrategy string

const (
	StrategyDefault   FetchStrategy = "default"
	StrategyAlternate FetchStrategy = "alternate" // Used once after the default profile failed
)

// FileHook is run by the fetcher on every finished output file.
// It returns the path the file has after the hook ran.
type FileHook func(path string) (string, error)

// FetchRequest describes one invocation of the media fetcher
type FetchRequest struct {
	URL            string
	OutputTemplate string
	DownloadType   DownloadType
	Playlist       bool
	Strategy       FetchStrategy
	Hooks          []FileHook
}

// ProgressEventType is the kind of a progress event
type ProgressEventType string

const (
	EventDownloading ProgressEventType = "downloading"
	EventFinished    ProgressEventType = "finished"
	EventError       ProgressEventType = "error"
)

// ProgressEvent is emitted by the fetcher while it works
type ProgressEvent struct {
	Status          ProgressEventType `json:"status"`
	Filename        string            `json:"filename,omitempty"`
	DownloadedBytes int64             `json:"downloaded_bytes,omitempty"`
	TotalBytes      int64             `json:"total_bytes,omitempty"`
	Speed           float64           `json:"speed,omitempty"`
	ETA             int64             `json:"eta,omitempty"`
	Error           string            `json:"error,omitempty"`
}

// ProgressFunc receives progress events. Returning an error asks the fetcher to stop.
type ProgressFunc func(event ProgressEvent) error

// MediaFetcher is the external media retrieval collaborator
type MediaFetcher interface {
	// Probe resolves metadata without downloading anything
	Probe(ctx context.Context, url string) (*ProbeResult, error)

	// Fetch downloads and post-processes the media described by the request
	Fetch(ctx context.Context, req *FetchRequest, onProgress ProgressFunc) error

	// Available reports whether the fetcher can be used
	Available() error
}

// FolderResult is the answer to an "open folder" request
type FolderResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// FolderOpener shows a directory in the desktop file browser
type FolderOpener interface {
	Open(path string) error
}
