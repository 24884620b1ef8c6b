package infrastructure

import (
	"encoding/json"
	"strings"

	"github.com/yourusername/yt-media-backup/internal/domain"
)

// Line markers produced by the templates passed to yt-dlp
const (
	progressMarker = "[progress]"
	finishedMarker = "[finished]"
	errorMarker    = "ERROR:"

	progressTemplate = "download:" + progressMarker + "%(progress)j"
	finishedTemplate = "after_move:" + finishedMarker + "%(filepath)s"
)

// progressJSON mirrors the progress dict yt-dlp renders for %(progress)j.
// Numbers may be null or floats depending on the extractor.
type progressJSON struct {
	Status             string   `json:"status"`
	Filename           string   `json:"filename"`
	DownloadedBytes    *float64 `json:"downloaded_bytes"`
	TotalBytes         *float64 `json:"total_bytes"`
	TotalBytesEstimate *float64 `json:"total_bytes_estimate"`
	Speed              *float64 `json:"speed"`
	ETA                *float64 `json:"eta"`
}

// ParseOutputLine turns one line of yt-dlp output into a progress event.
// It reports false for lines that carry no event.
func ParseOutputLine(line string) (domain.ProgressEvent, bool) {
	line = strings.TrimRight(line, "\r\n")

	switch {
	case strings.HasPrefix(line, progressMarker):
		return parseProgress(strings.TrimPrefix(line, progressMarker))

	case strings.HasPrefix(line, finishedMarker):
		path := strings.TrimSpace(strings.TrimPrefix(line, finishedMarker))
		if path == "" || path == "NA" {
			return domain.ProgressEvent{}, false
		}
		return domain.ProgressEvent{Status: domain.EventFinished, Filename: path}, true

	case strings.HasPrefix(line, errorMarker):
		msg := strings.TrimSpace(strings.TrimPrefix(line, errorMarker))
		return domain.ProgressEvent{Status: domain.EventError, Error: msg}, true
	}

	return domain.ProgressEvent{}, false
}

func parseProgress(payload string) (domain.ProgressEvent, bool) {
	var p progressJSON
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return domain.ProgressEvent{}, false
	}

	// Per-stream "finished" is ignored; a file counts once it was moved into place.
	if p.Status != "downloading" {
		return domain.ProgressEvent{}, false
	}

	total := p.TotalBytes
	if total == nil || *total == 0 {
		total = p.TotalBytesEstimate
	}

	return domain.ProgressEvent{
		Status:          domain.EventDownloading,
		Filename:        p.Filename,
		DownloadedBytes: int64(value(p.DownloadedBytes)),
		TotalBytes:      int64(value(total)),
		Speed:           value(p.Speed),
		ETA:             int64(value(p.ETA)),
	}, true
}

func value(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
