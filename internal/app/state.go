package app

import (
	"path/filepath"
	"sync"

	"github.com/yourusername/yt-media-backup/internal/domain"
	"github.com/yourusername/yt-media-backup/pkg/filename"
)

const cancelledMessage = "Download cancelled by user"

// StateTracker owns the process-wide DownloadState and the cancellation flag
type StateTracker struct {
	mu              sync.RWMutex
	state           domain.DownloadState
	cancelRequested bool
	// finished holds the files counted in CompletedFiles for the current run
	finished map[string]struct{}
}

// NewStateTracker creates a tracker in the idle state
func NewStateTracker() *StateTracker {
	return &StateTracker{state: domain.NewDownloadState()}
}

// Snapshot returns a copy of the current state
func (t *StateTracker) Snapshot() domain.DownloadState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Begin resets the flag and the state for a new run
func (t *StateTracker) Begin(runID, outputDir string, mode domain.PlaylistMode) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancelRequested = false
	t.finished = make(map[string]struct{})
	t.state = domain.DownloadState{
		RunID:        runID,
		Active:       true,
		OutputPath:   outputDir,
		Status:       domain.StatusStarting,
		Message:      "Preparing download...",
		TotalFiles:   1,
		SelectedMode: string(mode),
	}
}

// Update applies fn to the state under the lock
func (t *StateTracker) Update(fn func(s *domain.DownloadState)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.state)
}

// RequestCancel raises the cancellation flag and marks the state cancelled
func (t *StateTracker) RequestCancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancelRequested = true
	t.state.Status = domain.StatusCancelled
	t.state.Message = cancelledMessage
}

// CancelRequested reports whether the current run was cancelled
func (t *StateTracker) CancelRequested() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cancelRequested
}

// HandleProgress applies one fetcher event to the state. It returns
// domain.ErrDownloadCancelled once cancellation was requested so the fetcher stops.
func (t *StateTracker) HandleProgress(event domain.ProgressEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancelRequested {
		t.state.Status = domain.StatusCancelled
		t.state.Message = cancelledMessage
		return domain.ErrDownloadCancelled
	}

	switch event.Status {
	case domain.EventDownloading:
		t.applyDownloading(event)
	case domain.EventFinished:
		t.applyFinished(event)
	case domain.EventError:
		msg := event.Error
		if msg == "" {
			msg = "Unknown error"
		}
		t.state.Status = domain.StatusError
		t.state.Message = "Error: " + msg
	}
	return nil
}

func (t *StateTracker) applyDownloading(event domain.ProgressEvent) {
	s := &t.state

	if event.Filename != "" {
		name := filepath.Base(event.Filename)
		if name != s.CurrentFile {
			s.CurrentFile = name
			s.Message = "Downloading: " + name
		}
	}

	s.Status = domain.StatusDownloading
	s.DownloadedBytes = event.DownloadedBytes
	s.TotalBytes = event.TotalBytes
	s.Speed = event.Speed
	s.ETA = event.ETA
	s.Progress = 0
	if event.TotalBytes > 0 {
		s.Progress = float64(event.DownloadedBytes) / float64(event.TotalBytes) * 100
	}
}

func (t *StateTracker) applyFinished(event domain.ProgressEvent) {
	s := &t.state

	if t.markFinished(event.Filename) && s.CompletedFiles < s.TotalFiles {
		s.CompletedFiles++
	}
	s.Status = domain.StatusProcessing
	s.Progress = 100
	s.Message = "Processing " + filepath.Base(event.Filename) + "..."

	if s.TotalFiles > 1 {
		s.TotalProgress = float64(s.CompletedFiles) * 100 / float64(s.TotalFiles)
		if s.TotalProgress > 100 {
			s.TotalProgress = 100
		}
	}

	if s.CompletedFiles >= s.TotalFiles {
		s.Status = domain.StatusCompleted
		s.TotalProgress = 100
		s.Message = "Download completed successfully!"
	}
}

// markFinished records path and reports whether it was not counted before.
// A retry fetches files again under their raw names, so paths are compared by
// their sanitized base name. Events without a file name always count.
func (t *StateTracker) markFinished(path string) bool {
	if path == "" {
		return true
	}
	if t.finished == nil {
		t.finished = make(map[string]struct{})
	}

	key := filepath.Join(filepath.Dir(path), filename.Sanitize(filepath.Base(path)))
	if _, seen := t.finished[key]; seen {
		return false
	}
	t.finished[key] = struct{}{}
	return true
}

// End marks runID as no longer active. It is a no-op when a newer run began.
func (t *StateTracker) End(runID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.RunID == runID {
		t.state.Active = false
	}
}

// fail marks the run as failed unless the user cancelled it
func (t *StateTracker) fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancelRequested {
		return
	}
	t.state.Status = domain.StatusError
	t.state.Message = "Error: " + err.Error()
}
