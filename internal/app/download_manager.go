package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourusername/yt-media-backup/internal/domain"
)

// DownloadManager serves the request interface: it starts and cancels runs,
// reports state and history, and opens folders. At most one run is active.
type DownloadManager struct {
	runner   *Runner
	state    *StateTracker
	history  *HistoryStore
	resolver *MetadataResolver
	fetcher  domain.MediaFetcher
	opener   domain.FolderOpener
	config   *domain.DownloadConfig
	logger   *zap.Logger

	mu          sync.Mutex
	activeRunID string
	cancelRun   context.CancelFunc
	wg          sync.WaitGroup
}

// NewDownloadManager creates a new download manager
func NewDownloadManager(
	fetcher domain.MediaFetcher,
	history *HistoryStore,
	opener domain.FolderOpener,
	notifier RunNotifier,
	config *domain.DownloadConfig,
	logger *zap.Logger,
) *DownloadManager {
	if logger == nil {
		logger = zap.NewNop()
	}

	state := NewStateTracker()
	resolver := NewMetadataResolver(fetcher, logger)

	return &DownloadManager{
		runner:   NewRunner(fetcher, resolver, state, history, notifier, logger),
		state:    state,
		history:  history,
		resolver: resolver,
		fetcher:  fetcher,
		opener:   opener,
		config:   config,
		logger:   logger,
	}
}

// ResolveMetadata describes what is behind url. It never fails.
func (dm *DownloadManager) ResolveMetadata(ctx context.Context, url string) *domain.MediaInfo {
	return dm.resolver.Resolve(ctx, strings.TrimSpace(url))
}

// StartDownload validates req and starts a background run. It returns the run id
// immediately; domain.ErrDownloadInProgress means another run is still active.
func (dm *DownloadManager) StartDownload(req domain.DownloadRequest) (string, error) {
	err := req.Normalize(dm.DefaultPath(),
		domain.DownloadType(dm.config.DefaultType),
		domain.PlaylistMode(dm.config.DefaultPlaylistMode))
	if err != nil {
		return "", err
	}

	if abs, err := filepath.Abs(req.OutputDir); err == nil {
		req.OutputDir = abs
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.activeRunID != "" {
		if dm.state.CancelRequested() {
			return "", fmt.Errorf("%w (run %s was cancelled and is still stopping)", domain.ErrDownloadInProgress, dm.activeRunID)
		}
		return "", fmt.Errorf("%w (run %s)", domain.ErrDownloadInProgress, dm.activeRunID)
	}

	runID := uuid.New().String()
	ctx, cancel := context.WithCancel(context.Background())
	dm.activeRunID = runID
	dm.cancelRun = cancel
	dm.state.Begin(runID, req.OutputDir, req.PlaylistMode)

	dm.wg.Add(1)
	go func() {
		defer dm.wg.Done()
		defer dm.release(runID)
		dm.runner.Run(ctx, runID, req)
	}()

	return runID, nil
}

func (dm *DownloadManager) release(runID string) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.activeRunID != runID {
		return
	}
	dm.state.End(runID)
	dm.cancelRun()
	dm.activeRunID = ""
	dm.cancelRun = nil
}

// CancelDownload asks the active run to stop and marks the state cancelled.
// The run stops at its next progress event, so the status reads cancelled
// while DownloadState.Active is still true. Until the run ends StartDownload
// keeps returning ErrDownloadInProgress.
func (dm *DownloadManager) CancelDownload() {
	dm.state.RequestCancel()
	dm.logger.Info("Download cancellation requested", zap.String("run_id", dm.ActiveRunID()))
}

// ActiveRunID returns the id of the running download, or ""
func (dm *DownloadManager) ActiveRunID() string {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return dm.activeRunID
}

// Status returns a snapshot of the download state
func (dm *DownloadManager) Status() domain.DownloadState {
	return dm.state.Snapshot()
}

// History returns the recorded runs, oldest first
func (dm *DownloadManager) History() []domain.HistoryEntry {
	return dm.history.List()
}

// DefaultPath returns the directory used when a request names none
func (dm *DownloadManager) DefaultPath() string {
	if dm.config.DefaultDir != "" {
		return dm.config.DefaultDir
	}
	if abs, err := filepath.Abs("downloads"); err == nil {
		return abs
	}
	return "downloads"
}

// OpenFolder creates path if needed and shows it in the desktop file browser
func (dm *DownloadManager) OpenFolder(path string) domain.FolderResult {
	path = strings.TrimSpace(path)
	if path == "" {
		return domain.FolderResult{Status: "error", Message: "No path provided"}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return domain.FolderResult{Status: "error", Message: err.Error()}
	}

	if err := os.MkdirAll(abs, 0755); err != nil {
		return domain.FolderResult{Status: "error", Message: err.Error()}
	}

	if err := dm.opener.Open(abs); err != nil {
		dm.logger.Warn("Failed to open folder", zap.String("path", abs), zap.Error(err))
		return domain.FolderResult{Status: "error", Message: err.Error()}
	}
	return domain.FolderResult{Status: "success"}
}

// Ready reports whether downloads can be served
func (dm *DownloadManager) Ready() error {
	return dm.fetcher.Available()
}

// Shutdown stops the active run, waits for it and flushes the history
func (dm *DownloadManager) Shutdown(ctx context.Context) error {
	dm.mu.Lock()
	if dm.cancelRun != nil {
		dm.logger.Info("Stopping active download", zap.String("run_id", dm.activeRunID))
		dm.state.RequestCancel()
		dm.cancelRun()
	}
	dm.mu.Unlock()

	done := make(chan struct{})
	go func() {
		dm.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = fmt.Errorf("timed out waiting for active download: %w", ctx.Err())
	}

	dm.history.Persist()
	return err
}
