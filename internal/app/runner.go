package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/yt-media-backup/internal/domain"
	"github.com/yourusername/yt-media-backup/pkg/filename"
)

const outputTemplate = "%(title)s.%(ext)s"

// RunNotifier is told about every run that reached a terminal status
type RunNotifier interface {
	NotifyRunFinished(state domain.DownloadState, title string)
}

// Runner executes one download run end to end
type Runner struct {
	fetcher  domain.MediaFetcher
	resolver *MetadataResolver
	state    *StateTracker
	history  *HistoryStore
	notifier RunNotifier
	logger   *zap.Logger
}

// NewRunner creates a new runner. notifier may be nil.
func NewRunner(
	fetcher domain.MediaFetcher,
	resolver *MetadataResolver,
	state *StateTracker,
	history *HistoryStore,
	notifier RunNotifier,
	logger *zap.Logger,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		fetcher:  fetcher,
		resolver: resolver,
		state:    state,
		history:  history,
		notifier: notifier,
		logger:   logger,
	}
}

// runRecord collects what ends up in the history entry
type runRecord struct {
	runID      string
	url        string
	outputDir  string
	title      string
	isPlaylist bool
	startedAt  time.Time
}

// Run downloads req. The state must already have been reset with StateTracker.Begin.
// Run never returns an error; the outcome is reflected in the state and the history.
func (r *Runner) Run(ctx context.Context, runID string, req domain.DownloadRequest) {
	rec := &runRecord{
		runID:     runID,
		url:       req.URL,
		outputDir: req.OutputDir,
		title:     "Unknown",
		startedAt: time.Now(),
	}
	defer r.finish(rec, req)

	r.logger.Info("Download started",
		zap.String("run_id", runID),
		zap.String("url", req.URL),
		zap.String("type", string(req.DownloadType)),
		zap.String("mode", string(req.PlaylistMode)))

	if err := r.run(ctx, rec, req); err != nil {
		r.logger.Error("Download failed", zap.String("run_id", runID), zap.Error(err))
		r.state.fail(err)
	}
}

func (r *Runner) run(ctx context.Context, rec *runRecord, req domain.DownloadRequest) error {
	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	info := r.resolver.Resolve(ctx, req.URL)
	rec.title = info.Title
	rec.isPlaylist = info.IsPlaylist

	fetchURL := req.URL
	outputDir := req.OutputDir
	playlist := false
	totalFiles := 1

	switch {
	case info.IsPlaylist && req.PlaylistMode == domain.PlaylistModePlaylist:
		outputDir = filepath.Join(req.OutputDir, filename.Sanitize(info.Title)+"_playlist")
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create playlist directory: %w", err)
		}
		if info.PlaylistURL != "" {
			fetchURL = info.PlaylistURL
		}
		playlist = true
		if info.Entries > 0 {
			totalFiles = info.Entries
		}
	case info.IsPlaylist:
		if info.VideoURL != "" {
			fetchURL = info.VideoURL
		} else {
			fetchURL = stripPlaylistParams(req.URL)
		}
	}

	rec.url = fetchURL
	rec.outputDir = outputDir

	r.state.Update(func(s *domain.DownloadState) {
		s.IsPlaylist = playlist
		s.TotalFiles = totalFiles
		s.OutputPath = outputDir
		if info.IsPlaylist {
			s.PlaylistTitle = info.Title
		}
	})

	fetchReq := &domain.FetchRequest{
		URL:            fetchURL,
		OutputTemplate: filepath.Join(outputDir, outputTemplate),
		DownloadType:   req.DownloadType,
		Playlist:       playlist,
		Strategy:       domain.StrategyDefault,
		Hooks:          []domain.FileHook{filename.RenameFile},
	}

	done, err := r.attempt(ctx, fetchReq)
	if err != nil || done {
		return err
	}

	r.logger.Info("Retrying with alternate strategy",
		zap.String("run_id", rec.runID),
		zap.String("status", string(r.state.Snapshot().Status)))
	r.state.Update(func(s *domain.DownloadState) {
		if s.Status != domain.StatusCancelled {
			s.Message = "Trying alternative download method..."
		}
	})

	fetchReq.Strategy = domain.StrategyAlternate
	done, err = r.attempt(ctx, fetchReq)
	if err != nil || done {
		return err
	}

	r.state.Update(func(s *domain.DownloadState) {
		if s.Status == domain.StatusCompleted || s.Status == domain.StatusCancelled {
			return
		}
		s.Status = domain.StatusCompletedWithErrors
		if s.CompletedFiles < s.TotalFiles && rec.isPlaylist {
			s.Message = fmt.Sprintf("Download incomplete. Only %d of %d files were downloaded.", s.CompletedFiles, s.TotalFiles)
		} else {
			s.Message = "Download completed with some errors or skipped files."
		}
	})
	return nil
}

// attempt runs one fetch and sweeps the output directory. It reports done when
// the run needs no further attempt: it completed or the user cancelled.
func (r *Runner) attempt(ctx context.Context, req *domain.FetchRequest) (bool, error) {
	err := r.fetcher.Fetch(ctx, req, r.state.HandleProgress)

	if renamed := filename.SanitizeDir(filepath.Dir(req.OutputTemplate), r.logger); len(renamed) > 0 {
		r.logger.Debug("Sanitized output files", zap.Int("count", len(renamed)))
	}

	if r.state.CancelRequested() || errors.Is(err, domain.ErrDownloadCancelled) {
		return true, nil
	}
	if err != nil && !errors.Is(err, domain.ErrFetchIncomplete) {
		return true, err
	}
	if err != nil {
		r.logger.Warn("Fetch finished with errors",
			zap.String("url", req.URL),
			zap.String("strategy", string(req.Strategy)),
			zap.Error(err))
	}

	return r.state.Snapshot().Status == domain.StatusCompleted, nil
}

// finish turns a panic into an error status, records the run and sends the notification
func (r *Runner) finish(rec *runRecord, req domain.DownloadRequest) {
	if p := recover(); p != nil {
		r.logger.Error("Download panicked", zap.String("run_id", rec.runID), zap.Any("panic", p))
		r.state.fail(fmt.Errorf("%v", p))
	}

	final := r.state.Snapshot()
	r.history.Append(domain.HistoryEntry{
		RunID:        rec.runID,
		URL:          rec.url,
		OutputDir:    rec.outputDir,
		DownloadType: req.DownloadType,
		IsPlaylist:   rec.isPlaylist,
		Title:        rec.title,
		Status:       final.Status,
	})

	r.logger.Info("Download finished",
		zap.String("run_id", rec.runID),
		zap.String("status", string(final.Status)),
		zap.Int("completed_files", final.CompletedFiles),
		zap.Int("total_files", final.TotalFiles),
		zap.Duration("duration", time.Since(rec.startedAt)))

	if r.notifier != nil {
		r.notifier.NotifyRunFinished(final, rec.title)
	}
}
