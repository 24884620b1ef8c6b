package infrastructure

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/yt-media-backup/internal/domain"
)

// YTDLPFetcher implements domain.MediaFetcher by running the yt-dlp binary
type YTDLPFetcher struct {
	config  *domain.YTDLPConfig
	logsDir string
	logger  *zap.Logger
}

// NewYTDLPFetcher creates a new yt-dlp fetcher. Raw yt-dlp output is appended
// to a daily file in logsDir.
func NewYTDLPFetcher(config *domain.YTDLPConfig, logsDir string, logger *zap.Logger) *YTDLPFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &YTDLPFetcher{
		config:  config,
		logsDir: logsDir,
		logger:  logger,
	}
}

// Available checks that the yt-dlp binary can be found
func (f *YTDLPFetcher) Available() error {
	if _, err := exec.LookPath(f.config.Binary); err != nil {
		return fmt.Errorf("yt-dlp binary %q not available: %w", f.config.Binary, err)
	}
	return nil
}

// BuildProbeArgs builds the arguments of a metadata-only invocation
func BuildProbeArgs(url string) []string {
	return []string{
		"--dump-single-json",
		"--flat-playlist",
		"--no-warnings",
		"--skip-download",
		"--",
		url,
	}
}

// BuildFetchArgs builds the arguments of a download invocation
func BuildFetchArgs(config *domain.YTDLPConfig, req *domain.FetchRequest) []string {
	args := []string{
		"--newline",
		"--progress",
		"--no-colors",
		"--no-warnings",
		"--ignore-errors",
		"--no-simulate",
		"--extractor-retries", strconv.Itoa(config.ExtractorRetries),
		"--progress-template", progressTemplate,
		"--print", finishedTemplate,
		"-o", req.OutputTemplate,
	}

	if config.GeoBypass {
		args = append(args, "--geo-bypass")
	}

	if req.Playlist {
		args = append(args, "--yes-playlist")
	} else {
		args = append(args, "--no-playlist")
	}

	if req.DownloadType == domain.TypeVideo {
		args = append(args,
			"-f", config.VideoFormat,
			"--merge-output-format", config.MergeOutputFormat)
	} else {
		args = append(args,
			"-f", "bestaudio",
			"-x",
			"--audio-format", config.AudioFormat,
			"--audio-quality", config.AudioQuality)
	}

	if req.Strategy == domain.StrategyAlternate && config.AlternateExtractorArgs != "" {
		args = append(args, "--extractor-args", config.AlternateExtractorArgs)
	}

	return append(args, "--", req.URL)
}

// Probe resolves metadata without downloading anything
func (f *YTDLPFetcher) Probe(ctx context.Context, url string) (*domain.ProbeResult, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, f.config.Binary, BuildProbeArgs(url)...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := lastErrorLine(stderr.String()); msg != "" {
			return nil, errors.New(msg)
		}
		return nil, fmt.Errorf("yt-dlp probe failed: %w", err)
	}

	var result domain.ProbeResult
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp metadata: %w", err)
	}
	return &result, nil
}

// Fetch runs yt-dlp and delivers its progress in output order. Returning an
// error from onProgress stops the process; Fetch then returns that error.
// A non-zero exit is reported as domain.ErrFetchIncomplete.
func (f *YTDLPFetcher) Fetch(ctx context.Context, req *domain.FetchRequest, onProgress domain.ProgressFunc) error {
	args := BuildFetchArgs(f.config, req)

	logFile, err := f.openLogFile()
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	writeLogHeader(logFile, req, ShellEscapeCommand(f.config.Binary, args...))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// stdout and stderr share one pipe so lines keep their relative order
	pr, pw := io.Pipe()
	cmd := exec.CommandContext(runCtx, f.config.Binary, args...)
	cmd.Stdout = pw
	cmd.Stderr = pw
	cmd.WaitDelay = 5 * time.Second

	if err := cmd.Start(); err != nil {
		pw.Close()
		writeLogFooter(logFile, false, err.Error())
		return fmt.Errorf("failed to start yt-dlp: %w", err)
	}

	waitErr := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		pw.Close()
		waitErr <- err
	}()

	callbackErr := f.consume(pr, logFile, req.Hooks, onProgress, cancel)
	exitErr := <-waitErr

	switch {
	case callbackErr != nil:
		writeLogFooter(logFile, false, callbackErr.Error())
		return callbackErr
	case ctx.Err() != nil:
		writeLogFooter(logFile, false, ctx.Err().Error())
		return ctx.Err()
	case exitErr != nil:
		writeLogFooter(logFile, false, exitErr.Error())
		return fmt.Errorf("%w: %v", domain.ErrFetchIncomplete, exitErr)
	}

	writeLogFooter(logFile, true, req.URL)
	return nil
}

// consume reads output lines until EOF. After the first callback error it stops the
// process and keeps draining so the writer side can finish.
func (f *YTDLPFetcher) consume(r io.Reader, logFile io.Writer, hooks []domain.FileHook, onProgress domain.ProgressFunc, stop context.CancelFunc) error {
	var callbackErr error

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		fmt.Fprintln(logFile, line)

		if callbackErr != nil {
			continue
		}

		event, ok := ParseOutputLine(line)
		if !ok {
			continue
		}

		if event.Status == domain.EventFinished {
			event.Filename = f.runHooks(hooks, event.Filename)
		}

		if err := onProgress(event); err != nil {
			callbackErr = err
			stop()
		}
	}

	if err := scanner.Err(); err != nil {
		f.logger.Warn("Failed to read yt-dlp output", zap.Error(err))
		// Unblock the writer side.
		_, _ = io.Copy(io.Discard, r)
	}

	return callbackErr
}

func (f *YTDLPFetcher) runHooks(hooks []domain.FileHook, path string) string {
	for _, hook := range hooks {
		newPath, err := hook(path)
		if err != nil {
			f.logger.Warn("File hook failed", zap.String("file", path), zap.Error(err))
			continue
		}
		path = newPath
	}
	return path
}

// openLogFile opens today's raw yt-dlp log
func (f *YTDLPFetcher) openLogFile() (*os.File, error) {
	if err := os.MkdirAll(f.logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	path := filepath.Join(f.logsDir, "ytdlp-"+time.Now().Format("20060102")+".log")
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

func writeLogHeader(w io.Writer, req *domain.FetchRequest, cmdLine string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(w, "\n=== [%s] Fetch: %s (%s) ===\n", timestamp, req.URL, req.Strategy)
	fmt.Fprintf(w, "$ %s\n", cmdLine)
}

func writeLogFooter(w io.Writer, success bool, message string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	fmt.Fprintf(w, "[%s] %s: %s\n", timestamp, status, message)
	fmt.Fprint(w, "=== END ===\n\n")
}

// lastErrorLine returns the last "ERROR:" line of yt-dlp output
func lastErrorLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, errorMarker) {
			return line
		}
	}
	return ""
}
