package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/yt-media-backup/api"
	"github.com/yourusername/yt-media-backup/api/handlers"
	"github.com/yourusername/yt-media-backup/internal/app"
	"github.com/yourusername/yt-media-backup/internal/domain"
	"github.com/yourusername/yt-media-backup/internal/infrastructure"
	"github.com/yourusername/yt-media-backup/pkg/logger"
)

const shutdownTimeout = 30 * time.Second

var (
	configPath = flag.String("config", "", "Path to config file (default: search ./configs, ~/.yt-media-backup, /etc/yt-media-backup)")
	detach     = flag.Bool("detach", false, "Run the server in the background")
)

func main() {
	flag.Parse()

	if *detach {
		startAsDaemon()
		return
	}

	runServer()
}

// startAsDaemon re-executes the binary without -detach in a new session
func startAsDaemon() {
	execPath, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get executable path: %v\n", err)
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "/"
	}

	var args []string
	if *configPath != "" {
		args = append(args, "-config", *configPath)
	}

	cmd := exec.Command(execPath, args...)
	cmd.Dir = cwd
	cmd.Env = os.Environ()
	detachProcess(cmd)

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open %s: %v\n", os.DevNull, err)
		os.Exit(1)
	}
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start daemon: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Server started as daemon (PID: %d)\n", cmd.Process.Pid)
	os.Exit(0)
}

func runServer() {
	config, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if config.Download.DefaultDir == "" {
		config.Download.DefaultDir = infrastructure.DefaultDownloadsDir()
	}

	if err := createDirectories(config); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	console, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	multiLog, err := logger.NewMultiLogger(logger.MultiLoggerConfig{
		Level:   config.Logging.Level,
		LogsDir: config.Download.LogsDir,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize category logs: %v\n", err)
		os.Exit(1)
	}

	logAdapter := logger.NewLoggerAdapter(console, multiLog)
	defer logAdapter.Close()
	log := logAdapter.General()

	log.Info("Starting YT Media Backup server",
		zap.String("version", handlers.Version),
		zap.String("host", config.Server.Host),
		zap.Int("port", config.Server.Port),
		zap.String("default_dir", config.Download.DefaultDir),
		zap.String("history_backend", config.History.Backend))

	repo, err := newHistoryRepository(config)
	if err != nil {
		log.Fatal("Failed to initialize history repository", zap.Error(err))
	}

	history := app.NewHistoryStore(repo, config.History.MaxEntries, logAdapter.History())
	history.Load()

	fetcher := infrastructure.NewYTDLPFetcher(&config.YTDLP, config.Download.LogsDir, logAdapter.Download())
	if err := fetcher.Available(); err != nil {
		log.Warn("yt-dlp is not available; downloads will fail until it is installed", zap.Error(err))
	}

	notifier := infrastructure.NewNotificationService(&config.Notification, log)
	opener := infrastructure.NewFolderOpener(log)

	downloadMgr := app.NewDownloadManager(fetcher, history, opener, notifier, &config.Download, logAdapter.Download())

	router := api.SetupRouter(downloadMgr, logAdapter)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Server forced to shutdown", zap.Error(err))
		}
		if err := downloadMgr.Shutdown(shutdownCtx); err != nil {
			log.Error("Active download did not stop cleanly", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
	}

	if err := history.Close(); err != nil {
		log.Error("Failed to close history repository", zap.Error(err))
	}

	log.Info("Server exited")
}

// newHistoryRepository opens the configured history backend
func newHistoryRepository(config *domain.Config) (domain.HistoryRepository, error) {
	switch config.History.Backend {
	case "sqlite":
		repo, err := infrastructure.NewSQLiteHistoryRepository(config.HistoryDatabase())
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return infrastructure.NewJSONHistoryRepository(config.HistoryFile()), nil
	}
}

func createDirectories(config *domain.Config) error {
	dirs := []string{
		config.Download.DataDir,
		config.Download.LogsDir,
		config.Download.DefaultDir,
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
