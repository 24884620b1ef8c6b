package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/yourusername/yt-media-backup/internal/domain"
)

const watchInterval = 500 * time.Millisecond

var (
	serverURL   string
	noAutoStart bool
	rootCmd     = &cobra.Command{
		Use:   "ytmb",
		Short: "YT Media Backup CLI - save audio and video with yt-dlp",
		Long:  `A command-line client for the YT Media Backup server: inspect URLs, start and watch downloads, browse history.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://127.0.0.1:5000", "Server URL")
	rootCmd.PersistentFlags().BoolVar(&noAutoStart, "no-auto-start", false, "Don't auto-start server if not running")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(defaultPathCmd)
}

// ensureServer checks if server is running and starts it if needed (unless --no-auto-start)
func ensureServer() *apiClient {
	if !noAutoStart {
		if err := ensureServerRunning(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}
	return newAPIClient(serverURL)
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var checkCmd = &cobra.Command{
	Use:   "check [url]",
	Short: "Show what a URL points to",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := ensureServer()
		info, err := client.checkURL(args[0])
		exitOnError(err)
		printMediaInfo(os.Stdout, info)
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download [url]",
	Short: "Start a download",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := ensureServer()

		outputDir, _ := cmd.Flags().GetString("output")
		downloadType, _ := cmd.Flags().GetString("type")
		playlistMode, _ := cmd.Flags().GetString("playlist-mode")
		watch, _ := cmd.Flags().GetBool("watch")

		resp, err := client.startDownload(domain.DownloadRequest{
			URL:          args[0],
			OutputDir:    outputDir,
			DownloadType: domain.DownloadType(downloadType),
			PlaylistMode: domain.PlaylistMode(playlistMode),
		})
		exitOnError(err)

		fmt.Printf("Download started\n")
		fmt.Printf("Run: %s\n", resp.RunID)

		if watch {
			watchRun(client, resp.RunID)
		}
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current download status",
	Run: func(cmd *cobra.Command, args []string) {
		client := ensureServer()
		watch, _ := cmd.Flags().GetBool("watch")

		if watch {
			watchRun(client, "")
			return
		}

		state, err := client.status()
		exitOnError(err)
		printState(os.Stdout, state)
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel the running download",
	Run: func(cmd *cobra.Command, args []string) {
		client := ensureServer()
		exitOnError(client.cancel())
		fmt.Println("Download cancelled")
	},
}

var openCmd = &cobra.Command{
	Use:   "open [path]",
	Short: "Open a folder in the file browser",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := ensureServer()
		result, err := client.openFolder(args[0])
		exitOnError(err)
		if result.Status != "success" {
			exitOnError(fmt.Errorf("%s", result.Message))
		}
		fmt.Printf("Opened %s\n", args[0])
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent downloads",
	Run: func(cmd *cobra.Command, args []string) {
		client := ensureServer()
		resp, err := client.history()
		exitOnError(err)
		printHistory(os.Stdout, resp.Entries)
	},
}

var defaultPathCmd = &cobra.Command{
	Use:   "default-path",
	Short: "Print the server's default download directory",
	Run: func(cmd *cobra.Command, args []string) {
		client := ensureServer()
		path, err := client.defaultPath()
		exitOnError(err)
		fmt.Println(path)
	},
}

func init() {
	downloadCmd.Flags().StringP("output", "o", "", "Output directory (default: server's default path)")
	downloadCmd.Flags().StringP("type", "t", "", "Download type (audio, video)")
	downloadCmd.Flags().StringP("playlist-mode", "p", "", "Playlist mode (single, playlist)")
	downloadCmd.Flags().BoolP("watch", "w", false, "Follow progress until the download finishes")
	statusCmd.Flags().BoolP("watch", "w", false, "Follow progress until the download finishes")
}

func watchRun(client *apiClient, runID string) {
	bar := newProgressBar(os.Stdout)
	state, err := client.watch(runID, watchInterval, func(s *domain.DownloadState) {
		renderProgress(bar, s)
	})
	fmt.Println()
	exitOnError(err)

	if state.Message != "" {
		fmt.Println(state.Message)
	}
	if state.Status != domain.StatusCompleted && state.Status != domain.StatusIdle {
		os.Exit(1)
	}
}

func newProgressBar(w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// renderProgress moves the bar to the playlist or file percentage
func renderProgress(bar *progressbar.ProgressBar, state *domain.DownloadState) {
	percent := state.Progress
	if state.IsPlaylist {
		percent = state.TotalProgress
	}
	bar.Describe(truncate(progressLine(state), 60))
	_ = bar.Set(int(percent))
}

func printMediaInfo(w io.Writer, info *domain.MediaInfo) {
	if info.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", info.Error)
		return
	}
	if info.IsPlaylist {
		fmt.Fprintf(w, "Playlist: %s\n", info.Title)
		fmt.Fprintf(w, "Entries:  %d\n", info.Entries)
		if info.VideoTitle != "" {
			fmt.Fprintf(w, "Video:    %s\n", info.VideoTitle)
		}
		return
	}
	fmt.Fprintf(w, "Video: %s\n", info.Title)
}

func printState(w io.Writer, state *domain.DownloadState) {
	fmt.Fprintf(w, "Status:   %s\n", state.Status)
	if state.RunID != "" {
		fmt.Fprintf(w, "Run:      %s\n", state.RunID)
	}
	if state.Message != "" {
		fmt.Fprintf(w, "Message:  %s\n", state.Message)
	}
	if state.OutputPath != "" {
		fmt.Fprintf(w, "Output:   %s\n", state.OutputPath)
	}
	if state.IsPlaylist {
		fmt.Fprintf(w, "Playlist: %s (%d/%d, %.1f%%)\n",
			state.PlaylistTitle, state.CompletedFiles, state.TotalFiles, state.TotalProgress)
	}
	if state.CurrentFile != "" {
		fmt.Fprintf(w, "File:     %s (%.1f%%)\n", state.CurrentFile, state.Progress)
	}
}

// progressLine renders one line of watch output
func progressLine(state *domain.DownloadState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", state.Status)
	if state.IsPlaylist {
		fmt.Fprintf(&b, " %d/%d %.1f%%", state.CompletedFiles, state.TotalFiles, state.TotalProgress)
	} else if state.Status == domain.StatusDownloading {
		fmt.Fprintf(&b, " %.1f%%", state.Progress)
	}
	if state.Message != "" {
		b.WriteString(" ")
		b.WriteString(state.Message)
	}
	return b.String()
}

func printHistory(w io.Writer, entries []domain.HistoryEntry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tTYPE\tSTATUS\tTITLE\tURL")
	// Newest first
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		when := ""
		if !e.CreatedAt.IsZero() {
			when = e.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			when,
			e.DownloadType,
			e.Status,
			truncate(e.Title, 40),
			truncate(e.URL, 50))
	}
	tw.Flush()
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
