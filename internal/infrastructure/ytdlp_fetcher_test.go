package infrastructure

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/yt-media-backup/internal/domain"
	"github.com/yourusername/yt-media-backup/pkg/filename"
)

// fakeYTDLP writes an executable shell script standing in for yt-dlp
func fakeYTDLP(t *testing.T, body string) *domain.YTDLPConfig {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake yt-dlp needs a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "yt-dlp")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))

	config := domain.DefaultConfig().YTDLP
	config.Binary = path
	return &config
}

func TestBuildFetchArgs_Audio(t *testing.T) {
	config := domain.DefaultConfig().YTDLP
	req := &domain.FetchRequest{
		URL:            "https://youtu.be/abc",
		OutputTemplate: "/music/%(title)s.%(ext)s",
		DownloadType:   domain.TypeAudio,
		Strategy:       domain.StrategyDefault,
	}

	args := BuildFetchArgs(&config, req)
	line := strings.Join(args, " ")

	assert.Contains(t, line, "-f bestaudio -x --audio-format mp3 --audio-quality 192K")
	assert.Contains(t, line, "--no-playlist")
	assert.Contains(t, line, "--geo-bypass")
	assert.Contains(t, line, "--extractor-retries 5")
	assert.Contains(t, line, "--ignore-errors")
	assert.Contains(t, line, "-o /music/%(title)s.%(ext)s")
	assert.Contains(t, args, progressTemplate)
	assert.Contains(t, args, finishedTemplate)
	assert.NotContains(t, line, "--extractor-args")
	assert.NotContains(t, line, "--merge-output-format")
	assert.Equal(t, []string{"--", "https://youtu.be/abc"}, args[len(args)-2:])
}

func TestBuildFetchArgs_VideoPlaylistAlternate(t *testing.T) {
	config := domain.DefaultConfig().YTDLP
	config.GeoBypass = false
	req := &domain.FetchRequest{
		URL:            "https://www.youtube.com/playlist?list=PL1",
		OutputTemplate: "/videos/Mix_playlist/%(title)s.%(ext)s",
		DownloadType:   domain.TypeVideo,
		Playlist:       true,
		Strategy:       domain.StrategyAlternate,
	}

	args := BuildFetchArgs(&config, req)
	line := strings.Join(args, " ")

	assert.Contains(t, line, "-f bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best --merge-output-format mp4")
	assert.Contains(t, line, "--yes-playlist")
	assert.Contains(t, line, "--extractor-args youtube:player_client=android")
	assert.NotContains(t, line, "--geo-bypass")
	assert.NotContains(t, line, "--no-playlist")
	assert.NotContains(t, line, "-x")
}

func TestBuildProbeArgs(t *testing.T) {
	args := BuildProbeArgs("https://youtu.be/abc")
	assert.Contains(t, args, "--dump-single-json")
	assert.Contains(t, args, "--flat-playlist")
	assert.Equal(t, "https://youtu.be/abc", args[len(args)-1])
}

func TestYTDLPFetcher_Probe(t *testing.T) {
	config := fakeYTDLP(t, `echo '{"_type":"playlist","id":"PL1","title":"Mix","entries":[{"id":"a","url":"https://youtu.be/a","title":"A"},{"id":"b","url":"https://youtu.be/b"}]}'`)
	fetcher := NewYTDLPFetcher(config, t.TempDir(), nil)

	result, err := fetcher.Probe(context.Background(), "https://www.youtube.com/playlist?list=PL1")
	require.NoError(t, err)

	assert.True(t, result.IsPlaylist())
	assert.Equal(t, "Mix", result.Title)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, "https://youtu.be/a", result.Entries[0].URL)
}

func TestYTDLPFetcher_ProbeError(t *testing.T) {
	config := fakeYTDLP(t, `echo "WARNING: something" >&2
echo "ERROR: [youtube] abc: Video unavailable" >&2
exit 1`)
	fetcher := NewYTDLPFetcher(config, t.TempDir(), nil)

	_, err := fetcher.Probe(context.Background(), "https://youtu.be/abc")
	require.Error(t, err)
	assert.Equal(t, "ERROR: [youtube] abc: Video unavailable", err.Error())
}

func TestYTDLPFetcher_ProbeInvalidJSON(t *testing.T) {
	config := fakeYTDLP(t, `echo "not json"`)
	fetcher := NewYTDLPFetcher(config, t.TempDir(), nil)

	_, err := fetcher.Probe(context.Background(), "https://youtu.be/abc")
	assert.Error(t, err)
}

func TestYTDLPFetcher_Fetch(t *testing.T) {
	outDir := t.TempDir()
	logsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "My Song (Live).mp3"), []byte("x"), 0644))

	config := fakeYTDLP(t, `echo '[download] Destination: whatever'
echo '[progress]{"status":"downloading","filename":"/tmp/My Song.webm","downloaded_bytes":50,"total_bytes":null,"total_bytes_estimate":200.0,"speed":1024.5,"eta":3}'
echo 'ERROR: [youtube] xyz: Private video' >&2
echo '[progress]{"status":"finished","filename":"/tmp/My Song.webm"}'
echo "[finished]`+outDir+`/My Song (Live).mp3"
`)
	fetcher := NewYTDLPFetcher(config, logsDir, nil)

	var events []domain.ProgressEvent
	err := fetcher.Fetch(context.Background(), &domain.FetchRequest{
		URL:            "https://youtu.be/abc",
		OutputTemplate: filepath.Join(outDir, "%(title)s.%(ext)s"),
		DownloadType:   domain.TypeAudio,
		Hooks:          []domain.FileHook{filename.RenameFile},
	}, func(event domain.ProgressEvent) error {
		events = append(events, event)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, domain.EventDownloading, events[0].Status)
	assert.Equal(t, int64(50), events[0].DownloadedBytes)
	assert.Equal(t, int64(200), events[0].TotalBytes)
	assert.Equal(t, 1024.5, events[0].Speed)
	assert.Equal(t, int64(3), events[0].ETA)

	assert.Equal(t, domain.EventError, events[1].Status)
	assert.Equal(t, "[youtube] xyz: Private video", events[1].Error)

	assert.Equal(t, domain.EventFinished, events[2].Status)
	assert.Equal(t, filepath.Join(outDir, "My_Song_Live.mp3"), events[2].Filename)
	assert.FileExists(t, filepath.Join(outDir, "My_Song_Live.mp3"))

	logData, err := os.ReadFile(filepath.Join(logsDir, "ytdlp-"+time.Now().Format("20060102")+".log"))
	require.NoError(t, err)
	assert.Contains(t, string(logData), "=== END ===")
	assert.Contains(t, string(logData), "SUCCESS")
	assert.Contains(t, string(logData), "Private video")
}

func TestYTDLPFetcher_FetchNonZeroExit(t *testing.T) {
	config := fakeYTDLP(t, `echo 'ERROR: unable to download video data' >&2
exit 1`)
	fetcher := NewYTDLPFetcher(config, t.TempDir(), nil)

	err := fetcher.Fetch(context.Background(), &domain.FetchRequest{
		URL:            "https://youtu.be/abc",
		OutputTemplate: filepath.Join(t.TempDir(), "%(title)s.%(ext)s"),
	}, func(domain.ProgressEvent) error { return nil })

	assert.ErrorIs(t, err, domain.ErrFetchIncomplete)
}

func TestYTDLPFetcher_FetchCannotStart(t *testing.T) {
	config := domain.DefaultConfig().YTDLP
	config.Binary = filepath.Join(t.TempDir(), "missing-yt-dlp")
	fetcher := NewYTDLPFetcher(&config, t.TempDir(), nil)

	err := fetcher.Fetch(context.Background(), &domain.FetchRequest{URL: "https://youtu.be/abc"},
		func(domain.ProgressEvent) error { return nil })

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrFetchIncomplete))
	assert.Contains(t, err.Error(), "failed to start yt-dlp")
}

func TestYTDLPFetcher_CallbackErrorStopsProcess(t *testing.T) {
	config := fakeYTDLP(t, `echo '[progress]{"status":"downloading","downloaded_bytes":1,"total_bytes":10}'
exec sleep 30`)
	fetcher := NewYTDLPFetcher(config, t.TempDir(), nil)

	start := time.Now()
	err := fetcher.Fetch(context.Background(), &domain.FetchRequest{
		URL:            "https://youtu.be/abc",
		OutputTemplate: filepath.Join(t.TempDir(), "%(title)s.%(ext)s"),
	}, func(domain.ProgressEvent) error {
		return domain.ErrDownloadCancelled
	})

	assert.ErrorIs(t, err, domain.ErrDownloadCancelled)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestYTDLPFetcher_Available(t *testing.T) {
	config := fakeYTDLP(t, "exit 0")
	assert.NoError(t, NewYTDLPFetcher(config, t.TempDir(), nil).Available())

	config.Binary = filepath.Join(t.TempDir(), "nope")
	assert.Error(t, NewYTDLPFetcher(config, t.TempDir(), nil).Available())
}

func TestParseOutputLine(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		ok    bool
		event domain.ProgressEvent
	}{
		{
			name:  "downloading with exact total",
			line:  `[progress]{"status":"downloading","filename":"a.webm","downloaded_bytes":10,"total_bytes":40,"total_bytes_estimate":99}`,
			ok:    true,
			event: domain.ProgressEvent{Status: domain.EventDownloading, Filename: "a.webm", DownloadedBytes: 10, TotalBytes: 40},
		},
		{
			name:  "null speed and eta",
			line:  `[progress]{"status":"downloading","downloaded_bytes":10,"speed":null,"eta":null}`,
			ok:    true,
			event: domain.ProgressEvent{Status: domain.EventDownloading, DownloadedBytes: 10},
		},
		{
			name: "per-stream finished ignored",
			line: `[progress]{"status":"finished","filename":"a.f251.webm"}`,
		},
		{
			name: "broken json",
			line: `[progress]{"status":`,
		},
		{
			name:  "finished file",
			line:  "[finished]/music/a.mp3\r\n",
			ok:    true,
			event: domain.ProgressEvent{Status: domain.EventFinished, Filename: "/music/a.mp3"},
		},
		{
			name: "finished without path",
			line: "[finished]NA",
		},
		{
			name:  "error line",
			line:  "ERROR: [generic] Unable to download webpage",
			ok:    true,
			event: domain.ProgressEvent{Status: domain.EventError, Error: "[generic] Unable to download webpage"},
		},
		{
			name: "noise",
			line: "[ExtractAudio] Destination: a.mp3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, ok := ParseOutputLine(tt.line)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.event, event)
			}
		})
	}
}

func TestLastErrorLine(t *testing.T) {
	assert.Equal(t, "ERROR: second", lastErrorLine("ERROR: first\nWARNING: x\nERROR: second\n"))
	assert.Empty(t, lastErrorLine("WARNING: only warnings"))
}
