package infrastructure

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/yt-media-backup/internal/domain"
)

type commandRecorder struct {
	calls [][]string
	err   error
}

func (r *commandRecorder) run(name string, args ...string) error {
	r.calls = append(r.calls, append([]string{name}, args...))
	return r.err
}

func newTestNotifier(config domain.NotificationConfig) (*NotificationService, *commandRecorder) {
	rec := &commandRecorder{}
	n := NewNotificationService(&config, nil)
	n.run = rec.run
	return n, rec
}

func TestNotificationService_Disabled(t *testing.T) {
	n, rec := newTestNotifier(domain.NotificationConfig{Enabled: false, Method: "notify-send"})

	require.NoError(t, n.Send("title", "message"))
	assert.Empty(t, rec.calls)
}

func TestNotificationService_NotifySend(t *testing.T) {
	n, rec := newTestNotifier(domain.NotificationConfig{Enabled: true, Method: "notify-send"})

	n.NotifyRunFinished(domain.DownloadState{Status: domain.StatusCompleted}, "My Song")

	require.Len(t, rec.calls, 1)
	assert.Equal(t, []string{"notify-send", "--app-name=YT Media Backup", "Download Completed", "My Song"}, rec.calls[0])
}

func TestNotificationService_OSAScriptQuotes(t *testing.T) {
	n, rec := newTestNotifier(domain.NotificationConfig{Enabled: true, Method: "osascript", Sound: true})

	require.NoError(t, n.Send(`Say "hi"`, `back\slash`))

	require.Len(t, rec.calls, 1)
	assert.Equal(t, "osascript", rec.calls[0][0])
	assert.Equal(t, `display notification "back\\slash" with title "Say \"hi\"" sound name "default"`, rec.calls[0][2])
}

func TestNotificationService_RunFinishedMessages(t *testing.T) {
	tests := []struct {
		state   domain.DownloadState
		heading string
		message string
	}{
		{
			state:   domain.DownloadState{Status: domain.StatusCompleted, IsPlaylist: true, CompletedFiles: 3},
			heading: "Download Completed",
			message: "Mix (3 files)",
		},
		{
			state:   domain.DownloadState{Status: domain.StatusCompletedWithErrors, Message: "Download incomplete. Only 2 of 3 files were downloaded."},
			heading: "Download Incomplete",
			message: "Mix: Download incomplete. Only 2 of 3 files were downloaded.",
		},
		{
			state:   domain.DownloadState{Status: domain.StatusCancelled},
			heading: "Download Cancelled",
			message: "Mix",
		},
		{
			state:   domain.DownloadState{Status: domain.StatusError, Message: "Error: boom"},
			heading: "Download Failed",
			message: "Mix: Error: boom",
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.state.Status), func(t *testing.T) {
			n, rec := newTestNotifier(domain.NotificationConfig{Enabled: true, Method: "notify-send"})
			n.NotifyRunFinished(tt.state, "Mix")

			require.Len(t, rec.calls, 1)
			assert.Equal(t, tt.heading, rec.calls[0][2])
			assert.Equal(t, tt.message, rec.calls[0][3])
		})
	}
}

func TestNotificationService_NonTerminalIgnored(t *testing.T) {
	n, rec := newTestNotifier(domain.NotificationConfig{Enabled: true, Method: "notify-send"})
	n.NotifyRunFinished(domain.DownloadState{Status: domain.StatusDownloading}, "Mix")
	assert.Empty(t, rec.calls)
}

func TestNotificationService_CommandError(t *testing.T) {
	n, rec := newTestNotifier(domain.NotificationConfig{Enabled: true, Method: "notify-send"})
	rec.err = errors.New("notify-send: not found")

	assert.Error(t, n.Send("a", "b"))
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcde...", truncateString("abcdefghij", 5))

	got := truncateString("Café Tacvba · Eres", 5)
	assert.Equal(t, "Café ...", got)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "日本語", truncateString("日本語", 3))
}

func TestNotificationService_NonASCIITitle(t *testing.T) {
	n, rec := newTestNotifier(domain.NotificationConfig{Enabled: true, Method: "notify-send"})

	title := strings.Repeat("é", 45)
	n.NotifyRunFinished(domain.DownloadState{Status: domain.StatusCompleted}, title)

	require.Len(t, rec.calls, 1)
	assert.True(t, utf8.ValidString(rec.calls[0][3]))
	assert.Equal(t, strings.Repeat("é", 40)+"...", rec.calls[0][3])
}
