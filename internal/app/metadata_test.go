package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/yt-media-backup/internal/domain"
)

func TestMetadataResolver_SingleVideo(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.probes["https://youtu.be/abc"] = &domain.ProbeResult{Type: "video", Title: "Some Song"}

	info := NewMetadataResolver(fetcher, nil).Resolve(context.Background(), "https://youtu.be/abc")

	assert.False(t, info.IsPlaylist)
	assert.Equal(t, "Some Song", info.Title)
	assert.Equal(t, "https://youtu.be/abc", info.URL)
	assert.Empty(t, info.Error)
}

func TestMetadataResolver_SingleVideoDefaultTitle(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.probes["https://youtu.be/abc"] = &domain.ProbeResult{Type: "video"}

	info := NewMetadataResolver(fetcher, nil).Resolve(context.Background(), "https://youtu.be/abc")
	assert.Equal(t, "Video", info.Title)
}

func TestMetadataResolver_ProbeFailure(t *testing.T) {
	fetcher := newMockFetcher()
	fetcher.probeErr["https://bad.example"] = errors.New("ERROR: Unsupported URL")

	info := NewMetadataResolver(fetcher, nil).Resolve(context.Background(), "https://bad.example")

	assert.False(t, info.IsPlaylist)
	assert.Equal(t, "Unknown", info.Title)
	assert.Equal(t, "ERROR: Unsupported URL", info.Error)
	assert.Equal(t, "https://bad.example", info.URL)
}

func TestMetadataResolver_Playlist(t *testing.T) {
	url := "https://www.youtube.com/playlist?list=PL123"
	fetcher := newMockFetcher()
	fetcher.probes[url] = &domain.ProbeResult{
		Type:  "playlist",
		Title: "Mix",
		Entries: []domain.ProbeEntry{
			{URL: "https://www.youtube.com/watch?v=a"},
			{URL: "https://www.youtube.com/watch?v=b"},
			{URL: "https://www.youtube.com/watch?v=c"},
		},
	}
	fetcher.probes["https://www.youtube.com/watch?v=a"] = &domain.ProbeResult{Type: "video", Title: "First"}

	info := NewMetadataResolver(fetcher, nil).Resolve(context.Background(), url)

	assert.True(t, info.IsPlaylist)
	assert.True(t, info.IsVideoInPlaylist)
	assert.Equal(t, "Mix", info.Title)
	assert.Equal(t, "First", info.VideoTitle)
	assert.Equal(t, 3, info.Entries)
	assert.Equal(t, "https://www.youtube.com/watch?v=a", info.VideoURL)
}

func TestMetadataResolver_PlaylistFirstEntryFails(t *testing.T) {
	url := "https://www.youtube.com/playlist?list=PL123"
	fetcher := newMockFetcher()
	fetcher.probes[url] = &domain.ProbeResult{
		Type:    "playlist",
		Entries: []domain.ProbeEntry{{URL: "https://www.youtube.com/watch?v=gone"}},
	}

	info := NewMetadataResolver(fetcher, nil).Resolve(context.Background(), url)

	assert.True(t, info.IsPlaylist)
	assert.False(t, info.IsVideoInPlaylist)
	assert.Equal(t, "Playlist", info.Title)
	assert.Equal(t, 1, info.Entries)
	assert.Empty(t, info.VideoURL)
}

func TestMetadataResolver_VideoInsidePlaylist(t *testing.T) {
	url := "https://www.youtube.com/watch?v=a&list=PL9&index=2"
	fetcher := newMockFetcher()
	fetcher.probes[url] = &domain.ProbeResult{Type: "video", Title: "Track A"}
	fetcher.probes["https://www.youtube.com/playlist?list=PL9"] = &domain.ProbeResult{
		Type:    "playlist",
		Title:   "Album",
		Entries: make([]domain.ProbeEntry, 7),
	}

	info := NewMetadataResolver(fetcher, nil).Resolve(context.Background(), url)

	assert.True(t, info.IsPlaylist)
	assert.True(t, info.IsVideoInPlaylist)
	assert.Equal(t, "Album", info.Title)
	assert.Equal(t, "Track A", info.VideoTitle)
	assert.Equal(t, 7, info.Entries)
	assert.Equal(t, "https://www.youtube.com/playlist?list=PL9", info.PlaylistURL)
	assert.Equal(t, url, info.URL)
}

func TestMetadataResolver_ListProbeFailsFallsBackToSingle(t *testing.T) {
	url := "https://www.youtube.com/watch?v=a&list=PLbroken"
	fetcher := newMockFetcher()
	fetcher.probes[url] = &domain.ProbeResult{Type: "video", Title: "Track A"}

	info := NewMetadataResolver(fetcher, nil).Resolve(context.Background(), url)

	assert.False(t, info.IsPlaylist)
	assert.Equal(t, "Track A", info.Title)
}

func TestPlaylistID(t *testing.T) {
	assert.Equal(t, "PL1", playlistID("https://www.youtube.com/watch?v=x&list=PL1"))
	assert.Equal(t, "PL2", playlistID("https://youtube.com/playlist?list=PL2"))
	assert.Empty(t, playlistID("https://vimeo.com/1?list=PL3"))
	assert.Empty(t, playlistID("https://www.youtube.com/watch?v=x"))
}

func TestStripPlaylistParams(t *testing.T) {
	stripped := stripPlaylistParams("https://www.youtube.com/watch?v=x&list=PL1&index=4")
	require.NotContains(t, stripped, "list=")
	assert.NotContains(t, stripped, "index=")
	assert.Equal(t, "https://www.youtube.com/watch?v=x", stripped)

	assert.Equal(t, "https://youtu.be/x", stripPlaylistParams("https://youtu.be/x"))
}
