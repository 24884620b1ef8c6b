package app

import (
	"context"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/yt-media-backup/internal/domain"
)

const youtubePlaylistURL = "https://www.youtube.com/playlist?list="

// MetadataResolver answers "what is behind this URL" using metadata-only probes
type MetadataResolver struct {
	fetcher domain.MediaFetcher
	logger  *zap.Logger
}

// NewMetadataResolver creates a new metadata resolver
func NewMetadataResolver(fetcher domain.MediaFetcher, logger *zap.Logger) *MetadataResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetadataResolver{fetcher: fetcher, logger: logger}
}

// Resolve never fails; probe errors are reported through MediaInfo.Error
func (r *MetadataResolver) Resolve(ctx context.Context, rawURL string) *domain.MediaInfo {
	info, err := r.fetcher.Probe(ctx, rawURL)
	if err != nil {
		r.logger.Warn("Metadata probe failed", zap.String("url", rawURL), zap.Error(err))
		return &domain.MediaInfo{
			IsPlaylist: false,
			Title:      "Unknown",
			Error:      err.Error(),
			URL:        rawURL,
		}
	}

	if info.IsPlaylist() {
		return r.resolvePlaylist(ctx, rawURL, info)
	}

	if listID := playlistID(rawURL); listID != "" {
		playlistURL := youtubePlaylistURL + listID
		playlist, err := r.fetcher.Probe(ctx, playlistURL)
		if err == nil && playlist.IsPlaylist() {
			return &domain.MediaInfo{
				IsPlaylist:        true,
				IsVideoInPlaylist: true,
				Title:             orDefault(playlist.Title, "Playlist"),
				VideoTitle:        orDefault(info.Title, "Video"),
				Entries:           len(playlist.Entries),
				URL:               rawURL,
				PlaylistURL:       playlistURL,
			}
		}
		if err != nil {
			r.logger.Debug("Playlist probe failed, treating URL as single video",
				zap.String("playlist_url", playlistURL),
				zap.Error(err))
		}
	}

	return &domain.MediaInfo{
		IsPlaylist: false,
		Title:      orDefault(info.Title, "Video"),
		URL:        rawURL,
	}
}

func (r *MetadataResolver) resolvePlaylist(ctx context.Context, rawURL string, info *domain.ProbeResult) *domain.MediaInfo {
	result := &domain.MediaInfo{
		IsPlaylist: true,
		Title:      orDefault(info.Title, "Playlist"),
		Entries:    len(info.Entries),
		URL:        rawURL,
	}

	if len(info.Entries) == 0 || info.Entries[0].URL == "" {
		return result
	}

	firstURL := info.Entries[0].URL
	video, err := r.fetcher.Probe(ctx, firstURL)
	if err != nil {
		r.logger.Debug("First entry probe failed", zap.String("url", firstURL), zap.Error(err))
		return result
	}

	result.IsVideoInPlaylist = true
	result.VideoTitle = orDefault(video.Title, "Video")
	result.VideoURL = firstURL
	return result
}

// playlistID returns the list parameter of a YouTube URL, or ""
func playlistID(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || !strings.Contains(u.Host, "youtube.com") {
		return ""
	}
	return u.Query().Get("list")
}

// stripPlaylistParams removes the playlist selection from a video URL
func stripPlaylistParams(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	q := u.Query()
	if q.Get("list") == "" {
		return rawURL
	}
	q.Del("list")
	q.Del("index")
	u.RawQuery = q.Encode()
	return u.String()
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
