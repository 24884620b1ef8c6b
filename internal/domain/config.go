package domain

import "path/filepath"

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Download     DownloadConfig     `mapstructure:"download"`
	History      HistoryConfig      `mapstructure:"history"`
	YTDLP        YTDLPConfig        `mapstructure:"ytdlp"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	DefaultDir          string `mapstructure:"default_dir"` // Empty means auto-detect
	DataDir             string `mapstructure:"data_dir"`
	LogsDir             string `mapstructure:"logs_dir"`
	DefaultType         string `mapstructure:"default_type"`
	DefaultPlaylistMode string `mapstructure:"default_playlist_mode"`
}

// HistoryConfig contains download history persistence configuration
type HistoryConfig struct {
	Backend      string `mapstructure:"backend"` // json, sqlite
	File         string `mapstructure:"file"`
	DatabasePath string `mapstructure:"database_path"`
	MaxEntries   int    `mapstructure:"max_entries"`
}

// YTDLPConfig contains yt-dlp invocation settings
type YTDLPConfig struct {
	Binary                 string `mapstructure:"binary"`
	AudioFormat            string `mapstructure:"audio_format"`
	AudioQuality           string `mapstructure:"audio_quality"`
	VideoFormat            string `mapstructure:"video_format"`
	MergeOutputFormat      string `mapstructure:"merge_output_format"`
	ExtractorRetries       int    `mapstructure:"extractor_retries"`
	GeoBypass              bool   `mapstructure:"geo_bypass"`
	AlternateExtractorArgs string `mapstructure:"alternate_extractor_args"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Sound   bool   `mapstructure:"sound"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 5000,
		},
		Download: DownloadConfig{
			DefaultDir:          "",
			DataDir:             "./data",
			LogsDir:             "./data/logs",
			DefaultType:         string(TypeAudio),
			DefaultPlaylistMode: string(PlaylistModeSingle),
		},
		History: HistoryConfig{
			Backend:      "json",
			File:         "./data/download_history.json",
			DatabasePath: "./data/history.db",
			MaxEntries:   DefaultHistoryLimit,
		},
		YTDLP: YTDLPConfig{
			Binary:                 "yt-dlp",
			AudioFormat:            "mp3",
			AudioQuality:           "192K",
			VideoFormat:            "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
			MergeOutputFormat:      "mp4",
			ExtractorRetries:       5,
			GeoBypass:              true,
			AlternateExtractorArgs: "youtube:player_client=android",
		},
		Notification: NotificationConfig{
			Enabled: false,
			Sound:   false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}

// HistoryFile returns the JSON history path, derived from the data dir when unset
func (c *Config) HistoryFile() string {
	if c.History.File != "" {
		return c.History.File
	}
	return filepath.Join(c.Download.DataDir, "download_history.json")
}

// HistoryDatabase returns the sqlite history path, derived from the data dir when unset
func (c *Config) HistoryDatabase() string {
	if c.History.DatabasePath != "" {
		return c.History.DatabasePath
	}
	return filepath.Join(c.Download.DataDir, "history.db")
}
