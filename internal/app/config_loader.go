package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/yourusername/yt-media-backup/internal/domain"
)

// EnvPrefix is the prefix of environment variables overriding the config file
const EnvPrefix = "YTMB"

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	registerDefaults(v, config)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.yt-media-backup")
		v.AddConfigPath("/etc/yt-media-backup")
	}

	// YTMB_SERVER_PORT overrides server.port
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// registerDefaults makes every key known to viper so env overrides apply
// even when the config file does not mention the key
func registerDefaults(v *viper.Viper, c *domain.Config) {
	defaults := map[string]interface{}{
		"server.host": c.Server.Host,
		"server.port": c.Server.Port,

		"download.default_dir":           c.Download.DefaultDir,
		"download.data_dir":              c.Download.DataDir,
		"download.logs_dir":              c.Download.LogsDir,
		"download.default_type":          c.Download.DefaultType,
		"download.default_playlist_mode": c.Download.DefaultPlaylistMode,

		"history.backend":       c.History.Backend,
		"history.file":          c.History.File,
		"history.database_path": c.History.DatabasePath,
		"history.max_entries":   c.History.MaxEntries,

		"ytdlp.binary":                   c.YTDLP.Binary,
		"ytdlp.audio_format":             c.YTDLP.AudioFormat,
		"ytdlp.audio_quality":            c.YTDLP.AudioQuality,
		"ytdlp.video_format":             c.YTDLP.VideoFormat,
		"ytdlp.merge_output_format":      c.YTDLP.MergeOutputFormat,
		"ytdlp.extractor_retries":        c.YTDLP.ExtractorRetries,
		"ytdlp.geo_bypass":               c.YTDLP.GeoBypass,
		"ytdlp.alternate_extractor_args": c.YTDLP.AlternateExtractorArgs,

		"notification.enabled": c.Notification.Enabled,
		"notification.sound":   c.Notification.Sound,
		"notification.method":  c.Notification.Method,

		"logging.level":       c.Logging.Level,
		"logging.format":      c.Logging.Format,
		"logging.output_path": c.Logging.OutputPath,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Download.DefaultDir = expandPath(config.Download.DefaultDir)
	config.Download.DataDir = expandPath(config.Download.DataDir)
	config.Download.LogsDir = expandPath(config.Download.LogsDir)
	config.History.File = expandPath(config.History.File)
	config.History.DatabasePath = expandPath(config.History.DatabasePath)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	path = os.ExpandEnv(path)

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}

	return path
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Download.DataDir == "" {
		return fmt.Errorf("data directory not configured")
	}

	if config.Download.LogsDir == "" {
		config.Download.LogsDir = filepath.Join(config.Download.DataDir, "logs")
	}

	if !domain.ValidateDownloadType(domain.DownloadType(config.Download.DefaultType)) {
		return fmt.Errorf("invalid default download type: %q", config.Download.DefaultType)
	}

	if !domain.ValidatePlaylistMode(domain.PlaylistMode(config.Download.DefaultPlaylistMode)) {
		return fmt.Errorf("invalid default playlist mode: %q", config.Download.DefaultPlaylistMode)
	}

	switch config.History.Backend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("unknown history backend: %q", config.History.Backend)
	}

	if config.History.MaxEntries < 1 {
		return fmt.Errorf("history max entries must be at least 1")
	}

	if config.YTDLP.Binary == "" {
		return fmt.Errorf("yt-dlp binary not configured")
	}

	if config.YTDLP.ExtractorRetries < 0 {
		return fmt.Errorf("extractor retries cannot be negative")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *domain.Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")
	registerDefaults(v, config)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
