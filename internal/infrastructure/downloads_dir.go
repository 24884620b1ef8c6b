package infrastructure

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDownloadsDir returns the user's download directory: XDG_DOWNLOAD_DIR from
// user-dirs.dirs when it names an existing directory, else ~/Downloads when it exists, else ./downloads.
func DefaultDownloadsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return fallbackDownloadsDir()
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}

	if dir := xdgDownloadDir(filepath.Join(configHome, "user-dirs.dirs"), home); dir != "" {
		return dir
	}

	downloads := filepath.Join(home, "Downloads")
	if info, err := os.Stat(downloads); err == nil && info.IsDir() {
		return downloads
	}

	return fallbackDownloadsDir()
}

// xdgDownloadDir reads XDG_DOWNLOAD_DIR from a user-dirs.dirs file.
// Lines look like: XDG_DOWNLOAD_DIR="$HOME/Downloads"
// A directory that does not exist is ignored.
func xdgDownloadDir(path, home string) string {
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok || strings.TrimSpace(key) != "XDG_DOWNLOAD_DIR" {
			continue
		}

		value = strings.Trim(strings.TrimSpace(value), `"`)
		value = strings.Replace(value, "$HOME", home, 1)
		if value == "" || !filepath.IsAbs(value) {
			return ""
		}
		value = filepath.Clean(value)
		if info, err := os.Stat(value); err != nil || !info.IsDir() {
			return ""
		}
		return value
	}
	return ""
}

func fallbackDownloadsDir() string {
	if abs, err := filepath.Abs("downloads"); err == nil {
		return abs
	}
	return "downloads"
}
