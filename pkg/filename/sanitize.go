// Package filename turns media titles into portable file names.
package filename

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var (
	invalidChars   = regexp.MustCompile(`[^A-Za-z0-9_\s-]`)
	separatorRuns  = regexp.MustCompile(`[\s-]+`)
	underscoreRuns = regexp.MustCompile(`_+`)
)

// Sanitize returns a file system safe version of name.
//
// The extension (everything from the last dot) is kept verbatim. The base name keeps
// only ASCII letters, digits and underscores; runs of whitespace and dashes become a
// single underscore and underscores never lead, trail or repeat.
// Sanitize(Sanitize(x)) == Sanitize(x) for every x.
func Sanitize(name string) string {
	name = strings.TrimSpace(name)

	base, ext := name, ""
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		base, ext = name[:idx], name[idx:]
	}

	base = invalidChars.ReplaceAllString(base, "")
	base = separatorRuns.ReplaceAllString(base, "_")
	base = strings.Trim(base, "_")
	base = underscoreRuns.ReplaceAllString(base, "_")

	return base + ext
}

// Rename records a file renamed by SanitizeDir
type Rename struct {
	From string
	To   string
}

// SanitizeDir renames every regular file in dir to its sanitized name.
// Files whose sanitized name is already taken are left alone. Failures are
// logged per file and never abort the sweep.
func SanitizeDir(dir string, log *zap.Logger) []Rename {
	if log == nil {
		log = zap.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn("Failed to list output directory", zap.String("dir", dir), zap.Error(err))
		return nil
	}

	var renamed []Rename
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		name := entry.Name()
		sanitized := Sanitize(name)
		if sanitized == name || sanitized == "" {
			continue
		}

		from := filepath.Join(dir, name)
		to := filepath.Join(dir, sanitized)
		if _, err := os.Stat(to); err == nil {
			log.Debug("Sanitized name already exists, skipping",
				zap.String("file", name),
				zap.String("target", sanitized))
			continue
		}

		if err := os.Rename(from, to); err != nil {
			log.Warn("Failed to rename file",
				zap.String("file", name),
				zap.String("target", sanitized),
				zap.Error(err))
			continue
		}
		renamed = append(renamed, Rename{From: from, To: to})
	}

	return renamed
}

// RenameFile renames the file at path to its sanitized name and returns the new path.
// The original path is returned when nothing changed or the target already exists.
func RenameFile(path string) (string, error) {
	dir, name := filepath.Split(path)
	sanitized := Sanitize(name)
	if sanitized == name || sanitized == "" {
		return path, nil
	}

	target := filepath.Join(dir, sanitized)
	if _, err := os.Stat(target); err == nil {
		return path, nil
	}

	if err := os.Rename(path, target); err != nil {
		return path, err
	}
	return target, nil
}
