package infrastructure

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/yourusername/yt-media-backup/internal/domain"
)

// JSONHistoryRepository implements domain.HistoryRepository as one JSON array file
type JSONHistoryRepository struct {
	path string
	mu   sync.Mutex
}

// NewJSONHistoryRepository creates a repository backed by the file at path
func NewJSONHistoryRepository(path string) *JSONHistoryRepository {
	return &JSONHistoryRepository{path: path}
}

// Load reads the history file. A missing file is an empty history.
func (r *JSONHistoryRepository) Load() ([]domain.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.HistoryEntry{}, nil
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var entries []domain.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}
	return entries, nil
}

// Save rewrites the whole file through a temp file and a rename
func (r *JSONHistoryRepository) Save(entries []domain.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entries == nil {
		entries = []domain.HistoryEntry{}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write history: %w", err)
	}

	if err := os.Rename(tmpPath, r.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace history file: %w", err)
	}
	return nil
}

// Close is a no-op; the file is not held open
func (r *JSONHistoryRepository) Close() error {
	return nil
}
