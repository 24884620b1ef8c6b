package app

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/yt-media-backup/internal/domain"
)

// HistoryStore keeps the bounded download history in memory and mirrors it to a repository.
// The in-memory sequence is authoritative; persistence failures are only logged.
type HistoryStore struct {
	repo       domain.HistoryRepository
	logger     *zap.Logger
	maxEntries int

	mu      sync.Mutex
	entries []domain.HistoryEntry
}

// NewHistoryStore creates a store. maxEntries <= 0 selects domain.DefaultHistoryLimit.
func NewHistoryStore(repo domain.HistoryRepository, maxEntries int, logger *zap.Logger) *HistoryStore {
	if maxEntries <= 0 {
		maxEntries = domain.DefaultHistoryLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryStore{
		repo:       repo,
		logger:     logger,
		maxEntries: maxEntries,
	}
}

// Load replaces the in-memory history with the repository content.
// A missing or unreadable store yields an empty history.
func (h *HistoryStore) Load() {
	entries, err := h.repo.Load()

	h.mu.Lock()
	defer h.mu.Unlock()

	if err != nil {
		h.logger.Warn("Failed to load download history, starting empty", zap.Error(err))
		h.entries = nil
		return
	}

	h.entries = entries
	h.truncateLocked()
	h.logger.Info("Loaded download history", zap.Int("count", len(h.entries)))
}

// Append adds an entry and persists the history
func (h *HistoryStore) Append(entry domain.HistoryEntry) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, entry)
	h.persistLocked()
}

// Persist truncates the history to the most recent entries and writes it out
func (h *HistoryStore) Persist() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.persistLocked()
}

// List returns a copy of the history, oldest first
func (h *HistoryStore) List() []domain.HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]domain.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Close persists the history and releases the repository
func (h *HistoryStore) Close() error {
	h.Persist()
	return h.repo.Close()
}

func (h *HistoryStore) truncateLocked() {
	if len(h.entries) > h.maxEntries {
		trimmed := make([]domain.HistoryEntry, h.maxEntries)
		copy(trimmed, h.entries[len(h.entries)-h.maxEntries:])
		h.entries = trimmed
	}
}

func (h *HistoryStore) persistLocked() {
	h.truncateLocked()

	if err := h.repo.Save(h.entries); err != nil {
		h.logger.Error("Failed to save download history",
			zap.Int("count", len(h.entries)),
			zap.Error(err))
		return
	}
	h.logger.Debug("Saved download history", zap.Int("count", len(h.entries)))
}
