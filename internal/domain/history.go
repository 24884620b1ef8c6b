package domain

import "time"

// DefaultHistoryLimit is the number of history entries kept on disk
const DefaultHistoryLimit = 100

// HistoryEntry summarises one finished run. Entries are never modified after being appended.
type HistoryEntry struct {
	ID           uint           `json:"-" gorm:"primaryKey;autoIncrement"`
	RunID        string         `json:"run_id,omitempty" gorm:"index"`
	URL          string         `json:"url"`
	OutputDir    string         `json:"output_dir"`
	DownloadType DownloadType   `json:"download_type"`
	IsPlaylist   bool           `json:"is_playlist"`
	Title        string         `json:"title"`
	Status       DownloadStatus `json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
}

// TableName specifies the table name for GORM
func (HistoryEntry) TableName() string {
	return "download_history"
}

// HistoryRepository persists the whole history sequence.
// Save replaces everything previously stored; Load returns entries oldest first.
type HistoryRepository interface {
	Load() ([]HistoryEntry, error)
	Save(entries []HistoryEntry) error
	Close() error
}
