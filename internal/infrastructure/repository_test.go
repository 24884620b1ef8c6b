package infrastructure

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/yt-media-backup/internal/domain"
)

func sampleEntries(n int) []domain.HistoryEntry {
	entries := make([]domain.HistoryEntry, 0, n)
	for i := 1; i <= n; i++ {
		entries = append(entries, domain.HistoryEntry{
			RunID:        fmt.Sprintf("run-%d", i),
			URL:          fmt.Sprintf("https://youtu.be/%d", i),
			OutputDir:    "/music",
			DownloadType: domain.TypeAudio,
			Title:        fmt.Sprintf("Song %d", i),
			Status:       domain.StatusCompleted,
			CreatedAt:    time.Date(2026, 1, 1, 0, i, 0, 0, time.UTC),
		})
	}
	return entries
}

func setupSQLiteRepo(t *testing.T) *SQLiteHistoryRepository {
	t.Helper()
	repo, err := NewSQLiteHistoryRepository(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteHistoryRepository_SaveAndLoad(t *testing.T) {
	repo := setupSQLiteRepo(t)

	require.NoError(t, repo.Save(sampleEntries(3)))

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, "Song 1", loaded[0].Title)
	assert.Equal(t, "Song 3", loaded[2].Title)
	assert.Equal(t, "run-2", loaded[1].RunID)
	assert.Equal(t, domain.TypeAudio, loaded[1].DownloadType)
}

func TestSQLiteHistoryRepository_SaveReplaces(t *testing.T) {
	repo := setupSQLiteRepo(t)

	require.NoError(t, repo.Save(sampleEntries(5)))
	require.NoError(t, repo.Save(sampleEntries(5)[3:]))

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "Song 4", loaded[0].Title)
	assert.Equal(t, "Song 5", loaded[1].Title)

	require.NoError(t, repo.Save(nil))
	loaded, err = repo.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestSQLiteHistoryRepository_SaveDoesNotMutateInput(t *testing.T) {
	repo := setupSQLiteRepo(t)
	entries := sampleEntries(2)

	require.NoError(t, repo.Save(entries))
	assert.Zero(t, entries[0].ID)
}

func TestJSONHistoryRepository_MissingFile(t *testing.T) {
	repo := NewJSONHistoryRepository(filepath.Join(t.TempDir(), "download_history.json"))

	entries, err := repo.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestJSONHistoryRepository_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "download_history.json")
	repo := NewJSONHistoryRepository(path)

	require.NoError(t, repo.Save(sampleEntries(2)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"download_type": "audio"`)
	assert.Contains(t, string(data), `"is_playlist": false`)
	assert.NotContains(t, string(data), `"ID"`)

	loaded, err := repo.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "Song 2", loaded[1].Title)
	assert.Equal(t, domain.StatusCompleted, loaded[1].Status)
	assert.True(t, loaded[0].CreatedAt.Equal(time.Date(2026, 1, 1, 0, 1, 0, 0, time.UTC)))

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".history-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestJSONHistoryRepository_EmptySavesArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "download_history.json")
	repo := NewJSONHistoryRepository(path)

	require.NoError(t, repo.Save(nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestJSONHistoryRepository_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "download_history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := NewJSONHistoryRepository(path).Load()
	assert.Error(t, err)
}

func TestJSONHistoryRepository_ReadsLegacyEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "download_history.json")
	legacy := `[{"url":"https://youtu.be/x","output_dir":"/m","download_type":"video","is_playlist":true,"title":"Old","status":"completed_with_errors"}]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	entries, err := NewJSONHistoryRepository(path).Load()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.TypeVideo, entries[0].DownloadType)
	assert.True(t, entries[0].IsPlaylist)
	assert.Equal(t, domain.StatusCompletedWithErrors, entries[0].Status)
	assert.True(t, entries[0].CreatedAt.IsZero())
}
