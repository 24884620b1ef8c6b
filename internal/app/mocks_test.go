package app

import (
	"context"
	"errors"
	"sync"

	"github.com/yourusername/yt-media-backup/internal/domain"
)

// mockHistoryRepo implements domain.HistoryRepository for testing
type mockHistoryRepo struct {
	mu      sync.Mutex
	stored  []domain.HistoryEntry
	saves   int
	loadErr error
	saveErr error
	closed  bool
}

func (m *mockHistoryRepo) Load() ([]domain.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make([]domain.HistoryEntry, len(m.stored))
	copy(out, m.stored)
	return out, nil
}

func (m *mockHistoryRepo) Save(entries []domain.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.stored = make([]domain.HistoryEntry, len(entries))
	copy(m.stored, entries)
	return nil
}

func (m *mockHistoryRepo) Close() error {
	m.closed = true
	return nil
}

func (m *mockHistoryRepo) snapshot() []domain.HistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.HistoryEntry, len(m.stored))
	copy(out, m.stored)
	return out
}

// fetchCall records one Fetch invocation
type fetchCall struct {
	URL      string
	Template string
	Type     domain.DownloadType
	Playlist bool
	Strategy domain.FetchStrategy
}

// mockFetcher implements domain.MediaFetcher for testing.
// Each Fetch call replays the next script; the script's events go through the
// progress callback and its error is returned.
type mockFetcher struct {
	mu       sync.Mutex
	probes   map[string]*domain.ProbeResult
	probeErr map[string]error
	scripts  []fetchScript
	calls    []fetchCall
	availErr error
	// afterEvent runs after every event the callback accepted
	afterEvent func(event domain.ProgressEvent)
}

type fetchScript struct {
	events []domain.ProgressEvent
	err    error
	// block waits for the context to be cancelled before returning
	block bool
	// started is closed when the script begins
	started chan struct{}
	panic   string
}

func newMockFetcher() *mockFetcher {
	return &mockFetcher{
		probes:   make(map[string]*domain.ProbeResult),
		probeErr: make(map[string]error),
	}
}

func (m *mockFetcher) Probe(ctx context.Context, url string) (*domain.ProbeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.probeErr[url]; ok {
		return nil, err
	}
	if p, ok := m.probes[url]; ok {
		return p, nil
	}
	return nil, errors.New("ERROR: Unsupported URL: " + url)
}

func (m *mockFetcher) Fetch(ctx context.Context, req *domain.FetchRequest, onProgress domain.ProgressFunc) error {
	m.mu.Lock()
	m.calls = append(m.calls, fetchCall{
		URL:      req.URL,
		Template: req.OutputTemplate,
		Type:     req.DownloadType,
		Playlist: req.Playlist,
		Strategy: req.Strategy,
	})
	var script fetchScript
	if len(m.scripts) > 0 {
		script = m.scripts[0]
		m.scripts = m.scripts[1:]
	}
	m.mu.Unlock()

	if script.started != nil {
		close(script.started)
	}
	if script.panic != "" {
		panic(script.panic)
	}

	for _, event := range script.events {
		if event.Status == domain.EventFinished {
			for _, hook := range req.Hooks {
				if path, err := hook(event.Filename); err == nil {
					event.Filename = path
				}
			}
		}
		if err := onProgress(event); err != nil {
			return err
		}
		if m.afterEvent != nil {
			m.afterEvent(event)
		}
	}

	if script.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return script.err
}

func (m *mockFetcher) Available() error {
	return m.availErr
}

func (m *mockFetcher) fetchCalls() []fetchCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]fetchCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// mockNotifier records terminal notifications
type mockNotifier struct {
	mu     sync.Mutex
	states []domain.DownloadState
}

func (m *mockNotifier) NotifyRunFinished(state domain.DownloadState, title string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = append(m.states, state)
}

// mockOpener implements domain.FolderOpener for testing
type mockOpener struct {
	opened []string
	err    error
}

func (m *mockOpener) Open(path string) error {
	m.opened = append(m.opened, path)
	return m.err
}
