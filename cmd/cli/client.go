package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yourusername/yt-media-backup/internal/domain"
)

// apiClient talks to the server's JSON API
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 2 * time.Minute},
	}
}

// apiError is a non-2xx response carrying the server's {"error": ...} body
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

func (c *apiClient) get(path string, out interface{}) error {
	return c.do(http.MethodGet, path, nil, out)
}

func (c *apiClient) post(path string, payload, out interface{}) error {
	return c.do(http.MethodPost, path, payload, out)
}

func (c *apiClient) do(method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Error string `json:"error"`
		}
		msg := string(data)
		if json.Unmarshal(data, &errBody) == nil && errBody.Error != "" {
			msg = errBody.Error
		}
		return &apiError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func (c *apiClient) checkURL(url string) (*domain.MediaInfo, error) {
	var info domain.MediaInfo
	err := c.post("/api/check-url", map[string]string{"url": url}, &info)
	return &info, err
}

type startResponse struct {
	Status string `json:"status"`
	RunID  string `json:"run_id"`
}

func (c *apiClient) startDownload(req domain.DownloadRequest) (*startResponse, error) {
	var resp startResponse
	err := c.post("/api/download", req, &resp)
	return &resp, err
}

func (c *apiClient) status() (*domain.DownloadState, error) {
	var state domain.DownloadState
	err := c.get("/api/download-status", &state)
	return &state, err
}

func (c *apiClient) cancel() error {
	return c.post("/api/cancel-download", nil, nil)
}

func (c *apiClient) openFolder(path string) (*domain.FolderResult, error) {
	var result domain.FolderResult
	err := c.post("/api/open-folder", map[string]string{"path": path}, &result)
	return &result, err
}

type historyResponse struct {
	Count   int                   `json:"count"`
	Entries []domain.HistoryEntry `json:"entries"`
}

func (c *apiClient) history() (*historyResponse, error) {
	var resp historyResponse
	err := c.get("/api/history", &resp)
	return &resp, err
}

func (c *apiClient) defaultPath() (string, error) {
	var resp struct {
		Path string `json:"path"`
	}
	err := c.get("/api/get-default-path", &resp)
	return resp.Path, err
}

// watch polls the status until the run identified by runID (any run when empty)
// has ended on a terminal status. onUpdate is called for every poll.
func (c *apiClient) watch(runID string, interval time.Duration, onUpdate func(*domain.DownloadState)) (*domain.DownloadState, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		state, err := c.status()
		if err != nil {
			return nil, err
		}
		onUpdate(state)

		if runID != "" && state.RunID != runID {
			return state, fmt.Errorf("run %s was replaced by %s", runID, state.RunID)
		}
		// a failed playlist item reports error while the run carries on
		if !state.Active && (state.Status.IsTerminal() || state.Status == domain.StatusIdle) {
			return state, nil
		}
		<-ticker.C
	}
}
