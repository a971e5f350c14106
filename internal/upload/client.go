// Package upload syncs a directory of CSV/JSON health exports to a recon
// server, skipping files that were already sent.
package upload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// Client sends export files to the recon server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates an HTTP client for the recon server. The apiKey may be
// empty when the server runs without authentication.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// ImportResult is the server's response to a successful import.
type ImportResult struct {
	Imported int    `json:"imported"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// SendFile POSTs one export file body to the server's import endpoint.
// Retries up to 3 times with exponential backoff on transport failures and
// 5xx responses; 4xx responses fail immediately.
func (c *Client) SendFile(name string, data []byte) (*ImportResult, error) {
	contentType := "application/json"
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		contentType = "text/csv"
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		req, err := http.NewRequest(http.MethodPost, c.serverURL+"/api/v1/import", bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Content-Type", contentType)
		if c.apiKey != "" {
			req.Header.Set("X-API-Key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			var result ImportResult
			if err := json.Unmarshal(body, &result); err != nil {
				return nil, fmt.Errorf("decoding import response: %w", err)
			}
			return &result, nil
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("import failed (status %d): %s", resp.StatusCode, body)
		default:
			return nil, fmt.Errorf("import rejected (status %d): %s", resp.StatusCode, body)
		}
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}
