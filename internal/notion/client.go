// Package notion stores records and run logs in Notion databases through
// the public REST API: paginated database queries for the duplicate index
// and page creation for writes.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL    = "https://api.notion.com"
	defaultAPIVersion = "2022-06-28"
	maxPageSize       = 100
)

// Config identifies the Notion integration and its databases.
type Config struct {
	Token         string
	DatabaseID    string
	LogDatabaseID string // optional; run logs are skipped when empty
	APIVersion    string
	BaseURL       string
	Timeout       time.Duration
}

// Client talks to the Notion API. It is safe for sequential use by the
// pipeline; it holds no per-request state.
type Client struct {
	cfg    Config
	client *http.Client
}

// New returns a Client for cfg, filling API version, base URL and timeout
// defaults.
func New(cfg Config) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// APIError is a non-2xx response from Notion.
type APIError struct {
	StatusCode int    `json:"status"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("notion API returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("notion API returned status %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// do sends body as JSON to path and decodes the response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Notion-Version", c.cfg.APIVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{}
		if jsonErr := json.Unmarshal(respBody, apiErr); jsonErr != nil || apiErr.StatusCode == 0 {
			apiErr.StatusCode = resp.StatusCode
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) logsEnabled() bool {
	if c.cfg.LogDatabaseID != "" {
		return true
	}
	slog.Debug("no notion log database configured, skipping run log")
	return false
}
