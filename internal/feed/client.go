package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client fetches aircraft.json snapshots over HTTP.
type Client struct {
	url  string
	http *http.Client
}

// NewClient constructs a feed client with a bounded request timeout.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

// URL returns the configured feed endpoint.
func (c *Client) URL() string {
	return c.url
}

// Fetch retrieves and decodes one snapshot. Network failures, non-2xx
// statuses and malformed bodies are all returned as recoverable errors.
func (c *Client) Fetch(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}

	snap, err := DecodeSnapshot(body)
	if err != nil {
		return nil, fmt.Errorf("decode feed body: %w", err)
	}
	return snap, nil
}
