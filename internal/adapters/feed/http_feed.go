// Package feed fetches the remote blocklist over HTTP.
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HTTPFeed retrieves a plaintext blocklist, one domain per line.
type HTTPFeed struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewHTTPFeed creates a new HTTPFeed for the given source URL.
func NewHTTPFeed(url string, timeout time.Duration, logger *zap.Logger) *HTTPFeed {
	return &HTTPFeed{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fetch retrieves the current list. Connection errors, timeouts, and
// non-success statuses are returned as errors for the caller to treat as
// "no update".
func (f *HTTPFeed) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build feed request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read feed body: %w", err)
	}

	f.logger.Debug("Fetched blocklist feed", zap.Int("bytes", len(body)))
	return string(body), nil
}
