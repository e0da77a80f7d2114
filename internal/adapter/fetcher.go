// Package adapter provides clients for the upstream rate-provider APIs.
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rates-ingestor/internal/retry"
)

// Fetcher performs JSON GET requests with retries and a per-attempt timeout.
// The timeout aborts the in-flight request independently of the overall
// retry budget.
type Fetcher struct {
	client  *http.Client
	retry   *retry.Config
	timeout time.Duration
}

// NewFetcher creates a fetcher with the given attempt budget and per-attempt
// timeout
func NewFetcher(maxAttempts int, timeout time.Duration) *Fetcher {
	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = maxAttempts
	return &Fetcher{
		client:  &http.Client{},
		retry:   cfg,
		timeout: timeout,
	}
}

// GetJSON fetches the URL and decodes the response body into out. On a
// non-2xx status or a network failure it waits with exponential backoff and
// retries; after the final failed attempt the error is returned.
func (f *Fetcher) GetJSON(ctx context.Context, url string, headers map[string]string, out interface{}) error {
	return retry.Do(ctx, f.retry, func(ctx context.Context, attempt int) error {
		attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("HTTP error: %d - %s", resp.StatusCode, truncate(body, 200))
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
		return nil
	})
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
