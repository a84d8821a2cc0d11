// Package download fetches release artifacts over HTTP into memory. It owns
// transport policy (timeouts, redirects, retries); accumulation of the
// response body is delegated to the collect package, with the response's
// declared Content-Length passed through as the size hint.
package download

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/binpost/binpost/internal/collect"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 5 * time.Minute
	// DefaultRetries is the default number of download retries
	DefaultRetries = 3
	// DefaultUserAgent is the User-Agent header sent with requests
	DefaultUserAgent = "binpost/1.0"
)

// Client handles HTTP downloads with retry logic
type Client struct {
	client    *http.Client
	userAgent string
	retries   int
}

// NewClient creates a new download client
func NewClient() *Client {
	return &Client{
		client: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Allow up to 10 redirects
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent: DefaultUserAgent,
		retries:   DefaultRetries,
	}
}

// Fetch downloads url fully into memory. Retries with exponential backoff
// on any failure except context cancellation; a single attempt never
// retries mid-stream, the whole request is reissued.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		buf, err := c.fetchOnce(ctx, url)
		if err == nil {
			return buf, nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("download failed after %d retries: %w", c.retries, lastErr)
}

// fetchOnce performs a single download attempt.
func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// ContentLength is -1 when the server did not declare one (for example
	// chunked responses); the collector then runs in fragment mode.
	buf, err := collect.Collect(resp.Body, resp.ContentLength)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return buf, nil
}
