package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"firds/shared/config"
	"firds/shared/domain/observability"
	"firds/shared/infrastructure/observability/adapters/noop"
)

// Client implements the HTTPClient port
type Client struct {
	client  *http.Client
	config  config.HTTPConfig
	logger  observability.Logger
	metrics observability.Metrics
	backoff func(attempt int) time.Duration
}

// NewClient creates a new HTTP client with sensible defaults
func NewClient() *Client {
	return NewClientWithConfig(config.DefaultHTTPConfig())
}

// NewClientWithConfig creates a new HTTP client with custom configuration
func NewClientWithConfig(cfg config.HTTPConfig) *Client {
	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		config:  cfg,
		logger:  noop.NewLogger(),
		metrics: noop.NewMetrics(),
		backoff: linearBackoff,
	}
}

// WithLogger sets the logger used for request diagnostics
func (c *Client) WithLogger(logger observability.Logger) *Client {
	c.logger = logger
	return c
}

// WithMetrics sets the metrics sink for request counters
func (c *Client) WithMetrics(metrics observability.Metrics) *Client {
	c.metrics = metrics
	return c
}

// Download implements the HTTPClient interface
func (c *Client) Download(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, map[string]string, error) {
	var resp *http.Response
	var lastErr error
	startTime := time.Now()

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying request", "url", url, "attempt", attempt+1, "error", lastErr)
			select {
			case <-time.After(c.backoff(attempt)):
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			}
		}

		resp, lastErr = c.do(ctx, url, headers)
		if lastErr == nil && resp.StatusCode < 500 {
			break // Success or client error (no retry needed)
		}

		if resp != nil {
			resp.Body.Close()
			lastErr = fmt.Errorf("unexpected HTTP status code: %d", resp.StatusCode)
			resp = nil
		}
	}

	if lastErr != nil {
		c.metrics.IncrementCounter("http.download.errors", nil)
		return nil, nil, fmt.Errorf("request failed after %d attempts: %w", c.config.MaxRetries+1, lastErr)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		c.metrics.IncrementCounter("http.download.errors", map[string]string{"status": fmt.Sprintf("%d", resp.StatusCode)})
		return nil, nil, fmt.Errorf("unexpected HTTP status code: %d", resp.StatusCode)
	}

	c.logger.Debug("Response received",
		"url", url,
		"status", resp.StatusCode,
		"content_length", resp.ContentLength,
		"duration_ms", time.Since(startTime).Milliseconds())
	c.metrics.IncrementCounter("http.download.success", nil)

	// Extract response headers
	responseHeaders := make(map[string]string)
	for key := range resp.Header {
		responseHeaders[key] = resp.Header.Get(key)
	}

	return resp.Body, responseHeaders, nil
}

// do sends one GET; a request is built per attempt so retries never reuse it
func (c *Client) do(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set user agent
	req.Header.Set("User-Agent", c.config.UserAgent)

	// Set custom headers
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	return c.client.Do(req)
}

func linearBackoff(attempt int) time.Duration {
	return time.Duration(attempt) * time.Second
}
