// Package fetch retrieves raw page content over HTTP with per-request
// timeouts and bounded retry.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 << 20

// StatusError reports a non-success HTTP status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// HTTP fetches pages with a tuned net/http client.
type HTTP struct {
	client    *http.Client
	userAgent string
	retry     *RetryPolicy
	logger    *zap.Logger
}

// NewHTTP constructs a fetcher. timeout bounds each attempt; maxRetries
// bounds additional attempts after the first.
func NewHTTP(timeout time.Duration, userAgent string, maxRetries int, logger *zap.Logger) *HTTP {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        128,
			MaxIdleConnsPerHost: 32,
			IdleConnTimeout:     30 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	}
	return &HTTP{
		client:    client,
		userAgent: userAgent,
		retry:     NewRetryPolicy(maxRetries + 1),
		logger:    logger,
	}
}

// Fetch retrieves rawURL and returns the response body. Any status >= 400
// is an error. Transient failures are retried per the policy.
func (f *HTTP) Fetch(ctx context.Context, rawURL string) (string, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		body, err := f.do(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !f.retry.ShouldRetry(err, attempt) {
			return "", lastErr
		}
		wait := f.retry.Backoff(attempt)
		f.logger.Debug("retrying fetch",
			zap.String("url", rawURL),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("fetch canceled: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
}

func (f *HTTP) do(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", rawURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return "", &StatusError{Code: resp.StatusCode}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read body %s: %w", rawURL, err)
	}
	return string(data), nil
}
