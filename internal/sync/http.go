// Jetlog - Personal Flight Logbook and Travel Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/jetlog

package sync

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/tomtom215/jetlog/internal/metrics"
)

// maxErrorBodySize caps how much of a failed response is kept for errors.
const maxErrorBodySize = 64 * 1024

// userAgent is sent to the FR24 endpoints, which reject unknown clients.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// StatusError is a non-2xx answer from a provider.
type StatusError struct {
	Provider string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned %d", e.Code)
}

// Retryable reports whether the status points at the provider rather than
// the request.
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// readBodyForError reads the response body for error reporting (max 64KB)
// Returns the body content or a placeholder message if reading fails
func readBodyForError(r io.Reader) []byte {
	limitedReader := io.LimitReader(r, maxErrorBodySize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}

// requestConfig holds configuration for building HTTP requests
type requestConfig struct {
	method   string
	url      string
	query    url.Values
	form     url.Values
	header   map[string]string
	provider string
}

// newRequest builds the *http.Request described by cfg.
func (cfg requestConfig) newRequest(ctx context.Context) (*http.Request, error) {
	method := cfg.method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader = http.NoBody
	if cfg.form != nil {
		body = strings.NewReader(cfg.form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, cfg.url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if len(cfg.query) > 0 {
		req.URL.RawQuery = cfg.query.Encode()
	}
	if cfg.form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range cfg.header {
		req.Header.Set(k, v)
	}
	return req, nil
}

// do sends one request and records the call. The caller owns the body.
func do(ctx context.Context, client *http.Client, cfg requestConfig) (*http.Response, error) {
	req, err := cfg.newRequest(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		metrics.RecordExternalRequest(cfg.provider, "error", time.Since(start))
		return nil, fmt.Errorf("%s request failed: %w", cfg.provider, err)
	}
	metrics.RecordExternalRequest(cfg.provider, strconv.Itoa(resp.StatusCode), time.Since(start))
	return resp, nil
}

// doWithBackoff retries on HTTP 429 with exponential backoff: baseDelay,
// 2*baseDelay, ... for at most attempts tries. The wait observes ctx.
func doWithBackoff(ctx context.Context, client *http.Client, cfg requestConfig, attempts int, baseDelay time.Duration) (*http.Response, error) {
	delay := baseDelay
	for attempt := 1; ; attempt++ {
		resp, err := do(ctx, client, cfg)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= attempts {
			return resp, nil
		}
		_ = resp.Body.Close()

		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
		delay *= 2
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// checkStatus turns a non-200 response into a *StatusError and closes it.
func checkStatus(provider string, resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	defer resp.Body.Close()
	return &StatusError{
		Provider: provider,
		Code:     resp.StatusCode,
		Body:     string(readBodyForError(resp.Body)),
	}
}

// decodeJSON decodes and closes a 200 response body into out.
func decodeJSON(provider string, resp *http.Response, out interface{}) error {
	if err := checkStatus(provider, resp); err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", provider, err)
	}
	return nil
}

// newHTTPClient returns a client with the configured request limit.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
