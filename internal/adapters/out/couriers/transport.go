// Package couriers holds the delivery provider adapters. Each adapter translates a
// delivery.JobRequest into its courier's API shape; routing happens elsewhere.
package couriers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/delivery"
)

const (
	DefaultTimeout = 15 * time.Second

	maxResponseBytes = 1 << 20
	maxErrorBody     = 300
)

// StatusError is a non-2xx courier response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Body)
}

type transport struct {
	name    string
	baseURL string
	client  *http.Client
	headers map[string]string
}

func newTransport(name, baseURL string, client *http.Client, timeout time.Duration) *transport {
	if client == nil {
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &transport{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		headers: map[string]string{"Accept": "application/json"},
	}
}

func (t *transport) newRequest(
	ctx context.Context,
	method string,
	path string,
	contentType string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", t.name, err)
	}
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// do sends req and returns the response body. Non-2xx responses become a
// *StatusError carrying a truncated body.
func (t *transport) do(req *http.Request) ([]byte, error) {
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %s %s: %w", t.name, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", t.name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(strings.TrimSpace(string(body)), maxErrorBody)}
	}
	return body, nil
}

// rejected turns a courier failure into a delivery.ProviderRejectedError when the
// courier answered; transport errors pass through unchanged.
func (t *transport) rejected(err error) error {
	var se *StatusError
	if errors.As(err, &se) {
		return delivery.NewProviderRejectedError(t.name, se.Code, se.Body)
	}
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
