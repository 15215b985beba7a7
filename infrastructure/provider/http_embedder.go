// Package provider implements the embedding-service client.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/reefwatch/mantid/domain/embedding"
)

// Default client behavior.
const (
	DefaultTimeout       = 60 * time.Second
	DefaultMaxRetries    = 3
	DefaultInitialDelay  = 2 * time.Second
	DefaultBackoffFactor = 2.0

	// maxBodyExcerpt bounds how much of a bad response body is carried
	// in the error for diagnostics.
	maxBodyExcerpt = 512
)

// Config holds configuration for the HTTP embedder.
type Config struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	MaxRetries    int
	InitialDelay  time.Duration
	BackoffFactor float64
}

// HTTPEmbedder calls the remote embedding service: one POST per image,
// JSON in, JSON out. It is stateless and safe to retry; every failure is
// reported through the embedding error taxonomy so callers never inspect
// strings or status codes.
type HTTPEmbedder struct {
	baseURL       string
	apiKey        string
	httpClient    *http.Client
	maxRetries    int
	initialDelay  time.Duration
	backoffFactor float64
}

// NewHTTPEmbedder creates an embedder from configuration, filling in
// defaults for unset fields.
func NewHTTPEmbedder(cfg Config) *HTTPEmbedder {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = DefaultMaxRetries
	}

	initialDelay := cfg.InitialDelay
	if initialDelay == 0 {
		initialDelay = DefaultInitialDelay
	}

	backoffFactor := cfg.BackoffFactor
	if backoffFactor == 0 {
		backoffFactor = DefaultBackoffFactor
	}

	return &HTTPEmbedder{
		baseURL:       cfg.BaseURL,
		apiKey:        cfg.APIKey,
		httpClient:    &http.Client{Timeout: timeout},
		maxRetries:    maxRetries,
		initialDelay:  initialDelay,
		backoffFactor: backoffFactor,
	}
}

type embedRequest struct {
	ImageURL string `json:"image_url"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed implements embedding.Embedder. The image is referenced by URL;
// the service fetches it server-side.
func (p *HTTPEmbedder) Embed(ctx context.Context, imageRef string) ([]float64, error) {
	var values []float64

	err := p.withRetry(ctx, func() error {
		var err error
		values, err = p.doRequest(ctx, imageRef)
		return err
	})
	if err != nil {
		return nil, err
	}

	return values, nil
}

func (p *HTTPEmbedder) doRequest(ctx context.Context, imageRef string) ([]float64, error) {
	body, err := json.Marshal(embedRequest{ImageURL: imageRef})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %w", embedding.ErrBadResponse, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", embedding.ErrUnreachable, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", embedding.ErrUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", embedding.ErrUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &statusError{status: resp.StatusCode, msg: bodyExcerpt(respBody)}
	}

	var apiResp embedResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: non-JSON body: %s", embedding.ErrBadResponse, bodyExcerpt(respBody))
	}

	if apiResp.Embedding == nil {
		return nil, fmt.Errorf("%w: missing embedding field: %s", embedding.ErrBadResponse, bodyExcerpt(respBody))
	}

	return apiResp.Embedding, nil
}

// withRetry executes fn with exponential backoff for transient failures.
func (p *HTTPEmbedder) withRetry(ctx context.Context, fn func() error) error {
	delay := p.initialDelay
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", embedding.ErrUnreachable, err)
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !isRetryable(lastErr) {
			return lastErr
		}

		if attempt < p.maxRetries {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %w", embedding.ErrUnreachable, ctx.Err())
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * p.backoffFactor)
			}
		}
	}

	return lastErr
}

// isRetryable reports whether the failure is plausibly transient:
// network-level errors and throttling/server statuses. Malformed bodies
// and client errors are a broken contract, not load.
func isRetryable(err error) bool {
	if errors.Is(err, embedding.ErrUnreachable) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var statusErr *statusError
	if errors.As(err, &statusErr) {
		return statusErr.retryable()
	}

	return false
}

// statusError lets retry classification see the HTTP status without
// parsing error strings.
type statusError struct {
	status int
	msg    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.status, e.msg)
}

// Unwrap ties the status into the closed taxonomy.
func (e *statusError) Unwrap() error { return embedding.ErrBadResponse }

func (e *statusError) retryable() bool {
	switch e.status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func bodyExcerpt(body []byte) string {
	if len(body) > maxBodyExcerpt {
		return string(body[:maxBodyExcerpt]) + "..."
	}
	return string(body)
}

var _ embedding.Embedder = (*HTTPEmbedder)(nil)
