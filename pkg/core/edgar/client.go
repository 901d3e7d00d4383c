package edgar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"legal_counsel_finder/pkg/core/errs"
	"legal_counsel_finder/pkg/core/logger"
)

const (
	// DefaultUserAgent is sent when none is configured; SEC rejects anonymous clients.
	DefaultUserAgent = "Legal Counsel Finder contact@example.com"

	maxBodyBytes = 32 << 20
)

// StatusError is a non-200 answer from an SEC endpoint.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.Code, e.URL)
}

// Retryable reports whether the status is worth another attempt (throttling, server side).
func (e *StatusError) Retryable() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// Client performs GET requests against SEC hosts with a bounded timeout and
// exponential-backoff retries on transport failures.
type Client struct {
	httpClient     *http.Client
	userAgent      string
	maxAttempts    uint
	initialBackoff time.Duration
}

// NewClient creates a client. timeout bounds every single attempt.
func NewClient(userAgent string, timeout time.Duration) *Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		httpClient:     &http.Client{Timeout: timeout},
		userAgent:      userAgent,
		maxAttempts:    3,
		initialBackoff: 500 * time.Millisecond,
	}
}

// WithRetry overrides the retry policy (tests use a 1ms backoff).
func (c *Client) WithRetry(maxAttempts int, initial time.Duration) *Client {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	c.maxAttempts = uint(maxAttempts)
	c.initialBackoff = initial
	return c
}

// Get fetches url and returns the body of a 200 response.
// Network errors and retryable statuses are retried; the final error wraps errs.ErrTransport.
// Other statuses return a *StatusError immediately.
func (c *Client) Get(ctx context.Context, url string, accept string) ([]byte, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialBackoff
	b.MaxInterval = 8 * c.initialBackoff

	attempt := 0
	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		attempt++
		body, err := c.do(ctx, url, accept)
		if err == nil {
			return body, nil
		}
		if se, ok := err.(*StatusError); ok && !se.Retryable() {
			return nil, backoff.Permanent(err)
		}
		logger.Debug("[SEC] request failed, retrying",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		return nil, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(c.maxAttempts))
	if err == nil {
		return body, nil
	}

	if se, ok := err.(*StatusError); ok && !se.Retryable() {
		return nil, err
	}
	return nil, fmt.Errorf("%w: GET %s: %v", errs.ErrTransport, url, err)
}

func (c *Client) do(ctx context.Context, url string, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	// SEC requires User-Agent
	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}
