package httpretry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultHTTPTimeout    = 30 * time.Second
	defaultRetryBaseDelay = 500 * time.Millisecond
	defaultRetryMaxDelay  = 5 * time.Second
	defaultRetries        = 2
	maxBodySnippet        = 512
)

// Policy controls how failed requests are retried. Retries counts additional
// attempts after the first, so Retries=2 means at most three requests.
type Policy struct {
	Retries   int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultPolicy retries twice with exponential backoff from 500ms capped at 5s.
func DefaultPolicy() Policy {
	return Policy{Retries: defaultRetries, BaseDelay: defaultRetryBaseDelay, MaxDelay: defaultRetryMaxDelay}
}

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, snippet(e.Body))
}

// Retryable reports whether the status is one the policy retries.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= http.StatusInternalServerError
}

// Client issues HTTP requests and retries transient failures.
type Client struct {
	httpClient *http.Client
	policy     Policy
	sleeper    func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithPolicy overrides the retry policy.
func WithPolicy(policy Policy) Option {
	return func(c *Client) {
		c.policy = policy
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// New constructs a retrying client. timeout bounds each individual attempt.
func New(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		policy:     DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Do sends the request built by newRequest and returns the response body of
// the first 2xx answer. newRequest is called once per attempt so request
// bodies can be rebuilt.
func (c *Client) Do(ctx context.Context, newRequest func(context.Context) (*http.Request, error)) ([]byte, error) {
	attempts := c.policy.Retries + 1
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		body, err := c.once(ctx, newRequest)
		if err == nil {
			return body, nil
		}
		lastErr = err
		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			if attempt > 1 {
				return nil, fmt.Errorf("failed after %d attempts: %w", attempt, err)
			}
			return nil, err
		}
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

func (c *Client) once(ctx context.Context, newRequest func(context.Context) (*http.Request, error)) ([]byte, error) {
	req, err := newRequest(ctx)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: retryAfter,
		}
	}
	return body, nil
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if !statusErr.Retryable() {
			return 0, false
		}
		if statusErr.RetryAfter > 0 {
			return c.capDelay(statusErr.RetryAfter), true
		}
		return c.backoffDelay(attempt), true
	}

	if IsTimeout(err) {
		return c.backoffDelay(attempt), true
	}
	return 0, false
}

// IsTimeout reports whether err is a transport-level timeout.
func IsTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	base := c.policy.BaseDelay
	if base <= 0 {
		return 0
	}
	maxDelay := c.maxDelay()
	// attempt 1 -> base, attempt 2 -> base*2, attempt 3 -> base*4, ...
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > maxDelay/2 {
			return maxDelay
		}
		delay *= 2
	}
	return c.capDelay(delay)
}

func (c *Client) maxDelay() time.Duration {
	if c.policy.MaxDelay > 0 {
		return c.policy.MaxDelay
	}
	return defaultRetryMaxDelay
}

func (c *Client) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if maxDelay := c.maxDelay(); delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}

func snippet(body string) string {
	clean := strings.Join(strings.Fields(body), " ")
	if clean == "" {
		return "<empty>"
	}
	runes := []rune(clean)
	if len(runes) > maxBodySnippet {
		return string(runes[:maxBodySnippet]) + "..."
	}
	return clean
}
