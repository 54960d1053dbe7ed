package httpretry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func getter(url string) func(context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}
}

func TestDoRetriesRateLimitThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	var slept []time.Duration
	client := New(time.Second, WithSleeper(func(d time.Duration) { slept = append(slept, d) }))
	body, err := client.Do(context.Background(), getter(server.URL))
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if string(body) != "ok" {
		t.Fatalf("unexpected body %q", body)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
	if len(slept) != 1 || slept[0] != 2*time.Second {
		t.Fatalf("expected Retry-After delay of 2s, got %v", slept)
	}
}

func TestDoGivesUpAfterPolicyRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	var slept []time.Duration
	client := New(time.Second, WithSleeper(func(d time.Duration) { slept = append(slept, d) }))
	_, err := client.Do(context.Background(), getter(server.URL))
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 status error, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
	if len(slept) != 2 || slept[0] != 500*time.Millisecond || slept[1] != time.Second {
		t.Fatalf("unexpected backoff delays: %v", slept)
	}
}

func TestDoDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errorMessage":"Authentication failed"}`))
	}))
	defer server.Close()

	client := New(time.Second, WithSleeper(func(time.Duration) { t.Fatal("unexpected sleep") }))
	_, err := client.Do(context.Background(), getter(server.URL))
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected single call, got %d", calls.Load())
	}
}

func TestBackoffIsCapped(t *testing.T) {
	client := New(time.Second)
	if got := client.backoffDelay(1); got != 500*time.Millisecond {
		t.Fatalf("attempt 1 delay = %v", got)
	}
	if got := client.backoffDelay(10); got != 5*time.Second {
		t.Fatalf("attempt 10 delay = %v, want cap", got)
	}
	if got := client.capDelay(time.Minute); got != 5*time.Second {
		t.Fatalf("Retry-After should be capped, got %v", got)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := parseRetryAfter("3"); !ok || d != 3*time.Second {
		t.Fatalf("unexpected seconds parse: %v %v", d, ok)
	}
	if _, ok := parseRetryAfter("-1"); ok {
		t.Fatal("negative Retry-After should be rejected")
	}
	if _, ok := parseRetryAfter("soon"); ok {
		t.Fatal("garbage Retry-After should be rejected")
	}
}
