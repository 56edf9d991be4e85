package ratelimit

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func newClient(maxRetries int) *http.Client {
	return &http.Client{
		Transport: &Transport{
			MaxRetries: maxRetries,
			BaseDelay:  time.Millisecond,
			MaxDelay:   5 * time.Millisecond,
		},
	}
}

// TestPassThrough verifies non-429 responses are returned untouched.
func TestPassThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	resp, err := newClient(3).Get(server.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Errorf("body = %q, want ok", body)
	}
}

// TestRetriesOn429 verifies rate-limited requests are retried until
// success.
func TestRetriesOn429(t *testing.T) {
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt64(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	resp, err := newClient(3).Get(server.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	_ = resp.Body.Close()

	if got := atomic.LoadInt64(&calls); got != 3 {
		t.Errorf("server called %d times, want 3", got)
	}
}

// TestExhaustedRetriesFail verifies a persistent 429 surfaces a
// RateLimitError.
func TestExhaustedRetriesFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newClient(2).Get(server.URL)
	if err == nil {
		t.Fatal("Get succeeded against a persistent 429")
	}
	if !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Errorf("error = %v, want a rate limit error", err)
	}
}

// TestBodyReplayedOnRetry verifies POST bodies survive a retry.
func TestBodyReplayedOnRetry(t *testing.T) {
	var calls int64
	var lastBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		lastBody = string(body)
		if atomic.AddInt64(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	resp, err := newClient(3).Post(server.URL, "application/json", strings.NewReader(`{"a":1}`))
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	_ = resp.Body.Close()

	if lastBody != `{"a":1}` {
		t.Errorf("retried body = %q, want original body", lastBody)
	}
}

// TestParseRetryAfterSeconds verifies the seconds format.
func TestParseRetryAfterSeconds(t *testing.T) {
	d := ParseRetryAfter("7")
	if d == nil || *d != 7*time.Second {
		t.Errorf("ParseRetryAfter(7) = %v, want 7s", d)
	}
}

// TestParseRetryAfterInvalid verifies garbage values are ignored.
func TestParseRetryAfterInvalid(t *testing.T) {
	if d := ParseRetryAfter("soon"); d != nil {
		t.Errorf("ParseRetryAfter(soon) = %v, want nil", d)
	}
	if d := ParseRetryAfter(""); d != nil {
		t.Errorf("ParseRetryAfter(\"\") = %v, want nil", d)
	}
	if d := ParseRetryAfter("-3"); d != nil {
		t.Errorf("ParseRetryAfter(-3) = %v, want nil", d)
	}
}
