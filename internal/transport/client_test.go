package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// roundTripFunc lets a plain function stand in for the network.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestFetchReturnsBodyForProviderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "Atlantis" {
			t.Errorf("expected q=Atlantis, got %s", r.URL.Query().Get("q"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	}))
	defer srv.Close()

	c := New(Config{Timeout: 2 * time.Second})

	body, err := c.Fetch(context.Background(), srv.URL+"/weather?q=Atlantis")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"cod":"404","message":"city not found"}` {
		t.Fatalf("unexpected body: %s", body)
	}
	if c.State() != "closed" {
		t.Fatalf("expected closed breaker, got %s", c.State())
	}
}

func TestFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Config{Timeout: 2 * time.Second})

	_, err := c.Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrServerError) {
		t.Fatalf("expected ErrServerError, got %v", err)
	}
}

func TestFetchRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(Config{Timeout: 2 * time.Second})

	_, err := c.Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls int32
	base := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		return nil, errors.New("connection refused")
	})

	c := New(Config{
		Timeout: time.Second,
		Base:    base,
		Breaker: BreakerConfig{MaxFailures: 2, OpenTimeout: time.Minute},
	})

	for i := 0; i < 2; i++ {
		if _, err := c.Fetch(context.Background(), "http://provider.test/weather"); err == nil {
			t.Fatalf("attempt %d: expected transport error", i)
		}
	}

	_, err := c.Fetch(context.Background(), "http://provider.test/weather")
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 network calls, got %d", got)
	}
	if c.State() != "open" {
		t.Fatalf("expected open breaker, got %s", c.State())
	}
}

func TestFetchNoRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Config{Timeout: 2 * time.Second})
	_, _ = c.Fetch(context.Background(), srv.URL)

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected exactly one request, got %d", got)
	}
}
