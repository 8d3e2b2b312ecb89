package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var (
	ErrRateLimited = errors.New("rate limited")
	ErrServerError = errors.New("server error")
	ErrCircuitOpen = errors.New("circuit breaker open")
)

// BreakerConfig controls when the circuit breaker trips and how long it stays open.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before letting a probe through.
	OpenTimeout time.Duration
}

// Config bundles HTTP client and breaker settings.
type Config struct {
	Name    string
	Timeout time.Duration
	Breaker BreakerConfig

	// Base is the round tripper under the tracing layer; nil means http.DefaultTransport.
	Base http.RoundTripper
}

// Client performs provider GETs through a circuit breaker.
// It implements weather.Fetcher.
type Client struct {
	http    *resty.Client
	circuit *gobreaker.CircuitBreaker
}

// New creates a new Client.
func New(cfg Config) *Client {
	if cfg.Name == "" {
		cfg.Name = "openweathermap"
	}
	if cfg.Breaker.MaxFailures == 0 {
		cfg.Breaker.MaxFailures = 5
	}
	if cfg.Breaker.OpenTimeout <= 0 {
		cfg.Breaker.OpenTimeout = 2 * time.Minute
	}
	base := cfg.Base
	if base == nil {
		base = http.DefaultTransport
	}

	hc := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: otelhttp.NewTransport(base),
	}

	maxFailures := cfg.Breaker.MaxFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     cfg.Breaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	})

	return &Client{
		http:    resty.NewWithClient(hc).SetHeader("Accept", "application/json"),
		circuit: cb,
	}
}

// Fetch GETs rawURL and returns the body. Provider answers with a 4xx status
// are returned as-is so the caller can read the provider's own status field;
// 429, 5xx and transport failures are errors and count against the breaker.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, err := c.http.R().SetContext(ctx).Get(rawURL)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode() == http.StatusTooManyRequests {
			return nil, ErrRateLimited
		}
		if resp.StatusCode() >= 500 {
			return nil, fmt.Errorf("%w: %d", ErrServerError, resp.StatusCode())
		}

		return resp.Body(), nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return nil, err
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return body, nil
}

// State reports the breaker state ("closed", "half-open" or "open").
func (c *Client) State() string {
	return c.circuit.State().String()
}
