// Package cep resolves Brazilian postal codes to street addresses via
// ViaCEP (primary) and BrasilAPI (fallback).
package cep

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/clubelocal/partners-cli/internal/resilience"
)

// Client resolves a postal code to a structured address.
type Client interface {
	// Lookup resolves a bare 8-digit CEP. A miss on every provider is not an
	// error: the returned Result has Found=false.
	Lookup(ctx context.Context, cep string) (*Result, error)
}

// Result holds the address for a postal code.
type Result struct {
	Street       string
	Neighborhood string
	City         string
	State        string
	Source       string // "viacep" or "brasilapi"
	Found        bool
}

// Option configures the client.
type Option func(*client)

// WithHTTPClient sets a custom HTTP client for both providers.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithBaseURLs overrides the provider base URLs.
func WithBaseURLs(viaCEP, brasilAPI string) Option {
	return func(c *client) {
		if viaCEP != "" {
			c.viaCEPBase = viaCEP
		}
		if brasilAPI != "" {
			c.brasilAPIBase = brasilAPI
		}
	}
}

// WithRateLimit sets the requests-per-second limit shared by both providers.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

// WithRetry overrides the retry policy for provider calls.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *client) {
		c.retry = cfg
	}
}

type client struct {
	httpClient    *http.Client
	viaCEPBase    string
	brasilAPIBase string
	limiter       *rate.Limiter
	retry         resilience.RetryConfig
}

// NewClient creates a postal code lookup Client with the given options.
func NewClient(opts ...Option) Client {
	c := &client{
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		viaCEPBase:    "https://viacep.com.br/ws",
		brasilAPIBase: "https://brasilapi.com.br/api/cep/v1",
		limiter:       rate.NewLimiter(10, 10),
		retry:         resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup tries ViaCEP first, then BrasilAPI. Transport errors and non-success
// responses from the primary fall through to the fallback; if both miss, the
// result is unfound, never an error.
func (c *client) Lookup(ctx context.Context, cep string) (*Result, error) {
	if len(cep) != 8 {
		return &Result{Found: false}, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return &Result{Found: false}, nil //nolint:nilerr // cancellation degrades to unfound
	}

	result, viaErr := c.lookupViaCEP(ctx, cep)
	if viaErr == nil && result.Found {
		return result, nil
	}

	result, brErr := c.lookupBrasilAPI(ctx, cep)
	if brErr == nil && result.Found {
		return result, nil
	}

	return &Result{Found: false}, nil
}
