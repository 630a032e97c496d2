// Package geocode resolves structured addresses to coordinates via the
// Google Geocoding API (primary) and Nominatim (fallback).
package geocode

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/clubelocal/partners-cli/internal/resilience"
)

// Client geocodes addresses.
type Client interface {
	// Geocode geocodes a single address. An unmatched address is not an
	// error: the returned Result has Matched=false.
	Geocode(ctx context.Context, addr AddressInput) (*Result, error)
}

// AddressInput represents an address to geocode.
type AddressInput struct {
	Street       string
	Number       string
	Neighborhood string
	City         string
	State        string
	CEP          string
}

// Result holds the geocoding output for an address.
type Result struct {
	Latitude  float64
	Longitude float64
	Source    string // "google" or "nominatim"
	Matched   bool
}

// Option configures the geocoder.
type Option func(*geocoder)

// WithGoogleAPIKey enables the Google Geocoding API as the primary provider.
func WithGoogleAPIKey(key string) Option {
	return func(g *geocoder) {
		g.googleKey = key
	}
}

// WithNominatimBaseURL overrides the Nominatim endpoint (e.g. a self-hosted instance).
func WithNominatimBaseURL(base string) Option {
	return func(g *geocoder) {
		if base != "" {
			g.nominatimBase = base
		}
	}
}

// WithHTTPClient sets a custom HTTP client for both providers.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *geocoder) {
		g.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second rate limit shared by both providers.
func WithRateLimit(rps float64) Option {
	return func(g *geocoder) {
		g.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

// WithRetry overrides the retry policy for provider calls.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(g *geocoder) {
		g.retry = cfg
	}
}

type geocoder struct {
	httpClient    *http.Client
	googleKey     string
	nominatimBase string
	limiter       *rate.Limiter
	retry         resilience.RetryConfig
}

// NewClient creates a geocoding Client with the given options.
func NewClient(opts ...Option) Client {
	g := &geocoder{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		nominatimBase: "https://nominatim.openstreetmap.org",
		limiter:       rate.NewLimiter(10, 10),
		retry:         resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Geocode tries Google first (when a key is configured), then Nominatim.
// Provider errors never propagate: the worst case is an unmatched result.
func (g *geocoder) Geocode(ctx context.Context, addr AddressInput) (*Result, error) {
	if formatOneLine(addr) == "" {
		return &Result{Matched: false}, nil
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return &Result{Matched: false}, nil //nolint:nilerr // cancellation degrades to unmatched
	}

	if g.googleKey != "" {
		result, googleErr := g.geocodeGoogle(ctx, addr)
		if googleErr == nil && result.Matched {
			return result, nil
		}
	}

	result, nomErr := g.geocodeNominatim(ctx, addr)
	if nomErr == nil && result.Matched {
		return result, nil
	}

	return &Result{Matched: false}, nil
}

// formatOneLine renders an address as a single query string, skipping
// whatever parts are missing.
func formatOneLine(addr AddressInput) string {
	var parts []string
	street := strings.TrimSpace(addr.Street)
	if street != "" && addr.Number != "" {
		street += ", " + addr.Number
	}
	for _, p := range []string{street, addr.Neighborhood, addr.City, addr.State, addr.CEP} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	parts = append(parts, "Brasil")
	return strings.Join(parts, ", ")
}
