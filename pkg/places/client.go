// Package places finds a representative photo and rating for a business via
// the Google Places Text Search API.
package places

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/clubelocal/partners-cli/internal/resilience"
)

// Client looks up place photos and ratings.
type Client interface {
	// FindPhoto searches for the business and returns its first photo and
	// rating. A business without a match is not an error: Found=false.
	FindPhoto(ctx context.Context, name, address, city, state string) (*Result, error)
}

// Result holds the photo lookup output.
type Result struct {
	PhotoURL    string
	Rating      float64
	RatingCount int
	Found       bool
}

// Option configures the client.
type Option func(*client)

// WithBaseURL overrides the Places API base URL.
func WithBaseURL(base string) Option {
	return func(c *client) {
		if base != "" {
			c.baseURL = base
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second rate limit.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

// WithRetry overrides the retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *client) {
		c.retry = cfg
	}
}

type client struct {
	httpClient *http.Client
	baseURL    string
	key        string
	limiter    *rate.Limiter
	retry      resilience.RetryConfig
}

// NewClient creates a place-photo Client with the given API key and options.
func NewClient(key string, opts ...Option) Client {
	c := &client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://maps.googleapis.com/maps/api/place",
		key:        key,
		limiter:    rate.NewLimiter(10, 10),
		retry:      resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// textSearchResponse is the JSON response from the Places Text Search API.
type textSearchResponse struct {
	Results []struct {
		Photos []struct {
			PhotoReference string `json:"photo_reference"`
		} `json:"photos"`
		Rating           float64 `json:"rating"`
		UserRatingsTotal int     `json:"user_ratings_total"`
	} `json:"results"`
	Status string `json:"status"`
}

// FindPhoto implements Client.
func (c *client) FindPhoto(ctx context.Context, name, address, city, state string) (*Result, error) {
	if c.key == "" || strings.TrimSpace(name) == "" {
		return &Result{Found: false}, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return &Result{Found: false}, nil //nolint:nilerr // cancellation degrades to unfound
	}

	var query []string
	for _, p := range []string{name, address, city, state} {
		if s := strings.TrimSpace(p); s != "" {
			query = append(query, s)
		}
	}

	params := url.Values{
		"query": {strings.Join(query, ", ")},
		"key":   {c.key},
	}
	reqURL := c.baseURL + "/textsearch/json?" + params.Encode()

	var searchResp textSearchResponse
	err := resilience.Do(ctx, c.retry, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return eris.Wrap(err, "places: build request")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return eris.Wrap(err, "places: request")
		}
		defer resp.Body.Close() //nolint:errcheck

		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(
				eris.Errorf("places: returned status %d", resp.StatusCode), resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return eris.Errorf("places: returned status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return eris.Wrap(err, "places: read body")
		}
		if err := json.Unmarshal(body, &searchResp); err != nil {
			return eris.Wrap(err, "places: parse response")
		}
		return nil
	})
	if err != nil {
		return &Result{Found: false}, nil //nolint:nilerr // lookup failures degrade to unfound
	}

	if searchResp.Status != "OK" || len(searchResp.Results) == 0 {
		return &Result{Found: false}, nil
	}

	place := searchResp.Results[0]
	result := &Result{
		Rating:      place.Rating,
		RatingCount: place.UserRatingsTotal,
		Found:       true,
	}
	if len(place.Photos) > 0 && place.Photos[0].PhotoReference != "" {
		result.PhotoURL = c.photoURL(place.Photos[0].PhotoReference)
	}
	return result, nil
}

// photoURL builds the photo content URL for a photo reference.
func (c *client) photoURL(ref string) string {
	params := url.Values{
		"maxwidth":        {"800"},
		"photo_reference": {ref},
		"key":             {c.key},
	}
	return c.baseURL + "/photo?" + params.Encode()
}
