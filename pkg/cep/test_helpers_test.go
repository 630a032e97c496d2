package cep

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/clubelocal/partners-cli/internal/resilience"
)

// newTestLimiter creates a rate limiter that effectively does not limit for tests.
func newTestLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Inf, 1)
}

// noRetry disables backoff sleeps in tests.
func noRetry() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    1,
		InitialBackoff: time.Millisecond,
		JitterFraction: 0,
	}
}

// newTestClient builds a client pointed at test servers.
func newTestClient(viaCEPURL, brasilAPIURL string) *client {
	return &client{
		httpClient:    http.DefaultClient,
		viaCEPBase:    viaCEPURL,
		brasilAPIBase: brasilAPIURL,
		limiter:       newTestLimiter(),
		retry:         noRetry(),
	}
}
