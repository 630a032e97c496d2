package places

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/clubelocal/partners-cli/internal/resilience"
)

func newTestClient(baseURL string) *client {
	return &client{
		httpClient: http.DefaultClient,
		baseURL:    baseURL,
		key:        "test-key",
		limiter:    rate.NewLimiter(rate.Inf, 1),
		retry: resilience.RetryConfig{
			MaxAttempts:    1,
			InitialBackoff: time.Millisecond,
			JitterFraction: 0,
		},
	}
}

func TestFindPhoto_Found(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/textsearch/json", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("query"), "Padaria do Zé")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"status": "OK",
			"results": [{
				"photos": [{"photo_reference": "abc123"}],
				"rating": 4.6,
				"user_ratings_total": 321
			}]
		}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	result, err := c.FindPhoto(context.Background(), "Padaria do Zé", "Rua A, 10", "Florianópolis", "SC")
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Contains(t, result.PhotoURL, "photo_reference=abc123")
	assert.Contains(t, result.PhotoURL, "/photo?")
	assert.InDelta(t, 4.6, result.Rating, 0.001)
	assert.Equal(t, 321, result.RatingCount)
}

func TestFindPhoto_FoundWithoutPhoto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"status": "OK",
			"results": [{"rating": 3.9, "user_ratings_total": 12}]
		}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	result, err := c.FindPhoto(context.Background(), "Barbearia Central", "", "Blumenau", "SC")
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Empty(t, result.PhotoURL)
	assert.InDelta(t, 3.9, result.Rating, 0.001)
}

func TestFindPhoto_ZeroResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status": "ZERO_RESULTS", "results": []}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	result, err := c.FindPhoto(context.Background(), "Loja Fantasma", "", "Cidade", "XX")
	require.NoError(t, err)
	assert.False(t, result.Found)
}

func TestFindPhoto_ServerErrorDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)

	result, err := c.FindPhoto(context.Background(), "Qualquer", "", "Cidade", "SC")
	require.NoError(t, err)
	assert.False(t, result.Found)
}

func TestFindPhoto_NoKeyOrName(t *testing.T) {
	c := newTestClient("http://127.0.0.1:0")
	c.key = ""

	result, err := c.FindPhoto(context.Background(), "Nome", "", "", "")
	require.NoError(t, err)
	assert.False(t, result.Found)

	c.key = "test-key"
	result, err = c.FindPhoto(context.Background(), "   ", "", "", "")
	require.NoError(t, err)
	assert.False(t, result.Found)
}
