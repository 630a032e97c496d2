package cep

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viaCEPHit(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/88000000/json/")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"cep": "88000-000",
			"logradouro": "Rua Felipe Schmidt",
			"bairro": "Centro",
			"localidade": "Florianópolis",
			"uf": "SC"
		}`)
	}))
}

func brasilAPIHit(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"cep": "88000000",
			"street": "Avenida Beira Mar",
			"neighborhood": "Centro",
			"city": "Florianópolis",
			"state": "SC"
		}`)
	}))
}

func miss() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"erro": true}`)
	}))
}

func TestLookup_PrimaryHit(t *testing.T) {
	via := viaCEPHit(t)
	defer via.Close()

	c := newTestClient(via.URL, "http://127.0.0.1:0")

	result, err := c.Lookup(context.Background(), "88000000")
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, "viacep", result.Source)
	assert.Equal(t, "Rua Felipe Schmidt", result.Street)
	assert.Equal(t, "Centro", result.Neighborhood)
	assert.Equal(t, "Florianópolis", result.City)
	assert.Equal(t, "SC", result.State)
}

func TestLookup_PrimaryMissFallbackHit(t *testing.T) {
	via := miss()
	defer via.Close()
	br := brasilAPIHit(t)
	defer br.Close()

	c := newTestClient(via.URL, br.URL)

	result, err := c.Lookup(context.Background(), "88000000")
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, "brasilapi", result.Source)
	assert.Equal(t, "Avenida Beira Mar", result.Street)
}

func TestLookup_PrimaryErrorFallbackHit(t *testing.T) {
	via := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer via.Close()
	br := brasilAPIHit(t)
	defer br.Close()

	c := newTestClient(via.URL, br.URL)

	result, err := c.Lookup(context.Background(), "88000000")
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, "brasilapi", result.Source)
}

func TestLookup_BothMiss(t *testing.T) {
	via := miss()
	defer via.Close()
	br := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer br.Close()

	c := newTestClient(via.URL, br.URL)

	result, err := c.Lookup(context.Background(), "88000000")
	require.NoError(t, err)
	assert.False(t, result.Found)
}

func TestLookup_BothUnreachable(t *testing.T) {
	c := newTestClient("http://127.0.0.1:0", "http://127.0.0.1:0")

	result, err := c.Lookup(context.Background(), "88000000")
	require.NoError(t, err)
	assert.False(t, result.Found)
}

func TestLookup_InvalidCEPLength(t *testing.T) {
	c := newTestClient("http://127.0.0.1:0", "http://127.0.0.1:0")

	result, err := c.Lookup(context.Background(), "880")
	require.NoError(t, err)
	assert.False(t, result.Found)
}
