package cep

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rotisserie/eris"

	"github.com/clubelocal/partners-cli/internal/resilience"
)

// brasilAPIResponse is the JSON response from BrasilAPI. A miss is a 404.
type brasilAPIResponse struct {
	Street       string `json:"street"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

// lookupBrasilAPI resolves a CEP through BrasilAPI.
func (c *client) lookupBrasilAPI(ctx context.Context, cep string) (*Result, error) {
	reqURL := c.brasilAPIBase + "/" + cep

	notFound := false
	var brResp brasilAPIResponse
	err := resilience.Do(ctx, c.retry, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return eris.Wrap(err, "cep: brasilapi build request")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return eris.Wrap(err, "cep: brasilapi request")
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode == http.StatusNotFound {
			notFound = true
			return nil
		}
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(
				eris.Errorf("cep: brasilapi returned status %d", resp.StatusCode), resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return eris.Errorf("cep: brasilapi returned status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return eris.Wrap(err, "cep: brasilapi read body")
		}
		if err := json.Unmarshal(body, &brResp); err != nil {
			return eris.Wrap(err, "cep: brasilapi parse response")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if notFound || brResp.City == "" {
		return &Result{Found: false, Source: "brasilapi"}, nil
	}

	return &Result{
		Street:       brResp.Street,
		Neighborhood: brResp.Neighborhood,
		City:         brResp.City,
		State:        brResp.State,
		Source:       "brasilapi",
		Found:        true,
	}, nil
}
