package cep

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rotisserie/eris"

	"github.com/clubelocal/partners-cli/internal/resilience"
)

// viaCEPResponse is the JSON response from ViaCEP. A miss is a 200 with
// {"erro": true}, not a 404.
type viaCEPResponse struct {
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	Erro       bool   `json:"erro"`
}

// lookupViaCEP resolves a CEP through ViaCEP.
func (c *client) lookupViaCEP(ctx context.Context, cep string) (*Result, error) {
	reqURL := c.viaCEPBase + "/" + cep + "/json/"

	var viaResp viaCEPResponse
	err := resilience.Do(ctx, c.retry, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return eris.Wrap(err, "cep: viacep build request")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return eris.Wrap(err, "cep: viacep request")
		}
		defer resp.Body.Close() //nolint:errcheck

		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(
				eris.Errorf("cep: viacep returned status %d", resp.StatusCode), resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return eris.Errorf("cep: viacep returned status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return eris.Wrap(err, "cep: viacep read body")
		}
		if err := json.Unmarshal(body, &viaResp); err != nil {
			return eris.Wrap(err, "cep: viacep parse response")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if viaResp.Erro || viaResp.Localidade == "" {
		return &Result{Found: false, Source: "viacep"}, nil
	}

	return &Result{
		Street:       viaResp.Logradouro,
		Neighborhood: viaResp.Bairro,
		City:         viaResp.Localidade,
		State:        viaResp.UF,
		Source:       "viacep",
		Found:        true,
	}, nil
}
