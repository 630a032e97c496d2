package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/clubelocal/partners-cli/internal/resilience"
)

// nominatimResult is one entry of the Nominatim search response.
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// geocodeNominatim geocodes a single address using the Nominatim search API.
func (g *geocoder) geocodeNominatim(ctx context.Context, addr AddressInput) (*Result, error) {
	params := url.Values{
		"q":            {formatOneLine(addr)},
		"format":       {"json"},
		"limit":        {"1"},
		"countrycodes": {"br"},
	}
	reqURL := g.nominatimBase + "/search?" + params.Encode()

	var results []nominatimResult
	err := resilience.Do(ctx, g.retry, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return eris.Wrap(err, "geocode: nominatim build request")
		}
		// Nominatim's usage policy requires an identifying agent.
		req.Header.Set("User-Agent", "partners-cli/1.0")

		resp, err := g.httpClient.Do(req)
		if err != nil {
			return eris.Wrap(err, "geocode: nominatim request")
		}
		defer resp.Body.Close() //nolint:errcheck

		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(
				eris.Errorf("geocode: nominatim returned status %d", resp.StatusCode), resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return eris.Errorf("geocode: nominatim returned status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return eris.Wrap(err, "geocode: nominatim read body")
		}
		if err := json.Unmarshal(body, &results); err != nil {
			return eris.Wrap(err, "geocode: nominatim parse response")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return &Result{Matched: false, Source: "nominatim"}, nil
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return &Result{Matched: false, Source: "nominatim"}, nil
	}

	return &Result{
		Latitude:  lat,
		Longitude: lon,
		Source:    "nominatim",
		Matched:   true,
	}, nil
}
