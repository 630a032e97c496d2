package main

import (
	"context"
	"net/http"
	"time"

	"github.com/clubelocal/partners-cli/internal/store"
	"github.com/clubelocal/partners-cli/pkg/cep"
	"github.com/clubelocal/partners-cli/pkg/geocode"
	"github.com/clubelocal/partners-cli/pkg/places"
)

func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

func initCEPClient() cep.Client {
	return cep.NewClient(
		cep.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.CEP.TimeoutSecs) * time.Second}),
		cep.WithBaseURLs(cfg.CEP.ViaCEPBaseURL, cfg.CEP.BrasilAPIBaseURL),
		cep.WithRateLimit(cfg.CEP.RateLimit),
	)
}

func initGeocodeClient() geocode.Client {
	return geocode.NewClient(
		geocode.WithGoogleAPIKey(cfg.Geocode.GoogleKey),
		geocode.WithNominatimBaseURL(cfg.Geocode.NominatimBaseURL),
		geocode.WithRateLimit(cfg.Geocode.RateLimit),
	)
}

func initPlacesClient() places.Client {
	return places.NewClient(cfg.Places.Key,
		places.WithBaseURL(cfg.Places.BaseURL),
		places.WithRateLimit(cfg.Places.RateLimit),
	)
}
