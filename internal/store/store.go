// Package store persists establishments, import runs, and the known-specialty
// catalog. Two backends exist: Postgres (pgx) and SQLite (modernc).
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/clubelocal/partners-cli/internal/config"
	"github.com/clubelocal/partners-cli/internal/model"
)

// Store is the destination-store contract consumed by the import pipeline
// and the post-import sweep.
type Store interface {
	// ReserveCodes atomically reserves n sequential codes and returns the
	// first reserved value. Concurrent runs receive disjoint ranges.
	ReserveCodes(ctx context.Context, n int) (int64, error)

	// UpsertEstablishment inserts or updates an establishment keyed by CNPJ.
	// This is the pipeline's only hard-failure source.
	UpsertEstablishment(ctx context.Context, est *model.Establishment) error

	// SpecialtiesByCategory returns the known-specialty list for a category.
	SpecialtiesByCategory(ctx context.Context, category string) ([]string, error)

	// ListMissingCoordinates returns stored establishments without coordinates.
	ListMissingCoordinates(ctx context.Context, limit int) ([]model.EstablishmentRef, error)

	// UpdateCoordinates writes sweep geocoding results back.
	UpdateCoordinates(ctx context.Context, id int64, lat, lng float64) error

	// Runs
	CreateRun(ctx context.Context, run *model.ImportRun) error
	CompleteRun(ctx context.Context, runID, status string, report *model.ImportReport) error
	ListRuns(ctx context.Context, limit int) ([]model.ImportRun, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "postgres", "":
		return NewPostgres(ctx, cfg)
	case "sqlite":
		return NewSQLite(cfg.Path)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
