package store

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/clubelocal/partners-cli/internal/config"
	"github.com/clubelocal/partners-cli/internal/db"
	"github.com/clubelocal/partners-cli/internal/model"
)

// Postgres is the pgx-backed Store.
type Postgres struct {
	pool db.Pool
}

var _ Store = (*Postgres)(nil)

// NewPostgres connects a pool using the configured URL.
func NewPostgres(ctx context.Context, cfg config.StoreConfig) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "store: parse database url")
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, eris.Wrap(err, "store: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "store: ping")
	}

	zap.L().Debug("connected to postgres store",
		zap.Int32("max_conns", poolCfg.MaxConns))
	return &Postgres{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresFromPool(pool db.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS establishments (
	id            BIGSERIAL PRIMARY KEY,
	code          TEXT NOT NULL,
	cnpj          TEXT NOT NULL UNIQUE CHECK (cnpj <> ''),
	name          TEXT NOT NULL,
	phone         TEXT NOT NULL DEFAULT '',
	whatsapp      TEXT NOT NULL DEFAULT '',
	email         TEXT NOT NULL DEFAULT '',
	cep           TEXT NOT NULL DEFAULT '',
	street        TEXT NOT NULL DEFAULT '',
	number        TEXT NOT NULL DEFAULT '',
	complement    TEXT NOT NULL DEFAULT '',
	neighborhood  TEXT NOT NULL DEFAULT '',
	city          TEXT NOT NULL DEFAULT '',
	state         TEXT NOT NULL DEFAULT '',
	instagram     TEXT NOT NULL DEFAULT '',
	website       TEXT NOT NULL DEFAULT '',
	category      TEXT NOT NULL,
	specialties   JSONB NOT NULL DEFAULT '[]',
	benefit       TEXT NOT NULL DEFAULT '',
	usage_rules   TEXT NOT NULL DEFAULT '',
	validity      TEXT NOT NULL DEFAULT '',
	opening_hours TEXT NOT NULL DEFAULT '',
	latitude      DOUBLE PRECISION,
	longitude     DOUBLE PRECISION,
	photo_url     TEXT NOT NULL DEFAULT '',
	rating        DOUBLE PRECISION NOT NULL DEFAULT 0,
	rating_count  INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS code_sequence (
	id            SMALLINT PRIMARY KEY CHECK (id = 1),
	last_reserved BIGINT NOT NULL DEFAULT 0
);

INSERT INTO code_sequence (id, last_reserved) VALUES (1, 0)
ON CONFLICT (id) DO NOTHING;

CREATE TABLE IF NOT EXISTS specialties (
	id       BIGSERIAL PRIMARY KEY,
	category TEXT NOT NULL,
	name     TEXT NOT NULL,
	UNIQUE (category, name)
);

CREATE TABLE IF NOT EXISTS import_runs (
	id           TEXT PRIMARY KEY,
	file         TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	total        INTEGER NOT NULL DEFAULT 0,
	imported     INTEGER NOT NULL DEFAULT 0,
	failed       INTEGER NOT NULL DEFAULT 0,
	geocoded     INTEGER NOT NULL DEFAULT 0,
	photos_found INTEGER NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at  TIMESTAMPTZ
);
`

// Migrate applies the schema. Statements are idempotent.
func (s *Postgres) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(pgSchema, ";\n\n") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return eris.Wrap(err, "store: migrate")
		}
	}
	return nil
}

// ReserveCodes advances the sequence counter by n in a single atomic
// statement. The counter never trails the highest numeric code already
// stored, so ranges stay disjoint even after manual inserts.
func (s *Postgres) ReserveCodes(ctx context.Context, n int) (int64, error) {
	if n <= 0 {
		return 0, eris.Errorf("store: reserve count must be positive, got %d", n)
	}

	const q = `
		UPDATE code_sequence
		SET last_reserved = GREATEST(
			last_reserved,
			(SELECT COALESCE(MAX(code::BIGINT), 0) FROM establishments WHERE code ~ '^[0-9]+$')
		) + $1
		WHERE id = 1
		RETURNING last_reserved`

	var last int64
	if err := s.pool.QueryRow(ctx, q, n).Scan(&last); err != nil {
		return 0, eris.Wrap(err, "store: reserve codes")
	}
	return last - int64(n) + 1, nil
}

// UpsertEstablishment inserts or updates by CNPJ. On conflict the stored
// code is kept so re-imports do not churn previously assigned codes.
func (s *Postgres) UpsertEstablishment(ctx context.Context, est *model.Establishment) error {
	if est.CNPJ == "" {
		return eris.New("store: establishment has no cnpj")
	}

	const q = `
		INSERT INTO establishments (
			code, cnpj, name, phone, whatsapp, email,
			cep, street, number, complement, neighborhood, city, state,
			instagram, website, category, specialties,
			benefit, usage_rules, validity, opening_hours,
			latitude, longitude, photo_url, rating, rating_count
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17,
			$18, $19, $20, $21,
			$22, $23, $24, $25, $26
		)
		ON CONFLICT (cnpj) DO UPDATE SET
			name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			whatsapp = EXCLUDED.whatsapp,
			email = EXCLUDED.email,
			cep = EXCLUDED.cep,
			street = EXCLUDED.street,
			number = EXCLUDED.number,
			complement = EXCLUDED.complement,
			neighborhood = EXCLUDED.neighborhood,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			instagram = EXCLUDED.instagram,
			website = EXCLUDED.website,
			category = EXCLUDED.category,
			specialties = EXCLUDED.specialties,
			benefit = EXCLUDED.benefit,
			usage_rules = EXCLUDED.usage_rules,
			validity = EXCLUDED.validity,
			opening_hours = EXCLUDED.opening_hours,
			latitude = COALESCE(EXCLUDED.latitude, establishments.latitude),
			longitude = COALESCE(EXCLUDED.longitude, establishments.longitude),
			photo_url = CASE WHEN EXCLUDED.photo_url <> '' THEN EXCLUDED.photo_url ELSE establishments.photo_url END,
			rating = EXCLUDED.rating,
			rating_count = EXCLUDED.rating_count,
			updated_at = now()`

	specialties := est.Specialties
	if specialties == nil {
		specialties = []string{}
	}

	_, err := s.pool.Exec(ctx, q,
		est.Code, est.CNPJ, est.Name, est.Phone, est.WhatsApp, est.Email,
		est.CEP, est.Street, est.Number, est.Complement, est.Neighborhood, est.City, est.State,
		est.Instagram, est.Website, est.Category, specialties,
		est.Benefit, est.UsageRules, est.Validity, est.OpeningHours,
		est.Latitude, est.Longitude, est.PhotoURL, est.Rating, est.RatingCount,
	)
	if err != nil {
		return eris.Wrapf(err, "store: upsert establishment cnpj=%s", est.CNPJ)
	}
	return nil
}

// SpecialtiesByCategory returns the known specialties of one category.
func (s *Postgres) SpecialtiesByCategory(ctx context.Context, category string) ([]string, error) {
	const q = `SELECT name FROM specialties WHERE lower(category) = lower($1) ORDER BY name`

	rows, err := s.pool.Query(ctx, q, category)
	if err != nil {
		return nil, eris.Wrap(err, "store: specialties by category")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, eris.Wrap(err, "store: scan specialty")
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ListMissingCoordinates returns stored establishments that still lack
// coordinates, oldest first.
func (s *Postgres) ListMissingCoordinates(ctx context.Context, limit int) ([]model.EstablishmentRef, error) {
	const q = `
		SELECT id, name, street, number, neighborhood, city, state, cep
		FROM establishments
		WHERE latitude IS NULL OR longitude IS NULL
		ORDER BY id
		LIMIT $1`

	rows, err := s.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, eris.Wrap(err, "store: list missing coordinates")
	}
	defer rows.Close()

	var refs []model.EstablishmentRef
	for rows.Next() {
		var ref model.EstablishmentRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Street, &ref.Number,
			&ref.Neighborhood, &ref.City, &ref.State, &ref.CEP); err != nil {
			return nil, eris.Wrap(err, "store: scan establishment ref")
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// UpdateCoordinates writes sweep results back.
func (s *Postgres) UpdateCoordinates(ctx context.Context, id int64, lat, lng float64) error {
	const q = `UPDATE establishments SET latitude = $2, longitude = $3, updated_at = now() WHERE id = $1`

	tag, err := s.pool.Exec(ctx, q, id, lat, lng)
	if err != nil {
		return eris.Wrapf(err, "store: update coordinates id=%d", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("store: establishment %d not found", id)
	}
	return nil
}

// CreateRun records a new running import.
func (s *Postgres) CreateRun(ctx context.Context, run *model.ImportRun) error {
	const q = `
		INSERT INTO import_runs (id, file, status, total, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, q, run.ID, run.File, run.Status, run.Total, run.CreatedAt)
	if err != nil {
		return eris.Wrapf(err, "store: create run %s", run.ID)
	}
	return nil
}

// CompleteRun finalizes a run with its report counters.
func (s *Postgres) CompleteRun(ctx context.Context, runID, status string, report *model.ImportReport) error {
	const q = `
		UPDATE import_runs
		SET status = $2, total = $3, imported = $4, failed = $5,
			geocoded = $6, photos_found = $7, finished_at = now()
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, q, runID, status,
		report.Total, report.Imported, report.Failed, report.Geocoded, report.PhotosFound)
	if err != nil {
		return eris.Wrapf(err, "store: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("store: run %s not found", runID)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Postgres) ListRuns(ctx context.Context, limit int) ([]model.ImportRun, error) {
	const q = `
		SELECT id, file, status, total, imported, failed, geocoded, photos_found, created_at, finished_at
		FROM import_runs
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, eris.Wrap(err, "store: list runs")
	}
	defer rows.Close()

	var runs []model.ImportRun
	for rows.Next() {
		var run model.ImportRun
		if err := rows.Scan(&run.ID, &run.File, &run.Status, &run.Total, &run.Imported,
			&run.Failed, &run.Geocoded, &run.PhotosFound, &run.CreatedAt, &run.FinishedAt); err != nil {
			return nil, eris.Wrap(err, "store: scan run")
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close releases the pool.
func (s *Postgres) Close() error {
	s.pool.Close()
	return nil
}
