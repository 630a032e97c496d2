package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/clubelocal/partners-cli/internal/model"
)

// SQLite is the file-backed Store used for local runs without a Postgres
// instance. Single-writer semantics are enough for one CLI process.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// NewSQLite opens (or creates) the database file.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = "partners.db"
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, eris.Wrap(err, "store: open sqlite")
	}
	db.SetMaxOpenConns(1)

	zap.L().Debug("opened sqlite store", zap.String("path", path))
	return &SQLite{db: db}, nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS establishments (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
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
	specialties   TEXT NOT NULL DEFAULT '[]',
	benefit       TEXT NOT NULL DEFAULT '',
	usage_rules   TEXT NOT NULL DEFAULT '',
	validity      TEXT NOT NULL DEFAULT '',
	opening_hours TEXT NOT NULL DEFAULT '',
	latitude      REAL,
	longitude     REAL,
	photo_url     TEXT NOT NULL DEFAULT '',
	rating        REAL NOT NULL DEFAULT 0,
	rating_count  INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS code_sequence (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	last_reserved INTEGER NOT NULL DEFAULT 0
);

INSERT OR IGNORE INTO code_sequence (id, last_reserved) VALUES (1, 0);

CREATE TABLE IF NOT EXISTS specialties (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
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
	created_at   TIMESTAMP NOT NULL,
	finished_at  TIMESTAMP
);
`

// Migrate applies the schema.
func (s *SQLite) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(sqliteSchema, ";\n\n") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return eris.Wrap(err, "store: migrate sqlite")
		}
	}
	return nil
}

// ReserveCodes advances the counter by n and returns the first reserved
// value. The single-connection pool serializes writers.
func (s *SQLite) ReserveCodes(ctx context.Context, n int) (int64, error) {
	if n <= 0 {
		return 0, eris.Errorf("store: reserve count must be positive, got %d", n)
	}

	const q = `
		UPDATE code_sequence
		SET last_reserved = MAX(
			last_reserved,
			(SELECT COALESCE(MAX(CAST(code AS INTEGER)), 0)
			 FROM establishments
			 WHERE code <> '' AND code NOT GLOB '*[^0-9]*')
		) + ?
		WHERE id = 1
		RETURNING last_reserved`

	var last int64
	if err := s.db.QueryRowContext(ctx, q, n).Scan(&last); err != nil {
		return 0, eris.Wrap(err, "store: reserve codes")
	}
	return last - int64(n) + 1, nil
}

// UpsertEstablishment inserts or updates by CNPJ.
func (s *SQLite) UpsertEstablishment(ctx context.Context, est *model.Establishment) error {
	if est.CNPJ == "" {
		return eris.New("store: establishment has no cnpj")
	}

	specialties, err := json.Marshal(est.Specialties)
	if err != nil {
		return eris.Wrap(err, "store: marshal specialties")
	}
	if est.Specialties == nil {
		specialties = []byte("[]")
	}

	const q = `
		INSERT INTO establishments (
			code, cnpj, name, phone, whatsapp, email,
			cep, street, number, complement, neighborhood, city, state,
			instagram, website, category, specialties,
			benefit, usage_rules, validity, opening_hours,
			latitude, longitude, photo_url, rating, rating_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (cnpj) DO UPDATE SET
			name = excluded.name,
			phone = excluded.phone,
			whatsapp = excluded.whatsapp,
			email = excluded.email,
			cep = excluded.cep,
			street = excluded.street,
			number = excluded.number,
			complement = excluded.complement,
			neighborhood = excluded.neighborhood,
			city = excluded.city,
			state = excluded.state,
			instagram = excluded.instagram,
			website = excluded.website,
			category = excluded.category,
			specialties = excluded.specialties,
			benefit = excluded.benefit,
			usage_rules = excluded.usage_rules,
			validity = excluded.validity,
			opening_hours = excluded.opening_hours,
			latitude = COALESCE(excluded.latitude, establishments.latitude),
			longitude = COALESCE(excluded.longitude, establishments.longitude),
			photo_url = CASE WHEN excluded.photo_url <> '' THEN excluded.photo_url ELSE establishments.photo_url END,
			rating = excluded.rating,
			rating_count = excluded.rating_count,
			updated_at = CURRENT_TIMESTAMP`

	_, err = s.db.ExecContext(ctx, q,
		est.Code, est.CNPJ, est.Name, est.Phone, est.WhatsApp, est.Email,
		est.CEP, est.Street, est.Number, est.Complement, est.Neighborhood, est.City, est.State,
		est.Instagram, est.Website, est.Category, string(specialties),
		est.Benefit, est.UsageRules, est.Validity, est.OpeningHours,
		est.Latitude, est.Longitude, est.PhotoURL, est.Rating, est.RatingCount,
	)
	if err != nil {
		return eris.Wrapf(err, "store: upsert establishment cnpj=%s", est.CNPJ)
	}
	return nil
}

// SpecialtiesByCategory returns the known specialties of one category.
func (s *SQLite) SpecialtiesByCategory(ctx context.Context, category string) ([]string, error) {
	const q = `SELECT name FROM specialties WHERE lower(category) = lower(?) ORDER BY name`

	rows, err := s.db.QueryContext(ctx, q, category)
	if err != nil {
		return nil, eris.Wrap(err, "store: specialties by category")
	}
	defer rows.Close() //nolint:errcheck

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

// ListMissingCoordinates returns stored establishments without coordinates.
func (s *SQLite) ListMissingCoordinates(ctx context.Context, limit int) ([]model.EstablishmentRef, error) {
	const q = `
		SELECT id, name, street, number, neighborhood, city, state, cep
		FROM establishments
		WHERE latitude IS NULL OR longitude IS NULL
		ORDER BY id
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, eris.Wrap(err, "store: list missing coordinates")
	}
	defer rows.Close() //nolint:errcheck

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
func (s *SQLite) UpdateCoordinates(ctx context.Context, id int64, lat, lng float64) error {
	const q = `UPDATE establishments SET latitude = ?, longitude = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	res, err := s.db.ExecContext(ctx, q, lat, lng, id)
	if err != nil {
		return eris.Wrapf(err, "store: update coordinates id=%d", id)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return eris.Errorf("store: establishment %d not found", id)
	}
	return nil
}

// CreateRun records a new running import.
func (s *SQLite) CreateRun(ctx context.Context, run *model.ImportRun) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	const q = `INSERT INTO import_runs (id, file, status, total, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, run.ID, run.File, run.Status, run.Total, run.CreatedAt)
	if err != nil {
		return eris.Wrapf(err, "store: create run %s", run.ID)
	}
	return nil
}

// CompleteRun finalizes a run with its report counters.
func (s *SQLite) CompleteRun(ctx context.Context, runID, status string, report *model.ImportReport) error {
	const q = `
		UPDATE import_runs
		SET status = ?, total = ?, imported = ?, failed = ?,
			geocoded = ?, photos_found = ?, finished_at = ?
		WHERE id = ?`

	res, err := s.db.ExecContext(ctx, q, status,
		report.Total, report.Imported, report.Failed, report.Geocoded, report.PhotosFound,
		time.Now().UTC(), runID)
	if err != nil {
		return eris.Wrapf(err, "store: complete run %s", runID)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return eris.Errorf("store: run %s not found", runID)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLite) ListRuns(ctx context.Context, limit int) ([]model.ImportRun, error) {
	const q = `
		SELECT id, file, status, total, imported, failed, geocoded, photos_found, created_at, finished_at
		FROM import_runs
		ORDER BY created_at DESC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, eris.Wrap(err, "store: list runs")
	}
	defer rows.Close() //nolint:errcheck

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

// Close closes the database file.
func (s *SQLite) Close() error {
	return s.db.Close()
}
