package importer

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clubelocal/partners-cli/internal/config"
	"github.com/clubelocal/partners-cli/internal/model"
	"github.com/clubelocal/partners-cli/internal/store"
	"github.com/clubelocal/partners-cli/pkg/cep"
	"github.com/clubelocal/partners-cli/pkg/geocode"
	"github.com/clubelocal/partners-cli/pkg/places"
)

// SweepStarter is the post-import sweep as seen by the orchestrator.
type SweepStarter interface {
	Run(ctx context.Context)
}

// Runner drives one import: rows are partitioned into fixed-size batches,
// rows within a batch are enriched and written concurrently, and batches
// are separated by a delay to respect external rate limits.
type Runner struct {
	store  store.Store
	cep    cep.Client
	geo    geocode.Client
	places places.Client
	cfg    config.ImportConfig

	sweeper SweepStarter

	mu          sync.Mutex
	specialties map[string][]string
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithSweeper attaches a sweep that starts automatically once all batches
// have completed.
func WithSweeper(s SweepStarter) RunnerOption {
	return func(r *Runner) {
		r.sweeper = s
	}
}

// NewRunner creates an import Runner.
func NewRunner(st store.Store, cepClient cep.Client, geoClient geocode.Client,
	placesClient places.Client, cfg config.ImportConfig, opts ...RunnerOption) *Runner {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if cfg.CodeWidth <= 0 {
		cfg.CodeWidth = 6
	}
	if cfg.DefaultName == "" {
		cfg.DefaultName = "Estabelecimento sem nome"
	}

	r := &Runner{
		store:       st,
		cep:         cepClient,
		geo:         geoClient,
		places:      placesClient,
		cfg:         cfg,
		specialties: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes every row and returns the report. Row failures never abort
// the run; only a dead context or a failed code reservation does. When a
// sweeper is attached it is started in the background before Run returns.
func (r *Runner) Run(ctx context.Context, file string, header []string, rows [][]string) (*model.ImportReport, error) {
	runID := uuid.NewString()
	log := zap.L().With(zap.String("run_id", runID), zap.String("file", file))

	if len(rows) == 0 {
		log.Info("no data rows, nothing to import")
		// The sweep still runs so records left without coordinates by
		// earlier imports get another chance.
		if r.sweeper != nil {
			go r.sweeper.Run(ctx)
		}
		return &model.ImportReport{RunID: runID, File: file}, nil
	}

	alloc, err := NewCodeAllocator(ctx, r.store, len(rows), r.cfg.CodeWidth)
	if err != nil {
		return nil, err
	}

	run := &model.ImportRun{ID: runID, File: file, Status: model.RunStatusRunning, Total: len(rows)}
	if err := r.store.CreateRun(ctx, run); err != nil {
		return nil, err
	}

	log.Info("starting import",
		zap.Int("rows", len(rows)),
		zap.Int("batch_size", r.cfg.BatchSize),
		zap.Int64("code_base", alloc.Base()))

	resolver := NewResolver(header)
	outcomes := make([]model.RowOutcome, len(rows))

	for start := 0; start < len(rows); start += r.cfg.BatchSize {
		end := min(start+r.cfg.BatchSize, len(rows))

		g, gctx := errgroup.WithContext(ctx)
		for idx := start; idx < end; idx++ {
			g.Go(func() error {
				outcomes[idx] = r.processRow(gctx, resolver, rows[idx], idx, alloc)
				return nil
			})
		}
		g.Wait() //nolint:errcheck // row tasks never return errors

		if ctx.Err() != nil {
			report := BuildReport(runID, file, outcomes[:end])
			r.finishRun(ctx, runID, model.RunStatusFailed, report, log)
			return report, eris.Wrap(ctx.Err(), "importer: run canceled")
		}

		log.Info("batch complete",
			zap.Int("batch", start/r.cfg.BatchSize+1),
			zap.Int("processed", end),
			zap.Int("total", len(rows)))

		if end < len(rows) && r.cfg.BatchDelay() > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(r.cfg.BatchDelay()):
			}
		}
	}

	report := BuildReport(runID, file, outcomes)
	r.finishRun(ctx, runID, model.RunStatusComplete, report, log)

	log.Info("import complete",
		zap.Int("imported", report.Imported),
		zap.Int("failed", report.Failed),
		zap.Int("geocoded", report.Geocoded),
		zap.Int("photos_found", report.PhotosFound))

	if r.sweeper != nil {
		go r.sweeper.Run(ctx)
	}

	return report, nil
}

// finishRun persists the run's final state. The write survives caller
// cancellation so interrupted runs are still recorded.
func (r *Runner) finishRun(ctx context.Context, runID, status string, report *model.ImportReport, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := r.store.CompleteRun(ctx, runID, status, report); err != nil {
		log.Warn("failed to record run completion", zap.Error(err))
	}
}

// processRow runs the full per-row pipeline: normalize, enrich, write.
// Enrichment misses degrade to warnings; only a rejected write fails the row.
func (r *Runner) processRow(ctx context.Context, resolver *Resolver, record []string, idx int, alloc *CodeAllocator) model.RowOutcome {
	// Header occupies row 1 of the sheet.
	rowNumber := idx + 2

	est, warnings := buildEstablishment(resolver, record, r.cfg.DefaultName)
	est.Code = alloc.Code(idx)

	outcome := model.RowOutcome{RowNumber: rowNumber, Name: est.Name}
	warn := func(code, message string) {
		warnings = append(warnings, model.Warning{Code: code, Message: message})
	}

	if est.CEP != "" {
		addr, _ := r.cep.Lookup(ctx, est.CEP)
		if addr.Found {
			if est.Street == "" {
				est.Street = addr.Street
			}
			if est.Neighborhood == "" {
				est.Neighborhood = addr.Neighborhood
			}
			if est.City == "" {
				est.City = addr.City
			}
			if est.State == "" {
				est.State = addr.State
			}
		} else {
			warn(model.WarnAddressNotFound, "address not found for postal code "+est.CEP)
		}
	}

	if est.HasAddress() {
		loc, _ := r.geo.Geocode(ctx, geocode.AddressInput{
			Street:       est.Street,
			Number:       est.Number,
			Neighborhood: est.Neighborhood,
			City:         est.City,
			State:        est.State,
			CEP:          est.CEP,
		})
		if loc.Matched {
			est.Latitude = &loc.Latitude
			est.Longitude = &loc.Longitude
			outcome.HadGeocode = true
		} else {
			warn(model.WarnGeocodePending, "coordinates pending, address did not geocode")
		}
	} else {
		warn(model.WarnGeocodePending, "coordinates pending, address incomplete")
	}

	// Photo lookup only pays off for rows enriched enough to display.
	if est.HasAddress() && est.HasCoordinates() {
		address := est.Street
		if est.Number != "" {
			address += ", " + est.Number
		}
		photo, _ := r.places.FindPhoto(ctx, est.Name, address, est.City, est.State)
		if photo.Found {
			est.PhotoURL = photo.PhotoURL
			est.Rating = photo.Rating
			est.RatingCount = photo.RatingCount
			outcome.HadPhoto = true
		} else {
			warn(model.WarnPhotoNotFound, "no photo found for "+est.Name)
		}
	}

	if len(est.Specialties) > 0 {
		known := r.specialtiesFor(ctx, est.Category)
		kept, dropped := FilterSpecialties(est.Specialties, known)
		est.Specialties = kept
		if len(dropped) > 0 {
			warn(model.WarnSpecialtyDropped,
				"specialties not recognized for "+est.Category+": "+strings.Join(dropped, ", "))
		}
	}

	if err := r.store.UpsertEstablishment(ctx, est); err != nil {
		zap.L().Warn("row rejected by store",
			zap.Int("row", rowNumber),
			zap.String("name", est.Name),
			zap.Error(err))
		outcome.Failed = true
		outcome.Error = err.Error()
		return outcome
	}

	outcome.Warnings = warnings
	return outcome
}

// specialtiesFor returns the known-specialty list for a category, cached
// per run.
func (r *Runner) specialtiesFor(ctx context.Context, category string) []string {
	r.mu.Lock()
	if known, ok := r.specialties[category]; ok {
		r.mu.Unlock()
		return known
	}
	r.mu.Unlock()

	known, err := r.store.SpecialtiesByCategory(ctx, category)
	if err != nil {
		zap.L().Warn("specialty lookup failed", zap.String("category", category), zap.Error(err))
		return nil
	}

	r.mu.Lock()
	r.specialties[category] = known
	r.mu.Unlock()
	return known
}
