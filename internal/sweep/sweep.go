// Package sweep implements the post-import reconciliation pass: stored
// establishments still missing coordinates are re-geocoded one at a time,
// under a stricter rate limit than the main import.
package sweep

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/clubelocal/partners-cli/internal/model"
	"github.com/clubelocal/partners-cli/internal/store"
	"github.com/clubelocal/partners-cli/pkg/geocode"
)

// Status holds the sweep's running counters. Read while the sweep advances.
type Status struct {
	Total     int  `json:"total"`
	Processed int  `json:"processed"`
	Succeeded int  `json:"succeeded"`
	Failed    int  `json:"failed"`
	Running   bool `json:"running"`
}

// Sweeper geocodes stored records that are missing coordinates. A Sweeper
// is good for one Run.
type Sweeper struct {
	store store.Store
	geo   geocode.Client
	limit int
	delay time.Duration

	mu     sync.Mutex
	status Status
	done   chan struct{}
}

// New creates a Sweeper. limit caps how many records one sweep picks up;
// delay is the pause between records.
func New(st store.Store, geo geocode.Client, limit int, delay time.Duration) *Sweeper {
	if limit <= 0 {
		limit = 500
	}
	return &Sweeper{
		store: st,
		geo:   geo,
		limit: limit,
		delay: delay,
		done:  make(chan struct{}),
	}
}

// Run executes the sweep to completion. Individual failures only bump the
// failure counter; the sweep itself never errors. Cancellation stops
// between records.
func (s *Sweeper) Run(ctx context.Context) {
	defer close(s.done)

	log := zap.L().Named("sweep")

	refs, err := s.store.ListMissingCoordinates(ctx, s.limit)
	if err != nil {
		log.Warn("could not list records missing coordinates", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.status = Status{Total: len(refs), Running: true}
	s.mu.Unlock()

	if len(refs) == 0 {
		s.setRunning(false)
		log.Info("no records missing coordinates")
		return
	}

	log.Info("sweep started", zap.Int("records", len(refs)))

	for i, ref := range refs {
		if ctx.Err() != nil {
			log.Info("sweep canceled", zap.Int("processed", i))
			break
		}

		ok := s.geocodeOne(ctx, ref)

		s.mu.Lock()
		s.status.Processed++
		if ok {
			s.status.Succeeded++
		} else {
			s.status.Failed++
		}
		s.mu.Unlock()

		if i < len(refs)-1 && s.delay > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(s.delay):
			}
		}
	}

	s.setRunning(false)

	st := s.Status()
	log.Info("sweep finished",
		zap.Int("processed", st.Processed),
		zap.Int("succeeded", st.Succeeded),
		zap.Int("failed", st.Failed))
}

func (s *Sweeper) geocodeOne(ctx context.Context, ref model.EstablishmentRef) bool {
	loc, _ := s.geo.Geocode(ctx, geocode.AddressInput{
		Street:       ref.Street,
		Number:       ref.Number,
		Neighborhood: ref.Neighborhood,
		City:         ref.City,
		State:        ref.State,
		CEP:          ref.CEP,
	})
	if !loc.Matched {
		return false
	}

	if err := s.store.UpdateCoordinates(ctx, ref.ID, loc.Latitude, loc.Longitude); err != nil {
		zap.L().Named("sweep").Warn("coordinate write-back failed",
			zap.Int64("id", ref.ID), zap.Error(err))
		return false
	}
	return true
}

func (s *Sweeper) setRunning(running bool) {
	s.mu.Lock()
	s.status.Running = running
	s.mu.Unlock()
}

// Status returns a snapshot of the counters.
func (s *Sweeper) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Done is closed when Run returns.
func (s *Sweeper) Done() <-chan struct{} {
	return s.done
}
