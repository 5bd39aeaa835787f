// Package service orchestrates acquisition: per-body fetch → parse → fallback,
// read-through persistence, and horoscope generation over stored records.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"incident-horoscope/internal/catalog"
	"incident-horoscope/internal/fetcher"
	"incident-horoscope/internal/horoscope"
	"incident-horoscope/internal/observability"
	"incident-horoscope/internal/storage"
)

// probeDate is the fixed date used by the Horizons connectivity check.
var probeDate = time.Date(2025, time.July, 22, 0, 0, 0, 0, time.UTC)

// Options tune the assembler's pacing. The delays keep the Horizons API happy;
// acquisition is strictly sequential on purpose.
type Options struct {
	BodyDelay time.Duration
	DateDelay time.Duration
}

// Service assembles ephemeris records and serves horoscopes from them.
type Service struct {
	fetcher fetcher.EphemerisFetcher
	store   storage.RecordStore
	metrics *observability.Metrics
	clock   clockwork.Clock
	logger  zerolog.Logger
	opts    Options
}

// New constructs the service. A nil clock selects the real clock; metrics may
// be nil when observability is not wired (one-shot CLI runs).
func New(opts Options, f fetcher.EphemerisFetcher, store storage.RecordStore, metrics *observability.Metrics, clock clockwork.Clock, logger zerolog.Logger) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{
		fetcher: f,
		store:   store,
		metrics: metrics,
		clock:   clock,
		logger:  logger.With().Str("component", "service").Logger(),
		opts:    opts,
	}
}

// EnsureRecord returns the stored record for (date, location), acquiring and
// persisting it on first request. The store is authoritative once written: a
// hit never triggers re-acquisition.
func (s *Service) EnsureRecord(ctx context.Context, date time.Time, location string) (storage.EphemerisRecord, error) {
	if s.store != nil {
		record, err := s.store.GetRecord(ctx, date, location)
		if err == nil {
			s.countCache("hit")
			return record, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return storage.EphemerisRecord{}, err
		}
		s.countCache("miss")
	}

	record, err := s.AcquireRecord(ctx, date, location)
	if err != nil {
		return storage.EphemerisRecord{}, err
	}

	if s.store != nil {
		if err := s.store.UpsertRecord(ctx, record); err != nil {
			// Persistence failure is a hard failure: no partial writes,
			// the caller must not believe the record is cached.
			return storage.EphemerisRecord{}, fmt.Errorf("persist ephemeris record: %w", err)
		}
	}

	return record, nil
}

// AcquireRecord fetches all nine bodies for a date, strictly sequentially with
// the configured inter-body delay. A single body's failure never aborts the
// record: the client/parser path degrades to the synthesizer, and anything
// unexpected degrades to an error position with nil coordinates.
func (s *Service) AcquireRecord(ctx context.Context, date time.Time, location string) (storage.EphemerisRecord, error) {
	started := time.Now()

	record := storage.EphemerisRecord{
		Date:      date.UTC(),
		Location:  location,
		Positions: make(map[catalog.Body]storage.Position, len(catalog.Bodies)),
		Sources:   make(map[catalog.Body]storage.Provenance, len(catalog.Bodies)),
		CreatedAt: s.clock.Now().UTC(),
	}

	for i, body := range catalog.Bodies {
		if i > 0 {
			if err := s.wait(ctx, s.opts.BodyDelay); err != nil {
				return storage.EphemerisRecord{}, err
			}
		}

		pos := s.fetchPosition(ctx, body, date)
		record.Positions[body] = pos
		record.Sources[body] = pos.Provenance
		if pos.Provenance != storage.ProvenanceLive {
			record.UsingFallbackData = true
		}
		s.countFetch(body, pos.Provenance)
	}

	if s.metrics != nil {
		s.metrics.AcquisitionDuration.Observe(time.Since(started).Seconds())
	}

	s.logger.Info().
		Str("date", record.Date.Format("2006-01-02")).
		Str("location", location).
		Bool("using_fallback_data", record.UsingFallbackData).
		Msg("ephemeris acquisition complete")

	return record, nil
}

func (s *Service) fetchPosition(ctx context.Context, body catalog.Body, date time.Time) (pos storage.Position) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("body", body.String()).Interface("panic", r).Msg("body fetch panicked; recording error position")
			pos = storage.Position{Body: body, Provenance: storage.ProvenanceError}
		}
	}()

	coords, live := s.resolveCoordinates(ctx, body, date)
	provenance := storage.ProvenanceFallback
	if live {
		provenance = storage.ProvenanceLive
	}

	ra, dec, distance := coords.RA, coords.Dec, coords.Distance
	return storage.Position{
		Body:       body,
		RA:         &ra,
		Dec:        &dec,
		Distance:   &distance,
		Provenance: provenance,
	}
}

func (s *Service) resolveCoordinates(ctx context.Context, body catalog.Body, date time.Time) (fetcher.Coordinates, bool) {
	started := time.Now()
	raw, err := s.fetcher.FetchBody(ctx, body, date)
	if s.metrics != nil {
		s.metrics.HorizonsDuration.Observe(time.Since(started).Seconds())
	}
	if err != nil {
		kind, _ := fetcher.KindOf(err)
		s.logger.Warn().Str("body", body.String()).Str("kind", string(kind)).Err(err).Msg("horizons fetch failed, synthesizing position")
		return fetcher.Synthesize(body, date), false
	}

	coords, err := fetcher.ParseObserverTable(raw)
	if err != nil {
		s.logger.Warn().Str("body", body.String()).Msg("horizons response unparsable, synthesizing position")
		return fetcher.Synthesize(body, date), false
	}

	return coords, true
}

// DateResult is one entry of a bulk acquisition: either a record or the error
// that kept this date out, never both.
type DateResult struct {
	Date   string                   `json:"date"`
	Record *storage.EphemerisRecord `json:"record,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

// EnsureRecords processes dates strictly sequentially with the configured
// inter-date delay. One date's failure is reported inline and never aborts the
// remaining dates; only context cancellation stops the batch.
func (s *Service) EnsureRecords(ctx context.Context, dates []time.Time, location string) ([]DateResult, error) {
	results := make([]DateResult, 0, len(dates))
	for i, date := range dates {
		if i > 0 {
			if err := s.wait(ctx, s.opts.DateDelay); err != nil {
				return results, err
			}
		}

		record, err := s.EnsureRecord(ctx, date, location)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			s.logger.Error().Err(err).Str("date", date.Format("2006-01-02")).Msg("bulk date failed")
			results = append(results, DateResult{Date: date.UTC().Format("2006-01-02"), Error: err.Error()})
			continue
		}
		results = append(results, DateResult{Date: date.UTC().Format("2006-01-02"), Record: &record})
	}
	return results, nil
}

// ProbeResult reports Horizons connectivity.
type ProbeResult struct {
	Live        bool                `json:"horizons_api_working"`
	TestDate    string              `json:"test_date"`
	Coordinates fetcher.Coordinates `json:"sample_data"`
}

// Probe checks Horizons reachability with the Sun, the most reliable target.
func (s *Service) Probe(ctx context.Context) ProbeResult {
	coords, live := s.resolveCoordinates(ctx, catalog.Sun, probeDate)
	return ProbeResult{
		Live:        live,
		TestDate:    probeDate.Format("2006-01-02"),
		Coordinates: coords,
	}
}

// Horoscope generates the result for an already-stored record, returning the
// record alongside it; the date must have been fetched first
// (storage.ErrNotFound otherwise). A birth date, when given, is acquired on
// demand and feeds the personal pass.
func (s *Service) Horoscope(ctx context.Context, date time.Time, birthDate *time.Time, location string) (horoscope.Result, storage.EphemerisRecord, error) {
	if s.store == nil {
		return horoscope.Result{}, storage.EphemerisRecord{}, storage.ErrNotConfigured
	}

	record, err := s.store.GetRecord(ctx, date, location)
	if err != nil {
		return horoscope.Result{}, storage.EphemerisRecord{}, err
	}

	var birth *storage.EphemerisRecord
	if birthDate != nil {
		birthRecord, err := s.EnsureRecord(ctx, *birthDate, location)
		if err != nil {
			return horoscope.Result{}, storage.EphemerisRecord{}, fmt.Errorf("ensure birth record: %w", err)
		}
		birth = &birthRecord
	}

	result := horoscope.Generate(record, birth)
	if s.metrics != nil {
		s.metrics.HoroscopesGenerated.Inc()
	}
	return result, record, nil
}

func (s *Service) wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.clock.After(delay):
		return nil
	}
}

func (s *Service) countFetch(body catalog.Body, prov storage.Provenance) {
	if s.metrics != nil {
		s.metrics.BodyFetches.WithLabelValues(body.String(), string(prov)).Inc()
	}
}

func (s *Service) countCache(result string) {
	if s.metrics != nil {
		s.metrics.RecordCache.WithLabelValues(result).Inc()
	}
}
