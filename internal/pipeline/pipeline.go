package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/couchcryptid/genbank-curate/internal/domain"
	"github.com/couchcryptid/genbank-curate/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Extractor yields raw records one at a time, returning io.EOF when exhausted.
type Extractor interface {
	Next(ctx context.Context) (domain.RawRecord, error)
}

// Curator turns a raw record into an output record or a skip error.
type Curator interface {
	Curate(ctx context.Context, raw domain.RawRecord) (domain.OutputRecord, error)
}

// Loader writes one accepted record to a destination.
type Loader interface {
	Load(ctx context.Context, rec domain.OutputRecord) error
}

// LocationWriter persists the locations resolved during the run.
type LocationWriter interface {
	WriteLocations(locs []domain.LocationRecord) error
}

// LocationIndex exposes the run's resolved locations and cache counters.
type LocationIndex interface {
	Locations() []domain.LocationRecord
	CacheStats() (hits, misses int)
}

// Progress receives one tick per accepted record.
type Progress interface {
	Add(n int) error
	Finish() error
}

// MultiLoader fans each record out to every loader in order.
type MultiLoader []Loader

func (m MultiLoader) Load(ctx context.Context, rec domain.OutputRecord) error {
	for _, l := range m {
		if err := l.Load(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// Options tunes a run. The zero value reads every record and logs progress
// every 100 accepted records.
type Options struct {
	RecordLimit      int // stop after this many records are read; 0 = no limit
	ProgressInterval int
	Progress         Progress
	Clock            clockwork.Clock
}

// Summary reports what a run did.
type Summary struct {
	Read        int
	Emitted     int
	Skipped     map[string]int // by skip reason
	Locations   int
	CacheHits   int
	CacheMisses int
	Duration    time.Duration
}

// SkippedTotal returns the number of records skipped for any reason.
func (s Summary) SkippedTotal() int {
	n := 0
	for _, c := range s.Skipped {
		n += c
	}
	return n
}

// Pipeline orchestrates the extract-curate-load loop for a single run.
type Pipeline struct {
	extractor Extractor
	curator   Curator
	loader    Loader
	locations LocationWriter
	index     LocationIndex
	logger    *slog.Logger
	metrics   *observability.Metrics
	opts      Options
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, c Curator, l Loader, lw LocationWriter, index LocationIndex, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = 100
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Pipeline{
		extractor: e,
		curator:   c,
		loader:    l,
		locations: lw,
		index:     index,
		logger:    logger,
		metrics:   metrics,
		opts:      opts,
	}
}

// Run reads records until the extractor is exhausted or the record limit is
// reached, then writes the locations map. Skipped records never fail the run;
// extract, load, geocoder rejection and cancellation errors do, and leave the
// locations map unwritten.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := p.opts.Clock.Now()
	sum := Summary{Skipped: make(map[string]int)}
	p.logger.Info("curation started", "record_limit", p.opts.RecordLimit)

	for p.opts.RecordLimit == 0 || sum.Read < p.opts.RecordLimit {
		raw, err := p.extractor.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sum, fmt.Errorf("extract: %w", err)
		}
		sum.Read++
		p.metrics.RecordsRead.Inc()

		rec, err := p.curator.Curate(ctx, raw)
		if err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			if errors.Is(err, domain.ErrGeocoderRejected) {
				return sum, fmt.Errorf("geocode accession %s: %w", raw.Accession, err)
			}
			p.skip(&sum, raw, err)
			continue
		}

		if err := p.loader.Load(ctx, rec); err != nil {
			return sum, fmt.Errorf("load %s: %w", rec.Strain, err)
		}
		sum.Emitted++
		p.metrics.RecordsEmitted.Inc()
		p.tick(sum)
	}

	if p.opts.Progress != nil {
		_ = p.opts.Progress.Finish()
	}

	locs := p.index.Locations()
	if err := p.locations.WriteLocations(locs); err != nil {
		return sum, err
	}
	sum.Locations = len(locs)
	sum.CacheHits, sum.CacheMisses = p.index.CacheStats()
	sum.Duration = p.opts.Clock.Since(start)

	p.metrics.LocationsResolved.Set(float64(sum.Locations))
	p.metrics.GeocodeCache.WithLabelValues("hit").Add(float64(sum.CacheHits))
	p.metrics.GeocodeCache.WithLabelValues("miss").Add(float64(sum.CacheMisses))
	p.metrics.RunDuration.Set(sum.Duration.Seconds())

	return sum, nil
}

func (p *Pipeline) skip(sum *Summary, raw domain.RawRecord, err error) {
	reason := domain.SkipReason(err)
	sum.Skipped[reason]++
	p.metrics.RecordsSkipped.WithLabelValues(reason).Inc()

	switch {
	case errors.Is(err, domain.ErrUnparsableDate), errors.Is(err, domain.ErrGeocodeFailed):
		p.logger.Warn("skipping record", "accession", raw.Accession, "reason", reason, "error", err)
	default:
		p.logger.Debug("skipping record", "accession", raw.Accession, "reason", reason)
	}
}

func (p *Pipeline) tick(sum Summary) {
	if p.opts.Progress != nil {
		_ = p.opts.Progress.Add(1)
	}
	if sum.Emitted%p.opts.ProgressInterval == 0 {
		p.logger.Info("curation progress", "emitted", sum.Emitted, "read", sum.Read)
	}
}
