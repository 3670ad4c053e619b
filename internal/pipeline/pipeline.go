// Package pipeline runs one SNOTEL scrape: fetch, join, encode, diff against
// the previous snapshot and publish what is new.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/snotel-shef-etl/internal/adapter/snapshot"
	"github.com/couchcryptid/snotel-shef-etl/internal/domain"
	"github.com/couchcryptid/snotel-shef-etl/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const (
	outcomeSuccess    = "success"
	outcomeError      = "error"
	outcomeLookupMiss = "lookup_miss"
)

// ObservationFetcher returns readings for one batch of stations.
type ObservationFetcher interface {
	FetchObservations(ctx context.Context, triplets []domain.StationTriplet, q domain.ObservationQuery) ([]domain.RawObservation, error)
}

// MetadataFetcher returns time zone and publish id for one batch of stations.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, triplets []domain.StationTriplet) ([]domain.StationMeta, error)
}

// SnapshotStore persists snapshot files as lines.
type SnapshotStore interface {
	Exists(path string) (bool, error)
	ReadLines(path string) ([]string, error)
	WriteLines(path string, lines []string) error
	AppendLines(path string, lines []string) error
	Copy(src, dst string) error
	Remove(path string) error
	Dedupe(path string) error
}

// DeltaPublisher hands a published delta to a downstream consumer.
type DeltaPublisher interface {
	Publish(ctx context.Context, delta domain.PublishedDelta) error
}

// Deps are the collaborators of a Pipeline. Publisher may be nil.
type Deps struct {
	Observations ObservationFetcher
	Metadata     MetadataFetcher
	Store        SnapshotStore
	Publisher    DeltaPublisher
	Stations     []domain.StationRef
	Clock        clockwork.Clock
	Logger       *slog.Logger
	Metrics      *observability.Metrics
}

// Options are the fixed settings of every run.
type Options struct {
	Format      domain.Format
	ProductID   string
	SourceCode  string
	NetworkCode string
	MaxCallIDs  int
	StateDir    string
	PublishDir  string
}

// Request selects what one run scrapes.
type Request struct {
	Selector string
	Elements []string
	Duration domain.Duration
	Back     int
}

// Result reports what one run did.
type Result struct {
	RunID          string
	Stations       int
	Observations   int
	Records        int
	Skipped        int
	Dropped        int
	DeltaPath      string
	PublishedLines int
	LookupMiss     bool
}

// Pipeline orchestrates scrape runs.
type Pipeline struct {
	deps  Deps
	opts  Options
	ready atomic.Bool

	mu      sync.Mutex
	lastRun *domain.RunSummary
}

// New creates a Pipeline. A nil Clock defaults to the real clock.
func New(deps Deps, opts Options) *Pipeline {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if opts.NetworkCode == "" {
		opts.NetworkCode = domain.DefaultNetwork
	}
	return &Pipeline{deps: deps, opts: opts}
}

// CheckReadiness returns nil once a run has completed successfully.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// LastRun returns the summary of the most recent run, if any.
func (p *Pipeline) LastRun() (domain.RunSummary, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastRun == nil {
		return domain.RunSummary{}, false
	}
	return *p.lastRun, true
}

// Run performs one scrape. A selector that matches no station is logged and
// reported through Result.LookupMiss with a nil error; every other failure
// aborts the run.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	runID := uuid.NewString()
	logger := p.deps.Logger.With("run_id", runID)
	start := p.deps.Clock.Now()

	res, err := p.run(ctx, logger, req)
	res.RunID = runID

	elapsed := p.deps.Clock.Since(start)
	p.deps.Metrics.RunDuration.Observe(elapsed.Seconds())

	outcome := outcomeSuccess
	switch {
	case err != nil:
		outcome = outcomeError
		logger.Error("run failed", "error", err, "duration", elapsed)
	case res.LookupMiss:
		outcome = outcomeLookupMiss
	default:
		p.ready.Store(true)
		p.deps.Metrics.LastSuccess.Set(float64(p.deps.Clock.Now().Unix()))
		logger.Info("run complete",
			"stations", res.Stations,
			"records", res.Records,
			"delta", res.DeltaPath,
			"published_lines", res.PublishedLines,
			"duration", elapsed,
		)
	}
	p.deps.Metrics.RunsTotal.WithLabelValues(outcome).Inc()
	p.recordRun(res, outcome, start, err)

	return res, err
}

func (p *Pipeline) run(ctx context.Context, logger *slog.Logger, req Request) (Result, error) {
	var res Result

	enc, err := domain.NewEncoder(p.opts.Format, domain.EncoderOptions{
		ProductID:  p.opts.ProductID,
		SourceCode: p.opts.SourceCode,
		Duration:   req.Duration,
	})
	if err != nil {
		return res, err
	}

	triplets, err := domain.SelectStations(p.deps.Stations, req.Selector, p.opts.NetworkCode)
	if errors.Is(err, domain.ErrLookupMiss) {
		logger.Info("no station matches selector, nothing to do", "selector", req.Selector)
		res.LookupMiss = true
		return res, nil
	}
	if err != nil {
		return res, err
	}
	res.Stations = len(triplets)
	p.deps.Metrics.StationsRequested.Add(float64(len(triplets)))

	records, err := p.collect(ctx, logger, triplets, req, &res)
	if err != nil {
		return res, err
	}

	lines, skipped := enc.Encode(records)
	res.Records = len(lines)
	res.Skipped = skipped
	p.deps.Metrics.RecordsSkipped.Add(float64(skipped))
	if skipped > 0 {
		logger.Warn("records skipped during encoding", "count", skipped)
	}

	return p.publish(ctx, logger, enc, req.Duration, lines, res)
}

// collect fetches and joins every batch, concatenating records in batch order.
func (p *Pipeline) collect(ctx context.Context, logger *slog.Logger, triplets []domain.StationTriplet, req Request, res *Result) ([]domain.NormalizedRecord, error) {
	batches, err := domain.Batch(triplets, p.opts.MaxCallIDs)
	if err != nil {
		return nil, err
	}

	query := domain.ObservationQuery{Elements: req.Elements, Duration: req.Duration, Back: req.Back}
	var records []domain.NormalizedRecord
	for i, batch := range batches {
		obs, err := p.deps.Observations.FetchObservations(ctx, batch, query)
		if err != nil {
			return nil, fmt.Errorf("fetch observations batch %d: %w", i, err)
		}
		metas, err := p.deps.Metadata.FetchMetadata(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("fetch metadata batch %d: %w", i, err)
		}

		joined, dropped := domain.Join(obs, domain.IndexMetadata(metas))
		records = append(records, joined...)
		res.Observations += len(obs)
		res.Dropped += dropped

		p.deps.Metrics.ObservationsFetched.Add(float64(len(obs)))
		p.deps.Metrics.RecordsDropped.Add(float64(dropped))
		logger.Debug("batch fetched",
			"batch", i,
			"stations", len(batch),
			"observations", len(obs),
			"dropped", dropped,
		)
	}
	return records, nil
}

// publish writes the new snapshot, derives the delta against the last one,
// promotes new to last and hands the delta to the publisher.
func (p *Pipeline) publish(ctx context.Context, logger *slog.Logger, enc *domain.Encoder, duration domain.Duration, lines []string, res Result) (Result, error) {
	store := p.deps.Store
	now := p.deps.Clock.Now()
	paths := snapshot.NewPaths(p.opts.StateDir, p.opts.PublishDir, duration, enc.Extension(), now)
	header := enc.Header(now)

	if err := store.WriteLines(paths.New, append(append([]string{}, header...), lines...)); err != nil {
		return res, err
	}

	hasBaseline, err := store.Exists(paths.Last)
	if err != nil {
		return res, err
	}

	var delta domain.Delta
	if hasBaseline {
		baseline, err := store.ReadLines(paths.Last)
		if err != nil {
			return res, err
		}
		delta = domain.ComputeDelta(body(baseline, enc.HeaderLines()), true, lines)
		if err := store.WriteLines(paths.Delta, header); err != nil {
			return res, err
		}
		if delta.Publish {
			err = store.AppendLines(paths.Delta, delta.Lines)
		} else {
			logger.Info("delta below publish threshold, discarding", "lines", len(delta.Lines))
			p.deps.Metrics.DeltasDiscarded.Inc()
			err = store.Remove(paths.Delta)
		}
		if err != nil {
			return res, err
		}
	} else {
		logger.Info("no previous snapshot, publishing full snapshot", "last", paths.Last)
		delta = domain.ComputeDelta(nil, false, lines)
		if err := store.Copy(paths.New, paths.Delta); err != nil {
			return res, err
		}
	}

	var published []string
	if delta.Publish {
		if err := store.Dedupe(paths.Delta); err != nil {
			return res, err
		}
		if published, err = store.ReadLines(paths.Delta); err != nil {
			return res, err
		}
		res.DeltaPath = paths.Delta
		res.PublishedLines = len(body(published, enc.HeaderLines()))
		p.deps.Metrics.LinesPublished.Add(float64(res.PublishedLines))
	}

	if err := store.Copy(paths.New, paths.Last); err != nil {
		return res, err
	}

	if delta.Publish && p.deps.Publisher != nil {
		err := p.deps.Publisher.Publish(ctx, domain.PublishedDelta{
			Name:      filepath.Base(paths.Delta),
			Duration:  duration,
			Format:    enc.Format(),
			Lines:     published,
			CreatedAt: now,
		})
		if err != nil {
			return res, err
		}
	}

	return res, nil
}

func (p *Pipeline) recordRun(res Result, outcome string, start time.Time, runErr error) {
	summary := &domain.RunSummary{
		RunID:          res.RunID,
		StartedAt:      start,
		FinishedAt:     p.deps.Clock.Now(),
		Outcome:        outcome,
		Stations:       res.Stations,
		Records:        res.Records,
		DeltaPath:      res.DeltaPath,
		PublishedLines: res.PublishedLines,
	}
	if runErr != nil {
		summary.Error = runErr.Error()
	}

	p.mu.Lock()
	p.lastRun = summary
	p.mu.Unlock()
}

// body drops the fixed header lines of a snapshot.
func body(lines []string, headerLines int) []string {
	if len(lines) <= headerLines {
		return nil
	}
	return lines[headerLines:]
}
