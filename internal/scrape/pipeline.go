// Package scrape discovers job listings and enriches them concurrently.
package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"jobscout-engine/internal/classify"
	"jobscout-engine/internal/domain"
	"jobscout-engine/internal/scrape/backend"
	"jobscout-engine/internal/telemetry"
)

var tracer = telemetry.GetTracer("jobscout-engine/scrape")

type Options struct {
	Discover DiscoverOptions
	Enrich   EnrichOptions
	// Concurrency bounds in-flight enrichments. 0 starts all at once.
	Concurrency int
	// RunTimeout bounds a whole run. 0 means no bound beyond the caller's
	// context.
	RunTimeout time.Duration
}

// Observer is notified while a run progresses. RecordSettled is called from
// enrichment goroutines and must be safe for concurrent use.
type Observer interface {
	RunStarted(runID, listingURL string, candidates int)
	RecordSettled(runID string, index int, rec domain.DetailRecord)
}

// RecordFunc adapts a plain callback into an Observer.
type RecordFunc func(index int, rec domain.DetailRecord)

func (RecordFunc) RunStarted(string, string, int) {}

func (f RecordFunc) RecordSettled(_ string, index int, rec domain.DetailRecord) { f(index, rec) }

type nopObserver struct{}

func (nopObserver) RunStarted(string, string, int) {}
func (nopObserver) RecordSettled(string, int, domain.DetailRecord) {}

// Pipeline runs discovery followed by one enrichment per candidate.
type Pipeline struct {
	backend    backend.Backend
	classifier *classify.Classifier
	opts       Options
	logger     *zap.Logger
}

func New(b backend.Backend, cls *classify.Classifier, opts Options, logger *zap.Logger) *Pipeline {
	if cls == nil {
		cls = classify.New(nil)
	}
	return &Pipeline{
		backend:    b,
		classifier: cls,
		opts:       opts,
		logger:     logger.Named("pipeline"),
	}
}

func (p *Pipeline) Backend() string { return p.backend.Name() }

// Run discovers candidates on listingURL and returns exactly one record per
// candidate, in discovery order. It fails only when the listing cannot be
// discovered.
func (p *Pipeline) Run(ctx context.Context, listingURL string) ([]domain.DetailRecord, error) {
	return p.RunObserved(ctx, listingURL, nil)
}

func (p *Pipeline) RunObserved(ctx context.Context, listingURL string, obs Observer) ([]domain.DetailRecord, error) {
	if obs == nil {
		obs = nopObserver{}
	}
	runID := uuid.NewString()
	log := p.logger.With(zap.String("run_id", runID), zap.String("backend", p.backend.Name()))
	start := time.Now()

	if p.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.RunTimeout)
		defer cancel()
	}

	ctx, span := tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		telemetry.String("run.id", runID),
		telemetry.String("listing.url", listingURL),
		telemetry.String("backend", p.backend.Name()),
	))
	defer span.End()

	sess, err := p.backend.Open(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open backend")
		return nil, newDiscoveryError(listingURL, fmt.Errorf("open %s backend: %w", p.backend.Name(), err))
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			log.Warn("close backend session", zap.Error(cerr))
		}
	}()

	candidates, err := NewDiscoverer(sess, p.opts.Discover, p.logger).Discover(ctx, listingURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "discovery failed")
		log.Error("discovery failed", zap.String("url", listingURL), zap.Error(err))
		return nil, err
	}
	obs.RunStarted(runID, listingURL, len(candidates))

	out := make([]domain.DetailRecord, len(candidates))
	enricher := NewEnricher(sess, p.opts.Enrich, p.classifier, p.logger)

	var g errgroup.Group
	if p.opts.Concurrency > 0 {
		g.SetLimit(p.opts.Concurrency)
	}
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			var rec domain.DetailRecord
			if ctx.Err() != nil {
				// run deadline passed before this task got a slot
				rec = domain.FailedRecord(c)
			} else {
				rec = enricher.Enrich(ctx, c)
			}
			out[i] = rec
			obs.RecordSettled(runID, i, rec)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range out {
		if r.Status == domain.StatusFailed {
			failed++
		}
	}
	span.SetAttributes(
		telemetry.Int("records", len(out)),
		telemetry.Int("failed", failed),
	)
	log.Info("run finished",
		zap.String("url", listingURL),
		zap.Int("records", len(out)),
		zap.Int("failed", failed),
		zap.Duration("took", time.Since(start)),
	)
	return out, nil
}
