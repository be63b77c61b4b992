// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

// Package pipeline runs one enrichment batch in two stages.
//
// Stage one loads every entity, normalizes its rows and freezes the corpus
// baseline. Stage two analyzes entities on a bounded worker pool against
// that baseline and writes each profile to the sink. After every worker has
// finished, the cross-entity indices are built and written.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/facultypulse/internal/baseline"
	"github.com/tomtom215/facultypulse/internal/enrich"
	"github.com/tomtom215/facultypulse/internal/logging"
	"github.com/tomtom215/facultypulse/internal/metrics"
	"github.com/tomtom215/facultypulse/internal/ranking"
	"github.com/tomtom215/facultypulse/internal/review"
	"github.com/tomtom215/facultypulse/internal/source"
	"github.com/tomtom215/facultypulse/internal/storage"
	"github.com/tomtom215/facultypulse/internal/textanalytics"
)

// Stage names used for metrics.
const (
	StageLoad     = "load"
	StageBaseline = "baseline"
	StageEnrich   = "enrich"
	StageIndex    = "index"
)

var (
	// ErrRunInProgress is returned when Run is called while another run is
	// still active.
	ErrRunInProgress = errors.New("a pipeline run is already in progress")

	// ErrSinkWrites is wrapped when some sink writes failed. The run still
	// completes and the indices are written.
	ErrSinkWrites = errors.New("sink writes failed")
)

// Config controls the runner.
type Config struct {
	// Workers bounds concurrent entity analyses. Zero means GOMAXPROCS.
	Workers int `koanf:"workers" validate:"min=0,max=256"`

	// SubjectIndices enables the per-subject leaderboards.
	SubjectIndices bool `koanf:"subject_indices"`

	// Prune removes stored profiles of entities absent from the batch.
	Prune bool `koanf:"prune"`
}

// DefaultConfig returns the default runner configuration.
func DefaultConfig() Config {
	return Config{SubjectIndices: true, Prune: true}
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Runner executes enrichment batches. Only one run may be active at a time.
type Runner struct {
	config   Config
	analysis *enrich.Config
	loader   source.Loader
	sink     storage.Sink
	runs     storage.RunStore
	logger   zerolog.Logger

	// analyze is analyzeSafely outside of tests.
	analyze func(*enrich.Analyzer, *entityInput) (*enrich.Profile, error)

	running atomic.Bool

	mu   sync.RWMutex
	last *storage.RunRecord
}

// NewRunner creates a runner. runs may be nil when run records are not kept.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRunner(cfg Config, analysis *enrich.Config, loader source.Loader, sink storage.Sink, runs storage.RunStore, logger zerolog.Logger) (*Runner, error) {
	if analysis == nil {
		analysis = enrich.DefaultConfig()
	}
	if err := analysis.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis config: %w", err)
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must be non-negative, got %d", cfg.Workers)
	}
	if loader == nil || sink == nil {
		return nil, errors.New("loader and sink are required")
	}

	return &Runner{
		config:   cfg,
		analysis: analysis,
		loader:   loader,
		sink:     sink,
		runs:     runs,
		logger:   logger.With().Str("component", "pipeline").Logger(),
		analyze:  analyzeSafely,
	}, nil
}

// LastRun returns the record of the most recent finished run, or nil.
func (r *Runner) LastRun() *storage.RunRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// Running reports whether a run is active.
func (r *Runner) Running() bool { return r.running.Load() }

type entityInput struct {
	id     string
	record *review.RawRecord
	rows   []review.Row
}

// Run executes one batch. A cancelled context stops scheduling further
// entities and the run returns the context error.
func (r *Runner) Run(ctx context.Context) (rec *storage.RunRecord, err error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer r.running.Store(false)

	rec = &storage.RunRecord{RunID: logging.NewRunID(), StartedAt: time.Now().UTC()}
	ctx = logging.ContextWithRunID(ctx, rec.RunID)
	logger := r.logger.With().Str("run_id", rec.RunID).Logger()

	defer func() {
		rec.FinishedAt = time.Now().UTC()
		if err != nil {
			rec.Error = err.Error()
		}
		metrics.RecordPipelineRun(rec.Duration(), err)
		r.finish(ctx, rec, &logger)
	}()

	logger.Info().Msg("pipeline run started")

	inputs, err := r.load(ctx)
	if err != nil {
		return rec, err
	}
	rec.Entities = len(inputs)

	base, err := r.buildBaseline(inputs)
	if err != nil {
		return rec, err
	}

	analysis := *r.analysis
	if analysis.Now == nil {
		analysis.Now = enrich.FixedClock(rec.StartedAt)
	}
	analyzer, err := enrich.NewAnalyzer(&analysis, base, logger)
	if err != nil {
		return rec, fmt.Errorf("create analyzer: %w", err)
	}

	profiles, sinkFailures, err := r.enrich(ctx, analyzer, inputs, rec, &logger)
	if err != nil {
		return rec, err
	}

	if err := r.publish(ctx, profiles, rec.FailedIDs, base, &analysis, rec.RunID, rec.StartedAt); err != nil {
		return rec, err
	}

	if sinkFailures > 0 {
		return rec, fmt.Errorf("%d profile writes: %w", sinkFailures, ErrSinkWrites)
	}
	return rec, nil
}

func (r *Runner) load(ctx context.Context) ([]entityInput, error) {
	start := time.Now()
	defer func() { metrics.RecordStage(StageLoad, time.Since(start)) }()

	entities, err := r.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load entities: %w", err)
	}
	sort.SliceStable(entities, func(a, b int) bool { return entities[a].ID < entities[b].ID })

	inputs := make([]entityInput, 0, len(entities))
	for i := range entities {
		if i > 0 && entities[i].ID == entities[i-1].ID {
			r.logger.Warn().Str("entity_id", entities[i].ID).Msg("duplicate entity id, keeping the first document")
			continue
		}
		rec := &entities[i].Record
		inputs = append(inputs, entityInput{id: entities[i].ID, record: rec, rows: review.Normalize(rec)})
	}
	return inputs, nil
}

func (r *Runner) buildBaseline(inputs []entityInput) (*baseline.Baseline, error) {
	start := time.Now()
	defer func() { metrics.RecordStage(StageBaseline, time.Since(start)) }()

	b := baseline.NewBuilder()
	for _, in := range inputs {
		if err := b.Add(in.rows); err != nil {
			return nil, fmt.Errorf("build baseline: %w", err)
		}
	}
	return b.Freeze(), nil
}

func (r *Runner) enrich(ctx context.Context, analyzer *enrich.Analyzer, inputs []entityInput, rec *storage.RunRecord, logger *zerolog.Logger) ([]*enrich.Profile, int, error) {
	start := time.Now()
	defer func() { metrics.RecordStage(StageEnrich, time.Since(start)) }()

	profiles := make([]*enrich.Profile, len(inputs))
	var (
		sinkFailures atomic.Int64
		mu           sync.Mutex
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.workers())

	for i := range inputs {
		if gctx.Err() != nil {
			break
		}
		in := inputs[i]
		idx := i
		g.Go(func() error {
			entityStart := time.Now()
			p, err := r.analyze(analyzer, &in)
			if err != nil {
				metrics.RecordEntity(metrics.OutcomeFailed, time.Since(entityStart))
				logger.Error().Err(err).Str("entity_id", in.id).Msg("entity analysis failed")
				mu.Lock()
				rec.Failed++
				rec.FailedIDs = append(rec.FailedIDs, in.id)
				mu.Unlock()
				return nil
			}

			mu.Lock()
			if p.HasReviews() {
				rec.Analyzed++
			} else {
				rec.NoReviews++
			}
			mu.Unlock()
			observe(p, time.Since(entityStart))
			profiles[idx] = p

			if err := r.sink.WriteProfile(gctx, in.id, p); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				sinkFailures.Add(1)
				logger.Error().Err(err).Str("entity_id", in.id).Msg("failed to write profile")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	sort.Strings(rec.FailedIDs)
	out := make([]*enrich.Profile, 0, len(profiles))
	for _, p := range profiles {
		if p != nil {
			out = append(out, p)
		}
	}
	return out, int(sinkFailures.Load()), nil
}

// analyzeSafely converts a panic inside one entity into an error.
func analyzeSafely(analyzer *enrich.Analyzer, in *entityInput) (p *enrich.Profile, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic analyzing %s: %v", in.id, rec)
		}
	}()
	return analyzer.Analyze(in.id, in.record, in.rows), nil
}

func observe(p *enrich.Profile, d time.Duration) {
	if !p.HasReviews() {
		metrics.RecordEntity(metrics.OutcomeNoReviews, d)
		return
	}
	metrics.RecordEntity(metrics.OutcomeOK, d)

	reason := ""
	if p.NLP.TopicsStatus == textanalytics.StatusDegraded {
		reason = p.NLP.TopicsReason
	}
	metrics.RecordAnalysis(p.Integrity.TrustScore, len(p.Integrity.Bursts), reason)
}

func (r *Runner) publish(ctx context.Context, profiles []*enrich.Profile, failed []string, base *baseline.Baseline, analysis *enrich.Config, runID string, generated time.Time) error {
	start := time.Now()
	defer func() { metrics.RecordStage(StageIndex, time.Since(start)) }()

	idx := ranking.Build(profiles, base, ranking.Options{
		RunID:       runID,
		GeneratedAt: generated,
		Params: ranking.Params{
			HalfLifeMonths:   analysis.HalfLifeMonths,
			BayesK:           analysis.BayesK,
			WilsonConfidence: analysis.WilsonConfidence,
		},
		SubjectIndices: r.config.SubjectIndices,
	})
	if err := r.sink.WriteIndices(ctx, idx); err != nil {
		return fmt.Errorf("write indices: %w", err)
	}

	if !r.config.Prune {
		return nil
	}
	pruner, ok := r.sink.(storage.Pruner)
	if !ok {
		return nil
	}
	if err := pruner.RetainProfiles(ctx, retainedIDs(profiles, failed)); err != nil {
		return fmt.Errorf("prune profiles: %w", err)
	}
	return nil
}

func (r *Runner) finish(ctx context.Context, rec *storage.RunRecord, logger *zerolog.Logger) {
	r.mu.Lock()
	r.last = rec
	r.mu.Unlock()

	event := logger.Info()
	if rec.Error != "" {
		event = logger.Error().Str("error", rec.Error)
	}
	event.
		Int("entities", rec.Entities).
		Int("analyzed", rec.Analyzed).
		Int("no_reviews", rec.NoReviews).
		Int("failed", rec.Failed).
		Dur("duration", rec.Duration()).
		Msg("pipeline run finished")

	if r.runs == nil {
		return
	}
	// The run record is saved even when ctx was cancelled.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := r.runs.SaveRun(saveCtx, rec); err != nil {
		logger.Warn().Err(err).Msg("failed to save run record")
	}
}

// retainedIDs lists the entities whose stored profiles survive pruning: the
// ones published by this run plus the ones whose analysis failed, which
// keep their last good profile.
func retainedIDs(profiles []*enrich.Profile, failed []string) []string {
	ids := make([]string, 0, len(profiles)+len(failed))
	for _, p := range profiles {
		ids = append(ids, p.ProfessorID)
	}
	return append(ids, failed...)
}
