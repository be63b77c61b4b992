// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

// Package storage persists enriched profiles, the cross-entity indices and
// run records.
//
// Sinks receive pipeline output. A FileSink writes the published JSON
// layout, a BadgerStore keeps the latest snapshot for the API, and a
// DuckDBStore loads the listing into tables for analytical queries.
// MultiSink fans writes out to several sinks at once.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/facultypulse/internal/enrich"
	"github.com/tomtom215/facultypulse/internal/metrics"
	"github.com/tomtom215/facultypulse/internal/ranking"
)

// ErrNotFound is returned when a profile, the indices or a run record is
// not stored.
var ErrNotFound = errors.New("not found")

// Sink receives the output of a pipeline run.
type Sink interface {
	Name() string
	WriteProfile(ctx context.Context, id string, p *enrich.Profile) error
	WriteIndices(ctx context.Context, idx *ranking.Indices) error
}

// Snapshot reads back the latest published output.
type Snapshot interface {
	Profile(ctx context.Context, id string) (*enrich.Profile, error)
	Profiles(ctx context.Context) ([]*enrich.Profile, error)
	Indices(ctx context.Context) (*ranking.Indices, error)
}

// RunRecord summarizes one pipeline run.
type RunRecord struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Entities   int       `json:"entities"`
	Analyzed   int       `json:"analyzed"`
	NoReviews  int       `json:"no_reviews"`
	Failed     int       `json:"failed"`
	FailedIDs  []string  `json:"failed_ids,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Duration returns how long the run took.
func (r *RunRecord) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunStore persists run records.
type RunStore interface {
	SaveRun(ctx context.Context, rec *RunRecord) error
	LastRun(ctx context.Context) (*RunRecord, error)
}

// RunHistory lists past runs, newest first. A non-positive limit returns
// every run.
type RunHistory interface {
	Runs(ctx context.Context, limit int) ([]RunRecord, error)
}

// Pruner removes profiles of entities that are no longer in the batch.
type Pruner interface {
	RetainProfiles(ctx context.Context, ids []string) error
}

// MultiSink writes to every sink and joins their errors. A failing sink
// does not stop the others.
type MultiSink []Sink

// Name implements Sink.
func (m MultiSink) Name() string { return "multi" }

// WriteProfile implements Sink.
func (m MultiSink) WriteProfile(ctx context.Context, id string, p *enrich.Profile) error {
	var errs []error
	for _, s := range m {
		err := s.WriteProfile(ctx, id, p)
		metrics.RecordSinkWrite(s.Name(), "profile", err)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// WriteIndices implements Sink.
func (m MultiSink) WriteIndices(ctx context.Context, idx *ranking.Indices) error {
	var errs []error
	for _, s := range m {
		err := s.WriteIndices(ctx, idx)
		metrics.RecordSinkWrite(s.Name(), "indices", err)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// RetainProfiles prunes every sink that supports it.
func (m MultiSink) RetainProfiles(ctx context.Context, ids []string) error {
	var errs []error
	for _, s := range m {
		p, ok := s.(Pruner)
		if !ok {
			continue
		}
		if err := p.RetainProfiles(ctx, ids); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

var (
	_ Sink       = MultiSink(nil)
	_ Sink       = (*FileSink)(nil)
	_ Sink       = (*BadgerStore)(nil)
	_ Sink       = (*DuckDBStore)(nil)
	_ Sink       = (*MemoryStore)(nil)
	_ Snapshot   = (*FileSink)(nil)
	_ Snapshot   = (*BadgerStore)(nil)
	_ Snapshot   = (*MemoryStore)(nil)
	_ RunHistory = (*BadgerStore)(nil)
	_ RunHistory = (*MemoryStore)(nil)
	_ Pruner     = MultiSink(nil)
	_ Pruner     = (*FileSink)(nil)
	_ Pruner     = (*BadgerStore)(nil)
	_ Pruner     = (*DuckDBStore)(nil)
	_ Pruner     = (*MemoryStore)(nil)
)
