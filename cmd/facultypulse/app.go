// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/tomtom215/facultypulse/internal/config"
	"github.com/tomtom215/facultypulse/internal/logging"
	"github.com/tomtom215/facultypulse/internal/pipeline"
	"github.com/tomtom215/facultypulse/internal/source"
	"github.com/tomtom215/facultypulse/internal/storage"
)

// app holds the components shared by the run and serve commands.
type app struct {
	runner   *pipeline.Runner
	snapshot storage.Snapshot
	runs     storage.RunStore
	history  storage.RunHistory
	duck     *storage.DuckDBStore
	closers  []io.Closer
}

// buildApp opens the configured stores and wires the pipeline to them.
// The snapshot read by the API is the badger store when enabled, otherwise
// an in-memory copy of the last publication.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}
	var sinks storage.MultiSink

	if cfg.Output.Enabled {
		files, err := storage.NewFileSink(cfg.Output.Dir)
		if err != nil {
			return nil, fmt.Errorf("open output directory: %w", err)
		}
		sinks = append(sinks, files)
	}

	if cfg.Store.Badger.Enabled {
		bs, err := storage.OpenBadger(cfg.Store.Badger.ToStorage(), logging.Logger())
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, bs)
		sinks = append(sinks, bs)
		a.snapshot, a.runs, a.history = bs, bs, bs
	} else {
		mem := storage.NewMemoryStore()
		sinks = append(sinks, mem)
		a.snapshot, a.runs, a.history = mem, mem, mem
	}

	if cfg.Store.DuckDB.Enabled {
		duck, err := storage.OpenDuckDB(ctx, cfg.Store.DuckDB.Path, logging.Logger())
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, duck)
		sinks = append(sinks, duck)
		a.duck = duck
	}

	loader := source.NewDirLoader(cfg.Source.Dir, logging.Logger())
	runner, err := pipeline.NewRunner(cfg.Pipeline, cfg.Analysis.ToEnrich(), loader, sinks, a.runs, logging.Logger())
	if err != nil {
		a.close()
		return nil, fmt.Errorf("create pipeline: %w", err)
	}
	a.runner = runner

	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	logging.Info().
		Str("source", cfg.Source.Dir).
		Strs("sinks", names).
		Int("workers", cfg.Pipeline.Workers).
		Msg("components initialized")
	return a, nil
}

// close releases stores in reverse order of opening.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			logging.Error().Err(err).Msg("error closing store")
		}
	}
	a.closers = nil
}
