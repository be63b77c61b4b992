// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

// Package source loads the scraped review documents, one JSON file per
// entity, into review.Entity values.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/facultypulse/internal/metrics"
	"github.com/tomtom215/facultypulse/internal/review"
	"github.com/tomtom215/facultypulse/internal/validation"
)

// Loader produces the entities of one batch.
type Loader interface {
	Load(ctx context.Context) ([]review.Entity, error)
}

// DirLoader reads every *.json file of a directory. The entity id is the
// file stem.
type DirLoader struct {
	dir    string
	logger zerolog.Logger
}

// NewDirLoader creates a loader for dir.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewDirLoader(dir string, logger zerolog.Logger) *DirLoader {
	return &DirLoader{
		dir:    dir,
		logger: logger.With().Str("component", "source").Logger(),
	}
}

// Dir returns the directory being read.
func (l *DirLoader) Dir() string { return l.dir }

// Load reads the directory in file name order. Unreadable or invalid
// documents are logged and skipped; only a missing directory or a
// cancelled context fails the load.
func (l *DirLoader) Load(ctx context.Context) ([]review.Entity, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read source directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	entities := make([]review.Entity, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entity, err := l.loadFile(name)
		if err != nil {
			metrics.SourceSkipped.Inc()
			l.logger.Warn().Err(err).Str("file", name).Msg("skipping source document")
			continue
		}
		entities = append(entities, entity)
	}

	l.logger.Debug().Int("files", len(names)).Int("entities", len(entities)).Msg("source loaded")
	return entities, nil
}

func (l *DirLoader) loadFile(name string) (review.Entity, error) {
	data, err := os.ReadFile(filepath.Join(l.dir, name)) //nolint:gosec // name comes from ReadDir of the configured directory
	if err != nil {
		return review.Entity{}, fmt.Errorf("read file: %w", err)
	}
	return Decode(strings.TrimSuffix(name, filepath.Ext(name)), data)
}

// Decode parses one document and validates the resulting entity.
func Decode(id string, data []byte) (review.Entity, error) {
	var rec review.RawRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return review.Entity{}, fmt.Errorf("decode document: %w", err)
	}

	entity := review.Entity{ID: id, Record: rec}
	if verr := validation.ValidateStruct(&entity); verr != nil {
		return review.Entity{}, fmt.Errorf("invalid entity: %w", verr)
	}
	return entity, nil
}

// Static serves a fixed set of entities.
type Static []review.Entity

// Load returns a copy of the entities.
func (s Static) Load(ctx context.Context) ([]review.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]review.Entity, len(s))
	copy(out, s)
	return out, nil
}
