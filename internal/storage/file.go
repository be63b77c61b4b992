// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/facultypulse/internal/baseline"
	"github.com/tomtom215/facultypulse/internal/enrich"
	"github.com/tomtom215/facultypulse/internal/ranking"
)

// Published layout below the output root.
const (
	ProfilesDir    = "profesores_enriquecido"
	IndicesDir     = "indices"
	SubjectsDir    = "subjects"
	ListMinFile    = "list-min.json"
	ParetoFile     = "pareto.json"
	MetaFile       = "meta.json"
	BaselineFile   = "baseline.json"
	jsonExt        = ".json"
	tempFilePrefix = ".tmp-"
)

// FileSink writes indented UTF-8 JSON documents under a root directory.
// Every file is written to a temporary name and renamed into place.
type FileSink struct {
	root string
}

// NewFileSink creates the output layout under root.
func NewFileSink(root string) (*FileSink, error) {
	for _, dir := range []string{
		filepath.Join(root, ProfilesDir),
		filepath.Join(root, IndicesDir),
	} {
		if err := os.MkdirAll(dir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for published output
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	return &FileSink{root: root}, nil
}

// Name implements Sink.
func (s *FileSink) Name() string { return "files" }

// Root returns the output directory.
func (s *FileSink) Root() string { return s.root }

// WriteProfile implements Sink.
func (s *FileSink) WriteProfile(ctx context.Context, id string, p *enrich.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeJSON(filepath.Join(s.root, ProfilesDir, id+jsonExt), p)
}

// WriteIndices implements Sink. Subject leaderboards are written only when
// the indices carry them; stale leaderboards from earlier runs are removed.
func (s *FileSink) WriteIndices(ctx context.Context, idx *ranking.Indices) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Join(s.root, IndicesDir)
	if err := writeJSON(filepath.Join(dir, ListMinFile), idx.ListMin); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, ParetoFile), idx.Pareto); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, MetaFile), idx.Meta); err != nil {
		return err
	}
	if idx.Baseline != nil {
		if err := writeJSON(filepath.Join(dir, BaselineFile), idx.Baseline); err != nil {
			return err
		}
	}

	if idx.Subjects == nil {
		return nil
	}
	subjects := filepath.Join(dir, SubjectsDir)
	if err := os.RemoveAll(subjects); err != nil {
		return fmt.Errorf("clear subject indices: %w", err)
	}
	if err := os.MkdirAll(subjects, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for published output
		return fmt.Errorf("create subject directory: %w", err)
	}
	for key, board := range idx.Subjects {
		if err := writeJSON(filepath.Join(subjects, key+jsonExt), board); err != nil {
			return err
		}
	}
	return nil
}

// Profile implements Snapshot.
func (s *FileSink) Profile(ctx context.Context, id string) (*enrich.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var p enrich.Profile
	if err := readJSON(filepath.Join(s.root, ProfilesDir, id+jsonExt), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Profiles implements Snapshot. Profiles are returned in id order.
func (s *FileSink) Profiles(ctx context.Context) ([]*enrich.Profile, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, ProfilesDir))
	if err != nil {
		return nil, fmt.Errorf("read profiles directory: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, jsonExt) || strings.HasPrefix(name, tempFilePrefix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, jsonExt))
	}
	sort.Strings(ids)

	profiles := make([]*enrich.Profile, 0, len(ids))
	for _, id := range ids {
		p, err := s.Profile(ctx, id)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// Indices implements Snapshot.
func (s *FileSink) Indices(ctx context.Context) (*ranking.Indices, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := filepath.Join(s.root, IndicesDir)
	var idx ranking.Indices
	if err := readJSON(filepath.Join(dir, MetaFile), &idx.Meta); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, ListMinFile), &idx.ListMin); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, ParetoFile), &idx.Pareto); err != nil {
		return nil, err
	}
	var base baseline.Baseline
	switch err := readJSON(filepath.Join(dir, BaselineFile), &base); {
	case err == nil:
		idx.Baseline = &base
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(dir, SubjectsDir))
	if errors.Is(err, os.ErrNotExist) {
		return &idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read subject indices: %w", err)
	}
	idx.Subjects = make(map[string][]ranking.SubjectEntry, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, jsonExt) || strings.HasPrefix(name, tempFilePrefix) {
			continue
		}
		var board []ranking.SubjectEntry
		if err := readJSON(filepath.Join(dir, SubjectsDir, name), &board); err != nil {
			return nil, err
		}
		idx.Subjects[strings.TrimSuffix(name, jsonExt)] = board
	}
	return &idx, nil
}

// RetainProfiles implements Pruner.
func (s *FileSink) RetainProfiles(ctx context.Context, ids []string) error {
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id+jsonExt] = struct{}{}
	}

	dir := filepath.Join(s.root, ProfilesDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read profiles directory: %w", err)
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, ok := keep[e.Name()]; ok || e.IsDir() || !strings.HasSuffix(e.Name(), jsonExt) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("remove stale profile: %w", err)
		}
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), tempFilePrefix+"*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() //nolint:errcheck // no-op after a successful rename

	if err := tmp.Chmod(0o644); err != nil { //nolint:gosec // published documents are world-readable
		_ = tmp.Close() //nolint:errcheck // chmod error takes precedence
		return fmt.Errorf("chmod %s: %w", filepath.Base(path), err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error takes precedence
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("publish %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is built from the configured output root
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", filepath.Base(path), ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
