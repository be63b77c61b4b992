// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/tomtom215/facultypulse/internal/enrich"
	"github.com/tomtom215/facultypulse/internal/ranking"
)

// MemoryStore keeps everything in process memory. It implements Sink,
// Snapshot and RunStore.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]*enrich.Profile
	indices  *ranking.Indices
	runs     []RunRecord
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]*enrich.Profile)}
}

// Name implements Sink.
func (m *MemoryStore) Name() string { return "memory" }

// WriteProfile implements Sink.
func (m *MemoryStore) WriteProfile(ctx context.Context, id string, p *enrich.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[id] = p
	return nil
}

// WriteIndices implements Sink.
func (m *MemoryStore) WriteIndices(ctx context.Context, idx *ranking.Indices) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indices = idx
	return nil
}

// Profile implements Snapshot.
func (m *MemoryStore) Profile(_ context.Context, id string) (*enrich.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// Profiles implements Snapshot.
func (m *MemoryStore) Profiles(_ context.Context) ([]*enrich.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*enrich.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ProfessorID < out[b].ProfessorID })
	return out, nil
}

// Indices implements Snapshot.
func (m *MemoryStore) Indices(_ context.Context) (*ranking.Indices, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.indices == nil {
		return nil, ErrNotFound
	}
	return m.indices, nil
}

// SaveRun implements RunStore.
func (m *MemoryStore) SaveRun(_ context.Context, rec *RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, *rec)
	return nil
}

// LastRun implements RunStore.
func (m *MemoryStore) LastRun(_ context.Context) (*RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.runs) == 0 {
		return nil, ErrNotFound
	}
	rec := m.runs[len(m.runs)-1]
	return &rec, nil
}

// RetainProfiles implements Pruner.
func (m *MemoryStore) RetainProfiles(_ context.Context, ids []string) error {
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.profiles {
		if _, ok := keep[id]; !ok {
			delete(m.profiles, id)
		}
	}
	return nil
}

// Runs implements RunHistory.
func (m *MemoryStore) Runs(_ context.Context, limit int) ([]RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RunRecord, 0, len(m.runs))
	for i := len(m.runs) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, m.runs[i])
	}
	return out, nil
}
