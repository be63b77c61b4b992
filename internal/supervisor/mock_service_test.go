// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// MockService implements suture.Service for tree tests. It fails a set
// number of times, then runs until canceled.
type MockService struct {
	name     string
	starts   atomic.Int32
	failures atomic.Int32
	maxFails int32
	started  chan struct{}
}

// NewMockService creates a mock that fails maxFails times before running.
func NewMockService(name string, maxFails int) *MockService {
	return &MockService{name: name, maxFails: int32(maxFails), started: make(chan struct{}, 16)}
}

// Serve implements suture.Service.
func (m *MockService) Serve(ctx context.Context) error {
	m.starts.Add(1)
	select {
	case m.started <- struct{}{}:
	default:
	}
	if m.failures.Add(1) <= m.maxFails {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

// Started is signaled on every call to Serve.
func (m *MockService) Started() <-chan struct{} { return m.started }

// StartCount returns how many times Serve was called.
func (m *MockService) StartCount() int32 { return m.starts.Load() }

func (m *MockService) String() string { return m.name }
