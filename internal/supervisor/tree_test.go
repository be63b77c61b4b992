// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewTree_Defaults(t *testing.T) {
	t.Parallel()

	tree := NewTree(testLogger(), TreeConfig{})
	if tree.Root() == nil {
		t.Fatal("root supervisor should not be nil")
	}
	if got, want := tree.Config(), DefaultTreeConfig(); got != want {
		t.Errorf("expected defaults %+v, got %+v", want, got)
	}

	custom := NewTree(testLogger(), TreeConfig{FailureBackoff: time.Second})
	if custom.Config().FailureBackoff != time.Second {
		t.Errorf("expected backoff 1s, got %v", custom.Config().FailureBackoff)
	}
}

func TestTree_StartsBothLayers(t *testing.T) {
	t.Parallel()

	tree := NewTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})
	batch := NewMockService("mock-batch", 0)
	api := NewMockService("mock-api", 0)
	tree.AddPipelineService(batch)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	for _, svc := range []*MockService{batch, api} {
		select {
		case <-svc.Started():
		case <-time.After(2 * time.Second):
			t.Fatalf("%s was not started", svc)
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("tree did not shut down in time")
	}
}

func TestTree_RestartsFailingService(t *testing.T) {
	t.Parallel()

	tree := NewTree(testLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})
	flaky := NewMockService("flaky", 2)
	steady := NewMockService("steady", 0)
	tree.AddPipelineService(flaky)
	tree.AddAPIService(steady)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	for i := 0; i < 3; i++ {
		select {
		case <-flaky.Started():
		case <-ctx.Done():
			t.Fatalf("flaky service started %d times, want 3", flaky.StartCount())
		}
	}
	if steady.StartCount() != 1 {
		t.Errorf("expected the api layer untouched, got %d starts", steady.StartCount())
	}

	cancel()
	<-errCh
}
