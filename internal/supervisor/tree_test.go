// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package supervisor

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

// countingService runs until its context is cancelled, counting starts.
type countingService struct {
	name   string
	starts atomic.Int32
}

func (s *countingService) Serve(ctx context.Context) error {
	s.starts.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func (s *countingService) String() string { return s.name }

func newTestTree(t *testing.T) *Tree {
	t.Helper()
	tree, err := NewTree(slog.Default(), DefaultTreeConfig())
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}
	return tree
}

func TestDefaultTreeConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultTreeConfig()
	if cfg.FailureThreshold != 5.0 {
		t.Errorf("FailureThreshold = %v, want 5.0", cfg.FailureThreshold)
	}
	if cfg.FailureBackoff != 15*time.Second {
		t.Errorf("FailureBackoff = %v, want 15s", cfg.FailureBackoff)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
	}
}

func TestNewTreeAppliesDefaultsToZeroConfig(t *testing.T) {
	t.Parallel()

	tree, err := NewTree(slog.Default(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewTree: %v", err)
	}
	if tree.config.FailureThreshold != 5.0 {
		t.Errorf("FailureThreshold = %v, want defaulted 5.0", tree.config.FailureThreshold)
	}
	if tree.Root() == nil {
		t.Error("Root() is nil")
	}
}

func TestTreeRunsServicesInAllLayers(t *testing.T) {
	t.Parallel()

	tree := newTestTree(t)
	watcher := &countingService{name: "watcher"}
	engine := &countingService{name: "engine"}
	ops := &countingService{name: "ops"}
	tree.AddWatcherService(watcher)
	tree.AddEngineService(engine)
	tree.AddOpsService(ops)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if watcher.starts.Load() > 0 && engine.starts.Load() > 0 && ops.starts.Load() > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-errCh

	for _, svc := range []*countingService{watcher, engine, ops} {
		if svc.starts.Load() == 0 {
			t.Errorf("service %s never started", svc.name)
		}
	}
}

func TestTreeRestartsFailedService(t *testing.T) {
	t.Parallel()

	tree := newTestTree(t)

	flaky := &flakyService{failures: 2}
	tree.AddEngineService(flaky)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if flaky.starts.Load() >= 3 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-errCh

	if got := flaky.starts.Load(); got < 3 {
		t.Errorf("flaky service started %d times, want >= 3 (2 failures + recovery)", got)
	}
}

// flakyService fails its first N serves, then runs until cancelled.
type flakyService struct {
	failures int32
	starts   atomic.Int32
}

func (s *flakyService) Serve(ctx context.Context) error {
	n := s.starts.Add(1)
	if n <= s.failures {
		return context.DeadlineExceeded
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *flakyService) String() string { return "flaky" }
