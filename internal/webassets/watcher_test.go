// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package webassets

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherInvalidatesOnWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "atlas.css")
	if err := os.WriteFile(file, []byte("v1"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if a, _ := s.Lookup("/atlas.css"); !bytes.Equal(a.Body, []byte("v1")) {
		t.Fatal("priming lookup failed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- NewWatcher(s).Serve(ctx) }()

	// Give the watcher a moment to register before mutating the file.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(file, []byte("v2"), 0o600); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if a, _ := s.Lookup("/atlas.css"); bytes.Equal(a.Body, []byte("v2")) {
			cancel()
			<-done
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("watcher never invalidated the override cache")
}

func TestWatcherStopsOnCancel(t *testing.T) {
	t.Parallel()

	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewWatcher(s).Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("watcher did not stop on cancel")
	}
}

func TestWatcherString(t *testing.T) {
	t.Parallel()

	s, _ := NewStore("")
	if got := NewWatcher(s).String(); got != "asset-watcher" {
		t.Errorf("String() = %q, want asset-watcher", got)
	}
}
