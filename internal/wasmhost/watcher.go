// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package wasmhost

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/tomtom215/uranographus/internal/logging"
)

// Watcher reloads the module when its file changes on disk. The parent
// directory is watched rather than the file itself because most build
// tools replace the output by rename, which drops a file-level watch.
type Watcher struct {
	host *Host
	log  zerolog.Logger
}

// NewWatcher creates a watcher for the host's module path.
func NewWatcher(host *Host) *Watcher {
	return &Watcher{
		host: host,
		log:  logging.With().Str("component", "wasm-watcher").Logger(),
	}
}

func (w *Watcher) String() string { return "wasm-watcher" }

// Serve watches until ctx is cancelled, reloading on each change to the
// module file. A failed reload is logged and the previous module stays
// in service.
func (w *Watcher) Serve(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("wasm watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.host.Path())
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.log.Info().Str("module", w.host.Path()).Msg("watching wasm module")

	target := filepath.Clean(w.host.Path())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("wasm watcher: event channel closed")
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := w.host.Reload(ctx); err != nil {
				w.log.Warn().Err(err).Msg("wasm reload failed, previous module kept")
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("wasm watcher: error channel closed")
			}
			w.log.Warn().Err(err).Msg("wasm watch error")
		}
	}
}
