// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package webassets

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/tomtom215/uranographus/internal/logging"
)

// Watcher invalidates the store's override cache when files under the
// override directory change. It implements suture.Service so the
// supervisor restarts it if the underlying inotify watch fails.
type Watcher struct {
	store *Store
	log   zerolog.Logger
}

// NewWatcher creates a watcher for the store's override directory. The
// store must have been built with a non-empty override dir.
func NewWatcher(store *Store) *Watcher {
	return &Watcher{
		store: store,
		log:   logging.With().Str("component", "asset-watcher").Logger(),
	}
}

func (w *Watcher) String() string { return "asset-watcher" }

// Serve watches the override directory until ctx is cancelled.
func (w *Watcher) Serve(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("asset watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.store.OverrideDir()); err != nil {
		return fmt.Errorf("watch %s: %w", w.store.OverrideDir(), err)
	}
	w.log.Info().Str("dir", w.store.OverrideDir()).Msg("watching asset overrides")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("asset watcher: event channel closed")
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.log.Debug().Str("file", ev.Name).Str("op", ev.Op.String()).Msg("asset changed")
			w.store.Invalidate()
		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("asset watcher: error channel closed")
			}
			w.log.Warn().Err(err).Msg("asset watch error")
		}
	}
}
