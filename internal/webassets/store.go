// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package webassets

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/tomtom215/uranographus/internal/cache"
	"github.com/tomtom215/uranographus/internal/metrics"
)

//go:embed static
var embedded embed.FS

// Asset is one servable static file.
type Asset struct {
	Body        []byte
	ContentType string
}

// contentTypes maps file extensions to MIME types. Anything else is
// served as octet-stream.
var contentTypes = map[string]string{
	".html": "text/html; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".json": "application/json",
	".wasm": "application/wasm",
	".png":  "image/png",
	".svg":  "image/svg+xml",
	".ico":  "image/x-icon",
	".txt":  "text/plain; charset=utf-8",
}

// ContentTypeFor returns the MIME type for an asset path by extension.
func ContentTypeFor(name string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// overrideCacheSize bounds how many override files are held in memory;
// the embedded set is small so the frontend never comes close to it.
const overrideCacheSize = 256

// Store resolves request paths to static assets. Embedded assets are
// decoded once at construction; override-directory reads go through an
// LRU cache invalidated by the Watcher.
type Store struct {
	overrideDir string
	embeddedSet map[string]Asset
	overrides   *cache.LRUCache
}

// NewStore builds a store over the embedded assets. overrideDir may be
// empty to serve embedded content only.
func NewStore(overrideDir string) (*Store, error) {
	s := &Store{
		overrideDir: overrideDir,
		embeddedSet: make(map[string]Asset),
		overrides:   cache.NewLRUCache(overrideCacheSize, time.Hour),
	}

	err := fs.WalkDir(embedded, "static", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		body, err := embedded.ReadFile(p)
		if err != nil {
			return err
		}
		name := strings.TrimPrefix(p, "static")
		s.embeddedSet[name] = Asset{Body: body, ContentType: ContentTypeFor(name)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Lookup resolves a request path to an asset. "/" resolves to the index
// page. Paths escaping the asset root, or naming nothing, miss.
func (s *Store) Lookup(reqPath string) (Asset, bool) {
	name := path.Clean("/" + reqPath)
	if name == "/" {
		name = "/index.html"
	}

	if s.overrideDir != "" {
		if a, ok := s.lookupOverride(name); ok {
			metrics.RecordAssetLookup(true)
			return a, true
		}
	}

	a, ok := s.embeddedSet[name]
	metrics.RecordAssetLookup(ok)
	return a, ok
}

func (s *Store) lookupOverride(name string) (Asset, bool) {
	if body, ok := s.overrides.Get(name); ok {
		return Asset{Body: body, ContentType: ContentTypeFor(name)}, true
	}

	full := filepath.Join(s.overrideDir, filepath.FromSlash(strings.TrimPrefix(name, "/")))
	body, err := os.ReadFile(full)
	if err != nil {
		return Asset{}, false
	}
	s.overrides.Add(name, body)
	return Asset{Body: body, ContentType: ContentTypeFor(name)}, true
}

// Invalidate drops any cached override content so the next lookup
// re-reads from disk. Called by the Watcher on file events.
func (s *Store) Invalidate() {
	s.overrides.Purge()
	metrics.RecordAssetInvalidation()
}

// OverrideDir returns the configured override directory, empty when
// overrides are disabled.
func (s *Store) OverrideDir() string { return s.overrideDir }
