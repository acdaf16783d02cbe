// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package wasmhost

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/tetratelabs/wazero"

	"github.com/tomtom215/uranographus/internal/logging"
	"github.com/tomtom215/uranographus/internal/metrics"
)

// RequiredExports is the projection module's ABI surface. The browser
// glue calls exactly these; a module missing any of them would fail at
// first use in the client, so the host refuses it at load time instead.
var RequiredExports = []string{
	"sky_alloc",
	"sky_free",
	"set_settings",
	"load_constellations",
	"project_points",
	"point_to_coord",
	"constellation_at",
	"waypoints",
}

// Host validates and holds the starfield wasm module bytes. Bytes is
// called from the engine goroutine while Reload runs on the watcher
// goroutine, so the swap is mutex-guarded.
type Host struct {
	path    string
	runtime wazero.Runtime
	log     zerolog.Logger

	mu    sync.RWMutex
	bytes []byte
}

// New compiles and verifies the module at path. The returned host owns
// a wazero runtime; call Close when done with it.
func New(ctx context.Context, path string) (*Host, error) {
	h := &Host{
		path:    path,
		runtime: wazero.NewRuntime(ctx),
		log:     logging.With().Str("component", "wasmhost").Logger(),
	}
	if err := h.Reload(ctx); err != nil {
		_ = h.runtime.Close(ctx)
		return nil, err
	}
	return h, nil
}

// Reload re-reads, recompiles and re-verifies the module. On any
// failure the previously loaded bytes stay in service.
func (h *Host) Reload(ctx context.Context) error {
	raw, err := os.ReadFile(h.path)
	if err != nil {
		err = fmt.Errorf("read wasm module: %w", err)
		metrics.RecordWasmReload(0, err)
		return err
	}

	compiled, err := h.runtime.CompileModule(ctx, raw)
	if err != nil {
		err = fmt.Errorf("compile wasm module: %w", err)
		metrics.RecordWasmReload(0, err)
		return err
	}
	defer compiled.Close(ctx)

	if err := verifyExports(compiled); err != nil {
		metrics.RecordWasmReload(0, err)
		return err
	}

	h.mu.Lock()
	h.bytes = raw
	h.mu.Unlock()

	metrics.RecordWasmReload(len(raw), nil)
	h.log.Info().Str("path", h.path).Int("bytes", len(raw)).Msg("wasm module loaded")
	return nil
}

func verifyExports(compiled wazero.CompiledModule) error {
	funcs := compiled.ExportedFunctions()
	for _, name := range RequiredExports {
		if _, ok := funcs[name]; !ok {
			return fmt.Errorf("wasm module missing export %q", name)
		}
	}
	if len(compiled.ExportedMemories()) == 0 {
		return fmt.Errorf("wasm module exports no memory")
	}
	return nil
}

// Bytes returns the verified module for serving at /starfield.wasm.
func (h *Host) Bytes() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.bytes
}

// Path returns the watched module path.
func (h *Host) Path() string { return h.path }

// Close releases the wazero runtime.
func (h *Host) Close(ctx context.Context) error {
	return h.runtime.Close(ctx)
}
