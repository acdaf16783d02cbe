// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package config

import "time"

// Config holds all application configuration.
//
// Field values are populated by LoadWithKoanf from defaults, an optional
// YAML file and environment variables, in that order of precedence.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Engine  EngineConfig  `koanf:"engine"`
	Catalog CatalogConfig `koanf:"catalog"`
	Assets  AssetsConfig  `koanf:"assets"`
	WASM    WASMConfig    `koanf:"wasm"`
	Ops     OpsConfig     `koanf:"ops"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig contains the listen address of the atlas data plane.
//
// The data plane is served by the completion-based engine in internal/aio,
// not by net/http; Host and Port are handed to the active backend's Listen.
type ServerConfig struct {
	// Host is the bind address, e.g. "0.0.0.0" or "127.0.0.1".
	Host string `koanf:"host" validate:"required"`

	// Port is the TCP port of the atlas endpoint. The default 2000 is a nod
	// to the J2000.0 epoch all catalog coordinates are referred to.
	Port int `koanf:"port" validate:"min=1,max=65535"`

	// Environment selects deployment mode ("development" or "production").
	// Production tightens validation, e.g. the ops CORS origin list.
	Environment string `koanf:"environment" validate:"oneof=development production"`
}

// EngineConfig tunes the completion-based event loop.
type EngineConfig struct {
	// Backend selects the completion backend: "auto" picks the native
	// backend for the platform (io_uring on Linux, IOCP on Windows) and
	// falls back to the portable backend elsewhere. "uring", "iocp" and
	// "portable" force a specific backend; forcing a backend the platform
	// cannot provide is a startup error.
	Backend string `koanf:"backend" validate:"oneof=auto uring iocp portable"`

	// PoolSize is the fixed number of client slots. Each slot holds one
	// connection end to end; the engine never allocates clients outside
	// this pool.
	PoolSize int `koanf:"pool_size" validate:"min=1,max=65536"`

	// BufferMin is the initial and minimum capacity of each client's
	// request buffer in bytes.
	BufferMin int `koanf:"buffer_min" validate:"min=256"`

	// BufferIncrement is the fixed step by which a request buffer grows
	// when a read exactly fills its remaining capacity.
	BufferIncrement int `koanf:"buffer_increment" validate:"min=256"`

	// WaitBatch is the maximum number of completions drained per Wait call.
	WaitBatch int `koanf:"wait_batch" validate:"min=1,max=4096"`

	// IdleTimeout is how long a client may sit in a read or write state
	// without a completion before the sweep tears it down. Zero disables
	// the sweep.
	IdleTimeout time.Duration `koanf:"idle_timeout"`

	// SweepInterval is how often the idle sweep runs.
	SweepInterval time.Duration `koanf:"sweep_interval"`

	// AcceptRate caps accepted connections per second; AcceptBurst is the
	// token bucket burst. Zero AcceptRate disables the guard.
	AcceptRate  float64 `koanf:"accept_rate" validate:"min=0"`
	AcceptBurst int     `koanf:"accept_burst" validate:"min=0"`

	// URingEntries is the submission queue depth requested from io_uring.
	// Ignored by the other backends.
	URingEntries int `koanf:"uring_entries" validate:"min=2,max=32768"`
}

// CatalogConfig locates the packed star and constellation catalogs.
//
// All three files are read once at startup and held immutable in memory;
// see internal/catalog for the binary formats.
type CatalogConfig struct {
	// StarsPath is the packed star table (13-byte little-endian records).
	StarsPath string `koanf:"stars_path" validate:"required"`

	// ConstellationsPath is the packed constellation blob (boundary and
	// asterism coordinate runs behind a count header).
	ConstellationsPath string `koanf:"constellations_path" validate:"required"`

	// MetaPath is the JSON sidecar with per-constellation display metadata
	// (name and epithet), served at /constellations/meta.
	MetaPath string `koanf:"meta_path" validate:"required"`
}

// AssetsConfig controls static asset serving.
type AssetsConfig struct {
	// OverrideDir, when non-empty, is checked before the embedded assets
	// and watched for changes so edits show up without a restart.
	OverrideDir string `koanf:"override_dir"`
}

// WASMConfig controls delivery of the client-side projection module.
type WASMConfig struct {
	// ModulePath is the compiled starfield wasm binary to serve at
	// /starfield.wasm. Empty disables wasm delivery; the route then 404s.
	ModulePath string `koanf:"module_path"`

	// Watch recompiles and re-verifies the module when the file changes.
	Watch bool `koanf:"watch"`
}

// OpsConfig configures the observability sidecar listener.
//
// The sidecar carries /healthz, /readyz, /metrics, /debug/pprof and the
// status API on a net/http listener separate from the data plane.
type OpsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Host    string `koanf:"host"`
	Port    int    `koanf:"port" validate:"omitempty,min=1,max=65535"`

	// CORSOrigins is the allowed origin list for browser access to the
	// status API during development.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitReqs requests per RateLimitWindow per client IP.
	RateLimitReqs   int           `koanf:"rate_limit_reqs" validate:"omitempty,min=1"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// Pprof mounts /debug/pprof when true.
	Pprof bool `koanf:"pprof"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum level: trace, debug, info, warn, error.
	Level string `koanf:"level" validate:"oneof=trace debug info warn error fatal"`

	// Format is "json" or "console".
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller adds file:line to each entry.
	Caller bool `koanf:"caller"`
}
