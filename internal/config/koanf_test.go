// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	// Server defaults
	if cfg.Server.Port != 2000 {
		t.Errorf("Server.Port = %d, want 2000", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Server.Environment != "development" {
		t.Errorf("Server.Environment = %q, want development", cfg.Server.Environment)
	}

	// Engine defaults
	if cfg.Engine.Backend != "auto" {
		t.Errorf("Engine.Backend = %q, want auto", cfg.Engine.Backend)
	}
	if cfg.Engine.PoolSize != 64 {
		t.Errorf("Engine.PoolSize = %d, want 64", cfg.Engine.PoolSize)
	}
	if cfg.Engine.BufferMin != 1024 {
		t.Errorf("Engine.BufferMin = %d, want 1024", cfg.Engine.BufferMin)
	}
	if cfg.Engine.BufferIncrement != 1024 {
		t.Errorf("Engine.BufferIncrement = %d, want 1024", cfg.Engine.BufferIncrement)
	}
	if cfg.Engine.IdleTimeout != 60*time.Second {
		t.Errorf("Engine.IdleTimeout = %v, want 60s", cfg.Engine.IdleTimeout)
	}
	if cfg.Engine.SweepInterval != 10*time.Second {
		t.Errorf("Engine.SweepInterval = %v, want 10s", cfg.Engine.SweepInterval)
	}
	if cfg.Engine.URingEntries != 256 {
		t.Errorf("Engine.URingEntries = %d, want 256", cfg.Engine.URingEntries)
	}

	// Catalog defaults
	if cfg.Catalog.StarsPath != "/data/stars.bin" {
		t.Errorf("Catalog.StarsPath = %q, want /data/stars.bin", cfg.Catalog.StarsPath)
	}
	if cfg.Catalog.ConstellationsPath != "/data/constellations.bin" {
		t.Errorf("Catalog.ConstellationsPath = %q, want /data/constellations.bin", cfg.Catalog.ConstellationsPath)
	}

	// WASM defaults (disabled until a module path is configured)
	if cfg.WASM.ModulePath != "" {
		t.Errorf("WASM.ModulePath should be empty by default, got %q", cfg.WASM.ModulePath)
	}
	if !cfg.WASM.Watch {
		t.Errorf("WASM.Watch should be true by default")
	}

	// Ops defaults
	if !cfg.Ops.Enabled {
		t.Errorf("Ops.Enabled should be true by default")
	}
	if cfg.Ops.Port != 2112 {
		t.Errorf("Ops.Port = %d, want 2112", cfg.Ops.Port)
	}
	if len(cfg.Ops.CORSOrigins) != 1 || cfg.Ops.CORSOrigins[0] != "*" {
		t.Errorf("Ops.CORSOrigins = %v, want [*]", cfg.Ops.CORSOrigins)
	}
	if cfg.Ops.RateLimitReqs != 100 {
		t.Errorf("Ops.RateLimitReqs = %d, want 100", cfg.Ops.RateLimitReqs)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
}

// TestDefaultConfigValidates ensures the shipped defaults pass validation
// without any file or environment input.
func TestDefaultConfigValidates(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaultConfig() should validate cleanly, got %v", err)
	}
}

// TestEnvTransformFunc verifies environment variable name transformations
func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Server
		{"HTTP_PORT", "server.port"},
		{"HTTP_HOST", "server.host"},
		{"ENVIRONMENT", "server.environment"},

		// Engine
		{"ENGINE_BACKEND", "engine.backend"},
		{"ENGINE_POOL_SIZE", "engine.pool_size"},
		{"ENGINE_BUFFER_MIN", "engine.buffer_min"},
		{"ENGINE_BUFFER_INCREMENT", "engine.buffer_increment"},
		{"ENGINE_IDLE_TIMEOUT", "engine.idle_timeout"},
		{"ENGINE_ACCEPT_RATE", "engine.accept_rate"},
		{"ENGINE_URING_ENTRIES", "engine.uring_entries"},

		// Catalog
		{"STARS_PATH", "catalog.stars_path"},
		{"CONSTELLATIONS_PATH", "catalog.constellations_path"},
		{"CONSTELLATIONS_META_PATH", "catalog.meta_path"},

		// Assets and wasm
		{"ASSETS_DIR", "assets.override_dir"},
		{"WASM_MODULE_PATH", "wasm.module_path"},
		{"WASM_WATCH", "wasm.watch"},

		// Ops
		{"OPS_ENABLED", "ops.enabled"},
		{"OPS_PORT", "ops.port"},
		{"OPS_CORS_ORIGINS", "ops.cors_origins"},
		{"OPS_RATE_LIMIT_REQUESTS", "ops.rate_limit_reqs"},

		// Logging
		{"LOG_LEVEL", "logging.level"},
		{"LOG_FORMAT", "logging.format"},

		// Unknown (should return empty)
		{"RANDOM_VAR", ""},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := envTransformFunc(tt.input)
			if result != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestFindConfigFile verifies config file discovery
func TestFindConfigFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	defer func() {
		if err := os.Chdir(origDir); err != nil {
			t.Errorf("Failed to restore working directory: %v", err)
		}
	}()

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}

	t.Run("no config file exists", func(t *testing.T) {
		os.Unsetenv(ConfigPathEnvVar)
		result := findConfigFile()
		if result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})

	t.Run("config.yaml exists", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("server:\n  port: 2000\n"), 0o600); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}
		defer os.Remove(configPath)

		result := findConfigFile()
		if result != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", result)
		}
	})

	t.Run("CONFIG_PATH overrides search", func(t *testing.T) {
		customPath := filepath.Join(tmpDir, "custom.yaml")
		if err := os.WriteFile(customPath, []byte("server:\n  port: 2001\n"), 0o600); err != nil {
			t.Fatalf("Failed to write config file: %v", err)
		}
		defer os.Remove(customPath)

		t.Setenv(ConfigPathEnvVar, customPath)
		result := findConfigFile()
		if result != customPath {
			t.Errorf("findConfigFile() = %q, want %q", result, customPath)
		}
	})
}

// TestLoadWithKoanfEnvOverride verifies that environment variables override
// defaults with the documented precedence.
func TestLoadWithKoanfEnvOverride(t *testing.T) {
	t.Setenv("HTTP_PORT", "2048")
	t.Setenv("ENGINE_BACKEND", "portable")
	t.Setenv("ENGINE_POOL_SIZE", "128")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("OPS_CORS_ORIGINS", "http://localhost:5173, http://localhost:3000")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 2048 {
		t.Errorf("Server.Port = %d, want 2048", cfg.Server.Port)
	}
	if cfg.Engine.Backend != "portable" {
		t.Errorf("Engine.Backend = %q, want portable", cfg.Engine.Backend)
	}
	if cfg.Engine.PoolSize != 128 {
		t.Errorf("Engine.PoolSize = %d, want 128", cfg.Engine.PoolSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}

	want := []string{"http://localhost:5173", "http://localhost:3000"}
	if len(cfg.Ops.CORSOrigins) != len(want) {
		t.Fatalf("Ops.CORSOrigins = %v, want %v", cfg.Ops.CORSOrigins, want)
	}
	for i, origin := range want {
		if cfg.Ops.CORSOrigins[i] != origin {
			t.Errorf("Ops.CORSOrigins[%d] = %q, want %q", i, cfg.Ops.CORSOrigins[i], origin)
		}
	}
}

// TestLoadWithKoanfFileLayer verifies file values sit between defaults and env.
func TestLoadWithKoanfFileLayer(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	yaml := `
server:
  port: 2100
engine:
  pool_size: 16
logging:
  level: warn
`
	if err := os.WriteFile(configPath, []byte(yaml), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	t.Setenv(ConfigPathEnvVar, configPath)
	// Env must beat the file for the same key.
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 2100 {
		t.Errorf("Server.Port = %d, want 2100 (from file)", cfg.Server.Port)
	}
	if cfg.Engine.PoolSize != 16 {
		t.Errorf("Engine.PoolSize = %d, want 16 (from file)", cfg.Engine.PoolSize)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error (env over file)", cfg.Logging.Level)
	}
	// Untouched keys keep their defaults.
	if cfg.Engine.BufferMin != 1024 {
		t.Errorf("Engine.BufferMin = %d, want default 1024", cfg.Engine.BufferMin)
	}
}
