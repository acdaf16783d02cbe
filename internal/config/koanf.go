// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/uranographus/config.yaml",
	"/etc/uranographus/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config
// file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env
// vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        2000,
			Environment: "development",
		},
		Engine: EngineConfig{
			Backend:         "auto",
			PoolSize:        64,
			BufferMin:       1024,
			BufferIncrement: 1024,
			WaitBatch:       32,
			IdleTimeout:     60 * time.Second,
			SweepInterval:   10 * time.Second,
			AcceptRate:      256,
			AcceptBurst:     64,
			URingEntries:    256,
		},
		Catalog: CatalogConfig{
			StarsPath:          "/data/stars.bin",
			ConstellationsPath: "/data/constellations.bin",
			MetaPath:           "/data/constellations_meta.json",
		},
		Assets: AssetsConfig{
			OverrideDir: "",
		},
		WASM: WASMConfig{
			ModulePath: "",
			Watch:      true,
		},
		Ops: OpsConfig{
			Enabled:         true,
			Host:            "0.0.0.0",
			Port:            2112,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: 1 * time.Minute,
			Pprof:           true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// This function is the preferred way to load configuration and provides:
//   - Type-safe configuration unmarshaling
//   - Clear precedence: ENV > File > Defaults
//   - Support for nested configuration via koanf struct tags
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// Transform environment variable names to koanf paths:
	// HTTP_PORT -> server.port
	// ENGINE_BACKEND -> engine.backend
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	// Unmarshal into Config struct
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	// Check environment variable first
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	// Search default paths
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as
// comma-separated slices
var sliceConfigPaths = []string{
	"ops.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. This is necessary because env vars come in as strings,
// but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		// If it's a string, split by comma
		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc transforms environment variable names to koanf config
// paths. Only explicitly mapped variables are honored so random environment
// noise cannot pollute the configuration.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - ENGINE_BACKEND -> engine.backend
//   - STARS_PATH -> catalog.stars_path
//   - LOG_LEVEL -> logging.level
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_port":   "server.port",
		"http_host":   "server.host",
		"environment": "server.environment",

		// Engine mappings
		"engine_backend":          "engine.backend",
		"engine_pool_size":        "engine.pool_size",
		"engine_buffer_min":       "engine.buffer_min",
		"engine_buffer_increment": "engine.buffer_increment",
		"engine_wait_batch":       "engine.wait_batch",
		"engine_idle_timeout":     "engine.idle_timeout",
		"engine_sweep_interval":   "engine.sweep_interval",
		"engine_accept_rate":      "engine.accept_rate",
		"engine_accept_burst":     "engine.accept_burst",
		"engine_uring_entries":    "engine.uring_entries",

		// Catalog mappings
		"stars_path":               "catalog.stars_path",
		"constellations_path":      "catalog.constellations_path",
		"constellations_meta_path": "catalog.meta_path",

		// Assets mappings
		"assets_dir": "assets.override_dir",

		// WASM mappings
		"wasm_module_path": "wasm.module_path",
		"wasm_watch":       "wasm.watch",

		// Ops sidecar mappings
		"ops_enabled":             "ops.enabled",
		"ops_host":                "ops.host",
		"ops_port":                "ops.port",
		"ops_cors_origins":        "ops.cors_origins",
		"ops_rate_limit_requests": "ops.rate_limit_reqs",
		"ops_rate_limit_window":   "ops.rate_limit_window",
		"ops_pprof":               "ops.pprof",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	return ""
}

// WatchConfigFile sets up a file watcher for hot-reload capability.
// Note: The caller is responsible for mutex protection when accessing
// configuration during reloads.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)

	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
