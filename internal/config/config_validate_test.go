// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package config

import (
	"runtime"
	"strings"
	"testing"
	"time"
)

// TestValidateRejectsBadValues exercises the struct-tag layer of Validate.
func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "port zero",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "min",
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "max",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Engine.Backend = "epoll" },
			wantErr: "oneof",
		},
		{
			name:    "empty host",
			mutate:  func(c *Config) { c.Server.Host = "" },
			wantErr: "required",
		},
		{
			name:    "pool size zero",
			mutate:  func(c *Config) { c.Engine.PoolSize = 0 },
			wantErr: "min",
		},
		{
			name:    "buffer min too small",
			mutate:  func(c *Config) { c.Engine.BufferMin = 16 },
			wantErr: "min",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "oneof",
		},
		{
			name:    "bad environment",
			mutate:  func(c *Config) { c.Server.Environment = "staging" },
			wantErr: "oneof",
		},
		{
			name:    "missing stars path",
			mutate:  func(c *Config) { c.Catalog.StarsPath = "" },
			wantErr: "required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

// TestValidateCrossFieldRules exercises the handwritten checks.
func TestValidateCrossFieldRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "sweep interval exceeds idle timeout",
			mutate: func(c *Config) {
				c.Engine.IdleTimeout = 5 * time.Second
				c.Engine.SweepInterval = 10 * time.Second
			},
			wantErr: "ENGINE_SWEEP_INTERVAL",
		},
		{
			name: "idle timeout without sweep interval",
			mutate: func(c *Config) {
				c.Engine.IdleTimeout = 30 * time.Second
				c.Engine.SweepInterval = 0
			},
			wantErr: "ENGINE_SWEEP_INTERVAL",
		},
		{
			name: "accept rate without burst",
			mutate: func(c *Config) {
				c.Engine.AcceptRate = 100
				c.Engine.AcceptBurst = 0
			},
			wantErr: "ENGINE_ACCEPT_BURST",
		},
		{
			name:    "uring entries not a power of two",
			mutate:  func(c *Config) { c.Engine.URingEntries = 300 },
			wantErr: "power of two",
		},
		{
			name: "ops port collides with data port",
			mutate: func(c *Config) {
				c.Ops.Port = c.Server.Port
			},
			wantErr: "OPS_PORT",
		},
		{
			name: "wildcard CORS in production",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
				c.Ops.CORSOrigins = []string{"*"}
			},
			wantErr: "OPS_CORS_ORIGINS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

// TestValidateBackendPlatform verifies platform gating of forced backends.
func TestValidateBackendPlatform(t *testing.T) {
	cfg := defaultConfig()
	cfg.Engine.Backend = "uring"
	err := cfg.Validate()
	if runtime.GOOS == "linux" {
		if err != nil {
			t.Errorf("Validate() with uring on linux = %v, want nil", err)
		}
	} else {
		if err == nil {
			t.Errorf("Validate() with uring on %s = nil, want error", runtime.GOOS)
		}
	}

	cfg = defaultConfig()
	cfg.Engine.Backend = "iocp"
	err = cfg.Validate()
	if runtime.GOOS == "windows" {
		if err != nil {
			t.Errorf("Validate() with iocp on windows = %v, want nil", err)
		}
	} else {
		if err == nil {
			t.Errorf("Validate() with iocp on %s = nil, want error", runtime.GOOS)
		}
	}
}

// TestValidateNormalizesWatch verifies wasm watch is cleared when no module
// path is configured instead of failing validation.
func TestValidateNormalizesWatch(t *testing.T) {
	cfg := defaultConfig()
	cfg.WASM.ModulePath = ""
	cfg.WASM.Watch = true

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if cfg.WASM.Watch {
		t.Errorf("WASM.Watch should be normalized to false without a module path")
	}
}

// TestValidateOpsDisabledSkipsChecks verifies disabled sidecar skips ops rules.
func TestValidateOpsDisabledSkipsChecks(t *testing.T) {
	cfg := defaultConfig()
	cfg.Ops.Enabled = false
	cfg.Ops.Port = cfg.Server.Port // would collide if enabled
	cfg.Ops.RateLimitWindow = 0    // would fail if enabled

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() with ops disabled = %v, want nil", err)
	}
}
