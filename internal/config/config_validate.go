// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package config

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/go-playground/validator/v10"
)

// singleton validator instance; validator.Validate caches struct metadata,
// so sharing one instance is both safe and cheaper.
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks that required configuration is present and valid.
//
// Per-field constraints live in struct tags and are enforced first; the
// handwritten checks below cover cross-field rules the tags cannot express.
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%s failed %q validation (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("struct validation: %w", err)
	}

	if err := c.validateEngine(); err != nil {
		return err
	}

	if err := c.validateOps(); err != nil {
		return err
	}

	return c.validateWASM()
}

// validateEngine validates the engine section's cross-field rules.
func (c *Config) validateEngine() error {
	if err := c.validateEngineBackend(); err != nil {
		return err
	}

	if c.Engine.BufferIncrement > c.Engine.BufferMin*64 {
		return fmt.Errorf("ENGINE_BUFFER_INCREMENT (%d) is unreasonably large relative to ENGINE_BUFFER_MIN (%d)",
			c.Engine.BufferIncrement, c.Engine.BufferMin)
	}

	if c.Engine.IdleTimeout < 0 {
		return fmt.Errorf("ENGINE_IDLE_TIMEOUT must not be negative")
	}
	if c.Engine.IdleTimeout > 0 && c.Engine.SweepInterval <= 0 {
		return fmt.Errorf("ENGINE_SWEEP_INTERVAL must be positive when ENGINE_IDLE_TIMEOUT is set")
	}
	if c.Engine.IdleTimeout > 0 && c.Engine.SweepInterval > c.Engine.IdleTimeout {
		return fmt.Errorf("ENGINE_SWEEP_INTERVAL (%v) must not exceed ENGINE_IDLE_TIMEOUT (%v)",
			c.Engine.SweepInterval, c.Engine.IdleTimeout)
	}

	if c.Engine.AcceptRate > 0 && c.Engine.AcceptBurst < 1 {
		return fmt.Errorf("ENGINE_ACCEPT_BURST must be at least 1 when ENGINE_ACCEPT_RATE is set")
	}

	// io_uring rounds the queue depth up to a power of two; requiring it
	// here keeps the configured and effective depths identical.
	if c.Engine.URingEntries&(c.Engine.URingEntries-1) != 0 {
		return fmt.Errorf("ENGINE_URING_ENTRIES must be a power of two, got %d", c.Engine.URingEntries)
	}

	return nil
}

// validateEngineBackend rejects backends the running platform cannot provide.
// "auto" always passes; the concrete choice happens at engine construction.
func (c *Config) validateEngineBackend() error {
	switch c.Engine.Backend {
	case "uring":
		if runtime.GOOS != "linux" {
			return fmt.Errorf("ENGINE_BACKEND=uring requires linux, running on %s", runtime.GOOS)
		}
	case "iocp":
		if runtime.GOOS != "windows" {
			return fmt.Errorf("ENGINE_BACKEND=iocp requires windows, running on %s", runtime.GOOS)
		}
	}
	return nil
}

// validateOps validates the ops sidecar section (only if enabled).
func (c *Config) validateOps() error {
	if !c.Ops.Enabled {
		return nil
	}

	if c.Ops.Host == "" {
		return fmt.Errorf("OPS_HOST is required when OPS_ENABLED=true")
	}
	if c.Ops.Port == c.Server.Port {
		return fmt.Errorf("OPS_PORT must differ from HTTP_PORT (both %d)", c.Ops.Port)
	}
	if c.Ops.RateLimitWindow <= 0 {
		return fmt.Errorf("OPS_RATE_LIMIT_WINDOW must be positive")
	}

	if c.Server.Environment == "production" {
		for _, origin := range c.Ops.CORSOrigins {
			if origin == "*" {
				return fmt.Errorf("OPS_CORS_ORIGINS must not contain %q in production", "*")
			}
		}
	}

	return nil
}

// validateWASM validates wasm delivery settings.
func (c *Config) validateWASM() error {
	if c.WASM.Watch && c.WASM.ModulePath == "" {
		// Watching nothing is harmless; normalize instead of erroring so
		// the default config stays valid out of the box.
		c.WASM.Watch = false
	}
	return nil
}
