// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

// Package logging provides centralized zerolog-based structured logging
// for Uranographus.
//
// The package provides:
//   - Zero-allocation structured logging via zerolog
//   - JSON output format for production (machine-parseable)
//   - Console output format for development (human-readable)
//   - Context-aware logging with correlation ID propagation
//   - slog adapter for Suture v4 integration (sutureslog)
//
// # Quick Start
//
//	import "github.com/tomtom215/uranographus/internal/logging"
//
//	// Initialize at application startup
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	// Log messages
//	logging.Info().Msg("Engine starting")
//	logging.Error().Err(err).Int32("slot", slot).Msg("Receive failed")
//
// # Configuration
//
// Environment Variables (mapped through internal/config):
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller info (default: false)
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
//
// Use structured fields instead of string formatting:
//
//	logging.Info().Int("stars", n).Msg("catalog loaded")   // Correct
//	logging.Info().Msgf("loaded %d stars", n)              // Avoid
package logging
