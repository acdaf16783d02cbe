// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

// Package config provides layered configuration management for Uranographus
// using Koanf v2.
//
// Configuration is loaded from three sources in order of increasing
// precedence:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML config file (CONFIG_PATH or the default search paths)
//  3. Environment variables (see envTransformFunc for the mapping table)
//
// The resulting Config is validated before use: struct tags express
// per-field constraints (go-playground/validator), and handwritten checks
// cover the cross-field rules the tags cannot express, such as the buffer
// increment / minimum relationship of the engine section.
//
// Example:
//
//	cfg, err := config.LoadWithKoanf()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("invalid configuration")
//	}
//	engine := aio.NewEngine(cfg.Engine, ...)
package config
