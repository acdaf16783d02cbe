// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

// Package cache provides the in-memory byte cache backing static asset
// serving. The catalog payloads never go through it; they are decoded
// once at startup and held immutable for the process lifetime.
package cache
