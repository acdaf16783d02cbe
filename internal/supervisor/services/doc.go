// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

// Package services adapts components to suture.Service. Most atlas
// components implement Serve(ctx)/String() themselves; this package
// holds the one adapter net/http needs, since http.Server's blocking
// ListenAndServe predates context-driven lifecycles.
package services
