// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

// Package middleware provides the HTTP middleware used by the ops
// sidecar: request ID propagation for log correlation and Prometheus
// request instrumentation. The data plane does not use net/http and
// carries none of this; its instrumentation lives in the engine.
package middleware
