// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

// Package ops is the observability sidecar: liveness and readiness
// probes, Prometheus metrics, optional pprof and a JSON status
// snapshot, served by net/http on a listener separate from the data
// plane. The atlas itself never routes through here; keeping the
// sidecar on the standard stack means a wedged engine cannot take the
// diagnostics down with it.
package ops
