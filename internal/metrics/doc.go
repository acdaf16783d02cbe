// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

/*
Package metrics provides Prometheus metrics collection and export for
observability.

This package instruments the completion-based engine, the request dispatch
path, the catalog loader and the wasm host using the Prometheus client
library. Metrics are registered with the default registry via promauto and
exposed by the ops sidecar at /metrics.

# Available Metrics

Engine metrics:
  - engine_completions_total: Completions processed (counter)
    Labels: op (accept, recv, send, close), result (ok or error kind)
  - engine_active_clients: Clients holding a live connection (gauge)
  - engine_buffer_grows_total: Request buffer growth events (counter)
  - engine_idle_teardowns_total: Clients torn down by the idle sweep (counter)
  - engine_accepts_throttled_total: Accept re-arms delayed by the rate guard (counter)
  - engine_wait_batch_size: Completions drained per Wait call (histogram)

Request metrics:
  - requests_total: Requests answered by the data plane (counter)
    Labels: method, route, status
  - request_duration_seconds: Accept-to-response latency (histogram)
    Labels: route
  - response_bytes_total: Payload bytes written (counter)
    Labels: route

Catalog metrics:
  - catalog_stars: Stars loaded at startup (gauge)
  - catalog_constellations: Constellations loaded at startup (gauge)
  - catalog_bytes: Size of each packed payload (gauge)
    Labels: catalog (stars, constellations, meta)

WASM host metrics:
  - wasm_reloads_total: Module compile attempts (counter)
    Labels: result (ok, error)
  - wasm_module_bytes: Size of the served module (gauge)

Asset metrics:
  - asset_cache_hits_total / asset_cache_misses_total (counters)
  - asset_invalidations_total: Watcher-driven cache invalidations (counter)

System metrics:
  - app_info: Version and build information (gauge)
    Labels: version, go_version
  - app_uptime_seconds: Uptime (gauge)

# Thread Safety

All recording functions are safe for concurrent use; the Prometheus client
handles synchronization internally. In practice the engine counters are
touched only by the engine goroutine.

# Cardinality Management

Route labels come from the fixed dispatch table, never from raw request
paths, so the label space stays bounded regardless of what clients send.
Completion results are restricted to the closed error taxonomy of
internal/aio.
*/
package metrics
