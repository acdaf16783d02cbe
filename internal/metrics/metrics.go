// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Engine Metrics
	EngineCompletions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_completions_total",
			Help: "Total completions processed by the event loop",
		},
		[]string{"op", "result"}, // op: accept, recv, send, close; result: ok or error kind
	)

	EngineActiveClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_active_clients",
			Help: "Current number of clients holding a live connection",
		},
	)

	EngineBufferGrows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_buffer_grows_total",
			Help: "Total request buffer growth events",
		},
	)

	EngineIdleTeardowns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_idle_teardowns_total",
			Help: "Total clients torn down by the idle sweep",
		},
	)

	EngineAcceptsThrottled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_accepts_throttled_total",
			Help: "Total accept re-arms delayed by the rate guard",
		},
	)

	EngineWaitBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "engine_wait_batch_size",
			Help:    "Number of completions drained per Wait call",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128},
		},
	)

	// Request Metrics
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "requests_total",
			Help: "Total requests answered by the data plane",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "request_duration_seconds",
			Help:    "Accept-to-response latency in seconds",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.05, 0.1, 0.5, 1}, // Sub-millisecond expected for packed payloads
		},
		[]string{"route"},
	)

	ResponseBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "response_bytes_total",
			Help: "Total payload bytes written per route",
		},
		[]string{"route"},
	)

	// Ops Sidecar Metrics
	OpsRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ops_requests_total",
			Help: "Total requests answered by the ops sidecar",
		},
		[]string{"method", "path", "status"},
	)

	OpsRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ops_request_duration_seconds",
			Help:    "Ops sidecar request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	// Catalog Metrics
	CatalogStars = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_stars",
			Help: "Number of stars loaded at startup",
		},
	)

	CatalogConstellations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_constellations",
			Help: "Number of constellations loaded at startup",
		},
	)

	CatalogBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_bytes",
			Help: "Size in bytes of each packed catalog payload",
		},
		[]string{"catalog"}, // "stars", "constellations", "meta"
	)

	// WASM Host Metrics
	WasmReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wasm_reloads_total",
			Help: "Total wasm module compile attempts",
		},
		[]string{"result"}, // "ok", "error"
	)

	WasmModuleBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wasm_module_bytes",
			Help: "Size in bytes of the served wasm module",
		},
	)

	// Asset Metrics
	AssetCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "asset_cache_hits_total",
			Help: "Total static asset cache hits",
		},
	)

	AssetCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "asset_cache_misses_total",
			Help: "Total static asset cache misses",
		},
	)

	AssetInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "asset_invalidations_total",
			Help: "Total watcher-driven asset cache invalidations",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// startTime anchors the uptime gauge.
var startTime = time.Now()

// RecordCompletion records one processed completion. The result string must
// come from the closed error taxonomy ("ok" for success) so the label space
// stays bounded.
func RecordCompletion(op, result string) {
	EngineCompletions.WithLabelValues(op, result).Inc()
}

// RecordRequest records a served request with its final status and latency.
func RecordRequest(method, route, status string, duration time.Duration) {
	RequestsTotal.WithLabelValues(method, route, status).Inc()
	RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordResponseBytes adds payload bytes written for a route.
func RecordResponseBytes(route string, n int) {
	ResponseBytes.WithLabelValues(route).Add(float64(n))
}

// TrackActiveClient adjusts the live-connection gauge.
func TrackActiveClient(inc bool) {
	if inc {
		EngineActiveClients.Inc()
	} else {
		EngineActiveClients.Dec()
	}
}

// RecordBufferGrow records one request buffer growth event.
func RecordBufferGrow() {
	EngineBufferGrows.Inc()
}

// RecordIdleTeardown records one idle-sweep teardown.
func RecordIdleTeardown() {
	EngineIdleTeardowns.Inc()
}

// RecordAcceptThrottled records one rate-guarded accept delay.
func RecordAcceptThrottled() {
	EngineAcceptsThrottled.Inc()
}

// RecordWaitBatch records the completion count of one Wait drain.
func RecordWaitBatch(n int) {
	EngineWaitBatchSize.Observe(float64(n))
}

// RecordOpsRequest records a request served by the ops sidecar. Paths
// there come from a fixed route table, so using them as labels is safe.
func RecordOpsRequest(method, path, status string, duration time.Duration) {
	OpsRequestsTotal.WithLabelValues(method, path, status).Inc()
	OpsRequestDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// SetCatalogSizes publishes catalog dimensions after a successful load.
func SetCatalogSizes(stars, constellations int, starBytes, constellationBytes, metaBytes int) {
	CatalogStars.Set(float64(stars))
	CatalogConstellations.Set(float64(constellations))
	CatalogBytes.WithLabelValues("stars").Set(float64(starBytes))
	CatalogBytes.WithLabelValues("constellations").Set(float64(constellationBytes))
	CatalogBytes.WithLabelValues("meta").Set(float64(metaBytes))
}

// RecordWasmReload records a module compile attempt and, on success, the
// module size.
func RecordWasmReload(moduleBytes int, err error) {
	if err != nil {
		WasmReloads.WithLabelValues("error").Inc()
		return
	}
	WasmReloads.WithLabelValues("ok").Inc()
	WasmModuleBytes.Set(float64(moduleBytes))
}

// RecordAssetLookup records a cache hit or miss for a static asset.
func RecordAssetLookup(hit bool) {
	if hit {
		AssetCacheHits.Inc()
	} else {
		AssetCacheMisses.Inc()
	}
}

// RecordAssetInvalidation records a watcher-driven cache invalidation.
func RecordAssetInvalidation() {
	AssetInvalidations.Inc()
}

// SetAppInfo publishes build information once at startup.
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}

// UpdateUptime refreshes the uptime gauge; the ops status handler calls this
// before serving a snapshot.
func UpdateUptime() {
	AppUptime.Set(time.Since(startTime).Seconds())
}

// Uptime reports time since process start.
func Uptime() time.Duration {
	return time.Since(startTime)
}
