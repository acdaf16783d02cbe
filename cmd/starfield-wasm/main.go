// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

//go:build wasm

// Command starfield-wasm is the browser-side projection module. It wraps
// internal/starfield behind a flat export surface of numeric scalars and
// pointer/length pairs so the JavaScript glue never sees Go types; all
// buffers cross the boundary in the fixed little-endian layouts of
// internal/wasmabi.
//
// Build as a reactor module:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o starfield.wasm ./cmd/starfield-wasm
//
// Callers allocate with sky_alloc, copy bytes in, call an export, and
// release with sky_free. The module retains nothing across calls except
// the canvas settings and the constellation set, which are loaded once
// and replaced wholesale.
package main

import (
	"math"
	"time"
	"unsafe"

	"github.com/tomtom215/uranographus/internal/catalog"
	"github.com/tomtom215/uranographus/internal/starfield"
	"github.com/tomtom215/uranographus/internal/wasmabi"
)

// allocs pins sky_alloc buffers against the GC and resolves raw pointers
// back to their slices. Single-threaded by construction: wasm has one
// thread and every export runs on it.
var allocs = make(map[uint32][]byte)

var (
	settings       starfield.CanvasSettings
	constellations []starfield.Constellation
)

func main() {
	// Reactor module: exports are called by the embedder, main never runs.
}

//go:wasmexport sky_alloc
func skyAlloc(n uint32) uint32 {
	if n == 0 {
		return 0
	}
	buf := make([]byte, n)
	ptr := uint32(uintptr(unsafe.Pointer(unsafe.SliceData(buf))))
	allocs[ptr] = buf
	return ptr
}

//go:wasmexport sky_free
func skyFree(ptr uint32) {
	delete(allocs, ptr)
}

// bufAt returns the allocation backing ptr, or nil for an unknown pointer.
func bufAt(ptr uint32) []byte {
	return allocs[ptr]
}

//go:wasmexport set_settings
func setSettings(ptr, length uint32) int32 {
	buf := bufAt(ptr)
	if buf == nil || uint32(len(buf)) < length {
		return -1
	}
	s, err := wasmabi.DecodeSettings(buf[:length])
	if err != nil {
		return -1
	}
	settings = s
	return 0
}

// loadConstellations replaces the constellation set from a packed blob in
// the catalog wire format. Returns the constellation count, or -1 on a
// malformed blob (the previous set stays in place).
//
//go:wasmexport load_constellations
func loadConstellations(ptr, length uint32) int32 {
	buf := bufAt(ptr)
	if buf == nil || uint32(len(buf)) < length {
		return -1
	}
	cons, err := catalog.DecodeConstellations(buf[:length])
	if err != nil {
		return -1
	}
	constellations = cons
	return int32(len(cons))
}

// observer computes the local sidereal time and latitude trig for an
// observer position and a JavaScript Date.now() timestamp.
func observer(lat, lon, unixMillis float64) (lst, sinLat, cosLat float64) {
	lst = starfield.LocalSiderealTime(time.UnixMilli(int64(unixMillis)), lon)
	sinLat, cosLat = math.Sincos(lat)
	return lst, sinLat, cosLat
}

// projectPoints projects n packed SkyCoords at inPtr into n packed Points
// at outPtr. Filtered objects come back as the NaN sentinel so output
// index i always matches input index i. Returns n, or -1 when either
// buffer is too small.
//
//go:wasmexport project_points
func projectPoints(inPtr, n, outPtr uint32, lat, lon, unixMillis float64, filter int32) int32 {
	in := bufAt(inPtr)
	out := bufAt(outPtr)
	if in == nil || out == nil {
		return -1
	}
	if uint32(len(in)) < n*wasmabi.CoordSize || uint32(len(out)) < n*wasmabi.PointSize {
		return -1
	}

	coords, err := wasmabi.DecodeCoords(in[:n*wasmabi.CoordSize])
	if err != nil {
		return -1
	}

	lst, sinLat, cosLat := observer(lat, lon, unixMillis)
	points := starfield.ProjectPoints(nil, coords, lst, sinLat, cosLat, filter != 0, settings)

	// Appending into out[:0] writes in place; capacity was checked above.
	dst := out[:0]
	for _, p := range points {
		dst = wasmabi.AppendPoint(dst, p)
	}
	return int32(len(points))
}

// pointToCoord inverts the projection for pointer hit-testing, writing one
// packed SkyCoord at outPtr. Returns 1 on success, 0 for a point outside
// the background circle, -1 for a bad output buffer.
//
//go:wasmexport point_to_coord
func pointToCoord(x, y float32, lat, lon, unixMillis float64, outPtr uint32) int32 {
	out := bufAt(outPtr)
	if out == nil || len(out) < wasmabi.CoordSize {
		return -1
	}

	lst, sinLat, cosLat := observer(lat, lon, unixMillis)
	c, ok := starfield.PointToCoord(starfield.Point{X: x, Y: y}, lst, sinLat, cosLat, settings)
	if !ok {
		return 0
	}
	wasmabi.AppendCoord(out[:0], c)
	return 1
}

// constellationAt hit-tests a canvas point against the loaded
// constellation boundaries under the current settings, returning the
// first containing constellation's index or -1. Boundaries partially
// below the horizon are skipped, as is everything non-zodiac when the
// zodiac-only toggle is set.
//
//go:wasmexport constellation_at
func constellationAt(x, y float32, lat, lon, unixMillis float64) int32 {
	if len(constellations) == 0 {
		return -1
	}

	lst, sinLat, cosLat := observer(lat, lon, unixMillis)

	boundaries := make([][]starfield.Point, len(constellations))
	var scratch []starfield.Point
	for i, c := range constellations {
		if settings.ZodiacOnly && !c.IsZodiac {
			continue // nil boundary never matches
		}
		scratch = starfield.ProjectPoints(scratch, c.Boundary, lst, sinLat, cosLat, true, settings)
		boundary := make([]starfield.Point, len(scratch))
		copy(boundary, scratch)
		boundaries[i] = boundary
	}

	return int32(starfield.ConstellationAt(starfield.Point{X: x, Y: y}, boundaries))
}

// waypointsExport writes n packed GeoCoords evenly spaced along the great
// circle from start to end at outPtr. Returns the number of points
// written, or -1 when the output buffer cannot hold them.
//
//go:wasmexport waypoints
func waypointsExport(startLat, startLon, endLat, endLon float64, n int32, outPtr uint32) int32 {
	if n < 1 {
		return -1
	}
	out := bufAt(outPtr)
	if out == nil {
		return -1
	}

	points := starfield.Waypoints(
		starfield.GeoCoord{Lat: startLat, Lon: startLon},
		starfield.GeoCoord{Lat: endLat, Lon: endLon},
		int(n),
	)
	if len(out) < len(points)*wasmabi.GeoSize {
		return -1
	}

	dst := out[:0]
	for _, g := range points {
		dst = wasmabi.AppendGeo(dst, g)
	}
	return int32(len(points))
}
