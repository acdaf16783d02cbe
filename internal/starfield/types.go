// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package starfield

import (
	"fmt"
	"math"
)

// SkyCoord is an equatorial position in radians. RA increases eastward from
// the vernal equinox in [0, 2pi); Dec is positive north of the celestial
// equator in [-pi/2, pi/2].
//
// Coordinates are stored as float32 to match the packed catalog formats;
// all trigonometry widens to float64 internally.
type SkyCoord struct {
	RA  float32
	Dec float32
}

// GeoCoord is a position on Earth in radians, latitude north-positive and
// longitude east-positive.
type GeoCoord struct {
	Lat float64
	Lon float64
}

// Point is a canvas position in pixels. The origin is the top-left corner
// of the canvas, matching the 2D drawing context on the browser side.
type Point struct {
	X float32
	Y float32
}

// NoPoint is the sentinel for "object not drawable" (e.g. below the
// horizon) in packed point buffers, where an ok-flag per element would
// double the payload.
var NoPoint = Point{X: float32(math.NaN()), Y: float32(math.NaN())}

// IsNoPoint reports whether p is the NoPoint sentinel.
func (p Point) IsNoPoint() bool {
	return math.IsNaN(float64(p.X)) || math.IsNaN(float64(p.Y))
}

// CanvasSettings carries the per-frame view parameters. The caller mutates
// it between frames; a single projection pass treats it as read-only.
type CanvasSettings struct {
	Width            float32
	Height           float32
	BackgroundRadius float32
	ZoomFactor       float32
	DragSpeed        float32

	// NorthUp flips the projection when false, so south is at the top as
	// in a telescope view.
	NorthUp bool

	// Grid, Asterisms and ZodiacOnly are display toggles consumed by the
	// drawing layer; the projection itself only reads NorthUp.
	Grid       bool
	Asterisms  bool
	ZodiacOnly bool
}

// Constellation is one constellation's geometry: a closed boundary polygon
// (ordered, wrapping last to first) and asterism line segments (consecutive
// pairs of coordinates, unordered between pairs).
//
// Built once at startup from the packed catalog and immutable thereafter.
type Constellation struct {
	Boundary []SkyCoord
	Asterism []SkyCoord
	IsZodiac bool
}

// Validate checks the structural invariants: a boundary needs at least three
// points to enclose area, and asterism coordinates come in segment pairs.
func (c *Constellation) Validate() error {
	if len(c.Boundary) < 3 {
		return fmt.Errorf("boundary has %d points, need at least 3", len(c.Boundary))
	}
	if len(c.Asterism)%2 != 0 {
		return fmt.Errorf("asterism has %d coordinates, need an even count", len(c.Asterism))
	}
	return nil
}
