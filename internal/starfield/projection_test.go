// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package starfield

import (
	"math"
	"testing"
)

func testSettings() CanvasSettings {
	return CanvasSettings{
		Width:            800,
		Height:           600,
		BackgroundRadius: 280,
		ZoomFactor:       1,
		DragSpeed:        1,
		NorthUp:          true,
	}
}

// angularClose compares two angles modulo a full turn.
func angularClose(a, b float32, tol float64) bool {
	diff := math.Abs(float64(a) - float64(b))
	diff = FloatMod(diff, 2*math.Pi)
	if diff > math.Pi {
		diff = 2*math.Pi - diff
	}
	return diff < tol
}

// TestCoordToPointNearZenith verifies an object just off the zenith lands
// just off the canvas center. The exact zenith is excluded: azimuth is
// undefined there and the formula is documented as unstable.
func TestCoordToPointNearZenith(t *testing.T) {
	s := testSettings()
	lat := 0.8
	lst := 2.5
	sinLat, cosLat := math.Sincos(lat)

	// Declination slightly south of the observer's latitude, on the
	// meridian: altitude is just under 90 degrees.
	c := SkyCoord{RA: float32(lst), Dec: float32(lat - 0.01)}

	p, ok := CoordToPoint(c, lst, sinLat, cosLat, true, s)
	if !ok {
		t.Fatalf("CoordToPoint near zenith returned no point")
	}

	cx := float64(s.Width) / 2
	cy := float64(s.Height) / 2
	dist := math.Hypot(float64(p.X)-cx, float64(p.Y)-cy)

	// s = (2/pi) * 0.01 of the background radius.
	want := (2 / math.Pi) * 0.01 * float64(s.BackgroundRadius)
	if math.Abs(dist-want) > 0.5 {
		t.Errorf("distance from center = %v px, want about %v px", dist, want)
	}
}

// TestCoordToPointHorizonFilter verifies below-horizon objects are filtered
// when requested and land outside the background circle when not.
func TestCoordToPointHorizonFilter(t *testing.T) {
	s := testSettings()
	lat := math.Pi / 4
	lst := 1.0
	sinLat, cosLat := math.Sincos(lat)

	// On the meridian at declination -60 degrees: altitude is negative
	// for an observer at +45 degrees.
	c := SkyCoord{RA: float32(lst), Dec: float32(-60 * math.Pi / 180)}

	if _, ok := CoordToPoint(c, lst, sinLat, cosLat, true, s); ok {
		t.Errorf("below-horizon object not filtered")
	}

	p, ok := CoordToPoint(c, lst, sinLat, cosLat, false, s)
	if !ok {
		t.Fatalf("unfiltered projection returned no point")
	}
	cx := float64(s.Width) / 2
	cy := float64(s.Height) / 2
	dist := math.Hypot(float64(p.X)-cx, float64(p.Y)-cy)
	if dist <= float64(s.BackgroundRadius) {
		t.Errorf("below-horizon object at distance %v px, want outside radius %v", dist, s.BackgroundRadius)
	}
}

// TestProjectionInverseLaw round-trips a grid of above-horizon coordinates
// through CoordToPoint and PointToCoord. Reconstruction must agree within
// float32 tolerance everywhere away from the unstable zenith.
func TestProjectionInverseLaw(t *testing.T) {
	s := testSettings()
	lat := 0.8
	lst := 2.5
	sinLat, cosLat := math.Sincos(lat)

	const tol = 2e-3

	for raDeg := 0; raDeg < 360; raDeg += 30 {
		for decDeg := -80; decDeg <= 80; decDeg += 20 {
			c := SkyCoord{
				RA:  float32(float64(raDeg) * math.Pi / 180),
				Dec: float32(float64(decDeg) * math.Pi / 180),
			}

			p, ok := CoordToPoint(c, lst, sinLat, cosLat, true, s)
			if !ok {
				continue // below horizon, nothing to invert
			}

			// Skip the near-zenith band where azimuth is unstable.
			cx := float64(s.Width) / 2
			cy := float64(s.Height) / 2
			if math.Hypot(float64(p.X)-cx, float64(p.Y)-cy) < 2 {
				continue
			}

			back, ok := PointToCoord(p, lst, sinLat, cosLat, s)
			if !ok {
				t.Errorf("PointToCoord rejected projected point %v for RA=%d Dec=%d", p, raDeg, decDeg)
				continue
			}

			if !angularClose(back.RA, c.RA, tol) {
				t.Errorf("RA round trip: got %v, want %v (RA=%d Dec=%d)", back.RA, c.RA, raDeg, decDeg)
			}
			if math.Abs(float64(back.Dec)-float64(c.Dec)) > tol {
				t.Errorf("Dec round trip: got %v, want %v (RA=%d Dec=%d)", back.Dec, c.Dec, raDeg, decDeg)
			}
		}
	}
}

// TestPointToCoordOutsideCircle verifies points beyond the background
// circle yield no coordinate.
func TestPointToCoordOutsideCircle(t *testing.T) {
	s := testSettings()
	sinLat, cosLat := math.Sincos(0.8)

	tests := []struct {
		name string
		p    Point
	}{
		{name: "corner", p: Point{X: 0, Y: 0}},
		{name: "just past the rim", p: Point{X: 400 + 281, Y: 300}},
		{name: "far outside canvas", p: Point{X: 5000, Y: 5000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := PointToCoord(tt.p, 2.5, sinLat, cosLat, s); ok {
				t.Errorf("PointToCoord(%v) = ok, want rejection", tt.p)
			}
		})
	}

	// The exact center is safely inside.
	if _, ok := PointToCoord(Point{X: 400, Y: 300}, 2.5, sinLat, cosLat, s); !ok {
		t.Errorf("PointToCoord(center) rejected, want ok")
	}
}

// TestCoordToPointNorthUpFlip verifies the not-north-up projection mirrors
// a point through the canvas center.
func TestCoordToPointNorthUpFlip(t *testing.T) {
	s := testSettings()
	lat := 0.8
	lst := 2.5
	sinLat, cosLat := math.Sincos(lat)
	c := SkyCoord{RA: 1.0, Dec: 0.5}

	up, ok := CoordToPoint(c, lst, sinLat, cosLat, true, s)
	if !ok {
		t.Fatalf("north-up projection filtered unexpectedly")
	}

	s.NorthUp = false
	down, ok := CoordToPoint(c, lst, sinLat, cosLat, true, s)
	if !ok {
		t.Fatalf("flipped projection filtered unexpectedly")
	}

	cx := float32(400)
	cy := float32(300)
	if math.Abs(float64(up.X-cx)+float64(down.X-cx)) > 1e-3 {
		t.Errorf("X not mirrored: up=%v down=%v", up.X, down.X)
	}
	if math.Abs(float64(up.Y-cy)+float64(down.Y-cy)) > 1e-3 {
		t.Errorf("Y not mirrored: up=%v down=%v", up.Y, down.Y)
	}
}

// TestProjectPoints verifies slice alignment and the NoPoint sentinel for
// filtered objects.
func TestProjectPoints(t *testing.T) {
	s := testSettings()
	lat := math.Pi / 4
	lst := 1.0
	sinLat, cosLat := math.Sincos(lat)

	coords := []SkyCoord{
		{RA: float32(lst), Dec: 0.5},                         // above horizon
		{RA: float32(lst), Dec: float32(-70 * math.Pi / 180)}, // below horizon
		{RA: float32(lst + 0.3), Dec: 0.2},                   // above horizon
	}

	points := ProjectPoints(nil, coords, lst, sinLat, cosLat, true, s)
	if len(points) != len(coords) {
		t.Fatalf("len(points) = %d, want %d", len(points), len(coords))
	}

	if points[0].IsNoPoint() {
		t.Errorf("points[0] is NoPoint, want a drawable point")
	}
	if !points[1].IsNoPoint() {
		t.Errorf("points[1] = %v, want NoPoint for below-horizon object", points[1])
	}
	if points[2].IsNoPoint() {
		t.Errorf("points[2] is NoPoint, want a drawable point")
	}

	// Reusing the destination must not reallocate.
	reuse := ProjectPoints(points, coords[:1], lst, sinLat, cosLat, true, s)
	if len(reuse) != 1 {
		t.Errorf("len(reuse) = %d, want 1", len(reuse))
	}
}
