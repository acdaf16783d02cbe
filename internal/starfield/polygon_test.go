// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package starfield

import (
	"math"
	"testing"
)

// unitSquare is a boundary in projected-point space.
func unitSquare() []Point {
	return []Point{{0, 0}, {0, 1}, {1, 1}, {1, 0}}
}

func TestPointInPolygonUnitSquare(t *testing.T) {
	square := unitSquare()

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{name: "center inside", p: Point{0.5, 0.5}, want: true},
		{name: "far outside", p: Point{2, 2}, want: false},
		{name: "left of square", p: Point{-1, 0.5}, want: false},
		{name: "below square", p: Point{0.5, -0.5}, want: false},
		{name: "above square", p: Point{0.5, 1.5}, want: false},
		{name: "near corner inside", p: Point{0.1, 0.1}, want: true},
		{name: "near edge inside", p: Point{0.99, 0.5}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PointInPolygon(tt.p, square)
			if got != tt.want {
				t.Errorf("PointInPolygon(%v, square) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

// TestPointInPolygonTriangle exercises slanted edges and the vertex-graze
// case the two-ray rule exists for.
func TestPointInPolygonTriangle(t *testing.T) {
	triangle := []Point{{0, 0}, {2, 2}, {4, 0}}

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{name: "centroid inside", p: Point{2, 0.5}, want: true},
		{name: "inside below apex", p: Point{2, 1.5}, want: true},
		{name: "left of triangle at apex height", p: Point{1, 2}, want: false},
		{name: "right of triangle at apex height", p: Point{3, 2}, want: false},
		{name: "above apex", p: Point{2, 3}, want: false},
		{name: "outside left", p: Point{0.5, 1}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PointInPolygon(tt.p, triangle)
			if got != tt.want {
				t.Errorf("PointInPolygon(%v, triangle) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

// TestPointInPolygonConcave verifies the even-odd rule on a concave
// notch: a point inside the notch is outside the polygon even though it
// is surrounded by polygon area on three sides.
func TestPointInPolygonConcave(t *testing.T) {
	// A square with a notch cut into the top edge.
	notched := []Point{
		{0, 0}, {0, 4}, {1.5, 4}, {1.5, 1}, {2.5, 1}, {2.5, 4}, {4, 4}, {4, 0},
	}

	if PointInPolygon(Point{2, 2}, notched) {
		t.Errorf("point inside the notch reported as inside the polygon")
	}
	if !PointInPolygon(Point{0.5, 2}, notched) {
		t.Errorf("point in the left arm reported as outside")
	}
	if !PointInPolygon(Point{2, 0.5}, notched) {
		t.Errorf("point below the notch reported as outside")
	}
}

func TestPointInPolygonDegenerate(t *testing.T) {
	if PointInPolygon(Point{0, 0}, nil) {
		t.Errorf("nil polygon contains a point")
	}
	if PointInPolygon(Point{0, 0}, []Point{{0, 0}, {1, 1}}) {
		t.Errorf("two-point polygon contains a point")
	}
}

func TestConstellationAt(t *testing.T) {
	boundaries := [][]Point{
		unitSquare(),
		{{10, 10}, {10, 20}, {20, 20}, {20, 10}},
		// Larger square enclosing the first; tests first-match-wins.
		{{-1, -1}, {-1, 2}, {2, 2}, {2, -1}},
	}

	tests := []struct {
		name string
		p    Point
		want int
	}{
		{name: "inside first square", p: Point{0.5, 0.5}, want: 0},
		{name: "inside second square", p: Point{15, 15}, want: 1},
		{name: "only inside the large square", p: Point{1.5, 1.5}, want: 2},
		{name: "inside none", p: Point{100, 100}, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConstellationAt(tt.p, boundaries)
			if got != tt.want {
				t.Errorf("ConstellationAt(%v) = %d, want %d", tt.p, got, tt.want)
			}
		})
	}
}

// TestConstellationAtSkipsPartialBoundaries verifies boundaries containing
// the NoPoint sentinel are excluded from hit-testing.
func TestConstellationAtSkipsPartialBoundaries(t *testing.T) {
	nan := float32(math.NaN())
	boundaries := [][]Point{
		{{0, 0}, {0, 1}, {nan, nan}, {1, 0}},
		unitSquare(),
	}

	got := ConstellationAt(Point{0.5, 0.5}, boundaries)
	if got != 1 {
		t.Errorf("ConstellationAt = %d, want 1 (partial boundary skipped)", got)
	}
}
