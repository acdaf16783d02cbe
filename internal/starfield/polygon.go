// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package starfield

// PointInPolygon reports whether p lies inside the polygon using a two-ray
// even-odd test: one horizontal ray to the left canvas edge, one to the
// right, counting edge crossings for each. The point is inside iff both
// counts are odd.
//
// A single ray misclassifies points whose ray passes exactly through a
// polygon vertex; demanding agreement from two opposite rays rejects those
// degenerate geometries without vertex special-casing. Polygon edges wrap
// from the last point back to the first.
func PointInPolygon(p Point, polygon []Point) bool {
	if len(polygon) < 3 {
		return false
	}

	px := float64(p.X)
	py := float64(p.Y)
	left, right := 0, 0

	for i := range polygon {
		a := polygon[i]
		b := polygon[(i+1)%len(polygon)]

		ay := float64(a.Y)
		by := float64(b.Y)
		// Half-open interval per edge so a crossing exactly at a shared
		// vertex is counted for exactly one of its two edges.
		if (ay > py) == (by > py) {
			continue
		}

		t := (py - ay) / (by - ay)
		ix := float64(a.X) + t*(float64(b.X)-float64(a.X))
		if ix < px {
			left++
		} else if ix > px {
			right++
		}
	}

	return left%2 == 1 && right%2 == 1
}

// ConstellationAt returns the index of the first constellation whose
// projected boundary contains p, or -1 if none does. boundaries[i] must be
// constellation i's boundary projected into canvas space by the caller.
//
// Boundaries with a NoPoint vertex (partially below the horizon under a
// filtered projection) are skipped: their canvas geometry is incomplete
// and a hit test against it would be meaningless.
func ConstellationAt(p Point, boundaries [][]Point) int {
	for i, boundary := range boundaries {
		if hasNoPoint(boundary) {
			continue
		}
		if PointInPolygon(p, boundary) {
			return i
		}
	}
	return -1
}

func hasNoPoint(points []Point) bool {
	for _, pt := range points {
		if pt.IsNoPoint() {
			return true
		}
	}
	return false
}
