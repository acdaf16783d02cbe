// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package starfield

import "math"

// AngularDistance returns the central angle in radians between two points
// on a sphere via the spherical law of cosines.
//
// For identical or antipodal points floating error can push the cosine a
// few ulps outside [-1, 1], which would make acos return NaN. The argument
// is clamped first; a result that is NaN anyway (propagated from NaN
// inputs) is reported as zero distance so callers degrade to a degenerate
// path instead of crashing.
func AngularDistance(a, b GeoCoord) float64 {
	sinLatA, cosLatA := math.Sincos(a.Lat)
	sinLatB, cosLatB := math.Sincos(b.Lat)

	cosD := sinLatA*sinLatB + cosLatA*cosLatB*math.Cos(b.Lon-a.Lon)
	d := math.Acos(clampUnit(cosD))
	if math.IsNaN(d) {
		return 0
	}
	return d
}

// initialCourse returns the departure bearing in radians from start toward
// end along the great circle, in [0, 2pi) measured clockwise from north.
// The hemisphere is chosen by comparing longitudes: an end west of the
// start yields a westward course.
func initialCourse(start, end GeoCoord, distance float64) float64 {
	sinD := math.Sin(distance)
	if sinD == 0 {
		return 0
	}

	ratio := (math.Sin(end.Lat) - math.Sin(start.Lat)*math.Cos(distance)) /
		(sinD * math.Cos(start.Lat))
	course := math.Acos(clampUnit(ratio))
	if math.IsNaN(course) {
		return 0
	}

	if end.Lon < start.Lon {
		course = 2*math.Pi - course
	}
	return course
}

// Waypoints returns n points evenly spaced along the great circle from
// start to end, endpoints included. n < 2 returns a single-element slice
// holding start. A zero-length circle (start equals end, or numerically
// indistinguishable from it) yields n copies of start and never a NaN.
func Waypoints(start, end GeoCoord, n int) []GeoCoord {
	if n < 2 {
		return []GeoCoord{start}
	}

	distance := AngularDistance(start, end)
	course := initialCourse(start, end, distance)

	sinLat, cosLat := math.Sincos(start.Lat)
	sinCourse, cosCourse := math.Sincos(course)

	points := make([]GeoCoord, 0, n)
	for i := 0; i < n; i++ {
		frac := float64(i) / float64(n-1)
		d := distance * frac
		sinD, cosD := math.Sincos(d)

		lat := math.Asin(clampUnit(sinLat*cosD + cosLat*sinD*cosCourse))
		dLon := math.Atan2(sinCourse*sinD*cosLat, cosD-sinLat*math.Sin(lat))

		points = append(points, GeoCoord{
			Lat: lat,
			Lon: wrapLongitude(start.Lon + dLon),
		})
	}
	return points
}

// wrapLongitude normalizes lon into [-pi, pi).
func wrapLongitude(lon float64) float64 {
	lon = FloatMod(lon+math.Pi, 2*math.Pi)
	if lon < 0 {
		lon += 2 * math.Pi
	}
	return lon - math.Pi
}
