// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package starfield

import "math"

// CoordToPoint projects an equatorial coordinate onto the canvas for an
// observer described by lst (local sidereal time, radians) and the
// precomputed sine and cosine of the observer's latitude.
//
// When filterBelowHorizon is set and the object's altitude is negative the
// second return is false and the Point is meaningless; the object must not
// be drawn. Without the filter, below-horizon objects project outside the
// background circle.
//
// The azimuth is recovered from an acos ratio with its hemisphere resolved
// by the sign of sin(hour angle). The ratio degenerates near the zenith
// and the celestial pole, where azimuth is ill-defined anyway; the formula
// is kept as is rather than special-cased.
func CoordToPoint(c SkyCoord, lst, sinLat, cosLat float64, filterBelowHorizon bool, s CanvasSettings) (Point, bool) {
	hourAngle := lst - float64(c.RA)
	sinDec, cosDec := math.Sincos(float64(c.Dec))

	sinAlt := sinDec*sinLat + cosDec*cosLat*math.Cos(hourAngle)
	altitude := math.Asin(sinAlt)
	if filterBelowHorizon && altitude < 0 {
		return Point{}, false
	}

	azimuth := math.Acos((sinDec - sinAlt*sinLat) / (math.Cos(altitude) * cosLat))
	if math.Sin(hourAngle) > 0 {
		azimuth = 2*math.Pi - azimuth
	}

	// Zenith at the disk center, horizon at the rim; negative altitudes
	// land outside the unit disk.
	sDisk := 1 - altitude*(2/math.Pi)
	x := -sDisk * math.Sin(azimuth)
	y := sDisk * math.Cos(azimuth)

	scale := float64(s.BackgroundRadius) * float64(s.ZoomFactor)
	if !s.NorthUp {
		scale = -scale
	}

	return Point{
		X: float32(x*scale + float64(s.Width)/2),
		Y: float32(y*scale + float64(s.Height)/2),
	}, true
}

// PointToCoord inverts CoordToPoint for pointer hit-testing. It is defined
// only for points inside the canvas's background circle; for any other
// point the second return is false.
func PointToCoord(p Point, lst, sinLat, cosLat float64, s CanvasSettings) (SkyCoord, bool) {
	dx := float64(p.X) - float64(s.Width)/2
	dy := float64(p.Y) - float64(s.Height)/2
	if math.Hypot(dx, dy) > float64(s.BackgroundRadius) {
		return SkyCoord{}, false
	}

	scale := float64(s.BackgroundRadius) * float64(s.ZoomFactor)
	if !s.NorthUp {
		scale = -scale
	}
	x := dx / scale
	y := dy / scale

	sDisk := math.Hypot(x, y)
	altitude := (1 - sDisk) * (math.Pi / 2)
	azimuth := math.Atan2(-x, y)
	if azimuth < 0 {
		azimuth += 2 * math.Pi
	}

	sinAlt, cosAlt := math.Sincos(altitude)
	sinDec := sinAlt*sinLat + cosAlt*cosLat*math.Cos(azimuth)
	dec := math.Asin(clampUnit(sinDec))

	hourAngle := math.Acos(clampUnit((sinAlt - sinDec*sinLat) / (math.Cos(dec) * cosLat)))
	// East of the meridian (azimuth in the first half-turn) means the
	// object has not yet culminated: negative hour angle.
	if math.Sin(azimuth) >= 0 {
		hourAngle = -hourAngle
	}

	ra := FloatMod(lst-hourAngle, 2*math.Pi)
	if ra < 0 {
		ra += 2 * math.Pi
	}

	return SkyCoord{RA: float32(ra), Dec: float32(dec)}, true
}

// ProjectPoints projects coords into dst, writing NoPoint for filtered
// objects so element i of dst always corresponds to element i of coords.
// dst is grown as needed and returned.
func ProjectPoints(dst []Point, coords []SkyCoord, lst, sinLat, cosLat float64, filterBelowHorizon bool, s CanvasSettings) []Point {
	dst = dst[:0]
	for _, c := range coords {
		p, ok := CoordToPoint(c, lst, sinLat, cosLat, filterBelowHorizon, s)
		if !ok {
			p = NoPoint
		}
		dst = append(dst, p)
	}
	return dst
}

// clampUnit pins x into [-1, 1] so trig identities that drift a few ulps
// out of domain do not produce NaN.
func clampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}
