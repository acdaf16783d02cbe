// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package starfield

import (
	"math"
	"time"
)

// j2000Unix is the J2000.0 epoch (2000-01-01 12:00:00 UTC) in Unix seconds.
const j2000Unix = 946728000

// secondsPerDay ignores leap seconds, as sidereal formulas conventionally do.
const secondsPerDay = 86400

// FloatMod returns x modulo y with the sign of x: FloatMod(-3, 2) is -1,
// not 1. Callers expecting a mathematical modulus will be surprised by
// negative numerators; every use in this package either guarantees a
// non-negative numerator or wants exactly this symmetry (reducing angles
// measured in either direction from a zero point).
func FloatMod(x, y float64) float64 {
	return x - y*math.Trunc(x/y)
}

// DaysSinceJ2000 returns fractional days between t and the J2000.0 epoch.
func DaysSinceJ2000(t time.Time) float64 {
	return float64(t.UnixMilli()-j2000Unix*1000) / (secondsPerDay * 1000)
}

// GreenwichMeanSiderealTime returns GMST in radians, reduced to (-2pi, 2pi)
// by FloatMod, for a given count of days since J2000.0.
//
// The polynomial is Meeus' expression for sidereal time at Greenwich: a
// linear term of ~360.9856 degrees per day plus centuries-scale quadratic
// and cubic corrections that matter only far from the epoch.
func GreenwichMeanSiderealTime(daysSinceJ2000 float64) float64 {
	t := daysSinceJ2000 / 36525 // Julian centuries

	gmstDeg := 280.46061837 +
		360.98564736629*daysSinceJ2000 +
		0.000387933*t*t -
		t*t*t/38710000

	return FloatMod(gmstDeg*math.Pi/180, 2*math.Pi)
}

// LocalSiderealTime returns the local sidereal time in radians for an
// observer at the given east-positive longitude (radians) at instant t.
//
// The result is GMST plus longitude and is deliberately not re-normalized:
// downstream trigonometry is periodic and hour angles stay meaningful
// either way.
func LocalSiderealTime(t time.Time, lon float64) float64 {
	return GreenwichMeanSiderealTime(DaysSinceJ2000(t)) + lon
}
