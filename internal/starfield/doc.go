// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

/*
Package starfield implements the coordinate projection engine that turns
celestial coordinates into canvas pixels for a given observer.

The same package backs two deployments: the server (for tests and tooling)
and the browser, where cmd/starfield-wasm compiles it to WebAssembly and
invokes it once per frame.

# Coordinate pipeline

A star's equatorial position (right ascension, declination) is fixed; what
moves is the observer. For an observer at a given latitude, longitude and
instant, the pipeline is:

 1. Local sidereal time: a polynomial approximation of Greenwich mean
    sidereal time in days since the J2000.0 epoch, reduced modulo 2pi,
    plus the observer's longitude.
 2. Horizontal coordinates: hour angle = LST - RA, then altitude and
    azimuth from the standard spherical triangle relations.
 3. Unit disk: the whole visible hemisphere maps onto a disk with the
    zenith at the center and the horizon at the rim, s = 1 - (2/pi)*alt.
 4. Canvas pixels: scale by backgroundRadius*zoomFactor (negated when the
    view is not north-up) and translate to the canvas center.

PointToCoord runs the same pipeline backwards for pointer hit-testing; it
is defined only for points inside the background circle.

# Numerical conventions

FloatMod is a sign-preserving modulus: the result carries the numerator's
sign. This is surprising if you expect a mathematical modulus, and it is
kept deliberately; see the function comment.

The azimuth recovered in CoordToPoint uses an acos ratio whose sign is
resolved by sin(hour angle). Near the zenith and the celestial pole the
ratio degenerates and precision suffers. This is a known property of the
formula and is left as is rather than masked; callers that care should
avoid sampling within a few arcminutes of the zenith.

The great-circle routines guard every acos/asin against arguments that
drift out of [-1, 1] from floating error. An out-of-domain distance is
treated as zero distance, never a NaN that would poison a waypoint list.

# Constellation hit-testing

Point-in-polygon uses two opposite horizontal rays, one to each canvas
edge, and requires BOTH intersection counts to be odd. A single-ray
even-odd test misclassifies points whose ray grazes a vertex; requiring
agreement from both directions rejects those degenerate cases without
per-vertex special-casing.

# Concurrency

Everything in this package is pure computation over immutable inputs.
Constellation slices are built once at startup and may be shared by any
number of goroutines without synchronization.
*/
package starfield
