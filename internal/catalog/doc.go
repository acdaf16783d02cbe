// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

/*
Package catalog defines the packed binary catalog formats and loads them
into immutable in-memory form at startup.

Two byte-for-byte identical consumers exist for these formats: the server,
which serves the raw payloads over HTTP with exact Content-Length, and the
browser-side projection module, which decodes /constellations output into
geometry. The codecs here are therefore explicit serialization functions
with a documented field order and width, never a cast of in-memory struct
layout, and every format is round-trip tested.

# Star record (13 bytes, little-endian)

	offset  width  field
	0       4      right ascension, float32 radians
	4       4      declination, float32 radians
	8       4      brightness, float32 (0..1, 1 brightest)
	12      1      spectral class, uint8 (O=0 B=1 A=2 F=3 G=4 K=5 M=6)

The /stars payload is these records concatenated with no framing; the
record count is the payload length divided by 13.

# Constellation blob

	u32 count, u32 totalBoundary, u32 totalAsterism
	count x { u32 numBoundary, u32 numAsterism, u8 isZodiac }
	totalBoundary  x { f32 ra, f32 dec }   boundary coords, declaration order
	totalAsterism  x { f32 ra, f32 dec }   asterism coords, declaration order

Per-constellation slices are carved out of the two coordinate runs by
running totals of the per-constellation counts, in declaration order.

# Metadata sidecar

Display names live outside the binary blob in a JSON array of
{name, epithet} objects, one per constellation, in the same order.

All loaded data is immutable after Load returns and may be shared freely.
*/
package catalog
