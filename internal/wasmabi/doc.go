// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

/*
Package wasmabi defines the byte layouts that cross the WebAssembly
boundary between the browser glue and the starfield module.

Only primitive scalars and pointer/length pairs cross the boundary, so
every structured value is packed into a byte buffer with a fixed field
order and little-endian primitive widths. The JavaScript side encodes and
decodes the same layouts with DataView; both sides must agree byte for
byte, which is why the layouts live here as explicit append/decode
functions instead of relying on in-memory struct layout.

Layouts, offsets in bytes:

	CanvasSettings (24 bytes)
	  0  width             f32
	  4  height            f32
	  8  backgroundRadius  f32
	  12 zoomFactor        f32
	  16 dragSpeed         f32
	  20 northUp           u8 (0 or 1)
	  21 grid              u8
	  22 asterisms         u8
	  23 zodiacOnly        u8

	SkyCoord (8 bytes)
	  0 rightAscension f32 (radians)
	  4 declination    f32 (radians)

	Point (8 bytes)
	  0 x f32 (canvas pixels)
	  4 y f32
	  NaN in either field marks "no point" (object not drawable).

	GeoCoord (16 bytes)
	  0 latitude  f64 (radians)
	  8 longitude f64 (radians)

Sequence payloads are bare concatenations of the element layout with no
header; the element count travels separately as a length parameter.

Booleans decode as nonzero-is-true so the JavaScript side may write any
truthy byte, but encode strictly as 0 or 1.
*/
package wasmabi
