// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package wasmabi

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tomtom215/uranographus/internal/starfield"
)

// Packed element sizes in bytes.
const (
	SettingsSize = 24
	CoordSize    = 8
	PointSize    = 8
	GeoSize      = 16
)

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func appendF32(dst []byte, v float32) []byte {
	return binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
}

func f32At(b []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[off : off+4]))
}

// AppendSettings appends the 24-byte encoding of s to dst.
func AppendSettings(dst []byte, s starfield.CanvasSettings) []byte {
	dst = appendF32(dst, s.Width)
	dst = appendF32(dst, s.Height)
	dst = appendF32(dst, s.BackgroundRadius)
	dst = appendF32(dst, s.ZoomFactor)
	dst = appendF32(dst, s.DragSpeed)
	dst = append(dst, boolByte(s.NorthUp), boolByte(s.Grid), boolByte(s.Asterisms), boolByte(s.ZodiacOnly))
	return dst
}

// DecodeSettings decodes canvas settings from the front of b.
func DecodeSettings(b []byte) (starfield.CanvasSettings, error) {
	if len(b) < SettingsSize {
		return starfield.CanvasSettings{}, fmt.Errorf("settings need %d bytes, have %d", SettingsSize, len(b))
	}
	return starfield.CanvasSettings{
		Width:            f32At(b, 0),
		Height:           f32At(b, 4),
		BackgroundRadius: f32At(b, 8),
		ZoomFactor:       f32At(b, 12),
		DragSpeed:        f32At(b, 16),
		NorthUp:          b[20] != 0,
		Grid:             b[21] != 0,
		Asterisms:        b[22] != 0,
		ZodiacOnly:       b[23] != 0,
	}, nil
}

// AppendCoord appends the 8-byte encoding of c to dst.
func AppendCoord(dst []byte, c starfield.SkyCoord) []byte {
	dst = appendF32(dst, c.RA)
	return appendF32(dst, c.Dec)
}

// EncodeCoords packs coords into a bare concatenation.
func EncodeCoords(coords []starfield.SkyCoord) []byte {
	out := make([]byte, 0, len(coords)*CoordSize)
	for _, c := range coords {
		out = AppendCoord(out, c)
	}
	return out
}

// DecodeCoords unpacks a concatenated coordinate payload.
func DecodeCoords(b []byte) ([]starfield.SkyCoord, error) {
	if len(b)%CoordSize != 0 {
		return nil, fmt.Errorf("coord payload length %d is not a multiple of %d", len(b), CoordSize)
	}
	coords := make([]starfield.SkyCoord, len(b)/CoordSize)
	for i := range coords {
		off := i * CoordSize
		coords[i] = starfield.SkyCoord{RA: f32At(b, off), Dec: f32At(b, off+4)}
	}
	return coords, nil
}

// AppendPoint appends the 8-byte encoding of p to dst. NaN coordinates pass
// through bit-exact, preserving the no-point sentinel.
func AppendPoint(dst []byte, p starfield.Point) []byte {
	dst = appendF32(dst, p.X)
	return appendF32(dst, p.Y)
}

// EncodePoints packs points into a bare concatenation.
func EncodePoints(points []starfield.Point) []byte {
	out := make([]byte, 0, len(points)*PointSize)
	for _, p := range points {
		out = AppendPoint(out, p)
	}
	return out
}

// DecodePoints unpacks a concatenated point payload.
func DecodePoints(b []byte) ([]starfield.Point, error) {
	if len(b)%PointSize != 0 {
		return nil, fmt.Errorf("point payload length %d is not a multiple of %d", len(b), PointSize)
	}
	points := make([]starfield.Point, len(b)/PointSize)
	for i := range points {
		off := i * PointSize
		points[i] = starfield.Point{X: f32At(b, off), Y: f32At(b, off+4)}
	}
	return points, nil
}

// AppendGeo appends the 16-byte encoding of g to dst.
func AppendGeo(dst []byte, g starfield.GeoCoord) []byte {
	dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(g.Lat))
	return binary.LittleEndian.AppendUint64(dst, math.Float64bits(g.Lon))
}

// EncodeGeos packs geographic coordinates into a bare concatenation.
func EncodeGeos(geos []starfield.GeoCoord) []byte {
	out := make([]byte, 0, len(geos)*GeoSize)
	for _, g := range geos {
		out = AppendGeo(out, g)
	}
	return out
}

// DecodeGeos unpacks a concatenated geographic coordinate payload.
func DecodeGeos(b []byte) ([]starfield.GeoCoord, error) {
	if len(b)%GeoSize != 0 {
		return nil, fmt.Errorf("geo payload length %d is not a multiple of %d", len(b), GeoSize)
	}
	geos := make([]starfield.GeoCoord, len(b)/GeoSize)
	for i := range geos {
		off := i * GeoSize
		geos[i] = starfield.GeoCoord{
			Lat: math.Float64frombits(binary.LittleEndian.Uint64(b[off : off+8])),
			Lon: math.Float64frombits(binary.LittleEndian.Uint64(b[off+8 : off+16])),
		}
	}
	return geos, nil
}
