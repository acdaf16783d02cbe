// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package catalog

import (
	"encoding/binary"
	"fmt"
	"math"
)

// StarRecordSize is the packed wire size of one star: three float32 fields
// and one spectral byte.
const StarRecordSize = 13

// AppendStar appends the 13-byte little-endian encoding of s to dst and
// returns the extended slice.
func AppendStar(dst []byte, s Star) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(s.RA))
	dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(s.Dec))
	dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(s.Brightness))
	return append(dst, byte(s.Spectral))
}

// DecodeStar decodes one star record from the front of b.
func DecodeStar(b []byte) (Star, error) {
	if len(b) < StarRecordSize {
		return Star{}, fmt.Errorf("star record needs %d bytes, have %d", StarRecordSize, len(b))
	}

	s := Star{
		RA:         math.Float32frombits(binary.LittleEndian.Uint32(b[0:4])),
		Dec:        math.Float32frombits(binary.LittleEndian.Uint32(b[4:8])),
		Brightness: math.Float32frombits(binary.LittleEndian.Uint32(b[8:12])),
		Spectral:   SpectralClass(b[12]),
	}
	if !s.Spectral.Valid() {
		return Star{}, fmt.Errorf("spectral class %d out of range", b[12])
	}
	return s, nil
}

// EncodeStars packs stars into the concatenated /stars payload.
func EncodeStars(stars []Star) []byte {
	out := make([]byte, 0, len(stars)*StarRecordSize)
	for _, s := range stars {
		out = AppendStar(out, s)
	}
	return out
}

// DecodeStars decodes a concatenated star payload. The payload length must
// be an exact multiple of the record size: a remainder means truncation or
// corruption, never padding.
func DecodeStars(b []byte) ([]Star, error) {
	if len(b)%StarRecordSize != 0 {
		return nil, fmt.Errorf("star payload length %d is not a multiple of %d", len(b), StarRecordSize)
	}

	stars := make([]Star, 0, len(b)/StarRecordSize)
	for off := 0; off < len(b); off += StarRecordSize {
		s, err := DecodeStar(b[off : off+StarRecordSize])
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", off/StarRecordSize, err)
		}
		stars = append(stars, s)
	}
	return stars, nil
}
