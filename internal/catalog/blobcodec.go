// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package catalog

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/tomtom215/uranographus/internal/starfield"
)

const (
	blobHeaderSize  = 12 // count + totalBoundary + totalAsterism, u32 each
	blobRecordSize  = 9  // numBoundary u32 + numAsterism u32 + isZodiac u8
	coordPairSize   = 8  // ra f32 + dec f32
	maxConstellRecs = 1 << 16
)

func appendCoord(dst []byte, c starfield.SkyCoord) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(c.RA))
	return binary.LittleEndian.AppendUint32(dst, math.Float32bits(c.Dec))
}

func decodeCoord(b []byte) starfield.SkyCoord {
	return starfield.SkyCoord{
		RA:  math.Float32frombits(binary.LittleEndian.Uint32(b[0:4])),
		Dec: math.Float32frombits(binary.LittleEndian.Uint32(b[4:8])),
	}
}

// EncodeConstellations packs constellations into the wire blob described in
// the package documentation: a three-count header, the per-constellation
// record table, then all boundary coordinates followed by all asterism
// coordinates.
func EncodeConstellations(cons []starfield.Constellation) ([]byte, error) {
	totalBoundary := 0
	totalAsterism := 0
	for i, c := range cons {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("constellation %d: %w", i, err)
		}
		totalBoundary += len(c.Boundary)
		totalAsterism += len(c.Asterism)
	}

	size := blobHeaderSize + len(cons)*blobRecordSize + (totalBoundary+totalAsterism)*coordPairSize
	out := make([]byte, 0, size)

	out = binary.LittleEndian.AppendUint32(out, uint32(len(cons)))
	out = binary.LittleEndian.AppendUint32(out, uint32(totalBoundary))
	out = binary.LittleEndian.AppendUint32(out, uint32(totalAsterism))

	for _, c := range cons {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(c.Boundary)))
		out = binary.LittleEndian.AppendUint32(out, uint32(len(c.Asterism)))
		if c.IsZodiac {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
	}
	for _, c := range cons {
		for _, p := range c.Boundary {
			out = appendCoord(out, p)
		}
	}
	for _, c := range cons {
		for _, p := range c.Asterism {
			out = appendCoord(out, p)
		}
	}
	return out, nil
}

// DecodeConstellations parses a constellation blob. The header totals, the
// per-record sums, and the blob length must all agree exactly before any
// coordinate storage is allocated, so a corrupt header cannot drive a huge
// allocation.
func DecodeConstellations(b []byte) ([]starfield.Constellation, error) {
	if len(b) < blobHeaderSize {
		return nil, fmt.Errorf("constellation blob needs at least %d header bytes, have %d", blobHeaderSize, len(b))
	}

	count := binary.LittleEndian.Uint32(b[0:4])
	totalBoundary := binary.LittleEndian.Uint32(b[4:8])
	totalAsterism := binary.LittleEndian.Uint32(b[8:12])

	if count > maxConstellRecs {
		return nil, fmt.Errorf("constellation count %d exceeds limit %d", count, maxConstellRecs)
	}

	wantLen := blobHeaderSize + int(count)*blobRecordSize + (int(totalBoundary)+int(totalAsterism))*coordPairSize
	if len(b) != wantLen {
		return nil, fmt.Errorf("constellation blob length %d, header implies %d", len(b), wantLen)
	}

	// Walk the record table first and cross-check the header totals. The
	// coordinate sections are carved by running totals, so a single record
	// lying about its counts would silently shift every later constellation.
	recs := b[blobHeaderSize : blobHeaderSize+int(count)*blobRecordSize]
	sumBoundary := uint64(0)
	sumAsterism := uint64(0)
	for i := 0; i < int(count); i++ {
		rec := recs[i*blobRecordSize:]
		sumBoundary += uint64(binary.LittleEndian.Uint32(rec[0:4]))
		sumAsterism += uint64(binary.LittleEndian.Uint32(rec[4:8]))
	}
	if sumBoundary != uint64(totalBoundary) {
		return nil, fmt.Errorf("boundary counts sum to %d, header says %d", sumBoundary, totalBoundary)
	}
	if sumAsterism != uint64(totalAsterism) {
		return nil, fmt.Errorf("asterism counts sum to %d, header says %d", sumAsterism, totalAsterism)
	}

	boundaryBase := blobHeaderSize + int(count)*blobRecordSize
	asterismBase := boundaryBase + int(totalBoundary)*coordPairSize

	cons := make([]starfield.Constellation, int(count))
	boundaryOff := boundaryBase
	asterismOff := asterismBase
	for i := range cons {
		rec := recs[i*blobRecordSize:]
		nb := int(binary.LittleEndian.Uint32(rec[0:4]))
		na := int(binary.LittleEndian.Uint32(rec[4:8]))
		zodiac := rec[8]

		c := starfield.Constellation{
			Boundary: make([]starfield.SkyCoord, nb),
			Asterism: make([]starfield.SkyCoord, na),
			IsZodiac: zodiac != 0,
		}
		for j := range c.Boundary {
			c.Boundary[j] = decodeCoord(b[boundaryOff+j*coordPairSize:])
		}
		for j := range c.Asterism {
			c.Asterism[j] = decodeCoord(b[asterismOff+j*coordPairSize:])
		}
		boundaryOff += nb * coordPairSize
		asterismOff += na * coordPairSize

		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("constellation %d: %w", i, err)
		}
		cons[i] = c
	}
	return cons, nil
}
