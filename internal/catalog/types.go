// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package catalog

import "fmt"

// SpectralClass is the Morgan-Keenan spectral class of a star, hottest
// first. The wire encoding is the uint8 value.
type SpectralClass uint8

const (
	SpectralO SpectralClass = iota
	SpectralB
	SpectralA
	SpectralF
	SpectralG
	SpectralK
	SpectralM
)

// spectralLetters indexes String() by class value.
var spectralLetters = [...]string{"O", "B", "A", "F", "G", "K", "M"}

// String returns the class letter, or "?" for values outside the enum.
func (s SpectralClass) String() string {
	if int(s) >= len(spectralLetters) {
		return "?"
	}
	return spectralLetters[s]
}

// Valid reports whether s is one of the seven defined classes.
func (s SpectralClass) Valid() bool {
	return s <= SpectralM
}

// ParseSpectralClass converts a class letter to its enum value.
func ParseSpectralClass(letter string) (SpectralClass, error) {
	for i, l := range spectralLetters {
		if l == letter {
			return SpectralClass(i), nil
		}
	}
	return 0, fmt.Errorf("unknown spectral class %q", letter)
}

// Star is one catalog entry. RA and Dec are radians; Brightness is a
// normalized magnitude in [0, 1] with 1 the brightest.
type Star struct {
	RA         float32
	Dec        float32
	Brightness float32
	Spectral   SpectralClass
}

// ConstellationMeta is the display metadata for one constellation, kept in
// a JSON sidecar next to the binary blob and served at /constellations/meta.
type ConstellationMeta struct {
	Name    string `json:"name"`
	Epithet string `json:"epithet"`
}
