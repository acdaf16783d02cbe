// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

// Command skypack converts human-editable catalog sources into the packed
// binary files the server loads at startup.
//
// Star input is CSV with columns ra_deg, dec_deg, brightness, spectral; a
// header row is detected and skipped. Constellation input is a JSON array
// of figures with boundary and asterism coordinate lists in degrees. The
// tool emits the 13-byte star table, the constellation blob, and the JSON
// metadata sidecar:
//
//	skypack -stars stars.csv -constellations figures.json -out data/
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/uranographus/internal/catalog"
	"github.com/tomtom215/uranographus/internal/logging"
	"github.com/tomtom215/uranographus/internal/starfield"
)

// constellationSource is one figure in the JSON input. Coordinates are
// [ra_deg, dec_deg] pairs.
type constellationSource struct {
	Name     string       `json:"name"`
	Epithet  string       `json:"epithet"`
	Zodiac   bool         `json:"zodiac"`
	Boundary [][2]float64 `json:"boundary"`
	Asterism [][2]float64 `json:"asterism"`
}

func main() {
	var (
		starsPath = flag.String("stars", "", "star table CSV (ra_deg,dec_deg,brightness,spectral)")
		consPath  = flag.String("constellations", "", "constellation figures JSON")
		outDir    = flag.String("out", ".", "output directory")
	)
	flag.Parse()

	if *starsPath == "" && *consPath == "" {
		fmt.Fprintln(os.Stderr, "skypack: nothing to do; pass -stars and/or -constellations")
		flag.Usage()
		os.Exit(2)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logging.Fatal().Err(err).Msg("Failed to create output directory")
	}

	if *starsPath != "" {
		if err := packStars(*starsPath, filepath.Join(*outDir, "stars.bin")); err != nil {
			logging.Fatal().Err(err).Str("input", *starsPath).Msg("Failed to pack star table")
		}
	}

	if *consPath != "" {
		blobOut := filepath.Join(*outDir, "constellations.bin")
		metaOut := filepath.Join(*outDir, "constellations.json")
		if err := packConstellations(*consPath, blobOut, metaOut); err != nil {
			logging.Fatal().Err(err).Str("input", *consPath).Msg("Failed to pack constellations")
		}
	}
}

func packStars(inPath, outPath string) error {
	f, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer f.Close()

	stars, err := readStarCSV(f)
	if err != nil {
		return err
	}

	payload := catalog.EncodeStars(stars)
	if err := os.WriteFile(outPath, payload, 0o644); err != nil {
		return err
	}
	logging.Info().
		Int("stars", len(stars)).
		Int("bytes", len(payload)).
		Str("out", outPath).
		Msg("Star table packed")
	return nil
}

// readStarCSV parses the star table. A first row whose ra column is not
// numeric is treated as a header.
func readStarCSV(r io.Reader) ([]catalog.Star, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 4
	cr.TrimLeadingSpace = true

	var stars []catalog.Star
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		ra, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: bad ra %q", line, rec[0])
		}
		dec, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad dec %q", line, rec[1])
		}
		brightness, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad brightness %q", line, rec[2])
		}
		if brightness < 0 || brightness > 1 {
			return nil, fmt.Errorf("line %d: brightness %v outside [0, 1]", line, brightness)
		}
		spectral, err := catalog.ParseSpectralClass(strings.ToUpper(strings.TrimSpace(rec[3])))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		star, err := starFromDegrees(ra, dec, brightness, spectral)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		stars = append(stars, star)
	}
	if len(stars) == 0 {
		return nil, fmt.Errorf("no star records found")
	}
	return stars, nil
}

// starFromDegrees validates catalog ranges and converts to the radian
// float32 wire representation.
func starFromDegrees(raDeg, decDeg, brightness float64, spectral catalog.SpectralClass) (catalog.Star, error) {
	if raDeg < 0 || raDeg >= 360 {
		return catalog.Star{}, fmt.Errorf("ra %v outside [0, 360)", raDeg)
	}
	if decDeg < -90 || decDeg > 90 {
		return catalog.Star{}, fmt.Errorf("dec %v outside [-90, 90]", decDeg)
	}
	return catalog.Star{
		RA:         float32(raDeg * math.Pi / 180),
		Dec:        float32(decDeg * math.Pi / 180),
		Brightness: float32(brightness),
		Spectral:   spectral,
	}, nil
}

func packConstellations(inPath, blobOut, metaOut string) error {
	raw, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}

	var sources []constellationSource
	if err := json.Unmarshal(raw, &sources); err != nil {
		return fmt.Errorf("parsing %s: %w", inPath, err)
	}

	cons, meta, err := buildConstellations(sources)
	if err != nil {
		return err
	}

	blob, err := catalog.EncodeConstellations(cons)
	if err != nil {
		return err
	}
	metaPayload, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	if err := os.WriteFile(blobOut, blob, 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(metaOut, metaPayload, 0o644); err != nil {
		return err
	}
	logging.Info().
		Int("constellations", len(cons)).
		Int("blob_bytes", len(blob)).
		Str("blob", blobOut).
		Str("meta", metaOut).
		Msg("Constellations packed")
	return nil
}

// buildConstellations converts figure sources into blob records and the
// index-aligned metadata sidecar.
func buildConstellations(sources []constellationSource) ([]starfield.Constellation, []catalog.ConstellationMeta, error) {
	if len(sources) == 0 {
		return nil, nil, fmt.Errorf("no constellation figures found")
	}

	cons := make([]starfield.Constellation, 0, len(sources))
	meta := make([]catalog.ConstellationMeta, 0, len(sources))
	for i, src := range sources {
		if src.Name == "" {
			return nil, nil, fmt.Errorf("figure %d has no name", i)
		}
		if len(src.Boundary) < 3 {
			return nil, nil, fmt.Errorf("figure %q: boundary has %d points, want >= 3", src.Name, len(src.Boundary))
		}
		// Asterism points pair up into line segments.
		if len(src.Asterism)%2 != 0 {
			return nil, nil, fmt.Errorf("figure %q: asterism has %d points, want an even count", src.Name, len(src.Asterism))
		}

		boundary, err := coordsFromDegrees(src.Boundary)
		if err != nil {
			return nil, nil, fmt.Errorf("figure %q boundary: %w", src.Name, err)
		}
		asterism, err := coordsFromDegrees(src.Asterism)
		if err != nil {
			return nil, nil, fmt.Errorf("figure %q asterism: %w", src.Name, err)
		}

		cons = append(cons, starfield.Constellation{
			Boundary: boundary,
			Asterism: asterism,
			IsZodiac: src.Zodiac,
		})
		meta = append(meta, catalog.ConstellationMeta{Name: src.Name, Epithet: src.Epithet})
	}
	return cons, meta, nil
}

func coordsFromDegrees(pairs [][2]float64) ([]starfield.SkyCoord, error) {
	coords := make([]starfield.SkyCoord, 0, len(pairs))
	for i, p := range pairs {
		ra, dec := p[0], p[1]
		if ra < 0 || ra >= 360 {
			return nil, fmt.Errorf("point %d: ra %v outside [0, 360)", i, ra)
		}
		if dec < -90 || dec > 90 {
			return nil, fmt.Errorf("point %d: dec %v outside [-90, 90]", i, dec)
		}
		coords = append(coords, starfield.SkyCoord{
			RA:  float32(ra * math.Pi / 180),
			Dec: float32(dec * math.Pi / 180),
		})
	}
	return coords, nil
}
