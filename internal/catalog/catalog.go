// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package catalog

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/tomtom215/uranographus/internal/starfield"
)

// Catalog holds the fully decoded star and constellation data together with
// the exact byte payloads the server hands to clients. Payload bytes are
// produced once at load time; request handlers only ever slice them.
type Catalog struct {
	stars          []Star
	constellations []starfield.Constellation
	meta           []ConstellationMeta

	starsPayload          []byte
	constellationsPayload []byte
	metaPayload           []byte
}

// Load reads and decodes the three catalog files. The constellation metadata
// sidecar must carry exactly one entry per constellation record, in blob
// order.
func Load(starsPath, constellationsPath, metaPath string) (*Catalog, error) {
	starsRaw, err := os.ReadFile(starsPath)
	if err != nil {
		return nil, fmt.Errorf("reading star catalog: %w", err)
	}
	stars, err := DecodeStars(starsRaw)
	if err != nil {
		return nil, fmt.Errorf("decoding star catalog %s: %w", starsPath, err)
	}

	consRaw, err := os.ReadFile(constellationsPath)
	if err != nil {
		return nil, fmt.Errorf("reading constellation catalog: %w", err)
	}
	cons, err := DecodeConstellations(consRaw)
	if err != nil {
		return nil, fmt.Errorf("decoding constellation catalog %s: %w", constellationsPath, err)
	}

	metaRaw, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, fmt.Errorf("reading constellation metadata: %w", err)
	}
	var meta []ConstellationMeta
	if err := json.Unmarshal(metaRaw, &meta); err != nil {
		return nil, fmt.Errorf("decoding constellation metadata %s: %w", metaPath, err)
	}
	if len(meta) != len(cons) {
		return nil, fmt.Errorf("metadata has %d entries for %d constellations", len(meta), len(cons))
	}
	for i, m := range meta {
		if m.Name == "" {
			return nil, fmt.Errorf("metadata entry %d has empty name", i)
		}
	}

	// Re-marshal the metadata so the served payload is compact and
	// canonical regardless of how the sidecar file was formatted.
	metaPayload, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encoding constellation metadata payload: %w", err)
	}

	return &Catalog{
		stars:                 stars,
		constellations:        cons,
		meta:                  meta,
		starsPayload:          starsRaw,
		constellationsPayload: consRaw,
		metaPayload:           metaPayload,
	}, nil
}

// Stars returns the decoded star records in catalog order.
func (c *Catalog) Stars() []Star { return c.stars }

// Constellations returns the decoded constellation records in blob order.
func (c *Catalog) Constellations() []starfield.Constellation { return c.constellations }

// Meta returns the constellation metadata, index-aligned with
// Constellations.
func (c *Catalog) Meta() []ConstellationMeta { return c.meta }

// StarsPayload returns the packed star payload served on /stars. Callers
// must not mutate it.
func (c *Catalog) StarsPayload() []byte { return c.starsPayload }

// ConstellationsPayload returns the packed constellation blob served on
// /constellations. Callers must not mutate it.
func (c *Catalog) ConstellationsPayload() []byte { return c.constellationsPayload }

// MetaPayload returns the compact JSON served on /constellations/meta.
// Callers must not mutate it.
func (c *Catalog) MetaPayload() []byte { return c.metaPayload }
