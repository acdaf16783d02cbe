// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

package catalog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func writeCatalogFiles(t *testing.T, stars []Star, metaJSON string) (starsPath, consPath, metaPath string) {
	t.Helper()
	dir := t.TempDir()

	starsPath = filepath.Join(dir, "stars.bin")
	if err := os.WriteFile(starsPath, EncodeStars(stars), 0o600); err != nil {
		t.Fatalf("writing stars file: %v", err)
	}

	blob, err := EncodeConstellations(sampleConstellations())
	if err != nil {
		t.Fatalf("encoding constellations: %v", err)
	}
	consPath = filepath.Join(dir, "constellations.bin")
	if err := os.WriteFile(consPath, blob, 0o600); err != nil {
		t.Fatalf("writing constellations file: %v", err)
	}

	metaPath = filepath.Join(dir, "meta.json")
	if err := os.WriteFile(metaPath, []byte(metaJSON), 0o600); err != nil {
		t.Fatalf("writing meta file: %v", err)
	}
	return starsPath, consPath, metaPath
}

func TestLoad(t *testing.T) {
	stars := []Star{
		{RA: 1.23, Dec: -0.45, Brightness: 0.9, Spectral: SpectralG},
		{RA: 2.5, Dec: 0.3, Brightness: 0.2, Spectral: SpectralM},
	}
	metaJSON := `[
		{"name": "Aries", "epithet": "the ram"},
		{"name": "Lyra",  "epithet": "the lyre"}
	]`
	starsPath, consPath, metaPath := writeCatalogFiles(t, stars, metaJSON)

	cat, err := Load(starsPath, consPath, metaPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cat.Stars()) != 2 {
		t.Errorf("Stars() length = %d, want 2", len(cat.Stars()))
	}
	if cat.Stars()[0] != stars[0] {
		t.Errorf("Stars()[0] = %+v, want %+v", cat.Stars()[0], stars[0])
	}
	if len(cat.Constellations()) != 2 {
		t.Errorf("Constellations() length = %d, want 2", len(cat.Constellations()))
	}
	if len(cat.Meta()) != 2 {
		t.Fatalf("Meta() length = %d, want 2", len(cat.Meta()))
	}
	if cat.Meta()[0].Name != "Aries" || cat.Meta()[1].Epithet != "the lyre" {
		t.Errorf("Meta() = %+v, want Aries/the lyre entries", cat.Meta())
	}

	if len(cat.StarsPayload()) != len(stars)*StarRecordSize {
		t.Errorf("StarsPayload() length = %d, want %d",
			len(cat.StarsPayload()), len(stars)*StarRecordSize)
	}
	if len(cat.ConstellationsPayload()) == 0 {
		t.Error("ConstellationsPayload() is empty")
	}
}

func TestLoadCompactsMetaPayload(t *testing.T) {
	metaJSON := "[\n  {\"name\": \"Orion\", \"epithet\": \"the hunter\"},\n  {\"name\": \"Draco\", \"epithet\": \"the dragon\"}\n]\n"
	starsPath, consPath, metaPath := writeCatalogFiles(t, nil, metaJSON)

	cat, err := Load(starsPath, consPath, metaPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	payload := cat.MetaPayload()
	if bytes.ContainsAny(payload, "\n") {
		t.Errorf("MetaPayload() contains newlines: %q", payload)
	}

	var roundTrip []ConstellationMeta
	if err := json.Unmarshal(payload, &roundTrip); err != nil {
		t.Fatalf("MetaPayload() is not valid JSON: %v", err)
	}
	if len(roundTrip) != 2 || roundTrip[0].Name != "Orion" {
		t.Errorf("MetaPayload() decodes to %+v, want the Orion/Draco entries", roundTrip)
	}
}

func TestLoadErrors(t *testing.T) {
	goodMeta := `[{"name": "Aries", "epithet": "the ram"}, {"name": "Lyra", "epithet": "the lyre"}]`

	t.Run("missing stars file", func(t *testing.T) {
		_, consPath, metaPath := writeCatalogFiles(t, nil, goodMeta)
		_, err := Load(filepath.Join(t.TempDir(), "absent.bin"), consPath, metaPath)
		if err == nil || !strings.Contains(err.Error(), "star catalog") {
			t.Errorf("Load() error = %v, want star catalog read failure", err)
		}
	})

	t.Run("corrupt constellation blob", func(t *testing.T) {
		starsPath, consPath, metaPath := writeCatalogFiles(t, nil, goodMeta)
		if err := os.WriteFile(consPath, []byte{1, 2, 3}, 0o600); err != nil {
			t.Fatal(err)
		}
		_, err := Load(starsPath, consPath, metaPath)
		if err == nil || !strings.Contains(err.Error(), "constellation catalog") {
			t.Errorf("Load() error = %v, want constellation decode failure", err)
		}
	})

	t.Run("metadata count mismatch", func(t *testing.T) {
		starsPath, consPath, metaPath := writeCatalogFiles(t, nil,
			`[{"name": "Aries", "epithet": "the ram"}]`)
		_, err := Load(starsPath, consPath, metaPath)
		if err == nil || !strings.Contains(err.Error(), "1 entries for 2 constellations") {
			t.Errorf("Load() error = %v, want count mismatch", err)
		}
	})

	t.Run("metadata entry without name", func(t *testing.T) {
		starsPath, consPath, metaPath := writeCatalogFiles(t, nil,
			`[{"name": "Aries", "epithet": "the ram"}, {"name": "", "epithet": "nameless"}]`)
		_, err := Load(starsPath, consPath, metaPath)
		if err == nil || !strings.Contains(err.Error(), "empty name") {
			t.Errorf("Load() error = %v, want empty name rejection", err)
		}
	})

	t.Run("malformed metadata JSON", func(t *testing.T) {
		starsPath, consPath, metaPath := writeCatalogFiles(t, nil, `{"not": "an array"`)
		_, err := Load(starsPath, consPath, metaPath)
		if err == nil || !strings.Contains(err.Error(), "metadata") {
			t.Errorf("Load() error = %v, want metadata decode failure", err)
		}
	})
}
