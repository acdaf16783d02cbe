// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

// Command healthcheck probes the ops sidecar's readiness endpoint and
// exits non-zero on failure. Intended as a container HEALTHCHECK so
// images do not need curl or wget.
package main

import (
	"net/http"
	"os"
	"time"
)

func main() {
	url := os.Getenv("URANOGRAPHUS_HEALTHCHECK_URL")
	if url == "" {
		url = "http://127.0.0.1:2112/readyz"
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
