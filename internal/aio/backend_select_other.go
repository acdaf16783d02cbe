// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

//go:build !linux && !windows

package aio

import "fmt"

// Platforms without a native completion API fall back to the portable
// backend.
func newDefaultBackend(poolSize, _ int) (Backend, error) {
	return newPortableBackend(poolSize), nil
}

func newPlatformBackend(kind string, _, _ int) (Backend, error) {
	return nil, fmt.Errorf("backend %q is not available on this platform", kind)
}
