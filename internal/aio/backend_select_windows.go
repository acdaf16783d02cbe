// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

//go:build windows

package aio

import "fmt"

// On Windows the platform default is the I/O completion port backend.
func newDefaultBackend(poolSize, _ int) (Backend, error) {
	return newIOCPBackend(poolSize)
}

func newPlatformBackend(kind string, poolSize, _ int) (Backend, error) {
	if kind != "iocp" {
		return nil, fmt.Errorf("backend %q is not available on windows", kind)
	}
	return newIOCPBackend(poolSize)
}
