// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

//go:build linux

package aio

import (
	"fmt"

	"github.com/tomtom215/uranographus/internal/logging"
)

// On Linux the platform default is the io_uring backend. Ring setup can
// fail on older kernels and under seccomp policies that filter the
// io_uring syscalls, so auto falls back to the portable backend rather
// than refusing to start.
func newDefaultBackend(poolSize, uringEntries int) (Backend, error) {
	b, err := newURingBackend(poolSize, uringEntries)
	if err != nil {
		logging.Warn().Err(err).Msg("io_uring unavailable, using portable backend")
		return newPortableBackend(poolSize), nil
	}
	return b, nil
}

func newPlatformBackend(kind string, poolSize, uringEntries int) (Backend, error) {
	if kind != "uring" {
		return nil, fmt.Errorf("backend %q is not available on linux", kind)
	}
	return newURingBackend(poolSize, uringEntries)
}
