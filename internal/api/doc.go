// Uranographus - Interactive Star Atlas Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/uranographus

// Package api maps parsed requests to responses, independent of the
// transport. The aio engine hands it one complete request buffer per
// call; it hands back the full wire bytes of the response. Routing is a
// literal path match over the atlas's fixed surface plus a static asset
// fallthrough; there is deliberately no middleware chain or pattern
// router on the data plane.
package api
