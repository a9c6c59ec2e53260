// Copyright 2026 The Chubbcord Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides HTTP I/O utilities for chubbcord.
//
// Response body reads are bounded at MaxResponseSize to prevent unbounded
// memory allocation from a misbehaving server. These helpers are for JSON
// API responses and attachment downloads within the fetch window — not for
// streaming transfers.
package netutil

import "io"

// MaxResponseSize is the bound on response body reads: 256 MB. This exists
// solely to prevent a pathological response from exhausting system memory.
// Legitimate API responses are orders of magnitude smaller; the limit is
// intentionally generous so that it never interferes with normal operation.
const MaxResponseSize int64 = 256 << 20

// ReadResponse reads an HTTP response body up to MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}
