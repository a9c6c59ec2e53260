// Copyright 2026 The Chubbcord Authors
// SPDX-License-Identifier: Apache-2.0

// Package discord wraps the Discord HTTP API for chubbcord's terminal
// client needs.
//
// The package provides two core types. [Client] is an unauthenticated
// client that handles password login, returning authenticated
// [*APISession] values. Client holds the API base URL, the username
// lookup service base URL, and the HTTP transport, shared across all
// sessions derived from it.
//
// [APISession] wraps a Client with a user token for authenticated
// operations: message fetch (newest-first window), message send,
// attachment upload (three-step: request an upload target, PUT the
// bytes, send the message referencing the stored filename), attachment
// download, and guild/channel/DM enumeration. Username resolution goes
// through a separate public lookup service and needs no token.
//
// The [Session] interface captures the operations the chat package
// consumes, so tests can substitute a fake without a network.
//
// All API errors are returned as [*APIError] with the HTTP status code
// and the server's message. [IsRateLimited] tests for the lookup
// service's rate limiting, which callers recover from with a single
// delayed retry.
package discord
