// Copyright 2026 The Chubbcord Authors
// SPDX-License-Identifier: Apache-2.0

// Package chat implements the terminal chat session: polling a channel
// for new messages, rendering them with mention and attachment
// formatting, and dispatching the user's typed commands.
//
// The moving parts:
//
//   - [Delta] computes which messages of a fresh fetch have not been
//     rendered yet, by ID, preserving fetch order.
//   - [Formatter] turns a message into a styled terminal line: mention
//     tokens become highlighted display names (resolved through a
//     [UserResolver]), the first attachment becomes a filename suffix
//     line, and reply references become an indented quote.
//   - [AttachmentCache] remembers which attachment URLs have already
//     been downloaded this session and owns the temp directory they
//     are materialized into.
//   - [Poller] owns the background fetch loop for the active channel.
//     One poller goroutine at a time; channel switches stop and join
//     it before starting a new one.
//   - [Controller] is the blocking read-eval loop over stdin: plain
//     lines are sent as messages, ":"-prefixed lines are commands.
//
// Rendering writes directly to the controller's output writer. There
// is no screen buffer; the terminal scrollback is the message history.
package chat
