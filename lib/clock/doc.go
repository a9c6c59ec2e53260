// Copyright 2026 The Chubbcord Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for testability.
//
// Production code accepts a Clock parameter instead of calling time.Now,
// time.After, time.NewTicker, or time.Sleep directly. Real() provides
// standard library behavior; Fake() provides a deterministic clock that
// advances only when Advance is called.
//
// When a goroutine calls Sleep, After, or NewTicker on a FakeClock, it
// registers a pending waiter. Tests use WaitForTimers to block until the
// goroutine has registered its waiter before calling Advance, which
// eliminates the race between timer registration and time advancement.
package clock
