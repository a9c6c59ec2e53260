// Copyright 2026 The Chubbcord Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/chubbcord/chubbcord/discord"
	"github.com/chubbcord/chubbcord/lib/clock"
)

// DefaultRetryDelay is how long the resolver waits before its single
// retry after the lookup service reports rate limiting.
const DefaultRetryDelay = 2 * time.Second

// UsernameLookup is the slice of discord.Session the resolver needs.
type UsernameLookup interface {
	LookupUsername(ctx context.Context, userID string) (string, error)
}

// UserResolverConfig holds configuration for creating a UserResolver.
type UserResolverConfig struct {
	// Lookup performs the remote username lookup.
	Lookup UsernameLookup
	// Clock is used for the rate-limit retry delay. If nil, the real
	// clock is used.
	Clock clock.Clock
	// RetryDelay overrides DefaultRetryDelay when positive.
	RetryDelay time.Duration
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// UserResolver resolves user IDs to usernames through the public
// lookup service, memoizing successes for the lifetime of the session.
// Safe for concurrent use.
type UserResolver struct {
	lookup     UsernameLookup
	clock      clock.Clock
	retryDelay time.Duration
	logger     *slog.Logger

	mu        sync.Mutex
	usernames map[string]string
}

// NewUserResolver creates a UserResolver.
func NewUserResolver(config UserResolverConfig) *UserResolver {
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	retryDelay := config.RetryDelay
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &UserResolver{
		lookup:     config.Lookup,
		clock:      clk,
		retryDelay: retryDelay,
		logger:     logger,
		usernames:  make(map[string]string),
	}
}

// Resolve returns the username for userID. On rate limiting it waits
// retryDelay and tries once more; on any other failure it falls back
// to the raw numeric ID. Resolution never fails the caller: the
// fallback is always a printable string. Only successes are memoized,
// so a transient failure can recover on a later message.
func (r *UserResolver) Resolve(ctx context.Context, userID string) string {
	r.mu.Lock()
	if username, ok := r.usernames[userID]; ok {
		r.mu.Unlock()
		return username
	}
	r.mu.Unlock()

	username, err := r.lookup.LookupUsername(ctx, userID)
	if discord.IsRateLimited(err) {
		r.logger.Debug("username lookup rate limited, retrying once",
			"user_id", userID, "delay", r.retryDelay)
		r.clock.Sleep(r.retryDelay)
		username, err = r.lookup.LookupUsername(ctx, userID)
	}
	if err != nil {
		r.logger.Debug("username lookup failed, using raw ID",
			"user_id", userID, "error", err)
		return userID
	}

	r.mu.Lock()
	r.usernames[userID] = username
	r.mu.Unlock()
	return username
}

// Remember seeds the cache with a known ID-to-name mapping, e.g. from
// message author metadata that arrived with a fetch. Avoids a remote
// lookup for names the API already told us.
func (r *UserResolver) Remember(userID, username string) {
	if userID == "" || username == "" {
		return
	}
	r.mu.Lock()
	r.usernames[userID] = username
	r.mu.Unlock()
}
