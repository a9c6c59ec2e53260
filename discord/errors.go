// Copyright 2026 The Chubbcord Authors
// SPDX-License-Identifier: Apache-2.0

package discord

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError represents a structured error response from the Discord API
// or the username lookup service. Callers can use errors.As to extract
// the structured information:
//
//	var apiErr *discord.APIError
//	if errors.As(err, &apiErr) {
//	    if apiErr.StatusCode == http.StatusForbidden { ... }
//	}
type APIError struct {
	// Code is the Discord-specific error code (e.g., 50001 for
	// "Missing Access"). Zero when the server did not supply one.
	Code int `json:"code"`
	// Message is the human-readable error description from the server.
	Message string `json:"message"`
	// StatusCode is the HTTP status code of the response.
	StatusCode int `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discord: %d (code %d): %s", e.StatusCode, e.Code, e.Message)
}

// IsRateLimited reports whether err is an *APIError indicating rate
// limiting. The Discord API signals this with HTTP 429; the public
// lookup service sometimes returns the phrase "rate limited" in the
// body with a different status.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusTooManyRequests ||
		strings.Contains(strings.ToLower(apiErr.Message), "rate limited")
}
