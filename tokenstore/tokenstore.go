// Copyright 2026 The Chubbcord Authors
// SPDX-License-Identifier: Apache-2.0

// Package tokenstore persists the authentication token between runs so
// the user is not prompted for a password on every start.
//
// The token file is written atomically (write to temporary file, fsync,
// rename) so a crash mid-write never leaves a corrupt file behind.
// Tokens expire after MaxAge; Check treats an expired file the same as
// a missing one, forcing a fresh login.
package tokenstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// MaxAge is how long a persisted token stays usable. Past this, Check
// reports no token and the caller logs in again.
const MaxAge = time.Hour

// State is the persisted session credential.
type State struct {
	// UserID is the account the token belongs to.
	UserID string `json:"user_id"`

	// Token is the raw API token.
	Token string `json:"token"`

	// Timestamp is when the token was obtained. Used by Check to
	// expire old tokens.
	Timestamp time.Time `json:"timestamp"`
}

// Write atomically writes the token file. The file is written to a
// temporary location in the same directory, fsynced for durability, and
// renamed into place.
//
// The file is created with mode 0600 (owner read/write only). The
// parent directory is created if missing.
func Write(path string, state State) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling token state: %w", err)
	}
	data = append(data, '\n')

	temporaryPath := path + ".tmp"

	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating temporary token file: %w", err)
	}

	// Write, sync, close, in that order. If any step fails, remove the
	// temporary file and report the first error.
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary token file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary token file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary token file: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming token file into place: %w", err)
	}

	// Sync the parent directory so the rename survives power loss.
	parentDirectory, err := os.Open(filepath.Dir(path))
	if err == nil {
		parentDirectory.Sync()
		parentDirectory.Close()
	}

	return nil
}

// Read reads and parses the token file. When the file does not exist,
// the returned error wraps os.ErrNotExist (testable with errors.Is).
func Read(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("parsing token file %s: %w", path, err)
	}
	return state, nil
}

// Check reads the token file and verifies it is fresh. Returns the
// state and true when the file exists, holds a token, and its Timestamp
// is within maxAge of now. Returns a zero State and false when the file
// does not exist or the token has expired.
//
// Any other error (permission denied, corrupt JSON) is returned as-is
// so the caller can distinguish "no token" from "token file exists but
// unreadable."
func Check(path string, maxAge time.Duration) (State, bool, error) {
	state, err := Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, false, nil
		}
		return State{}, false, err
	}

	if state.Token == "" {
		return State{}, false, nil
	}
	if time.Since(state.Timestamp) > maxAge {
		return State{}, false, nil
	}

	return state, true, nil
}

// Clear removes the token file. Idempotent: returns nil when the file
// does not exist.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}
