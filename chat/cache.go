// Copyright 2026 The Chubbcord Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// AttachmentCache tracks which attachment URLs have been materialized
// to the local temp directory this session, so each file is downloaded
// at most once no matter how often its message re-renders. Safe for
// concurrent use.
//
// The directory holds the session's downloaded attachments and is
// removed wholesale by Clean on every exit path.
type AttachmentCache struct {
	directory string

	mu   sync.Mutex
	seen map[string]string
}

// NewAttachmentCache creates a cache rooted at directory. The
// directory is created if missing.
func NewAttachmentCache(directory string) (*AttachmentCache, error) {
	if err := os.MkdirAll(directory, 0700); err != nil {
		return nil, fmt.Errorf("chat: creating attachment directory: %w", err)
	}
	return &AttachmentCache{
		directory: directory,
		seen:      make(map[string]string),
	}, nil
}

// Directory returns the cache's temp directory.
func (c *AttachmentCache) Directory() string {
	return c.directory
}

// Seen reports whether url has already been materialized.
func (c *AttachmentCache) Seen(url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.seen[url]
	return ok
}

// Materialize writes data to the cache directory under filename and
// records url as seen. Returns the local path. A second call for the
// same url returns the recorded path without rewriting.
func (c *AttachmentCache) Materialize(url, filename string, data []byte) (string, error) {
	c.mu.Lock()
	if path, ok := c.seen[url]; ok {
		c.mu.Unlock()
		return path, nil
	}
	c.mu.Unlock()

	// Strip any path components a hostile filename might carry.
	path := filepath.Join(c.directory, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("chat: writing attachment %s: %w", filename, err)
	}

	c.mu.Lock()
	c.seen[url] = path
	c.mu.Unlock()
	return path, nil
}

// MarkSeen records url as handled without materializing a file. Used
// when attachment display is off but re-downloads should still be
// suppressed.
func (c *AttachmentCache) MarkSeen(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.seen[url]; !ok {
		c.seen[url] = ""
	}
}

// Clean removes the cache directory and everything in it, and forgets
// all seen URLs. Idempotent.
func (c *AttachmentCache) Clean() error {
	c.mu.Lock()
	c.seen = make(map[string]string)
	c.mu.Unlock()

	if err := os.RemoveAll(c.directory); err != nil {
		return fmt.Errorf("chat: cleaning attachment directory: %w", err)
	}
	return nil
}
