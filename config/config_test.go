// Copyright 2026 The Chubbcord Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.API.BaseURL == "" {
		t.Error("default BaseURL should not be empty")
	}
	if cfg.Chat.MessageLimit != 35 {
		t.Errorf("MessageLimit = %d, want 35", cfg.Chat.MessageLimit)
	}
	if cfg.RequestTimeout() != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want 5s", cfg.RequestTimeout())
	}
	if cfg.PollInterval() != 3*time.Second {
		t.Errorf("PollInterval = %v, want 3s", cfg.PollInterval())
	}
	if cfg.Chat.ShowAttachments {
		t.Error("ShowAttachments should default to false")
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("missing config file should yield defaults, got: %v", err)
	}
	if cfg.API.BaseURL != Default().API.BaseURL {
		t.Errorf("BaseURL = %q, want default", cfg.API.BaseURL)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
api:
  base_url: http://localhost:8080/api
  request_timeout: 10s
chat:
  poll_interval: 1s
  message_limit: 50
  show_attachments: true
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.API.BaseURL != "http://localhost:8080/api" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	// Fields the file omits keep their defaults.
	if cfg.API.LookupURL != Default().API.LookupURL {
		t.Errorf("LookupURL = %q, want default", cfg.API.LookupURL)
	}
	if cfg.RequestTimeout() != 10*time.Second {
		t.Errorf("RequestTimeout = %v, want 10s", cfg.RequestTimeout())
	}
	if cfg.PollInterval() != time.Second {
		t.Errorf("PollInterval = %v, want 1s", cfg.PollInterval())
	}
	if cfg.Chat.MessageLimit != 50 {
		t.Errorf("MessageLimit = %d, want 50", cfg.Chat.MessageLimit)
	}
	if !cfg.Chat.ShowAttachments {
		t.Error("ShowAttachments should be true")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadFileInvalid(t *testing.T) {
	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte(":\n  - not yaml {{"), 0600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := LoadFile(path); err == nil {
			t.Fatal("expected parse error")
		}
	})

	t.Run("bad duration", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("chat:\n  poll_interval: soon\n"), 0600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := LoadFile(path); err == nil {
			t.Fatal("expected validation error for bad duration")
		}
	})

	t.Run("limit out of range", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("chat:\n  message_limit: 500\n"), 0600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := LoadFile(path); err == nil {
			t.Fatal("expected validation error for out-of-range limit")
		}
	})

	t.Run("bad log level", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("log:\n  level: loud\n"), 0600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := LoadFile(path); err == nil {
			t.Fatal("expected validation error for bad log level")
		}
	})
}

func TestExpandVariables(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
paths:
  state_dir: ${HOME}/.chubbcord-alt
  token_file: ${CHUBBCORD_ROOT}/token.json
  attachment_dir: ${UNSET_VAR:-/tmp/chubbcord}
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Paths.StateDir != "/home/tester/.chubbcord-alt" {
		t.Errorf("StateDir = %q", cfg.Paths.StateDir)
	}
	if cfg.Paths.TokenFile != "/home/tester/.chubbcord-alt/token.json" {
		t.Errorf("TokenFile = %q (CHUBBCORD_ROOT should track state_dir)", cfg.Paths.TokenFile)
	}
	if cfg.Paths.AttachmentDir != "/tmp/chubbcord" {
		t.Errorf("AttachmentDir = %q (default for unset var)", cfg.Paths.AttachmentDir)
	}
}
