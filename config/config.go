// Copyright 2026 The Chubbcord Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for chubbcord.
//
// Configuration lives in a single optional YAML file, by default
// ~/.chubbcord/config.yaml. A missing file is not an error: every field
// has a usable default, and command-line flags override file values.
// The only expansion performed on values is ${HOME} and similar path
// variables for portability.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for duration fields, applied when the file omits them.
const (
	// DefaultRequestTimeout bounds each API request.
	DefaultRequestTimeout = 5 * time.Second
	// DefaultPollInterval is the delay between channel fetches.
	DefaultPollInterval = 3 * time.Second
)

// Config is the master configuration for chubbcord.
type Config struct {
	// API configures the remote service endpoints.
	API APIConfig `yaml:"api"`

	// Chat configures message polling and rendering.
	Chat ChatConfig `yaml:"chat"`

	// Paths configures file locations.
	Paths PathsConfig `yaml:"paths"`

	// Log configures the structured logger.
	Log LogConfig `yaml:"log"`
}

// APIConfig configures the remote service endpoints.
type APIConfig struct {
	// BaseURL is the base URL of the messaging API.
	BaseURL string `yaml:"base_url"`

	// LookupURL is the base URL of the public username lookup service.
	LookupURL string `yaml:"lookup_url"`

	// RequestTimeout bounds each HTTP request, as a Go duration
	// string. Default: 5s.
	RequestTimeout string `yaml:"request_timeout"`
}

// ChatConfig configures message polling and rendering.
type ChatConfig struct {
	// PollInterval is the delay between channel fetches, as a Go
	// duration string. Default: 3s.
	PollInterval string `yaml:"poll_interval"`

	// MessageLimit is how many recent messages each fetch requests.
	// Default: 35.
	MessageLimit int `yaml:"message_limit"`

	// ShowAttachments enables downloading attachments to the local
	// cache as they appear. Default: false; the -a flag also enables it.
	ShowAttachments bool `yaml:"show_attachments"`
}

// PathsConfig configures file locations.
type PathsConfig struct {
	// StateDir is the base directory for chubbcord state.
	// Default: ~/.chubbcord.
	StateDir string `yaml:"state_dir"`

	// TokenFile is where the session token is persisted.
	// Default: <state_dir>/token.json.
	TokenFile string `yaml:"token_file"`

	// AttachmentDir is where downloaded attachments are cached for the
	// session. Cleaned on exit. Default: <state_dir>/tmp.
	AttachmentDir string `yaml:"attachment_dir"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	// Level is the minimum log level: debug, info, warn, or error.
	// Default: warn, so logging stays out of the chat rendering.
	Level string `yaml:"level"`
}

// Default returns the default configuration. These defaults make the
// client usable with no config file at all.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultStateDir := filepath.Join(homeDir, ".chubbcord")

	return &Config{
		API: APIConfig{
			BaseURL:        "https://discord.com/api/v9",
			LookupURL:      "https://discordlookup.mesalytic.moe",
			RequestTimeout: "5s",
		},
		Chat: ChatConfig{
			PollInterval:    "3s",
			MessageLimit:    35,
			ShowAttachments: false,
		},
		Paths: PathsConfig{
			StateDir:      defaultStateDir,
			TokenFile:     filepath.Join(defaultStateDir, "token.json"),
			AttachmentDir: filepath.Join(defaultStateDir, "tmp"),
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".chubbcord", "config.yaml")
}

// Load loads configuration from the default path. A missing file yields
// the defaults.
func Load() (*Config, error) {
	return LoadFile(DefaultPath())
}

// LoadFile loads configuration from a specific file path, merging over
// the defaults. A missing file yields the defaults; any other read or
// parse error is returned.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.expandVariables()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values that would fail later in
// surprising places.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if c.API.LookupURL == "" {
		return fmt.Errorf("api.lookup_url must not be empty")
	}
	if _, err := time.ParseDuration(c.API.RequestTimeout); err != nil {
		return fmt.Errorf("api.request_timeout %q: %w", c.API.RequestTimeout, err)
	}
	if _, err := time.ParseDuration(c.Chat.PollInterval); err != nil {
		return fmt.Errorf("chat.poll_interval %q: %w", c.Chat.PollInterval, err)
	}
	if c.Chat.MessageLimit < 1 || c.Chat.MessageLimit > 100 {
		return fmt.Errorf("chat.message_limit %d out of range [1, 100]", c.Chat.MessageLimit)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q: must be debug, info, warn, or error", c.Log.Level)
	}
	return nil
}

// RequestTimeout returns the parsed request timeout, falling back to
// the default when the field is unparseable.
func (c *Config) RequestTimeout() time.Duration {
	if d, err := time.ParseDuration(c.API.RequestTimeout); err == nil && d > 0 {
		return d
	}
	return DefaultRequestTimeout
}

// PollInterval returns the parsed poll interval, falling back to the
// default when the field is unparseable.
func (c *Config) PollInterval() time.Duration {
	if d, err := time.ParseDuration(c.Chat.PollInterval); err == nil && d > 0 {
		return d
	}
	return DefaultPollInterval
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME":           os.Getenv("HOME"),
		"CHUBBCORD_ROOT": c.Paths.StateDir,
	}

	c.Paths.StateDir = expandVars(c.Paths.StateDir, vars)
	vars["CHUBBCORD_ROOT"] = c.Paths.StateDir // Update for dependent paths.

	c.Paths.TokenFile = expandVars(c.Paths.TokenFile, vars)
	c.Paths.AttachmentDir = expandVars(c.Paths.AttachmentDir, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Provided vars first, then the environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}
