// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for the
// GearSync client.
//
// TOML format, with sensible defaults and environment variable overrides.
// Locations (in order of precedence):
//   - GEARSYNC_* environment variables
//   - ~/.gearsync/config.toml
//   - Built-in defaults
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Environment variable overrides.
const (
	EnvAPIURL      = "GEARSYNC_API_URL"
	EnvTimeoutSecs = "GEARSYNC_TIMEOUT_SECS"
	EnvLogRequests = "GEARSYNC_LOG_REQUESTS"
	EnvStateDir    = "GEARSYNC_DIR"
)

// Timeout bounds; values outside are clamped rather than rejected.
const (
	minTimeoutSecs = 5
	maxTimeoutSecs = 120
)

// Config is the complete client configuration.
type Config struct {
	// API configuration
	API APIConfig `toml:"api"`

	// Session configuration
	Session SessionConfig `toml:"session"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// APIConfig selects and tunes the backend connection.
type APIConfig struct {
	// BaseURL is the backend origin including the /api base path.
	// Deployments observed on 8080/8082/8085.
	BaseURL string `toml:"base_url"`
	// TimeoutSecs is the per-request timeout in seconds.
	TimeoutSecs int `toml:"timeout_secs"`
	// MaxRetries is the retry budget for transient errors.
	MaxRetries int `toml:"max_retries"`
	// LogRequests logs method/path/status/duration (never bodies).
	LogRequests bool `toml:"log_requests"`
}

// SessionConfig controls session persistence.
type SessionConfig struct {
	// Dir is where the session and key files live (default ~/.gearsync).
	Dir string `toml:"dir"`
	// Seal encrypts the persisted session at rest.
	Seal bool `toml:"seal"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	// Theme is "dark" or "light".
	Theme string `toml:"theme"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:     "http://localhost:8080/api",
			TimeoutSecs: 30,
			MaxRetries:  3,
		},
		Session: SessionConfig{
			Seal: true,
		},
		UI: UIConfig{
			Theme: "dark",
		},
	}
}

// Timeout returns the request timeout as a duration.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// StateDir resolves the state directory, falling back to ~/.gearsync.
func (c Config) StateDir() string {
	if c.Session.Dir != "" {
		return c.Session.Dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".gearsync")
}

// DefaultPath returns the config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".gearsync", "config.toml")
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the config file at path (DefaultPath when empty), applies
// environment overrides, validates, and returns the result. A missing file
// is not an error: defaults apply.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays GEARSYNC_* environment variables.
func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv(EnvTimeoutSecs); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.API.TimeoutSecs = secs
		}
	}
	if v := os.Getenv(EnvLogRequests); v != "" {
		cfg.API.LogRequests = v == "1" || v == "true"
	}
	if v := os.Getenv(EnvStateDir); v != "" {
		cfg.Session.Dir = v
	}
}

// Validate checks the config and clamps tunables into their valid ranges.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: api.base_url %q is not a valid URL", c.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("config: api.base_url scheme %q must be http or https", u.Scheme)
	}

	if c.API.TimeoutSecs < minTimeoutSecs {
		c.API.TimeoutSecs = minTimeoutSecs
	}
	if c.API.TimeoutSecs > maxTimeoutSecs {
		c.API.TimeoutSecs = maxTimeoutSecs
	}
	if c.API.MaxRetries < 0 {
		c.API.MaxRetries = 0
	}
	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		c.UI.Theme = "dark"
	}
	return nil
}

// =============================================================================
// SAVING
// =============================================================================

// Save writes the config atomically with 0600 permissions.
func Save(cfg Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: failed to create directory: %w", err)
	}

	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("config: failed to create temp file: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("config: failed to encode: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("config: failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("config: failed to rename: %w", err)
	}
	return nil
}
