// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for redline.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/redline/internal/diff"
	"github.com/jeranaias/redline/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete redline configuration.
type Config struct {
	// Diff settings control comparison behavior
	Diff DiffConfig `toml:"diff"`

	// History settings control the applied-change journal
	History HistoryConfig `toml:"history"`

	// Watch settings control stale-change detection
	Watch WatchConfig `toml:"watch"`
}

// DiffConfig controls diff computation.
type DiffConfig struct {
	// ContextLines is the number of unchanged lines kept around a change
	ContextLines int `toml:"context_lines"`
	// TrimTrailingWhitespace strips trailing whitespace before comparison
	TrimTrailingWhitespace bool `toml:"trim_trailing_whitespace"`
	// IgnoreWhitespace collapses whitespace runs before comparison
	IgnoreWhitespace bool `toml:"ignore_whitespace"`
}

// HistoryConfig controls the applied-change journal.
type HistoryConfig struct {
	// Enabled turns journaling of applied changes on or off
	Enabled bool `toml:"enabled"`
	// DatabasePath is the SQLite database location
	DatabasePath string `toml:"database_path"`
	// MaxEntries limits retained journal rows (0 = unlimited)
	MaxEntries int `toml:"max_entries"`
}

// WatchConfig controls the stale-change watcher.
type WatchConfig struct {
	// Enabled turns watching of pending-change files on or off
	Enabled bool `toml:"enabled"`
	// DebounceMs coalesces rapid file events, in milliseconds
	DebounceMs int `toml:"debounce_ms"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns the built-in default configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Diff: DiffConfig{
			ContextLines: diff.DefaultContextLines,
		},
		History: HistoryConfig{
			Enabled:      true,
			DatabasePath: filepath.Join(home, ".redline", "history.db"),
			MaxEntries:   1000,
		},
		Watch: WatchConfig{
			Enabled:    true,
			DebounceMs: 500,
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".redline", "config.toml")
}

// DiffOptions converts the diff section to diff.Options.
func (c *Config) DiffOptions() diff.Options {
	return diff.Options{
		ContextLines:           c.Diff.ContextLines,
		TrimTrailingWhitespace: c.Diff.TrimTrailingWhitespace,
		IgnoreWhitespace:       c.Diff.IgnoreWhitespace,
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the config file at path, falling back to defaults for a
// missing file, then applies environment overrides and validates.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Missing config is fine: defaults apply.
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays REDLINE_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("REDLINE_CONTEXT_LINES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Diff.ContextLines = n
		}
	}
	if v := os.Getenv("REDLINE_TRIM_TRAILING_WHITESPACE"); v != "" {
		c.Diff.TrimTrailingWhitespace = v == "true" || v == "1"
	}
	if v := os.Getenv("REDLINE_IGNORE_WHITESPACE"); v != "" {
		c.Diff.IgnoreWhitespace = v == "true" || v == "1"
	}
	if v := os.Getenv("REDLINE_HISTORY_DB"); v != "" {
		c.History.DatabasePath = v
	}
}

// Validate checks the configuration for out-of-range values.
func (c *Config) Validate() error {
	if c.Diff.ContextLines < 0 {
		return fmt.Errorf("diff.context_lines must not be negative, got %d", c.Diff.ContextLines)
	}
	if c.Watch.DebounceMs < 0 {
		return fmt.Errorf("watch.debounce_ms must not be negative, got %d", c.Watch.DebounceMs)
	}
	if c.History.MaxEntries < 0 {
		return fmt.Errorf("history.max_entries must not be negative, got %d", c.History.MaxEntries)
	}
	return nil
}

// Save writes the configuration to path atomically.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return util.AtomicWriteFile(path, buf.Bytes(), 0644)
}
