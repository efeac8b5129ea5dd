// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for redline.
//
// Configuration is TOML, with sensible defaults, environment variable
// overrides, and validation.
//
// Locations (in order of precedence):
//   - REDLINE_* environment variables
//   - ~/.redline/config.toml
//   - Built-in defaults
package config
