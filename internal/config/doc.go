// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for termgpt.
//
// Supports both TOML and JSON formats with sensible defaults, environment
// variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.termgpt/config.toml
//   - ~/.termgpt/config.json
//   - Built-in defaults
//
// Environment overrides use the TERMGPT_ prefix, e.g. TERMGPT_DEFAULT_MODEL,
// TERMGPT_OLLAMA_URL, TERMGPT_NO_CACHE.
package config
