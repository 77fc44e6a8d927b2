// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for termgpt.
//
// It contains the atomic file-write primitive used by every durable store
// (conversations, roles, config) and a handful of string formatting helpers
// for terminal output.
package util
