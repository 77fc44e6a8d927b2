// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversations, one JSON file per chat id, under
// the chat directory. Files are written atomically so a crash mid-write
// never leaves a half-serialized conversation behind.
//
// The reserved chat id "temp" is ephemeral: it behaves like any other
// conversation within a process but is held in memory and discarded on
// exit, so `--chat temp` gives a scratch session that never touches disk.
package storage
