// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cache stores completed model responses keyed by a fingerprint of
// everything that influenced them: role, conversation history, model and
// sampling parameters. A hit replays the stored completion without touching
// the model.
//
// The store is a single SQLite database file. SQLite gives atomic writes
// and safe concurrent access across processes for free, which matters when
// two invocations race on the same cache file.
package cache
