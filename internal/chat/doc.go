// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat orchestrates a single completion turn and the interaction
// loops built on top of it: one-shot prompts, the interactive REPL, the
// dual-agent conversation, and the execute/describe/abort confirmation for
// generated shell commands.
//
// The Handler at the center of the package is strictly sequential: it
// builds the message list from stored history, consults the response
// cache, calls the model on a miss, and persists the exchange only after
// the completion succeeds.
package chat
