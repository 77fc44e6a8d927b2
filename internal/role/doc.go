// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package role defines the persona layer: named system prompts that steer
// the model toward a particular output shape (free text, a shell command,
// code, or a description of a command).
//
// Built-in roles are compiled in and always available. Custom roles are
// stored as one JSON file per role under the roles directory and take the
// same shape as built-ins, minus the ability to shadow a built-in name.
package role
