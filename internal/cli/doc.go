// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses arguments and drives the termgpt commands. Parsing is
// kept separate from execution: Parse turns argv into a (Command, Args)
// pair without touching the network or filesystem, and the Handle*
// functions wire the config, stores and Ollama client together to run it.
package cli
