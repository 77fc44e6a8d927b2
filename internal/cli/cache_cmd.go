// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cache_cmd.go - Response cache subcommands for termgpt.

package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jeranaias/termgpt/internal/cache"
	"github.com/jeranaias/termgpt/internal/config"
)

// HandleCache dispatches the cache subcommands.
func HandleCache(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cachePath, err := cfg.CachePath()
	if err != nil {
		return err
	}
	store, err := cache.Open(cachePath)
	if err != nil {
		return NewCommandError("cache", args.Subcommand, "failed to open cache", err)
	}
	defer store.Close()

	switch args.Subcommand {
	case "", "stats":
		stats, err := store.Stats()
		if err != nil {
			return NewCommandError("cache", "stats", "failed to read stats", err)
		}
		if args.JSON {
			return json.NewEncoder(os.Stdout).Encode(stats)
		}
		fmt.Println(TitleStyle.Render("Response cache"))
		fmt.Printf("%s%s\n", LabelStyle.Render("Path"), ValueStyle.Render(cachePath))
		fmt.Printf("%s%d\n", LabelStyle.Render("Entries"), stats.Entries)
		return nil

	case "clear":
		n, err := store.Clear()
		if err != nil {
			return NewCommandError("cache", "clear", "failed to clear cache", err)
		}
		fmt.Printf("%s removed %d cached responses\n", SuccessStyle.Render("OK"), n)
		return nil

	default:
		return NewValidationError("subcommand", args.Subcommand, "expected stats or clear")
	}
}
