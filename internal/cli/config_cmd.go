// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration subcommands for termgpt.

package cli

import (
	"fmt"

	"github.com/jeranaias/termgpt/internal/config"
)

// HandleConfig dispatches the config subcommands.
func HandleConfig(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	switch args.Subcommand {
	case "", "show":
		fmt.Println(TitleStyle.Render("termgpt configuration"))
		for _, key := range config.Keys() {
			value, err := cfg.Get(key)
			if err != nil {
				continue
			}
			fmt.Printf("%s%s\n", LabelStyle.Render(key), ValueStyle.Render(value))
		}
		return nil

	case "path":
		path, err := config.ConfigPathTOML()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil

	case "get":
		if len(args.Raw) < 1 {
			return NewValidationError("key", "", "usage: termgpt config get <key>")
		}
		value, err := cfg.Get(args.Raw[0])
		if err != nil {
			return NewValidationError("key", args.Raw[0], "unknown configuration key")
		}
		fmt.Println(value)
		return nil

	case "set":
		if len(args.Raw) < 2 {
			return NewValidationError("arguments", "", "usage: termgpt config set <key> <value>")
		}
		key, value := args.Raw[0], args.Raw[1]
		if err := cfg.Set(key, value); err != nil {
			return NewValidationError("value", value, err.Error())
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return NewCommandError("config", "set", "failed to save configuration", err)
		}
		fmt.Printf("%s %s = %s\n", SuccessStyle.Render("OK"), key, value)
		return nil

	default:
		return NewValidationError("subcommand", args.Subcommand,
			"expected show, path, get or set")
	}
}
