// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// role_cmd.go - Role management subcommands for termgpt.

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/termgpt/internal/role"
)

// HandleRole dispatches the role subcommands.
func HandleRole(args Args) error {
	registry, err := newRegistry()
	if err != nil {
		return err
	}

	switch args.Subcommand {
	case "", "list":
		names, err := registry.List()
		if err != nil {
			return NewCommandError("role", "list", "failed to list roles", err)
		}
		for _, name := range names {
			if registry.IsBuiltin(name) {
				fmt.Printf("%s %s\n", name, LabelStyle.Render("(builtin)"))
			} else {
				fmt.Println(name)
			}
		}
		return nil

	case "show":
		if len(args.Raw) < 1 {
			return NewValidationError("role name", "", "usage: termgpt role show <name>")
		}
		r, err := registry.Get(args.Raw[0])
		if err != nil {
			return err
		}
		fmt.Println(TitleStyle.Render(r.Name))
		fmt.Println(r.SystemPrompt)
		return nil

	case "create":
		if len(args.Raw) < 2 {
			return NewValidationError("arguments", "",
				`usage: termgpt role create <name> "<system prompt>"`)
		}
		name := args.Raw[0]
		prompt := strings.Join(args.Raw[1:], " ")
		if _, err := registry.Create(name, prompt); err != nil {
			var exists *role.RoleExistsError
			if errors.As(err, &exists) {
				return NewValidationError("role name", name, "role already exists")
			}
			return err
		}
		fmt.Printf("%s role %q created\n", SuccessStyle.Render("OK"), name)
		return nil

	default:
		return NewValidationError("subcommand", args.Subcommand,
			"expected list, show or create")
	}
}
