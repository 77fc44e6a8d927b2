// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// repl_cmd.go - Interactive session command for termgpt.

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/jeranaias/termgpt/internal/chat"
	"github.com/jeranaias/termgpt/internal/config"
	"github.com/jeranaias/termgpt/internal/role"
	"github.com/jeranaias/termgpt/internal/storage"
)

// HandleREPL starts an interactive session bound to a conversation. With
// no chat id the ephemeral scratch conversation is used, so context builds
// within the session but nothing is persisted.
func HandleREPL(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	config.SetGlobal(cfg)

	if args.ChatID == "" {
		args.ChatID = storage.EphemeralChatID
	}

	registry, err := newRegistry()
	if err != nil {
		return err
	}
	selected, err := registry.Resolve(role.Selector{
		Name:          args.RoleName,
		Shell:         args.Shell,
		DescribeShell: args.DescribeShell,
		Code:          args.Code,
	})
	if err != nil {
		return err
	}

	opts := handlerOptions(cfg, args)
	deps, err := newDeps(cfg, opts.Caching)
	if err != nil {
		return err
	}
	defer deps.Close()

	// Pick up config edits made while the session runs.
	stopWatch, err := config.Watch(func(next *config.Config) {
		config.SetGlobal(next)
	})
	if err == nil {
		defer stopWatch()
	}

	handler := chat.NewHandler(selected, deps.Store, deps.Cache, deps.Completer, opts)
	render := NewRenderer(cfg, selected.Output)

	input := NewChatCLI()
	defer input.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !args.Quiet {
		fmt.Printf("%s chat %q with %s (/help for commands, Ctrl-D to leave)\n",
			TitleStyle.Render("termgpt"), args.ChatID, opts.Model)
	}
	return chat.RunREPL(ctx, handler, input.ReadInput, os.Stdout, render)
}
