// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat_cmd.go - Saved conversation subcommands for termgpt.

package cli

import (
	"fmt"
	"os"

	"github.com/jeranaias/termgpt/internal/config"
	"github.com/jeranaias/termgpt/internal/storage"
)

// HandleChat dispatches the chat subcommands.
func HandleChat(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	chatDir, err := cfg.ChatDir()
	if err != nil {
		return err
	}
	store := storage.NewStore(chatDir)

	switch args.Subcommand {
	case "", "list":
		ids, err := store.ListIDs()
		if err != nil {
			return NewCommandError("chat", "list", "failed to list conversations", err)
		}
		fmt.Print(storage.FormatChatList(store, ids))
		return nil

	case "show":
		if len(args.Raw) < 1 {
			return NewValidationError("chat id", "", "usage: termgpt chat show <id>")
		}
		id := args.Raw[0]
		messages, err := store.Load(id)
		if err != nil {
			return err
		}
		transcript := storage.ExportMarkdown(id, messages)
		if ColorsEnabled() {
			fmt.Println(markdownRenderer()(transcript))
		} else {
			fmt.Print(transcript)
		}
		return nil

	case "clear":
		if len(args.Raw) < 1 {
			return NewValidationError("chat id", "", "usage: termgpt chat clear <id>")
		}
		id := args.Raw[0]
		if !store.Exists(id) {
			return storage.ErrConversationNotFound
		}
		if err := store.Clear(id); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%s chat %q cleared\n", SuccessStyle.Render("OK"), id)
		return nil

	default:
		return NewValidationError("subcommand", args.Subcommand,
			"expected list, show or clear")
	}
}
