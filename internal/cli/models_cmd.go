// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// models_cmd.go - List locally available models.

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/jeranaias/termgpt/internal/config"
	"github.com/jeranaias/termgpt/internal/ollama"
	"github.com/jeranaias/termgpt/internal/util"
)

// HandleModels checks that Ollama is reachable and lists its local models,
// marking the configured default.
func HandleModels(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:      cfg.Ollama.URL,
		Timeout:      cfg.Ollama.Timeout(),
		DefaultModel: cfg.DefaultModel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := client.CheckRunning(ctx); err != nil {
		return err
	}
	models, err := client.ListModels(ctx)
	if err != nil {
		return err
	}

	if args.JSON {
		return json.NewEncoder(os.Stdout).Encode(models)
	}

	if len(models) == 0 {
		fmt.Println("No local models. Pull one with: ollama pull <name>")
		return nil
	}

	width := len("MODEL")
	for _, m := range models {
		if len(m.Name) > width {
			width = len(m.Name)
		}
	}
	fmt.Printf("%sSIZE\n", util.Pad("MODEL", width+2))
	for _, m := range models {
		line := fmt.Sprintf("%s%.1f GB", util.Pad(m.Name, width+2), float64(m.Size)/1e9)
		if m.Name == cfg.DefaultModel {
			line += "  " + SuccessStyle.Render("(default)")
		}
		fmt.Println(line)
	}
	return nil
}
