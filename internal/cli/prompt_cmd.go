// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// prompt_cmd.go - The default command: run a prompt against the model.
//
// Wires the config, role registry, conversation store, response cache and
// Ollama client into a chat.Handler, then dispatches to the right
// interaction: one-shot print, dual-agent conversation, or the shell
// confirmation loop.

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/jeranaias/termgpt/internal/cache"
	"github.com/jeranaias/termgpt/internal/chat"
	"github.com/jeranaias/termgpt/internal/config"
	"github.com/jeranaias/termgpt/internal/ollama"
	"github.com/jeranaias/termgpt/internal/role"
	"github.com/jeranaias/termgpt/internal/storage"
)

// HandlePrompt runs the default command.
func HandlePrompt(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return err
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

	prompt, err := gatherPrompt(args.Prompt, os.Stdin)
	if err != nil {
		return err
	}
	if prompt == "" {
		return NewValidationError("prompt", "", "no prompt given on the command line or stdin")
	}

	opts := handlerOptions(cfg, args)

	deps, err := newDeps(cfg, opts.Caching)
	if err != nil {
		return err
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	handler := chat.NewHandler(selected, deps.Store, deps.Cache, deps.Completer, opts)
	render := NewRenderer(cfg, selected.Output)

	switch {
	case args.SecondAI:
		return runDualAgent(ctx, args, selected, deps, opts, prompt, render)
	case selected.Output == role.OutputShellCommand:
		return runShellPrompt(ctx, cfg, handler, registry, deps, opts, prompt, args)
	default:
		answer, err := handler.Handle(ctx, prompt)
		if err != nil {
			return err
		}
		fmt.Println(render(answer))
		return nil
	}
}

// gatherPrompt combines piped stdin with the command-line prompt. Piped
// content comes first so "explain this" reads naturally after a log dump.
func gatherPrompt(argPrompt string, stdin *os.File) (string, error) {
	if IsTTY() {
		return strings.TrimSpace(argPrompt), nil
	}
	piped, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(string(piped)); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(argPrompt); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, "\n\n"), nil
}

// handlerOptions merges flags over config defaults.
func handlerOptions(cfg *config.Config, args Args) chat.Options {
	opts := chat.Options{
		Model:       cfg.DefaultModel,
		Temperature: cfg.DefaultTemperature,
		TopP:        cfg.DefaultTopP,
		ChatID:      args.ChatID,
		Caching:     cfg.Cache.Enabled && !args.NoCache,
		MaxMessages: cfg.Chat.MaxMessages,
	}
	if args.Model != "" {
		opts.Model = args.Model
	}
	if args.TemperatureSet {
		opts.Temperature = args.Temperature
	}
	if args.TopPSet {
		opts.TopP = args.TopP
	}
	return opts
}

// =============================================================================
// SHARED WIRING
// =============================================================================

type deps struct {
	Store     *storage.Store
	Cache     *cache.Store
	Completer chat.Completer
}

func (d *deps) Close() {
	if d.Cache != nil {
		d.Cache.Close()
	}
}

func newDeps(cfg *config.Config, caching bool) (*deps, error) {
	chatDir, err := cfg.ChatDir()
	if err != nil {
		return nil, err
	}

	var cacheStore *cache.Store
	if caching {
		cachePath, err := cfg.CachePath()
		if err != nil {
			return nil, err
		}
		cacheStore, err = cache.Open(cachePath)
		if err != nil {
			return nil, err
		}
	}

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL:           cfg.Ollama.URL,
		Timeout:           cfg.Ollama.Timeout(),
		DefaultModel:      cfg.DefaultModel,
		RequestsPerSecond: cfg.Ollama.RequestsPerSecond,
	})

	return &deps{
		Store:     storage.NewStore(chatDir),
		Cache:     cacheStore,
		Completer: &chat.OllamaCompleter{Client: client},
	}, nil
}

func newRegistry() (*role.Registry, error) {
	rolesDir, err := config.RolesDir()
	if err != nil {
		return nil, err
	}
	return role.NewRegistry(rolesDir), nil
}

// =============================================================================
// SHELL CONFIRMATION
// =============================================================================

func runShellPrompt(ctx context.Context, cfg *config.Config, handler *chat.Handler, registry *role.Registry, d *deps, opts chat.Options, prompt string, args Args) error {
	command, err := handler.Handle(ctx, prompt)
	if err != nil {
		return err
	}

	// Piped or quiet invocations get the raw command for scripting.
	if args.Quiet || !IsTTY() || !IsStdoutTTY() {
		fmt.Println(command)
		return nil
	}

	describeRole, err := registry.Get(role.DescribeRoleName)
	if err != nil {
		return err
	}
	describeOpts := opts
	describeOpts.ChatID = ""
	describer := chat.NewHandler(describeRole, d.Store, d.Cache, d.Completer, describeOpts)

	input := NewChatCLI()
	defer input.Close()

	// The styled copy is display only; the raw command is what runs.
	fmt.Println(CommandStyle.Render(command))
	return chat.RunShellConfirm(ctx, command, describer,
		chat.ExecExecutor{}, input.ReadInput, os.Stdout,
		NewRenderer(cfg, role.OutputDescription))
}

// =============================================================================
// DUAL AGENT
// =============================================================================

func runDualAgent(ctx context.Context, args Args, primaryRole role.Role, d *deps, opts chat.Options, prompt string, render chat.RenderFunc) error {
	mode := chat.DualAgentPingPong
	secondaryRole := primaryRole
	if args.SecondAIPrompt != "" {
		mode = chat.DualAgentSingleTurn
		secondaryRole = role.Role{
			Name:         "second-ai",
			SystemPrompt: args.SecondAIPrompt,
			Output:       role.OutputFreeText,
		}
	}

	primaryOpts, secondaryOpts := opts, opts
	if args.ChatID != "" {
		primaryOpts.ChatID = args.ChatID + "-a"
		secondaryOpts.ChatID = args.ChatID + "-b"
	}

	primary := chat.NewHandler(primaryRole, d.Store, d.Cache, d.Completer, primaryOpts)
	secondary := chat.NewHandler(secondaryRole, d.Store, d.Cache, d.Completer, secondaryOpts)

	return chat.RunDualAgent(ctx, primary, secondary, prompt, mode, args.Turns, os.Stdout, render)
}
