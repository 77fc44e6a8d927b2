// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/termgpt/internal/storage"
)

// =============================================================================
// READ LOOP PLUMBING
// =============================================================================

// ReadLineFunc supplies the next line of user input. It returns io.EOF (or
// any other error) to end the loop.
type ReadLineFunc func(prompt string) (string, error)

// RenderFunc turns raw assistant output into what the terminal shows. The
// identity function is a valid renderer.
type RenderFunc func(string) string

// =============================================================================
// REPL
// =============================================================================

const replHelp = `Commands:
  /help      show this help
  /history   print the conversation so far
  /clear     discard the conversation and start over
  /quit      leave the session (Ctrl-D works too)
Anything else is sent to the model.`

// RunREPL drives the interactive session: read a line, run a turn, print
// the answer, repeat. Turn errors are printed and the loop continues; only
// input errors and /quit end it.
func RunREPL(ctx context.Context, h *Handler, readLine ReadLineFunc, out io.Writer, render RenderFunc) error {
	if render == nil {
		render = func(s string) string { return s }
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := readLine(">>> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit" || line == "exit()":
			return nil
		case line == "/help":
			fmt.Fprintln(out, replHelp)
			continue
		case line == "/clear":
			if err := h.ClearHistory(); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			} else {
				fmt.Fprintln(out, "Conversation cleared.")
			}
			continue
		case line == "/history":
			messages, err := h.History()
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			if len(messages) == 0 {
				fmt.Fprintln(out, "No history yet.")
				continue
			}
			fmt.Fprint(out, storage.ExportMarkdown(h.ChatID(), messages))
			continue
		case strings.HasPrefix(line, "/"):
			fmt.Fprintf(out, "Unknown command %s. Try /help.\n", line)
			continue
		}

		answer, err := h.Handle(ctx, line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintln(out, render(answer))
	}
}

// =============================================================================
// DUAL AGENT
// =============================================================================

// DualAgentMode selects how the two agents are connected.
type DualAgentMode int

const (
	// DualAgentPingPong feeds each agent's answer to the other, starting
	// from the initial prompt, until the turn budget or ctx runs out.
	DualAgentPingPong DualAgentMode = iota

	// DualAgentSingleTurn runs the primary once on the initial prompt and
	// the secondary once on the primary's answer, then stops.
	DualAgentSingleTurn
)

// DefaultDualAgentTurns bounds a ping-pong conversation when the caller
// gives no budget. Each turn is one completion.
const DefaultDualAgentTurns = 10

// RunDualAgent connects two handlers into a conversation seeded by prompt.
// Each handler should carry its own chat id so the two transcripts stay
// separate. Output is labeled per agent as it arrives.
func RunDualAgent(ctx context.Context, primary, secondary *Handler, prompt string, mode DualAgentMode, turns int, out io.Writer, render RenderFunc) error {
	if render == nil {
		render = func(s string) string { return s }
	}
	if turns <= 0 {
		turns = DefaultDualAgentTurns
	}
	if mode == DualAgentSingleTurn {
		turns = 2
	}

	agents := [2]*Handler{primary, secondary}
	labels := [2]string{"agent-1", "agent-2"}

	current := prompt
	for i := 0; i < turns; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		idx := i % 2
		answer, err := agents[idx].Handle(ctx, current)
		if err != nil {
			return fmt.Errorf("%s: %w", labels[idx], err)
		}
		fmt.Fprintf(out, "[%s]\n%s\n\n", labels[idx], render(answer))
		current = answer
	}
	return nil
}
