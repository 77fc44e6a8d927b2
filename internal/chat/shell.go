// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// =============================================================================
// EXECUTION
// =============================================================================

// ShellExecutor runs a generated command. Separated behind an interface so
// the confirmation loop is testable without spawning shells.
type ShellExecutor interface {
	Run(command string) error
}

// ExecExecutor runs commands through the user's shell with inherited
// standard streams, so interactive commands behave normally.
type ExecExecutor struct{}

// Run executes command via `$SHELL -c` (cmd /C on Windows).
func (ExecExecutor) Run(command string) error {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		comspec := os.Getenv("COMSPEC")
		if comspec == "" {
			comspec = "cmd"
		}
		cmd = exec.Command(comspec, "/C", command)
	} else {
		shell := os.Getenv("SHELL")
		if shell == "" {
			shell = "/bin/sh"
		}
		cmd = exec.Command(shell, "-c", command)
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// =============================================================================
// CONFIRMATION LOOP
// =============================================================================

// RunShellConfirm loops on the [E]xecute/[D]escribe/[A]bort prompt for a
// generated command. The caller displays the command first; this loop only
// writes describe output and errors to out. Describe asks describer for an
// explanation and re-prompts; execute and abort end the loop. An input
// error (including EOF) aborts without running anything.
func RunShellConfirm(ctx context.Context, command string, describer *Handler, executor ShellExecutor, readLine ReadLineFunc, out io.Writer, render RenderFunc) error {
	if render == nil {
		render = func(s string) string { return s }
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		answer, err := readLine("[E]xecute, [D]escribe, [A]bort: ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "e", "execute":
			return executor.Run(command)
		case "d", "describe":
			desc, err := describer.Handle(ctx, command)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			fmt.Fprintln(out, render(desc))
		case "a", "abort":
			return nil
		default:
			// Anything else re-prompts.
		}
	}
}
