// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"testing"

	"github.com/jeranaias/termgpt/internal/chat"
	"github.com/jeranaias/termgpt/internal/ollama"
	"github.com/jeranaias/termgpt/internal/role"
	"github.com/jeranaias/termgpt/internal/storage"
)

func TestParsePrompt(t *testing.T) {
	cmd, args, err := Parse([]string{"explain", "the", "ls", "command"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cmd != CmdPrompt {
		t.Fatalf("cmd = %v, want CmdPrompt", cmd)
	}
	if args.Prompt != "explain the ls command" {
		t.Errorf("prompt = %q", args.Prompt)
	}
}

func TestParseFlags(t *testing.T) {
	cmd, args, err := Parse([]string{
		"-s", "--model", "llama3.2:3b", "--temperature", "0.5",
		"--top-p=0.9", "--chat", "work", "--no-cache", "list files",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cmd != CmdPrompt {
		t.Fatalf("cmd = %v", cmd)
	}
	if !args.Shell || args.Model != "llama3.2:3b" || args.ChatID != "work" || !args.NoCache {
		t.Errorf("args = %+v", args)
	}
	if !args.TemperatureSet || args.Temperature != 0.5 {
		t.Errorf("temperature = %v (set=%v)", args.Temperature, args.TemperatureSet)
	}
	if !args.TopPSet || args.TopP != 0.9 {
		t.Errorf("top-p = %v (set=%v)", args.TopP, args.TopPSet)
	}
	if args.Prompt != "list files" {
		t.Errorf("prompt = %q", args.Prompt)
	}
}

func TestParseFlagValidation(t *testing.T) {
	tests := [][]string{
		{"--temperature", "3.5", "hi"},
		{"--temperature", "abc", "hi"},
		{"--top-p", "0.01", "hi"},
		{"--turns", "-2", "hi"},
		{"--model"},
		{"--frobnicate", "hi"},
	}
	for _, argv := range tests {
		if _, _, err := Parse(argv); err == nil {
			t.Errorf("Parse(%v) should fail", argv)
		}
	}
}

func TestParseSubcommands(t *testing.T) {
	tests := []struct {
		argv []string
		cmd  Command
		sub  string
	}{
		{[]string{"repl", "work"}, CmdREPL, ""},
		{[]string{"role", "list"}, CmdRole, "list"},
		{[]string{"role", "show", "shell"}, CmdRole, "show"},
		{[]string{"role", "create", "pirate", "talk like a pirate"}, CmdRole, "create"},
		{[]string{"chat", "clear", "work"}, CmdChat, "clear"},
		{[]string{"cache", "stats", "--json"}, CmdCache, "stats"},
		{[]string{"config", "set", "default_model", "x"}, CmdConfig, "set"},
		{[]string{"models"}, CmdModels, ""},
		{[]string{"version"}, CmdVersion, ""},
		{[]string{"help"}, CmdHelp, ""},
		{[]string{}, CmdHelp, ""},
	}
	for _, tt := range tests {
		cmd, args, err := Parse(tt.argv)
		if err != nil {
			t.Errorf("Parse(%v): %v", tt.argv, err)
			continue
		}
		if cmd != tt.cmd {
			t.Errorf("Parse(%v) cmd = %v, want %v", tt.argv, cmd, tt.cmd)
		}
		if args.Subcommand != tt.sub {
			t.Errorf("Parse(%v) sub = %q, want %q", tt.argv, args.Subcommand, tt.sub)
		}
	}
}

func TestParseREPLChatID(t *testing.T) {
	_, args, err := Parse([]string{"repl", "project"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if args.ChatID != "project" {
		t.Errorf("ChatID = %q", args.ChatID)
	}
}

func TestParseREPLRejectsChatFlag(t *testing.T) {
	_, _, err := Parse([]string{"--chat", "project", "repl"})
	if err == nil {
		t.Fatal("expected error for --chat with repl")
	}
	if GetExitCode(err) != ExitUsageError {
		t.Errorf("exit code = %d, want %d", GetExitCode(err), ExitUsageError)
	}
}

func TestParseSecondAIPromptImpliesSecondAI(t *testing.T) {
	_, args, err := Parse([]string{"--second-ai-prompt", "review this", "write a haiku"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !args.SecondAI || args.SecondAIPrompt != "review this" {
		t.Errorf("args = %+v", args)
	}
}

func TestParseFlagsOnlyStillPrompt(t *testing.T) {
	// Flags without text still dispatch to the prompt command; the prompt
	// may arrive on stdin.
	cmd, _, err := Parse([]string{"--shell"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cmd != CmdPrompt {
		t.Errorf("cmd = %v, want CmdPrompt", cmd)
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"conflicting modes", role.ErrConflictingModes, ExitUsageError},
		{"validation", NewValidationError("x", "", "bad"), ExitUsageError},
		{"unknown role", &role.UnknownRoleError{Name: "x"}, ExitNotFoundError},
		{"missing chat", storage.ErrConversationNotFound, ExitNotFoundError},
		{"completion failure", &chat.CompletionError{Cause: errors.New("down")}, ExitNetworkError},
		{"client failure", ollama.ErrNotRunning, ExitNetworkError},
		{"other", errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
