// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Argument parsing and command selection for termgpt.

package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdPrompt Command = iota // default: run a one-shot prompt
	CmdREPL
	CmdRole
	CmdChat
	CmdCache
	CmdConfig
	CmdModels
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Sampling and model selection. The Set flags distinguish "flag not
	// given" from an explicit zero so config defaults can fill the gaps.
	Model          string
	Temperature    float64
	TemperatureSet bool
	TopP           float64
	TopPSet        bool

	// Behavior flags
	NoCache bool
	Quiet   bool
	JSON    bool

	// Conversation and role selection
	ChatID        string
	RoleName      string
	Shell         bool
	DescribeShell bool
	Code          bool

	// Dual-agent mode
	SecondAI       bool
	SecondAIPrompt string
	Turns          int

	// Command-specific
	Prompt     string
	Subcommand string
	Raw        []string
}

const usageText = `termgpt - command line assistant backed by a local Ollama model

Usage:
  termgpt "prompt"                 Run a one-shot prompt
  termgpt repl <chat-id>           Interactive session (use "temp" for scratch)
  termgpt role <subcommand>        Role management
  termgpt chat <subcommand>        Saved conversation management
  termgpt cache <subcommand>       Response cache management
  termgpt config <subcommand>      Configuration
  termgpt models [--json]          List locally available models
  termgpt version                  Show version
  termgpt help                     Show this help

Prompt flags:
  --model NAME             Model to use (default from config)
  --temperature N          Sampling temperature, 0.0-2.0 (default 0.1)
  --top-p N                Nucleus sampling, 0.1-1.0 (default 1.0)
  --no-cache               Skip the response cache for this call
  --chat ID                Continue (or start) the named conversation
  --role NAME              Answer with a specific role
  -s, --shell              Generate a shell command and offer to run it
  -d, --describe-shell     Describe a shell command
  -c, --code               Generate code only
  --second-ai              Feed the answer to a second agent
  --second-ai-prompt TEXT  Prompt for the second agent (implies --second-ai)
  --turns N                Turn budget for the two-agent conversation
  -q, --quiet              Print only the model output
  --json                   Machine-readable output where supported

Role subcommands:
  termgpt role list                      List all roles
  termgpt role show <name>               Print a role's system prompt
  termgpt role create <name> <prompt>    Create a custom role

Chat subcommands:
  termgpt chat list                List saved conversations
  termgpt chat show <id>           Print a conversation transcript
  termgpt chat clear <id>          Delete a conversation

Cache subcommands:
  termgpt cache stats [--json]     Show cache statistics
  termgpt cache clear              Remove all cached responses

Config subcommands:
  termgpt config show              Print the active configuration
  termgpt config path              Print the config file path
  termgpt config get <key>         Print one value (dotted key)
  termgpt config set <key> <value> Set one value

Piped input is prepended to the prompt:
  cat error.log | termgpt "explain this error"
`

// Usage returns the help text.
func Usage() string {
	return usageText
}

// Parse turns argv (without the program name) into a command and its
// arguments. It validates flag syntax and ranges but defers everything
// that needs config or disk to the handlers.
func Parse(argv []string) (Command, Args, error) {
	args := Args{}

	rest, err := parseFlags(&args, argv)
	if err != nil {
		return CmdHelp, args, err
	}

	if len(rest) == 0 {
		if args.wantsPromptRun() {
			// Flags but no prompt text: stdin may still carry the prompt.
			return CmdPrompt, args, nil
		}
		return CmdHelp, args, nil
	}

	switch strings.ToLower(rest[0]) {
	case "repl":
		if args.ChatID != "" {
			return CmdREPL, args, &ValidationError{
				Field:   "--chat",
				Value:   args.ChatID,
				Reason:  "repl takes its chat id positionally",
				Example: "termgpt repl " + args.ChatID,
			}
		}
		args.Raw = rest[1:]
		if len(rest) > 1 {
			args.ChatID = rest[1]
		}
		return CmdREPL, args, nil
	case "role", "roles":
		splitSub(&args, rest[1:])
		return CmdRole, args, nil
	case "chat", "chats":
		splitSub(&args, rest[1:])
		return CmdChat, args, nil
	case "cache":
		splitSub(&args, rest[1:])
		return CmdCache, args, nil
	case "config":
		splitSub(&args, rest[1:])
		return CmdConfig, args, nil
	case "models":
		return CmdModels, args, nil
	case "version", "--version", "-v":
		return CmdVersion, args, nil
	case "help", "--help", "-h":
		return CmdHelp, args, nil
	default:
		args.Prompt = strings.Join(rest, " ")
		return CmdPrompt, args, nil
	}
}

// splitSub records the subcommand and its trailing positionals.
func splitSub(args *Args, rest []string) {
	if len(rest) > 0 {
		args.Subcommand = strings.ToLower(rest[0])
		args.Raw = rest[1:]
	}
}

func (a *Args) wantsPromptRun() bool {
	return a.Shell || a.DescribeShell || a.Code || a.RoleName != "" ||
		a.ChatID != "" || a.SecondAI || a.SecondAIPrompt != ""
}

// parseFlags consumes flags anywhere in argv and returns the positional
// remainder in order.
func parseFlags(args *Args, argv []string) ([]string, error) {
	var rest []string

	takeValue := func(name string, i *int) (string, error) {
		if *i+1 >= len(argv) {
			return "", NewValidationError(name, "", "missing value")
		}
		*i++
		return argv[*i], nil
	}

	for i := 0; i < len(argv); i++ {
		arg := argv[i]

		name, inline, hasInline := strings.Cut(arg, "=")
		value := func(flag string) (string, error) {
			if hasInline {
				return inline, nil
			}
			return takeValue(flag, &i)
		}

		switch name {
		case "--model":
			v, err := value("--model")
			if err != nil {
				return nil, err
			}
			args.Model = v
		case "--temperature", "-t":
			v, err := value("--temperature")
			if err != nil {
				return nil, err
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f < 0.0 || f > 2.0 {
				return nil, NewValidationError("temperature", v, "must be a number between 0.0 and 2.0")
			}
			args.Temperature = f
			args.TemperatureSet = true
		case "--top-p", "--top-probability":
			v, err := value("--top-p")
			if err != nil {
				return nil, err
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f < 0.1 || f > 1.0 {
				return nil, NewValidationError("top-p", v, "must be a number between 0.1 and 1.0")
			}
			args.TopP = f
			args.TopPSet = true
		case "--chat":
			v, err := value("--chat")
			if err != nil {
				return nil, err
			}
			args.ChatID = v
		case "--role":
			v, err := value("--role")
			if err != nil {
				return nil, err
			}
			args.RoleName = v
		case "--second-ai-prompt":
			v, err := value("--second-ai-prompt")
			if err != nil {
				return nil, err
			}
			args.SecondAIPrompt = v
			args.SecondAI = true
		case "--turns":
			v, err := value("--turns")
			if err != nil {
				return nil, err
			}
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return nil, NewValidationError("turns", v, "must be a positive integer")
			}
			args.Turns = n
		case "--no-cache":
			args.NoCache = true
		case "--shell", "-s":
			args.Shell = true
		case "--describe-shell", "-d":
			args.DescribeShell = true
		case "--code", "-c":
			args.Code = true
		case "--second-ai":
			args.SecondAI = true
		case "--quiet", "-q":
			args.Quiet = true
		case "--json":
			args.JSON = true
		default:
			if strings.HasPrefix(name, "-") && name != "-" {
				return nil, NewValidationError("flag", arg, "unknown flag")
			}
			rest = append(rest, arg)
		}
	}

	return rest, nil
}

// VersionString returns the formatted version banner.
func VersionString() string {
	return fmt.Sprintf("termgpt %s (commit %s, built %s)", Version, GitCommit, BuildDate)
}
