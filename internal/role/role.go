// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package role

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// =============================================================================
// OUTPUT KINDS
// =============================================================================

// OutputKind declares what shape of text a role asks the model for. The
// interaction layer uses it to decide rendering (markdown vs raw) and
// whether to offer command execution.
type OutputKind string

const (
	// OutputFreeText is ordinary prose, rendered as markdown.
	OutputFreeText OutputKind = "text"

	// OutputShellCommand is a single executable command, printed raw and
	// offered to the execute/describe/abort loop.
	OutputShellCommand OutputKind = "shell"

	// OutputCode is source code with no surrounding prose, printed raw.
	OutputCode OutputKind = "code"

	// OutputDescription is a plain-language explanation of a shell command.
	OutputDescription OutputKind = "description"
)

// =============================================================================
// ROLE
// =============================================================================

// Role pairs a name with the system prompt injected at the start of every
// conversation that uses it.
type Role struct {
	Name         string     `json:"name"`
	SystemPrompt string     `json:"system_prompt"`
	Output       OutputKind `json:"output"`
}

// Built-in role names.
const (
	DefaultRoleName  = "default"
	ShellRoleName    = "shell"
	DescribeRoleName = "describe-shell"
	CodeRoleName     = "code"
)

// =============================================================================
// BUILT-IN PROMPTS
// =============================================================================

const defaultPrompt = `You are a command line programming and system administration assistant.
You are managing %s operating system with %s shell.
Provide short responses in about 100 words, unless you are specifically asked for more details.
If you need to store any data, assume it will be stored in the conversation.
APPLY MARKDOWN formatting when possible.`

const shellPrompt = `Provide only %s commands for %s without any description.
If there is a lack of details, provide most logical solution.
Ensure the output is a valid shell command.
If multiple steps required try to combine them together using &&.
Provide only plain text without Markdown formatting.
Do not provide markdown formatting such as ` + "```" + `.`

const describePrompt = `Provide a terse, single sentence description of the given shell command.
Describe each argument and option of the command.
Provide short responses in about 80 words.
APPLY MARKDOWN formatting when possible.`

const codePrompt = `Provide only code as output without any description.
Provide only code in plain text format without Markdown formatting.
Do not include symbols such as ` + "```" + ` or ` + "```python" + `.
If there is a lack of details, provide most logical solution.
You are not allowed to ask for more details.
For example if the prompt is "Hello world Python", you should return "print('hello world')".`

// OSName returns a human-readable name for the host operating system, used
// to ground the shell and default prompts.
func OSName() string {
	switch runtime.GOOS {
	case "darwin":
		return "Darwin/MacOS"
	case "windows":
		return "Windows"
	default:
		// Prefer the distro name when available.
		if data, err := os.ReadFile("/etc/os-release"); err == nil {
			for _, line := range strings.Split(string(data), "\n") {
				if name, ok := strings.CutPrefix(line, "PRETTY_NAME="); ok {
					return strings.Trim(name, `"`)
				}
			}
		}
		return "Linux"
	}
}

// ShellName returns the name of the user's shell, falling back to a sane
// per-platform default when the environment does not say.
func ShellName() string {
	if runtime.GOOS == "windows" {
		if comspec := os.Getenv("COMSPEC"); comspec != "" {
			return filepath.Base(comspec)
		}
		return "powershell"
	}
	if shell := os.Getenv("SHELL"); shell != "" {
		return filepath.Base(shell)
	}
	return "sh"
}

// Builtins returns the compiled-in roles, with prompts specialized to the
// current OS and shell.
func Builtins() []Role {
	osName := OSName()
	shell := ShellName()
	return []Role{
		{
			Name:         DefaultRoleName,
			SystemPrompt: fmt.Sprintf(defaultPrompt, osName, shell),
			Output:       OutputFreeText,
		},
		{
			Name:         ShellRoleName,
			SystemPrompt: fmt.Sprintf(shellPrompt, shell, osName),
			Output:       OutputShellCommand,
		},
		{
			Name:         DescribeRoleName,
			SystemPrompt: describePrompt,
			Output:       OutputDescription,
		},
		{
			Name:         CodeRoleName,
			SystemPrompt: codePrompt,
			Output:       OutputCode,
		},
	}
}
