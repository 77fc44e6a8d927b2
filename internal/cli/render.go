// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// render.go - Output rendering for termgpt.
//
// Free-text answers are markdown and render through glamour. Shell and
// code answers are raw by contract (the roles forbid markdown fences) and
// get syntax highlighting through chroma instead. Everything degrades to
// plain text when stdout is not a terminal.

package cli

import (
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/termgpt/internal/chat"
	"github.com/jeranaias/termgpt/internal/config"
	"github.com/jeranaias/termgpt/internal/role"
)

// NewRenderer returns the render function for a role's output kind. The
// returned function never fails: any rendering problem falls back to the
// raw text.
func NewRenderer(cfg *config.Config, kind role.OutputKind) chat.RenderFunc {
	if !ColorsEnabled() {
		return func(s string) string { return s }
	}

	switch kind {
	case role.OutputShellCommand:
		return func(s string) string {
			return highlight(s, "bash", cfg.UI.HighlightTheme)
		}
	case role.OutputCode:
		return func(s string) string {
			return highlightGuessed(s, cfg.UI.HighlightTheme)
		}
	default:
		if !cfg.UI.Markdown {
			return func(s string) string { return s }
		}
		return markdownRenderer()
	}
}

func markdownRenderer() chat.RenderFunc {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(GetTerminalWidth()),
	)
	if err != nil {
		return func(s string) string { return s }
	}
	return func(s string) string {
		out, err := renderer.Render(s)
		if err != nil {
			return s
		}
		return strings.TrimRight(out, "\n")
	}
}

func highlight(code, lexer, theme string) string {
	var b strings.Builder
	if err := quick.Highlight(&b, code, lexer, "terminal256", theme); err != nil {
		return code
	}
	return strings.TrimRight(b.String(), "\n")
}

// highlightGuessed analyses the text to pick a lexer, since the code role
// answers in whatever language the prompt asked for.
func highlightGuessed(code, theme string) string {
	lexer := lexers.Analyse(code)
	if lexer == nil {
		return code
	}
	return highlight(code, lexer.Config().Name, theme)
}
