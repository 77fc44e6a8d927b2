// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/jeranaias/termgpt/internal/ollama"
)

// Request is one completion call: the full message list plus sampling
// parameters.
type Request struct {
	Messages    []ollama.Message
	Model       string
	Temperature float64
	TopP        float64
}

// Completer produces a completion for a request. The call blocks until the
// model finishes; cancellation comes only through ctx.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompletionError wraps a failure from the underlying completer so callers
// can distinguish model failures from storage or cache failures.
type CompletionError struct {
	Cause error
}

func (e *CompletionError) Error() string {
	return "completion failed: " + e.Cause.Error()
}

func (e *CompletionError) Unwrap() error {
	return e.Cause
}

// OllamaCompleter adapts the Ollama client to the Completer interface.
type OllamaCompleter struct {
	Client *ollama.Client
}

// Complete sends a non-streaming chat request and returns the assistant
// message content.
func (c *OllamaCompleter) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := c.Client.Chat(ctx, req.Model, req.Messages, &ollama.Options{
		Temperature: req.Temperature,
		TopP:        req.TopP,
	})
	if err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}
