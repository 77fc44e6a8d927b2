// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"

	"github.com/jeranaias/termgpt/internal/cache"
	"github.com/jeranaias/termgpt/internal/ollama"
	"github.com/jeranaias/termgpt/internal/role"
	"github.com/jeranaias/termgpt/internal/storage"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options fix the model and sampling parameters for every turn a Handler
// runs. ChatID "" means stateless: nothing is loaded or persisted.
type Options struct {
	Model       string
	Temperature float64
	TopP        float64
	ChatID      string
	Caching     bool

	// MaxMessages caps how much history is sent to the model (0 =
	// unlimited). The stored conversation is never trimmed, only the
	// request context.
	MaxMessages int
}

// =============================================================================
// HANDLER
// =============================================================================

// Handler runs completion turns for one role against one conversation.
// Not safe for concurrent use; the interaction loops are sequential.
type Handler struct {
	role      role.Role
	store     *storage.Store
	cache     *cache.Store
	completer Completer
	opts      Options
}

// NewHandler wires a handler. cacheStore may be nil; caching is then off
// regardless of opts.Caching.
func NewHandler(r role.Role, store *storage.Store, cacheStore *cache.Store, completer Completer, opts Options) *Handler {
	return &Handler{
		role:      r,
		store:     store,
		cache:     cacheStore,
		completer: completer,
		opts:      opts,
	}
}

// Role returns the role this handler speaks with.
func (h *Handler) Role() role.Role {
	return h.role
}

// ChatID returns the conversation this handler appends to, or "" when
// stateless.
func (h *Handler) ChatID() string {
	return h.opts.ChatID
}

// Handle runs one turn: prompt in, assistant text out.
//
// History is loaded when the conversation exists; otherwise the turn starts
// from the role's system prompt. The cache is consulted before the model,
// and a hit is persisted exactly like a fresh completion, so replayed turns
// still advance the conversation. Nothing is persisted when the completion
// fails.
func (h *Handler) Handle(ctx context.Context, prompt string) (string, error) {
	history, fresh, err := h.history()
	if err != nil {
		return "", err
	}
	context := trimHistory(history, h.opts.MaxMessages)

	messages := make([]ollama.Message, 0, len(context)+2)
	for _, m := range context {
		messages = append(messages, ollama.Message{Role: m.Role, Content: m.Content})
	}
	if fresh {
		messages = append(messages, ollama.NewSystemMessage(h.role.SystemPrompt))
	}
	messages = append(messages, ollama.NewUserMessage(prompt))

	completion, err := h.complete(ctx, messages)
	if err != nil {
		return "", err
	}

	if h.opts.ChatID != "" {
		batch := make([]storage.Message, 0, 3)
		if fresh {
			batch = append(batch, storage.NewMessage(storage.RoleSystem, h.role.SystemPrompt))
		}
		batch = append(batch,
			storage.NewMessage(storage.RoleUser, prompt),
			storage.NewMessage(storage.RoleAssistant, completion),
		)
		if err := h.store.Append(h.opts.ChatID, batch...); err != nil {
			return "", err
		}
	}

	return completion, nil
}

// History returns the stored conversation, or nil for a stateless handler
// or one whose conversation does not exist yet.
func (h *Handler) History() ([]storage.Message, error) {
	if h.opts.ChatID == "" {
		return nil, nil
	}
	messages, err := h.store.Load(h.opts.ChatID)
	if errors.Is(err, storage.ErrConversationNotFound) {
		return nil, nil
	}
	return messages, err
}

// ClearHistory removes the stored conversation, if any.
func (h *Handler) ClearHistory() error {
	if h.opts.ChatID == "" {
		return nil
	}
	return h.store.Clear(h.opts.ChatID)
}

// trimHistory keeps the leading system message plus the most recent turns,
// re-aligned so the remainder still starts at a user message.
func trimHistory(msgs []storage.Message, max int) []storage.Message {
	if max <= 0 || len(msgs) <= max {
		return msgs
	}

	var sys []storage.Message
	rest := msgs
	if rest[0].Role == storage.RoleSystem {
		sys = rest[:1]
		rest = rest[1:]
	}

	keep := max - len(sys)
	if keep < 0 {
		keep = 0
	}
	if len(rest) > keep {
		rest = rest[len(rest)-keep:]
		for len(rest) > 0 && rest[0].Role != storage.RoleUser {
			rest = rest[1:]
		}
	}

	out := make([]storage.Message, 0, len(sys)+len(rest))
	out = append(out, sys...)
	return append(out, rest...)
}

func (h *Handler) history() (messages []storage.Message, fresh bool, err error) {
	if h.opts.ChatID == "" {
		return nil, true, nil
	}
	messages, err = h.store.Load(h.opts.ChatID)
	if errors.Is(err, storage.ErrConversationNotFound) {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return messages, len(messages) == 0, nil
}

// complete consults the cache and falls back to the model.
func (h *Handler) complete(ctx context.Context, messages []ollama.Message) (string, error) {
	var fingerprint string
	caching := h.opts.Caching && h.cache != nil

	if caching {
		fingerprint = h.fingerprint(messages)
		completion, err := h.cache.Get(fingerprint, h.opts.Model)
		if err == nil {
			return completion, nil
		}
		// A collision or a broken cache falls through to the model; the
		// fresh answer overwrites the bad row.
		var collision *cache.CollisionError
		if !errors.Is(err, cache.ErrMiss) && !errors.As(err, &collision) {
			caching = false
		}
	}

	completion, err := h.completer.Complete(ctx, Request{
		Messages:    messages,
		Model:       h.opts.Model,
		Temperature: h.opts.Temperature,
		TopP:        h.opts.TopP,
	})
	if err != nil {
		return "", &CompletionError{Cause: err}
	}

	if caching {
		// Cache failures never fail a successful completion.
		_ = h.cache.Put(fingerprint, h.opts.Model, completion)
	}
	return completion, nil
}

func (h *Handler) fingerprint(messages []ollama.Message) string {
	parts := make([]cache.MessagePart, len(messages))
	for i, m := range messages {
		parts[i] = cache.MessagePart{Role: m.Role, Content: m.Content}
	}
	return cache.Fingerprint(cache.FingerprintInput{
		RoleName:     h.role.Name,
		SystemPrompt: h.role.SystemPrompt,
		Messages:     parts,
		Model:        h.opts.Model,
		Temperature:  h.opts.Temperature,
		TopP:         h.opts.TopP,
	})
}
