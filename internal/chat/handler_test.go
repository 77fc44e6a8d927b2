// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/termgpt/internal/cache"
	"github.com/jeranaias/termgpt/internal/role"
	"github.com/jeranaias/termgpt/internal/storage"
)

// fakeCompleter counts calls and replies from a canned map, echoing the
// last user message when no canned answer matches.
type fakeCompleter struct {
	calls   int
	replies map[string]string
	err     error
}

func (f *fakeCompleter) Complete(ctx context.Context, req Request) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	last := req.Messages[len(req.Messages)-1].Content
	if reply, ok := f.replies[last]; ok {
		return reply, nil
	}
	return "echo: " + last, nil
}

func shellRole(t *testing.T) role.Role {
	t.Helper()
	reg := role.NewRegistry(t.TempDir())
	r, err := reg.Get(role.ShellRoleName)
	require.NoError(t, err)
	return r
}

func openCache(t *testing.T) *cache.Store {
	t.Helper()
	c, err := cache.Open(filepath.Join(t.TempDir(), "responses.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestHandleShellCommand(t *testing.T) {
	store := storage.NewStore(t.TempDir())
	completer := &fakeCompleter{replies: map[string]string{"list files": "ls -la"}}
	h := NewHandler(shellRole(t), store, nil, completer, Options{
		Model: "m", Temperature: 0.1, TopP: 1.0,
	})

	out, err := h.Handle(context.Background(), "list files")
	require.NoError(t, err)
	assert.Equal(t, "ls -la", out)
	assert.Equal(t, 1, completer.calls)
}

func TestHandlePersistsExchange(t *testing.T) {
	store := storage.NewStore(t.TempDir())
	completer := &fakeCompleter{}
	h := NewHandler(shellRole(t), store, nil, completer, Options{
		Model: "m", ChatID: "work",
	})

	_, err := h.Handle(context.Background(), "first")
	require.NoError(t, err)

	messages, err := store.Load("work")
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, storage.RoleSystem, messages[0].Role)
	assert.Equal(t, "first", messages[1].Content)
	assert.Equal(t, "echo: first", messages[2].Content)

	// Second turn appends only user+assistant; the system prompt is not
	// re-injected.
	_, err = h.Handle(context.Background(), "second")
	require.NoError(t, err)
	messages, err = store.Load("work")
	require.NoError(t, err)
	require.Len(t, messages, 5)
	assert.Equal(t, storage.RoleUser, messages[3].Role)
}

func TestHandleNoPersistOnFailure(t *testing.T) {
	store := storage.NewStore(t.TempDir())
	completer := &fakeCompleter{err: errors.New("model down")}
	h := NewHandler(shellRole(t), store, nil, completer, Options{
		Model: "m", ChatID: "work",
	})

	_, err := h.Handle(context.Background(), "prompt")
	var compErr *CompletionError
	require.ErrorAs(t, err, &compErr)
	assert.False(t, store.Exists("work"), "failed turn must not be persisted")
}

func TestHandleCacheHitSkipsModel(t *testing.T) {
	cacheStore := openCache(t)
	store := storage.NewStore(t.TempDir())
	r := shellRole(t)
	opts := Options{Model: "m", Temperature: 0.1, TopP: 1.0, Caching: true}

	first := NewHandler(r, store, cacheStore, &fakeCompleter{replies: map[string]string{"list files": "ls -la"}}, opts)
	out, err := first.Handle(context.Background(), "list files")
	require.NoError(t, err)
	require.Equal(t, "ls -la", out)

	// A completer that always fails proves the second turn never reaches
	// the model.
	failing := &fakeCompleter{err: errors.New("should not be called")}
	second := NewHandler(r, store, cacheStore, failing, opts)
	out, err = second.Handle(context.Background(), "list files")
	require.NoError(t, err)
	assert.Equal(t, "ls -la", out)
	assert.Zero(t, failing.calls)
}

func TestHandleCacheHitStillPersists(t *testing.T) {
	cacheStore := openCache(t)
	dir := t.TempDir()
	r := shellRole(t)

	warm := NewHandler(r, storage.NewStore(dir), cacheStore, &fakeCompleter{}, Options{
		Model: "m", Caching: true,
	})
	_, err := warm.Handle(context.Background(), "q")
	require.NoError(t, err)

	store := storage.NewStore(dir)
	replay := NewHandler(r, store, cacheStore, &fakeCompleter{err: errors.New("down")}, Options{
		Model: "m", Caching: true, ChatID: "saved",
	})
	_, err = replay.Handle(context.Background(), "q")
	require.NoError(t, err)

	messages, err := store.Load("saved")
	require.NoError(t, err)
	assert.Len(t, messages, 3, "replayed turn must advance the conversation")
}

func TestHandleCachingDisabled(t *testing.T) {
	cacheStore := openCache(t)
	completer := &fakeCompleter{}
	h := NewHandler(shellRole(t), storage.NewStore(t.TempDir()), cacheStore, completer, Options{
		Model: "m", Caching: false,
	})

	_, err := h.Handle(context.Background(), "q")
	require.NoError(t, err)
	_, err = h.Handle(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, 2, completer.calls, "disabled cache must not replay")
}

func TestHandleDifferentParamsMissCache(t *testing.T) {
	cacheStore := openCache(t)
	r := shellRole(t)
	store := storage.NewStore(t.TempDir())

	a := NewHandler(r, store, cacheStore, &fakeCompleter{}, Options{Model: "m", Temperature: 0.1, Caching: true})
	_, err := a.Handle(context.Background(), "q")
	require.NoError(t, err)

	bCompleter := &fakeCompleter{}
	b := NewHandler(r, store, cacheStore, bCompleter, Options{Model: "m", Temperature: 0.7, Caching: true})
	_, err = b.Handle(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, 1, bCompleter.calls, "different temperature must not share cache entries")
}

func TestHandleUsesStoredHistory(t *testing.T) {
	store := storage.NewStore(t.TempDir())
	require.NoError(t, store.Append("c",
		storage.NewMessage(storage.RoleSystem, "s"),
		storage.NewMessage(storage.RoleUser, "q1"),
		storage.NewMessage(storage.RoleAssistant, "a1"),
	))

	var seen int
	completer := completerFunc(func(ctx context.Context, req Request) (string, error) {
		seen = len(req.Messages)
		return "a2", nil
	})
	h := NewHandler(shellRole(t), store, nil, completer, Options{Model: "m", ChatID: "c"})

	_, err := h.Handle(context.Background(), "q2")
	require.NoError(t, err)
	assert.Equal(t, 4, seen, "request must carry system + prior turns + new prompt")
}

func TestHandleTrimsContextWindow(t *testing.T) {
	store := storage.NewStore(t.TempDir())
	require.NoError(t, store.Append("long",
		storage.NewMessage(storage.RoleSystem, "s"),
		storage.NewMessage(storage.RoleUser, "q1"),
		storage.NewMessage(storage.RoleAssistant, "a1"),
		storage.NewMessage(storage.RoleUser, "q2"),
		storage.NewMessage(storage.RoleAssistant, "a2"),
		storage.NewMessage(storage.RoleUser, "q3"),
		storage.NewMessage(storage.RoleAssistant, "a3"),
	))

	var sent []string
	completer := completerFunc(func(ctx context.Context, req Request) (string, error) {
		sent = nil
		for _, m := range req.Messages {
			sent = append(sent, m.Role+":"+m.Content)
		}
		return "a4", nil
	})
	h := NewHandler(shellRole(t), store, nil, completer, Options{
		Model: "m", ChatID: "long", MaxMessages: 3,
	})

	_, err := h.Handle(context.Background(), "q4")
	require.NoError(t, err)
	// System message survives, context re-aligns to a user turn, and the
	// new prompt rides on top.
	assert.Equal(t, []string{"system:s", "user:q3", "assistant:a3", "user:q4"}, sent)

	// Persisted conversation is untouched by trimming.
	messages, err := store.Load("long")
	require.NoError(t, err)
	assert.Len(t, messages, 9)
}

type completerFunc func(ctx context.Context, req Request) (string, error)

func (f completerFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}
