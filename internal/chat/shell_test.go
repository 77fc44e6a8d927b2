// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/termgpt/internal/role"
	"github.com/jeranaias/termgpt/internal/storage"
)

type recordingExecutor struct {
	ran []string
}

func (r *recordingExecutor) Run(command string) error {
	r.ran = append(r.ran, command)
	return nil
}

func describeHandler(t *testing.T) *Handler {
	t.Helper()
	reg := role.NewRegistry(t.TempDir())
	r, err := reg.Get(role.DescribeRoleName)
	require.NoError(t, err)
	completer := &fakeCompleter{replies: map[string]string{
		"ls -la": "lists all files in long format",
	}}
	return NewHandler(r, storage.NewStore(t.TempDir()), nil, completer, Options{Model: "m"})
}

func TestShellConfirmExecute(t *testing.T) {
	exec := &recordingExecutor{}
	var out bytes.Buffer

	err := RunShellConfirm(context.Background(), "ls -la", describeHandler(t), exec,
		scriptedInput("e"), &out, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"ls -la"}, exec.ran)
}

func TestShellConfirmAbort(t *testing.T) {
	exec := &recordingExecutor{}
	var out bytes.Buffer

	err := RunShellConfirm(context.Background(), "rm -rf /tmp/x", describeHandler(t), exec,
		scriptedInput("a"), &out, nil)
	require.NoError(t, err)
	assert.Empty(t, exec.ran)
}

func TestShellConfirmDescribeThenExecute(t *testing.T) {
	exec := &recordingExecutor{}
	var out bytes.Buffer

	err := RunShellConfirm(context.Background(), "ls -la", describeHandler(t), exec,
		scriptedInput("d", "E"), &out, nil)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "lists all files in long format")
	assert.Equal(t, []string{"ls -la"}, exec.ran)
}

func TestShellConfirmUnknownReprompts(t *testing.T) {
	exec := &recordingExecutor{}
	var out bytes.Buffer

	err := RunShellConfirm(context.Background(), "ls", describeHandler(t), exec,
		scriptedInput("x", "maybe", "a"), &out, nil)
	require.NoError(t, err)
	assert.Empty(t, exec.ran)
}

func TestShellConfirmEOFAborts(t *testing.T) {
	exec := &recordingExecutor{}
	var out bytes.Buffer

	err := RunShellConfirm(context.Background(), "ls", describeHandler(t), exec,
		scriptedInput(), &out, nil)
	require.NoError(t, err)
	assert.Empty(t, exec.ran)
}
