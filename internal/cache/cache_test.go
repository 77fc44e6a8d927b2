// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache", "responses.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestFingerprintDeterministic(t *testing.T) {
	in := FingerprintInput{
		RoleName:     "shell",
		SystemPrompt: "only commands",
		Messages:     []MessagePart{{Role: "user", Content: "list files"}},
		Model:        "qwen2.5:7b",
		Temperature:  0.1,
		TopP:         1.0,
	}
	if Fingerprint(in) != Fingerprint(in) {
		t.Error("same input should give same fingerprint")
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	base := FingerprintInput{
		RoleName:     "default",
		SystemPrompt: "prompt",
		Messages:     []MessagePart{{Role: "user", Content: "hi"}},
		Model:        "m1",
		Temperature:  0.1,
		TopP:         1.0,
	}
	baseFP := Fingerprint(base)

	variants := map[string]FingerprintInput{
		"role name":   {RoleName: "other", SystemPrompt: "prompt", Messages: base.Messages, Model: "m1", Temperature: 0.1, TopP: 1.0},
		"model":       {RoleName: "default", SystemPrompt: "prompt", Messages: base.Messages, Model: "m2", Temperature: 0.1, TopP: 1.0},
		"temperature": {RoleName: "default", SystemPrompt: "prompt", Messages: base.Messages, Model: "m1", Temperature: 0.2, TopP: 1.0},
		"top_p":       {RoleName: "default", SystemPrompt: "prompt", Messages: base.Messages, Model: "m1", Temperature: 0.1, TopP: 0.9},
		"content":     {RoleName: "default", SystemPrompt: "prompt", Messages: []MessagePart{{Role: "user", Content: "hi!"}}, Model: "m1", Temperature: 0.1, TopP: 1.0},
	}
	for name, v := range variants {
		if Fingerprint(v) == baseFP {
			t.Errorf("changing %s did not change fingerprint", name)
		}
	}
}

func TestFingerprintBoundaries(t *testing.T) {
	// Concatenation across field boundaries must not collide.
	a := FingerprintInput{RoleName: "ab", SystemPrompt: "c"}
	b := FingerprintInput{RoleName: "a", SystemPrompt: "bc"}
	if Fingerprint(a) == Fingerprint(b) {
		t.Error("boundary shift collided")
	}
}

func TestStorePutGet(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.Get("fp1", "m1"); !errors.Is(err, ErrMiss) {
		t.Fatalf("err = %v, want ErrMiss", err)
	}

	if err := store.Put("fp1", "m1", "ls -la"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.Get("fp1", "m1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "ls -la" {
		t.Errorf("completion = %q", got)
	}
}

func TestStoreModelMismatch(t *testing.T) {
	store := openTestStore(t)
	if err := store.Put("fp1", "m1", "out"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	_, err := store.Get("fp1", "m2")
	var collision *CollisionError
	if !errors.As(err, &collision) {
		t.Fatalf("err = %v, want *CollisionError", err)
	}
	if collision.GotModel != "m1" || collision.WantModel != "m2" {
		t.Errorf("collision = %+v", collision)
	}
}

func TestStoreClearAndStats(t *testing.T) {
	store := openTestStore(t)
	store.Put("a", "m", "1")
	store.Put("b", "m", "2")
	store.Get("a", "m")
	store.Get("missing", "m")

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 2 || stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v", stats)
	}

	n, err := store.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 2 {
		t.Errorf("cleared = %d, want 2", n)
	}

	stats, _ = store.Stats()
	if stats.Entries != 0 {
		t.Errorf("entries after clear = %d", stats.Entries)
	}
}

func TestStoreReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	store.Put("fp", "m", "persisted")
	store.Close()

	store2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store2.Close()
	got, err := store2.Get("fp", "m")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got != "persisted" {
		t.Errorf("completion = %q", got)
	}
}
