// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClientDefaults(t *testing.T) {
	client := NewClient()
	if client.config.BaseURL != "http://127.0.0.1:11434" {
		t.Errorf("BaseURL = %q, want default", client.config.BaseURL)
	}
	if client.config.DefaultModel == "" {
		t.Error("DefaultModel should not be empty")
	}
	if client.limiter != nil {
		t.Error("limiter should be nil when RequestsPerSecond is 0")
	}
}

func TestNewClientWithConfigFillsZeroValues(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{})
	if client.config.BaseURL == "" {
		t.Error("BaseURL not defaulted")
	}
	if client.config.DefaultModel == "" {
		t.Error("DefaultModel not defaulted")
	}
}

func TestNewClientWithNilConfig(t *testing.T) {
	client := NewClientWithConfig(nil)
	if client.config == nil {
		t.Fatal("config should be populated")
	}
}

func TestMessageConstructors(t *testing.T) {
	sys := NewSystemMessage("be terse")
	if sys.Role != "system" || sys.Content != "be terse" {
		t.Errorf("system message = %+v", sys)
	}
	usr := NewUserMessage("hello")
	if usr.Role != "user" {
		t.Errorf("user role = %q", usr.Role)
	}
	asst := NewAssistantMessage("hi")
	if asst.Role != "assistant" {
		t.Errorf("assistant role = %q", asst.Role)
	}
}

func TestClientErrorUnwrap(t *testing.T) {
	cause := context.DeadlineExceeded
	err := &ClientError{Type: ErrTypeTimeout, Message: "timed out", Cause: cause}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
	if err.Error() != "timed out: context deadline exceeded" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestChat(t *testing.T) {
	var gotReq ChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q, want /api/chat", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		resp := ChatResponse{
			Model:   gotReq.Model,
			Message: Message{Role: "assistant", Content: "ls -la"},
			Done:    true,
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: server.URL})
	resp, err := client.Chat(context.Background(), "test-model", []Message{
		NewSystemMessage("shell"),
		NewUserMessage("list files"),
	}, &Options{Temperature: 0.1, TopP: 1.0})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if resp.Message.Content != "ls -la" {
		t.Errorf("content = %q", resp.Message.Content)
	}
	if gotReq.Stream {
		t.Error("Stream should be false")
	}
	if gotReq.Model != "test-model" {
		t.Errorf("model = %q", gotReq.Model)
	}
	if gotReq.Options == nil || gotReq.Options.Temperature != 0.1 {
		t.Errorf("options = %+v", gotReq.Options)
	}
}

func TestChatModelNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: server.URL})
	_, err := client.Chat(context.Background(), "missing", []Message{NewUserMessage("hi")}, nil)
	if err != ErrModelNotFound {
		t.Errorf("err = %v, want ErrModelNotFound", err)
	}
}

func TestChatAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(APIError{Error: "out of memory"})
	}))
	defer server.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: server.URL})
	_, err := client.Chat(context.Background(), "model", []Message{NewUserMessage("hi")}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		t.Fatalf("err type = %T", err)
	}
	if clientErr.Message != "out of memory" {
		t.Errorf("message = %q", clientErr.Message)
	}
}

func TestCheckRunningDown(t *testing.T) {
	// Point at a server we've already closed.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: url})
	err := client.CheckRunning(context.Background())
	if err != ErrNotRunning {
		t.Errorf("err = %v, want ErrNotRunning", err)
	}
}

func TestListModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("path = %q, want /api/tags", r.URL.Path)
		}
		json.NewEncoder(w).Encode(ListModelsResponse{Models: []ModelInfo{
			{Name: "qwen2.5:7b"},
			{Name: "llama3.2:3b"},
		}})
	}))
	defer server.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: server.URL})
	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("len = %d, want 2", len(models))
	}
	if models[0].Name != "qwen2.5:7b" {
		t.Errorf("first model = %q", models[0].Name)
	}
}
