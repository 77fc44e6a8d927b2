// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/termgpt/internal/util"
)

// =============================================================================
// MESSAGES
// =============================================================================

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn in a persisted conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message with a fresh id and the current time.
func NewMessage(role, content string) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrConversationNotFound reports a chat id with no stored conversation.
var ErrConversationNotFound = errors.New("conversation not found")

// InvalidConversationError reports a message sequence that violates the
// conversation shape: optional leading system message, then strictly
// alternating user and assistant turns starting with user.
type InvalidConversationError struct {
	Reason string
}

func (e *InvalidConversationError) Error() string {
	return "invalid conversation: " + e.Reason
}

// =============================================================================
// STORE
// =============================================================================

// EphemeralChatID is the reserved id for the in-memory scratch conversation.
const EphemeralChatID = "temp"

// Store reads and writes conversations under BaseDir. The ephemeral chat
// lives only in the Store instance, so it survives across turns of one
// process and vanishes with it.
type Store struct {
	BaseDir   string
	ephemeral []Message
}

// NewStore creates a conversation store rooted at baseDir. The directory is
// created lazily on first write.
func NewStore(baseDir string) *Store {
	return &Store{BaseDir: baseDir}
}

// Load returns the messages of chat id, or ErrConversationNotFound.
func (s *Store) Load(id string) ([]Message, error) {
	if err := validateChatID(id); err != nil {
		return nil, err
	}
	if id == EphemeralChatID {
		if s.ephemeral == nil {
			return nil, ErrConversationNotFound
		}
		out := make([]Message, len(s.ephemeral))
		copy(out, s.ephemeral)
		return out, nil
	}

	data, err := os.ReadFile(s.chatPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to read conversation %s: %w", id, err)
	}

	var messages []Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse conversation %s: %w", id, err)
	}
	return messages, nil
}

// Append adds messages to chat id, creating it if absent. The combined
// sequence is validated before anything is written, so a bad batch leaves
// the stored conversation untouched.
func (s *Store) Append(id string, messages ...Message) error {
	if err := validateChatID(id); err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}

	existing, err := s.Load(id)
	if err != nil && !errors.Is(err, ErrConversationNotFound) {
		return err
	}

	combined := append(append([]Message{}, existing...), messages...)
	if err := validateSequence(combined); err != nil {
		return err
	}

	if id == EphemeralChatID {
		s.ephemeral = combined
		return nil
	}

	data, err := json.MarshalIndent(combined, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode conversation: %w", err)
	}
	if err := os.MkdirAll(s.BaseDir, 0700); err != nil {
		return fmt.Errorf("failed to create chat directory: %w", err)
	}
	if err := util.AtomicWriteFile(s.chatPath(id), data, 0600); err != nil {
		return fmt.Errorf("failed to write conversation %s: %w", id, err)
	}
	return nil
}

// Exists reports whether chat id has any stored messages.
func (s *Store) Exists(id string) bool {
	if id == EphemeralChatID {
		return s.ephemeral != nil
	}
	_, err := os.Stat(s.chatPath(id))
	return err == nil
}

// ListIDs returns the ids of all durable conversations, sorted. The
// ephemeral chat is never listed.
func (s *Store) ListIDs() ([]string, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read chat directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// Clear removes chat id. Clearing a conversation that does not exist is
// not an error.
func (s *Store) Clear(id string) error {
	if err := validateChatID(id); err != nil {
		return err
	}
	if id == EphemeralChatID {
		s.ephemeral = nil
		return nil
	}
	if err := os.Remove(s.chatPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove conversation %s: %w", id, err)
	}
	return nil
}

func (s *Store) chatPath(id string) string {
	return filepath.Join(s.BaseDir, id+".json")
}

// =============================================================================
// VALIDATION
// =============================================================================

func validateChatID(id string) error {
	if id == "" {
		return fmt.Errorf("chat id cannot be empty")
	}
	if strings.ContainsAny(id, "/\\") || id == "." || id == ".." {
		return fmt.Errorf("invalid chat id: %s", id)
	}
	return nil
}

// validateSequence enforces the conversation shape: at most one system
// message and only at the front, then user and assistant turns alternating
// starting with user.
func validateSequence(messages []Message) error {
	turns := messages
	if len(turns) > 0 && turns[0].Role == RoleSystem {
		turns = turns[1:]
	}
	for i, m := range turns {
		switch m.Role {
		case RoleSystem:
			return &InvalidConversationError{Reason: "system message after the first position"}
		case RoleUser:
			if i%2 != 0 {
				return &InvalidConversationError{Reason: "user message where assistant expected"}
			}
		case RoleAssistant:
			if i%2 != 1 {
				return &InvalidConversationError{Reason: "assistant message where user expected"}
			}
		default:
			return &InvalidConversationError{Reason: "unknown role " + m.Role}
		}
	}
	return nil
}

// =============================================================================
// PRESENTATION
// =============================================================================

// ExportMarkdown renders a conversation as a markdown transcript.
func ExportMarkdown(id string, messages []Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Chat: %s\n\n", id)
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			fmt.Fprintf(&b, "**system** (%s):\n\n%s\n\n", m.Timestamp.Format(time.RFC3339), m.Content)
		case RoleUser:
			fmt.Fprintf(&b, "**you** (%s):\n\n%s\n\n", m.Timestamp.Format(time.RFC3339), m.Content)
		case RoleAssistant:
			fmt.Fprintf(&b, "**assistant** (%s):\n\n%s\n\n", m.Timestamp.Format(time.RFC3339), m.Content)
		}
	}
	return b.String()
}

// FormatChatList renders chat ids, message counts and a preview of the
// last user message as an aligned table.
func FormatChatList(s *Store, ids []string) string {
	if len(ids) == 0 {
		return "No saved chats.\n"
	}

	width := len("CHAT ID")
	for _, id := range ids {
		if len(id) > width {
			width = len(id)
		}
	}

	var b strings.Builder
	b.WriteString(util.Pad("CHAT ID", width+2))
	b.WriteString(util.Pad("MESSAGES", 10))
	b.WriteString("LAST PROMPT\n")
	for _, id := range ids {
		var count int
		var preview string
		if messages, err := s.Load(id); err == nil {
			count = len(messages)
			for i := len(messages) - 1; i >= 0; i-- {
				if messages[i].Role == RoleUser {
					preview = util.Truncate(util.Flatten(messages[i].Content), 48)
					break
				}
			}
		}
		b.WriteString(util.Pad(id, width+2))
		b.WriteString(util.Pad(fmt.Sprintf("%d", count), 10))
		b.WriteString(preview)
		b.WriteString("\n")
	}
	return b.String()
}
