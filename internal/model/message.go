// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "User"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
// A message is immutable once it has been appended to a conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Provider  Provider  `json:"provider,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates an assistant message tagged with its provider.
func NewAssistantMessage(provider Provider, content string) Message {
	msg := NewMessage(RoleAssistant, content)
	msg.Provider = provider
	return msg
}

// NewSystemMessage creates a new system message.
// System messages are local notes and are never sent to a provider.
func NewSystemMessage(content string) Message {
	return NewMessage(RoleSystem, content)
}

// Author returns the display label for the message sender, including the
// provider for assistant messages, e.g. "Assistant (openai)".
func (m Message) Author() string {
	if m.Role == RoleAssistant && m.Provider != "" {
		return fmt.Sprintf("%s (%s)", m.Role.DisplayName(), m.Provider)
	}
	return m.Role.DisplayName()
}

// IsConversational reports whether the message counts as part of the
// exchange with the assistant.
func (m Message) IsConversational() bool {
	return m.Role == RoleUser || m.Role == RoleAssistant
}

// String formats the message as "Author: content".
func (m Message) String() string {
	return m.Author() + ": " + m.Content
}
