// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
)

// EmptyPreview is shown for conversations without a user message.
const EmptyPreview = "<EMPTY>"

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds the system instructions and the ordered messages of a
// single chat. SystemInstructions is set at creation and never changes;
// Messages only grows.
type Conversation struct {
	ID                 string    `json:"id"`
	SystemInstructions string    `json:"system_instructions"`
	Messages           []Message `json:"messages"`
	CreatedAt          time.Time `json:"created_at"`
}

// NewConversation creates an empty conversation with a generated ID.
func NewConversation(systemInstructions string) *Conversation {
	return &Conversation{
		ID:                 uuid.NewString(),
		SystemInstructions: systemInstructions,
		Messages:           []Message{},
		CreatedAt:          time.Now().UTC(),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds a message to the end of the conversation.
func (c *Conversation) Append(msg Message) {
	c.Messages = append(c.Messages, msg)
}

// IsEmpty returns true if no user or assistant message has been added.
func (c *Conversation) IsEmpty() bool {
	for _, msg := range c.Messages {
		if msg.IsConversational() {
			return false
		}
	}
	return true
}

// LastMessage returns the most recent message, if any.
func (c *Conversation) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// Exchange returns the user and assistant messages in order, skipping local
// system notes. This is what gets sent to a provider.
func (c *Conversation) Exchange() []Message {
	out := make([]Message, 0, len(c.Messages))
	for _, msg := range c.Messages {
		if msg.IsConversational() {
			out = append(out, msg)
		}
	}
	return out
}

// Clone returns a deep copy that shares no message storage with c.
func (c *Conversation) Clone() *Conversation {
	cp := *c
	cp.Messages = make([]Message, len(c.Messages))
	copy(cp.Messages, c.Messages)
	return &cp
}

// =============================================================================
// DISPLAY
// =============================================================================

// Preview returns the first user message with newlines turned into spaces,
// truncated to width terminal cells. Other whitespace is kept as typed.
func (c *Conversation) Preview(width int) string {
	for _, msg := range c.Messages {
		if msg.Role != RoleUser {
			continue
		}
		line := strings.ReplaceAll(msg.Content, "\n", " ")
		if width <= 0 {
			return line
		}
		return runewidth.Truncate(line, width, "")
	}
	return EmptyPreview
}

// String renders every message as "Author: content" on its own line.
func (c *Conversation) String() string {
	var b strings.Builder
	for _, msg := range c.Messages {
		b.WriteString(msg.String())
		b.WriteByte('\n')
	}
	return b.String()
}
