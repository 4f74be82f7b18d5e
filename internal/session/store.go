// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jeranaias/parrot-tui/internal/model"
)

// Sentinel errors for store operations.
var (
	// ErrOutOfBounds means an index does not address a conversation. For the
	// active index this is an internal invariant violation.
	ErrOutOfBounds = errors.New("conversation index out of bounds")

	// ErrEmpty means the store holds no conversations at all.
	ErrEmpty = errors.New("session store is empty")

	// ErrLastConversation is returned when removing the only conversation.
	ErrLastConversation = errors.New("cannot remove the last conversation")
)

// =============================================================================
// STORE
// =============================================================================

// Store is the ordered collection of conversations plus the active index.
type Store struct {
	conversations []*model.Conversation
	active        int
}

// New builds a store from previously persisted conversations. Empty
// conversations are dropped and a fresh one is seeded at slot 0, so the
// store is never empty. A conversation without an ID, or with one already
// taken, gets a fresh ID: results are routed back by ID.
func New(loaded []*model.Conversation, systemInstructions string) *Store {
	s := &Store{conversations: make([]*model.Conversation, 0, len(loaded)+1)}
	seen := make(map[string]bool, len(loaded))
	for _, conv := range loaded {
		if conv == nil || conv.IsEmpty() {
			continue
		}
		if conv.ID == "" || seen[conv.ID] {
			conv.ID = uuid.NewString()
		}
		seen[conv.ID] = true
		s.conversations = append(s.conversations, conv)
	}
	s.StartNew(systemInstructions)
	return s
}

// Len returns the number of conversations.
func (s *Store) Len() int {
	return len(s.conversations)
}

// ActiveIndex returns the index of the active conversation.
func (s *Store) ActiveIndex() int {
	return s.active
}

// Conversations returns the conversations newest first. The slice is a copy;
// the conversations are shared.
func (s *Store) Conversations() []*model.Conversation {
	out := make([]*model.Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// Get returns the conversation at index i.
func (s *Store) Get(i int) (*model.Conversation, error) {
	if i < 0 || i >= len(s.conversations) {
		return nil, fmt.Errorf("%w: %d of %d", ErrOutOfBounds, i, len(s.conversations))
	}
	return s.conversations[i], nil
}

// IndexOf returns the index of the conversation with the given ID, or -1.
func (s *Store) IndexOf(id string) int {
	for i, conv := range s.conversations {
		if conv.ID == id {
			return i
		}
	}
	return -1
}

// Active returns the active conversation.
func (s *Store) Active() (*model.Conversation, error) {
	return s.Get(s.active)
}

// =============================================================================
// MUTATIONS
// =============================================================================

// StartNew makes a fresh conversation with the given system instructions the
// active one. An empty conversation at slot 0 is replaced in place; otherwise
// the new conversation is inserted at slot 0.
func (s *Store) StartNew(systemInstructions string) *model.Conversation {
	conv := model.NewConversation(systemInstructions)
	if len(s.conversations) > 0 && s.conversations[0].IsEmpty() {
		s.conversations[0] = conv
	} else {
		s.conversations = append(s.conversations, nil)
		copy(s.conversations[1:], s.conversations)
		s.conversations[0] = conv
	}
	s.active = 0
	return conv
}

// Append adds a message to the active conversation.
func (s *Store) Append(msg model.Message) error {
	conv, err := s.Active()
	if err != nil {
		return err
	}
	conv.Append(msg)
	return nil
}

// Select makes the conversation at index i active.
func (s *Store) Select(i int) error {
	if i < 0 || i >= len(s.conversations) {
		return fmt.Errorf("%w: %d of %d", ErrOutOfBounds, i, len(s.conversations))
	}
	s.active = i
	return nil
}

// Remove deletes the conversation at index i. The active index follows the
// active conversation when it survives, and is clamped otherwise.
func (s *Store) Remove(i int) error {
	if i < 0 || i >= len(s.conversations) {
		return fmt.Errorf("%w: %d of %d", ErrOutOfBounds, i, len(s.conversations))
	}
	if len(s.conversations) == 1 {
		return ErrLastConversation
	}

	s.conversations = append(s.conversations[:i], s.conversations[i+1:]...)
	if i < s.active {
		s.active--
	}
	return s.Clamp()
}

// Clamp pulls the active index back into range. It fails only when the
// store is empty, which the store itself never allows.
func (s *Store) Clamp() error {
	n := len(s.conversations)
	if n == 0 {
		s.active = 0
		return ErrEmpty
	}
	if s.active >= n {
		s.active = n - 1
	}
	if s.active < 0 {
		s.active = 0
	}
	return nil
}

// Persistable returns the conversations worth writing to disk: every
// non-empty conversation, newest first.
func (s *Store) Persistable() []*model.Conversation {
	out := make([]*model.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		if !conv.IsEmpty() {
			out = append(out, conv)
		}
	}
	return out
}
