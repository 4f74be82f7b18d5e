// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/jeranaias/parrot-tui/internal/model"
	"github.com/jeranaias/parrot-tui/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrLocked is returned by Acquire when another process holds the lock.
var ErrLocked = errors.New("another parrot instance is using this data directory")

// CorruptError reports a conversation file that exists but cannot be parsed.
// It is fatal at startup: parrot refuses to overwrite history it cannot read.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("conversation file %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// =============================================================================
// CONVERSATION FILE
// =============================================================================

// ConversationFile reads and writes the conversation list.
type ConversationFile struct {
	Path string

	// Serializes writers; the lock file guards against other processes.
	mu sync.Mutex
}

// NewConversationFile returns a ConversationFile backed by path.
func NewConversationFile(path string) *ConversationFile {
	return &ConversationFile{Path: path}
}

// Load reads every persisted conversation, newest first. A missing file is
// not an error and yields no conversations.
func (f *ConversationFile) Load() ([]*model.Conversation, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read conversations: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var convs []*model.Conversation
	if err := json.Unmarshal(data, &convs); err != nil {
		return nil, &CorruptError{Path: f.Path, Err: err}
	}

	out := convs[:0]
	for _, conv := range convs {
		if conv != nil {
			out = append(out, conv)
		}
	}
	return out, nil
}

// Save replaces the file with convs. Empty conversations are skipped.
func (f *ConversationFile) Save(convs []*model.Conversation) error {
	keep := make([]*model.Conversation, 0, len(convs))
	for _, conv := range convs {
		if conv != nil && !conv.IsEmpty() {
			keep = append(keep, conv)
		}
	}

	data, err := json.MarshalIndent(keep, "", "  ")
	if err != nil {
		return fmt.Errorf("encode conversations: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := util.AtomicWriteFile(f.Path, data, 0600); err != nil {
		return fmt.Errorf("write conversations: %w", err)
	}
	return nil
}
