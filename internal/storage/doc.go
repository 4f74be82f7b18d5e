// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists parrot's conversations.
//
// All conversations live in a single JSON file, rewritten atomically on
// every change. A second parrot process sharing the same data directory is
// refused through an exclusive lock file.
//
// # Key Types
//
//   - ConversationFile: load and save the conversation list
//   - Lock: exclusive ownership of the data directory
//
// # Usage
//
//	lock, err := storage.Acquire(paths.LockFile())
//	if err != nil {
//	    return err
//	}
//	defer lock.Release()
//
//	file := storage.NewConversationFile(paths.ConversationsFile())
//	convs, err := file.Load()
//
// # Storage Location
//
// Conversations are stored in <data dir>/parrot/conversations.json.
package storage
