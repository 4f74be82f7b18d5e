// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types shared by the session store,
// the persistence layer, the provider clients and the UI.
//
// # Key Types
//
//   - Conversation: system instructions plus an append-only list of messages
//   - Message: a single message with role, content and (for assistant
//     messages) the provider that produced it
//   - Role: message role enumeration (user, assistant, system)
//   - Provider: the closed set of completion providers
//   - ModelInfo: a small catalog of well-known models per provider, used
//     to seed config defaults
//
// # Usage
//
// Create a conversation and append to it:
//
//	conv := model.NewConversation("You are a helpful assistant.")
//	conv.Append(model.NewUserMessage("Hello!"))
//	conv.Append(model.NewAssistantMessage(model.ProviderOpenAI, "Hi there."))
//
// Messages are never removed or reordered once appended, and the system
// instructions of a conversation are fixed at creation.
package model
