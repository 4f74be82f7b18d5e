// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package provider turns a conversation into one completion request against
// the configured language-model backend.
//
// Each backend (OpenAI, Anthropic, Gemini, Ollama) implements Completer. The
// conversation's system instructions are sent first, followed by the user and
// assistant messages; local system notes are never sent.
//
// Every failure is returned as a *CompletionError whose Kind tells the caller
// what went wrong without inspecting backend-specific error types.
//
// # Usage
//
//	c, err := provider.New(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	completion, err := c.Complete(ctx, conversation)
package provider
