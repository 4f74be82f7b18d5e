// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API.
//
// Only the parts parrot needs are implemented: a health check, model
// listing for the Config tab, and non-streaming chat completions.
//
// # Key Types
//
//   - Client: HTTP client for Ollama API communication
//   - ChatRequest: Request structure for chat completions
//   - ChatResponse: Response structure with message and token counts
//   - ClientError: Typed error with an ErrorType for classification
//
// # Usage
//
//	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
//	    BaseURL: "http://localhost:11434",
//	})
//	resp, err := client.Chat(ctx, ollama.ChatRequest{
//	    Model:    "llama3.2",
//	    Messages: []ollama.Message{ollama.NewUserMessage("Hello")},
//	})
//
// Errors compare against the sentinels by type, so
// errors.Is(err, ollama.ErrNotRunning) works for any connection failure.
package ollama
