// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import "time"

// =============================================================================
// WIRE TYPES
// =============================================================================

// Message is one entry of the messages array sent to /api/chat.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func NewUserMessage(content string) Message      { return Message{Role: "user", Content: content} }
func NewAssistantMessage(content string) Message { return Message{Role: "assistant", Content: content} }
func NewSystemMessage(content string) Message    { return Message{Role: "system", Content: content} }

// ChatRequest is the body of POST /api/chat. Stream is always false: parrot
// waits for the whole reply.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  *Options  `json:"options,omitempty"`
}

// Options are the generation parameters. Zero values are omitted so the
// server defaults apply.
type Options struct {
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// ChatResponse is a non-streamed /api/chat reply. The eval counts are the
// prompt and completion token counts.
type ChatResponse struct {
	Model           string    `json:"model"`
	CreatedAt       time.Time `json:"created_at"`
	Message         Message   `json:"message"`
	Done            bool      `json:"done"`
	DoneReason      string    `json:"done_reason,omitempty"`
	PromptEvalCount int       `json:"prompt_eval_count,omitempty"`
	EvalCount       int       `json:"eval_count,omitempty"`
}

// TagsResponse is the body of GET /api/tags.
type TagsResponse struct {
	Models []LocalModel `json:"models"`
}

// LocalModel is one installed model.
type LocalModel struct {
	Name       string    `json:"name"`
	ModifiedAt time.Time `json:"modified_at"`
	Size       int64     `json:"size"`
}

// errorBody is the JSON error payload of a failed request.
type errorBody struct {
	Error string `json:"error"`
}
