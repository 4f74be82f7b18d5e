// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"time"

	"github.com/jeranaias/parrot-tui/internal/config"
	"github.com/jeranaias/parrot-tui/internal/model"
	"github.com/jeranaias/parrot-tui/internal/ollama"
)

// Ollama completes against a local Ollama server.
type Ollama struct {
	client *ollama.Client
	cfg    config.OllamaConfig
}

// NewOllama creates an Ollama completer. timeout bounds each HTTP request.
func NewOllama(cfg config.OllamaConfig, timeout time.Duration) *Ollama {
	return &Ollama{
		client: ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: cfg.URL, Timeout: timeout}),
		cfg:    cfg,
	}
}

func (c *Ollama) Provider() model.Provider { return model.ProviderOllama }
func (c *Ollama) Model() string            { return c.cfg.Model }

// Complete sends the conversation as one non-streaming chat request.
func (c *Ollama) Complete(ctx context.Context, conv *model.Conversation) (*Completion, error) {
	started := time.Now()

	messages := make([]ollama.Message, 0, len(conv.Messages)+1)
	if conv.SystemInstructions != "" {
		messages = append(messages, ollama.NewSystemMessage(conv.SystemInstructions))
	}
	for _, msg := range conv.Exchange() {
		if msg.Role == model.RoleAssistant {
			messages = append(messages, ollama.NewAssistantMessage(msg.Content))
		} else {
			messages = append(messages, ollama.NewUserMessage(msg.Content))
		}
	}

	resp, err := c.client.Chat(ctx, ollama.ChatRequest{
		Model:    c.cfg.Model,
		Messages: messages,
		Options: &ollama.Options{
			Temperature: c.cfg.Temperature.Value,
			TopP:        c.cfg.TopP.Value,
			NumPredict:  c.cfg.MaxTokens.Value,
		},
	})
	if err != nil {
		return nil, classify(model.ProviderOllama, err)
	}

	usage := Usage{Prompt: resp.PromptEvalCount, Completion: resp.EvalCount}
	return finish(model.ProviderOllama, c.cfg.Model, resp.Message.Content, usage, started)
}
