// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/jeranaias/parrot-tui/internal/config"
	"github.com/jeranaias/parrot-tui/internal/model"
)

// Anthropic completes against the messages API.
type Anthropic struct {
	client *anthropic.Client
	cfg    config.AnthropicConfig
}

// NewAnthropic creates an Anthropic completer.
func NewAnthropic(cfg config.AnthropicConfig) (*Anthropic, error) {
	if err := requireKey(model.ProviderAnthropic, cfg.Key); err != nil {
		return nil, err
	}
	return &Anthropic{client: anthropic.NewClient(cfg.Key), cfg: cfg}, nil
}

func (c *Anthropic) Provider() model.Provider { return model.ProviderAnthropic }
func (c *Anthropic) Model() string            { return c.cfg.Model }

// Complete sends the conversation as one messages request. The system
// instructions travel in the system field, not as a message.
func (c *Anthropic) Complete(ctx context.Context, conv *model.Conversation) (*Completion, error) {
	started := time.Now()

	exchange := conv.Exchange()
	messages := make([]anthropic.Message, 0, len(exchange))
	for _, msg := range exchange {
		role := anthropic.RoleUser
		if msg.Role == model.RoleAssistant {
			role = anthropic.RoleAssistant
		}
		messages = append(messages, anthropic.Message{
			Role:    role,
			Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(msg.Content)},
		})
	}

	temperature := float32(c.cfg.Temperature.Value)
	req := anthropic.MessagesRequest{
		Model:       anthropic.Model(c.cfg.Model),
		Messages:    messages,
		MaxTokens:   c.cfg.MaxTokens.Value,
		Temperature: &temperature,
	}
	if conv.SystemInstructions != "" {
		req.MultiSystem = []anthropic.MessageSystemPart{{Type: "text", Text: conv.SystemInstructions}}
	}

	resp, err := c.client.CreateMessages(ctx, req)
	if err != nil {
		return nil, classify(model.ProviderAnthropic, err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			text.WriteString(*block.Text)
		}
	}

	usage := Usage{
		Prompt:     resp.Usage.InputTokens,
		Completion: resp.Usage.OutputTokens,
	}
	return finish(model.ProviderAnthropic, c.cfg.Model, text.String(), usage, started)
}
