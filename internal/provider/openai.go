// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/jeranaias/parrot-tui/internal/config"
	"github.com/jeranaias/parrot-tui/internal/model"
)

// OpenAI completes against the chat completions API or any server that
// speaks it (base_url).
type OpenAI struct {
	client *openai.Client
	cfg    config.OpenAIConfig
}

// NewOpenAI creates an OpenAI completer. A key is required unless a custom
// base URL is set.
func NewOpenAI(cfg config.OpenAIConfig) (*OpenAI, error) {
	if cfg.BaseURL == "" {
		if err := requireKey(model.ProviderOpenAI, cfg.Key); err != nil {
			return nil, err
		}
	}

	clientCfg := openai.DefaultConfig(cfg.Key)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAI{client: openai.NewClientWithConfig(clientCfg), cfg: cfg}, nil
}

func (c *OpenAI) Provider() model.Provider { return model.ProviderOpenAI }
func (c *OpenAI) Model() string            { return c.cfg.Model }

// Complete sends the conversation as one chat completion request.
func (c *OpenAI) Complete(ctx context.Context, conv *model.Conversation) (*Completion, error) {
	started := time.Now()

	messages := make([]openai.ChatCompletionMessage, 0, len(conv.Messages)+1)
	if conv.SystemInstructions != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: conv.SystemInstructions,
		})
	}
	for _, msg := range conv.Exchange() {
		role := openai.ChatMessageRoleUser
		if msg.Role == model.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:            c.cfg.Model,
		Messages:         messages,
		MaxTokens:        c.cfg.MaxTokens.Value,
		Temperature:      float32(c.cfg.Temperature.Value),
		TopP:             float32(c.cfg.TopP.Value),
		FrequencyPenalty: float32(c.cfg.FrequencyPenalty.Value),
		PresencePenalty:  float32(c.cfg.PresencePenalty.Value),
	})
	if err != nil {
		return nil, classify(model.ProviderOpenAI, err)
	}
	if len(resp.Choices) == 0 {
		return nil, &CompletionError{Kind: KindMalformed, Provider: model.ProviderOpenAI, Message: "response contained no choices"}
	}

	usage := Usage{
		Prompt:     resp.Usage.PromptTokens,
		Completion: resp.Usage.CompletionTokens,
		Total:      resp.Usage.TotalTokens,
	}
	modelName := resp.Model
	if modelName == "" {
		modelName = c.cfg.Model
	}
	return finish(model.ProviderOpenAI, modelName, resp.Choices[0].Message.Content, usage, started)
}
