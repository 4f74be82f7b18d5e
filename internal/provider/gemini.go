// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"time"

	"google.golang.org/genai"

	"github.com/jeranaias/parrot-tui/internal/config"
	"github.com/jeranaias/parrot-tui/internal/model"
)

// Gemini completes against the Gemini API.
type Gemini struct {
	client *genai.Client
	cfg    config.GeminiConfig
}

// NewGemini creates a Gemini completer. baseURL overrides the endpoint and
// is empty outside tests.
func NewGemini(ctx context.Context, cfg config.GeminiConfig) (*Gemini, error) {
	return newGemini(ctx, cfg, "")
}

func newGemini(ctx context.Context, cfg config.GeminiConfig, baseURL string) (*Gemini, error) {
	if err := requireKey(model.ProviderGemini, cfg.Key); err != nil {
		return nil, err
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.Key,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, &CompletionError{Kind: KindConfig, Provider: model.ProviderGemini, Message: "failed to create client", Cause: err}
	}
	return &Gemini{client: client, cfg: cfg}, nil
}

func (c *Gemini) Provider() model.Provider { return model.ProviderGemini }
func (c *Gemini) Model() string            { return c.cfg.Model }

// Complete sends the conversation as one generateContent request.
func (c *Gemini) Complete(ctx context.Context, conv *model.Conversation) (*Completion, error) {
	started := time.Now()

	exchange := conv.Exchange()
	contents := make([]*genai.Content, 0, len(exchange))
	for _, msg := range exchange {
		role := genai.Role(genai.RoleUser)
		if msg.Role == model.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(c.cfg.Temperature.Value)),
		TopP:            genai.Ptr(float32(c.cfg.TopP.Value)),
		MaxOutputTokens: int32(c.cfg.MaxTokens.Value),
	}
	if conv.SystemInstructions != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(conv.SystemInstructions, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, contents, genCfg)
	if err != nil {
		return nil, classify(model.ProviderGemini, err)
	}

	var usage Usage
	if md := resp.UsageMetadata; md != nil {
		usage = Usage{
			Prompt:     int(md.PromptTokenCount),
			Completion: int(md.CandidatesTokenCount),
			Total:      int(md.TotalTokenCount),
		}
	}
	return finish(model.ProviderGemini, c.cfg.Model, resp.Text(), usage, started)
}
