// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/parrot-tui/internal/config"
	"github.com/jeranaias/parrot-tui/internal/model"
)

// =============================================================================
// TYPES
// =============================================================================

// Usage is the token accounting reported for one completion.
type Usage struct {
	Prompt     int
	Completion int
	Total      int
}

// String formats usage the way the status line shows it.
func (u Usage) String() string {
	return fmt.Sprintf("Tokens: %d [%d prompt, %d completion]", u.Total, u.Prompt, u.Completion)
}

// normalize fills Total when the backend only reports the parts.
func (u Usage) normalize() Usage {
	if u.Total == 0 {
		u.Total = u.Prompt + u.Completion
	}
	return u
}

// Completion is a successful response.
type Completion struct {
	Message  model.Message
	Usage    Usage
	Model    string
	Provider model.Provider
	Duration time.Duration
}

// Completer sends a conversation to a backend and returns the reply.
// Implementations hold no per-request state and are safe to reuse.
type Completer interface {
	Complete(ctx context.Context, conv *model.Conversation) (*Completion, error)
	Provider() model.Provider
	Model() string
}

// =============================================================================
// FACTORY
// =============================================================================

// New builds the completer for cfg.Provider. The settings are copied, so
// later changes to cfg do not affect it.
func New(ctx context.Context, cfg *config.Config) (Completer, error) {
	timeout := cfg.UI.RequestTimeout()
	switch cfg.Provider {
	case model.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAI)
	case model.ProviderAnthropic:
		return NewAnthropic(cfg.Anthropic)
	case model.ProviderGemini:
		return NewGemini(ctx, cfg.Gemini)
	case model.ProviderOllama:
		return NewOllama(cfg.Ollama, timeout), nil
	default:
		return nil, &CompletionError{
			Kind:     KindConfig,
			Provider: cfg.Provider,
			Message:  fmt.Sprintf("unknown provider %q", cfg.Provider),
		}
	}
}

// Models returns the models offered for p. Ollama is asked for its
// installed models after a health check, so an absent server reports as a
// KindNetwork error; the others use the configured list.
func Models(ctx context.Context, cfg *config.Config, p model.Provider) ([]string, error) {
	if p != model.ProviderOllama {
		return cfg.ModelsFor(p), nil
	}
	client := NewOllama(cfg.Ollama, cfg.UI.RequestTimeout()).client
	if err := client.CheckRunning(ctx); err != nil {
		return nil, classify(p, err)
	}
	names, err := client.ModelNames(ctx)
	if err != nil {
		return nil, classify(p, err)
	}
	return names, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// finish wraps reply text into a Completion, rejecting empty replies.
func finish(p model.Provider, modelName, text string, usage Usage, started time.Time) (*Completion, error) {
	if text == "" {
		return nil, &CompletionError{Kind: KindMalformed, Provider: p, Message: "response contained no text"}
	}
	return &Completion{
		Message:  model.NewAssistantMessage(p, text),
		Usage:    usage.normalize(),
		Model:    modelName,
		Provider: p,
		Duration: time.Since(started),
	}, nil
}

func requireKey(p model.Provider, key string) error {
	if key != "" {
		return nil
	}
	return &CompletionError{
		Kind:     KindConfig,
		Provider: p,
		Message:  fmt.Sprintf("no API key configured for %s", p.DisplayName()),
	}
}
