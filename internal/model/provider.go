// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
)

// =============================================================================
// PROVIDER TYPE
// =============================================================================

// Provider identifies a completion backend.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
	ProviderOllama    Provider = "ollama"
)

// Providers lists every provider in display order.
func Providers() []Provider {
	return []Provider{ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderOllama}
}

// ParseProvider parses a provider name case-insensitively.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Providers() {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown provider %q, must be one of: openai, anthropic, gemini, ollama", s)
}

// String returns the provider name.
func (p Provider) String() string {
	return string(p)
}

// DisplayName returns a human-readable provider name.
func (p Provider) DisplayName() string {
	switch p {
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderAnthropic:
		return "Anthropic"
	case ProviderGemini:
		return "Gemini"
	case ProviderOllama:
		return "Ollama"
	default:
		return string(p)
	}
}

// =============================================================================
// MODEL CATALOG
// =============================================================================

// ModelInfo names a well-known model and the provider serving it.
type ModelInfo struct {
	ID       string
	Provider Provider
}

// catalog seeds the config defaults. Models not listed here are still usable.
var catalog = []ModelInfo{
	{ID: "gpt-4o", Provider: ProviderOpenAI},
	{ID: "gpt-4o-mini", Provider: ProviderOpenAI},
	{ID: "gpt-4.1", Provider: ProviderOpenAI},
	{ID: "claude-3-5-sonnet-latest", Provider: ProviderAnthropic},
	{ID: "claude-3-5-haiku-latest", Provider: ProviderAnthropic},
	{ID: "gemini-2.0-flash", Provider: ProviderGemini},
	{ID: "gemini-1.5-pro", Provider: ProviderGemini},
	{ID: "llama3.2", Provider: ProviderOllama},
	{ID: "qwen2.5:7b", Provider: ProviderOllama},
}

// ModelsFor returns the IDs of the well-known models of a provider.
func ModelsFor(p Provider) []string {
	var ids []string
	for _, info := range catalog {
		if info.Provider == p {
			ids = append(ids, info.ID)
		}
	}
	return ids
}
