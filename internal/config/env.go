// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/jeranaias/parrot-tui/internal/model"
)

// Environment variables read by ApplyEnvOverrides.
const (
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvGeminiKey    = "GEMINI_API_KEY"
	EnvOllamaHost   = "OLLAMA_HOST"
	EnvProvider     = "PARROT_PROVIDER"
)

func envFileFor(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), ".env")
}

// ApplyEnvOverrides loads envFile, when it exists, into the process
// environment and then applies the supported variables. Variables already
// set in the environment win over the .env file.
//
// Supported environment variables:
//   - OPENAI_API_KEY: overrides openai.key
//   - ANTHROPIC_API_KEY: overrides anthropic.key
//   - GEMINI_API_KEY: overrides gemini.key
//   - OLLAMA_HOST: overrides ollama.url; a bare host:port gets http://
//   - PARROT_PROVIDER: overrides provider
func (c *Config) ApplyEnvOverrides(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if key := os.Getenv(EnvOpenAIKey); key != "" {
		c.OpenAI.Key = key
	}
	if key := os.Getenv(EnvAnthropicKey); key != "" {
		c.Anthropic.Key = key
	}
	if key := os.Getenv(EnvGeminiKey); key != "" {
		c.Gemini.Key = key
	}
	if host := os.Getenv(EnvOllamaHost); host != "" {
		if !strings.Contains(host, "://") {
			host = "http://" + host
		}
		c.Ollama.URL = host
	}
	if p := os.Getenv(EnvProvider); p != "" {
		c.Provider = model.Provider(strings.ToLower(strings.TrimSpace(p)))
	}
	return nil
}
