// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/parrot-tui/internal/model"
	"github.com/jeranaias/parrot-tui/internal/util"
)

//go:embed config.template.toml
var template []byte

// Template returns the commented config file written on first run.
func Template() []byte {
	out := make([]byte, len(template))
	copy(out, template)
	return out
}

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete parrot configuration.
type Config struct {
	// Provider answers new requests.
	Provider model.Provider `toml:"provider"`

	Commands  CommandsConfig  `toml:"commands"`
	UI        UIConfig        `toml:"ui"`
	OpenAI    OpenAIConfig    `toml:"openai"`
	Anthropic AnthropicConfig `toml:"anthropic"`
	Gemini    GeminiConfig    `toml:"gemini"`
	Ollama    OllamaConfig    `toml:"ollama"`
	System    SystemConfig    `toml:"system"`

	// Hotkeys maps action names to bindings, replacing the defaults of every
	// action listed.
	Hotkeys map[string][]string `toml:"hotkeys"`

	// Path is the file the config was loaded from, empty for defaults.
	Path string `toml:"-"`

	// Warnings lists keys in the file that parrot does not recognize.
	Warnings []string `toml:"-"`
}

// CommandsConfig holds the external commands parrot shells out to.
type CommandsConfig struct {
	Editor []string `toml:"editor"`
	// Copy is optional; the system clipboard is used when empty.
	Copy []string `toml:"copy"`
}

// UIConfig contains terminal interface settings.
type UIConfig struct {
	PromptHeight       int  `toml:"prompt_height"`
	FrameMS            int  `toml:"frame_ms"`
	LogCapacity        int  `toml:"log_capacity"`
	WatchConfig        bool `toml:"watch_config"`
	RequestTimeoutSecs int  `toml:"request_timeout_secs"`
}

// RequestTimeout returns the completion deadline.
func (u UIConfig) RequestTimeout() time.Duration {
	return time.Duration(u.RequestTimeoutSecs) * time.Second
}

// FrameInterval returns the redraw interval.
func (u UIConfig) FrameInterval() time.Duration {
	return time.Duration(u.FrameMS) * time.Millisecond
}

// OpenAIConfig configures the OpenAI chat completions API. BaseURL points
// the client at any compatible server.
type OpenAIConfig struct {
	Key              string              `toml:"key"`
	BaseURL          string              `toml:"base_url"`
	Model            string              `toml:"model"`
	Models           []string            `toml:"models"`
	Temperature      ValueRange[float64] `toml:"temperature"`
	TopP             ValueRange[float64] `toml:"top_p"`
	FrequencyPenalty ValueRange[float64] `toml:"frequency_penalty"`
	PresencePenalty  ValueRange[float64] `toml:"presence_penalty"`
	MaxTokens        ValueRange[int]     `toml:"max_tokens"`
}

// AnthropicConfig configures the Anthropic messages API.
type AnthropicConfig struct {
	Key         string              `toml:"key"`
	Model       string              `toml:"model"`
	Models      []string            `toml:"models"`
	Temperature ValueRange[float64] `toml:"temperature"`
	MaxTokens   ValueRange[int]     `toml:"max_tokens"`
}

// GeminiConfig configures the Gemini API.
type GeminiConfig struct {
	Key         string              `toml:"key"`
	Model       string              `toml:"model"`
	Models      []string            `toml:"models"`
	Temperature ValueRange[float64] `toml:"temperature"`
	TopP        ValueRange[float64] `toml:"top_p"`
	MaxTokens   ValueRange[int]     `toml:"max_tokens"`
}

// OllamaConfig configures a local Ollama server.
type OllamaConfig struct {
	URL         string              `toml:"url"`
	Model       string              `toml:"model"`
	Models      []string            `toml:"models"`
	Temperature ValueRange[float64] `toml:"temperature"`
	TopP        ValueRange[float64] `toml:"top_p"`
	MaxTokens   ValueRange[int]     `toml:"max_tokens"`
}

// SystemConfig holds the system instructions offered for new conversations.
type SystemConfig struct {
	Instructions []Instruction `toml:"instructions"`
}

// Instruction is a named system prompt.
type Instruction struct {
	Name    string `toml:"name"`
	Message string `toml:"message"`
}

// Preview returns the first n runes of the message on one line.
func (i Instruction) Preview(n int) string {
	flat := strings.Join(strings.Fields(i.Message), " ")
	runes := []rune(flat)
	if n >= 0 && len(runes) > n {
		runes = runes[:n]
	}
	return string(runes)
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultOllamaURL is where a stock Ollama install listens.
const DefaultOllamaURL = "http://localhost:11434"

// Default returns the built-in configuration. It matches the template.
func Default() *Config {
	return &Config{
		Provider: model.ProviderOpenAI,
		Commands: CommandsConfig{
			Editor: defaultEditor(),
		},
		UI: UIConfig{
			PromptHeight:       5,
			FrameMS:            50,
			LogCapacity:        500,
			WatchConfig:        true,
			RequestTimeoutSecs: 120,
		},
		OpenAI: OpenAIConfig{
			Model:            "gpt-4o",
			Models:           model.ModelsFor(model.ProviderOpenAI),
			Temperature:      Range(1.0, 0.0, 2.0, 0.1),
			TopP:             Range(1.0, 0.0, 1.0, 0.05),
			FrequencyPenalty: Range(0.05, -2.0, 2.0, 0.05),
			PresencePenalty:  Range(0.01, -2.0, 2.0, 0.01),
			MaxTokens:        Range(4096, 256, 16384, 256),
		},
		Anthropic: AnthropicConfig{
			Model:       "claude-3-5-sonnet-latest",
			Models:      model.ModelsFor(model.ProviderAnthropic),
			Temperature: Range(1.0, 0.0, 1.0, 0.1),
			MaxTokens:   Range(4096, 256, 8192, 256),
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.0-flash",
			Models:      model.ModelsFor(model.ProviderGemini),
			Temperature: Range(1.0, 0.0, 2.0, 0.1),
			TopP:        Range(0.95, 0.0, 1.0, 0.05),
			MaxTokens:   Range(8192, 256, 8192, 256),
		},
		Ollama: OllamaConfig{
			URL:         DefaultOllamaURL,
			Model:       "llama3.2",
			Models:      model.ModelsFor(model.ProviderOllama),
			Temperature: Range(0.8, 0.0, 2.0, 0.1),
			TopP:        Range(0.9, 0.0, 1.0, 0.05),
			MaxTokens:   Range(2048, 128, 32768, 128),
		},
		System: SystemConfig{
			Instructions: []Instruction{
				{Name: "Default", Message: "You are a helpful assistant."},
			},
		},
		Hotkeys: map[string][]string{},
	}
}

func defaultEditor() []string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(os.Getenv(env)); len(fields) > 0 {
			return fields
		}
	}
	return []string{"vi"}
}

// decodeBase is the value the file is decoded over. Lists are cleared so a
// list in the file replaces the default instead of merging with it
// element-wise.
func decodeBase() *Config {
	cfg := Default()
	cfg.OpenAI.Models = nil
	cfg.Anthropic.Models = nil
	cfg.Gemini.Models = nil
	cfg.Ollama.Models = nil
	cfg.System.Instructions = nil
	return cfg
}

// SetDefaults fills lists and fields left empty by the file. The editor is
// not filled: an absent key keeps the default from decodeBase, and an
// explicitly empty list is left for Validate to reject.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Provider == "" {
		c.Provider = defaults.Provider
	}
	if c.Ollama.URL == "" {
		c.Ollama.URL = defaults.Ollama.URL
	}
	if len(c.System.Instructions) == 0 {
		c.System.Instructions = defaults.System.Instructions
	}
	if c.Hotkeys == nil {
		c.Hotkeys = map[string][]string{}
	}

	c.OpenAI.Models = withModel(c.OpenAI.Model, c.OpenAI.Models, defaults.OpenAI.Models)
	c.Anthropic.Models = withModel(c.Anthropic.Model, c.Anthropic.Models, defaults.Anthropic.Models)
	c.Gemini.Models = withModel(c.Gemini.Model, c.Gemini.Models, defaults.Gemini.Models)
	c.Ollama.Models = withModel(c.Ollama.Model, c.Ollama.Models, defaults.Ollama.Models)
}

// withModel returns the model list, falling back to the catalog, with the
// selected model always present.
func withModel(selected string, models, fallback []string) []string {
	if len(models) == 0 {
		models = append([]string(nil), fallback...)
	}
	if selected == "" {
		return models
	}
	for _, m := range models {
		if m == selected {
			return models
		}
	}
	return append([]string{selected}, models...)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Error reports a config file that could not be loaded. It is fatal at
// startup; on reload the previous config stays in effect.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config file %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// EnsureConfigFile writes the template to path unless a file already
// exists. It reports whether the file was created.
func EnsureConfigFile(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, &Error{Path: path, Err: err}
	}
	if err := util.AtomicWriteFile(path, template, 0600); err != nil {
		return false, &Error{Path: path, Err: err}
	}
	return true, nil
}

// Load reads the TOML file at path over the defaults, applies the .env file
// in the same directory and the environment, fills defaults and validates.
// Every failure is returned as *Error.
func Load(path string) (*Config, error) {
	cfg := decodeBase()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	cfg.Path = path
	for _, key := range md.Undecoded() {
		cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("unknown config key %q", key.String()))
	}

	if err := cfg.ApplyEnvOverrides(envFileFor(path)); err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	return cfg, nil
}

// Clone returns a deep copy, so the Config tab can adjust parameters
// without racing a request built from the previous values.
func (c *Config) Clone() *Config {
	out := *c
	out.Commands.Editor = append([]string(nil), c.Commands.Editor...)
	out.Commands.Copy = append([]string(nil), c.Commands.Copy...)
	out.OpenAI.Models = append([]string(nil), c.OpenAI.Models...)
	out.Anthropic.Models = append([]string(nil), c.Anthropic.Models...)
	out.Gemini.Models = append([]string(nil), c.Gemini.Models...)
	out.Ollama.Models = append([]string(nil), c.Ollama.Models...)
	out.System.Instructions = append([]Instruction(nil), c.System.Instructions...)
	out.Warnings = append([]string(nil), c.Warnings...)
	out.Hotkeys = make(map[string][]string, len(c.Hotkeys))
	for k, v := range c.Hotkeys {
		out.Hotkeys[k] = append([]string(nil), v...)
	}
	return &out
}

// =============================================================================
// MODEL SELECTION
// =============================================================================

// ModelFor returns the selected model of a provider.
func (c *Config) ModelFor(p model.Provider) string {
	switch p {
	case model.ProviderAnthropic:
		return c.Anthropic.Model
	case model.ProviderGemini:
		return c.Gemini.Model
	case model.ProviderOllama:
		return c.Ollama.Model
	default:
		return c.OpenAI.Model
	}
}

// ModelsFor returns the model list of a provider.
func (c *Config) ModelsFor(p model.Provider) []string {
	switch p {
	case model.ProviderAnthropic:
		return c.Anthropic.Models
	case model.ProviderGemini:
		return c.Gemini.Models
	case model.ProviderOllama:
		return c.Ollama.Models
	default:
		return c.OpenAI.Models
	}
}

// SetOllamaModels replaces the Ollama model list with what the server
// reports, keeping the selection when it is still installed.
func (c *Config) SetOllamaModels(models []string) {
	if len(models) == 0 {
		return
	}
	c.Ollama.Models = append([]string(nil), models...)
	for _, m := range models {
		if m == c.Ollama.Model {
			return
		}
	}
	c.Ollama.Model = models[0]
}
