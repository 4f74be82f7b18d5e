// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/jeranaias/parrot-tui/internal/hotkey"
	"github.com/jeranaias/parrot-tui/internal/model"
)

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidateErrors) add(field, format string, args ...any) {
	*e = append(*e, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func checkRange[T Number](errs *ValidateErrors, field string, r ValueRange[T]) {
	if msg := r.validate(); msg != "" {
		errs.add(field, "%s", msg)
	}
}

func checkModel(errs *ValidateErrors, section, selected string, models []string) {
	if strings.TrimSpace(selected) == "" {
		errs.add(section+".model", "must not be empty")
	}
	for i, m := range models {
		if strings.TrimSpace(m) == "" {
			errs.add(fmt.Sprintf("%s.models[%d]", section, i), "must not be empty")
		}
	}
}

func checkURL(errs *ValidateErrors, field, raw string) {
	u, err := url.Parse(raw)
	if err != nil {
		errs.add(field, "invalid URL: %v", err)
		return
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		errs.add(field, "URL must use http or https, got %q", raw)
		return
	}
	if u.Host == "" {
		errs.add(field, "URL has no host: %q", raw)
	}
}

// Validate checks the configuration and returns every problem found as
// ValidateErrors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if _, err := model.ParseProvider(string(c.Provider)); err != nil {
		errs.add("provider", "%v", err)
	}

	if len(c.Commands.Editor) == 0 || strings.TrimSpace(c.Commands.Editor[0]) == "" {
		errs.add("commands.editor", "must name a command")
	}
	if len(c.Commands.Copy) > 0 && strings.TrimSpace(c.Commands.Copy[0]) == "" {
		errs.add("commands.copy", "must name a command or be omitted")
	}

	if c.UI.PromptHeight < 1 {
		errs.add("ui.prompt_height", "must be at least 1, got %d", c.UI.PromptHeight)
	}
	if c.UI.FrameMS < 1 {
		errs.add("ui.frame_ms", "must be at least 1, got %d", c.UI.FrameMS)
	}
	if c.UI.LogCapacity < 1 {
		errs.add("ui.log_capacity", "must be at least 1, got %d", c.UI.LogCapacity)
	}
	if c.UI.RequestTimeoutSecs < 1 {
		errs.add("ui.request_timeout_secs", "must be at least 1, got %d", c.UI.RequestTimeoutSecs)
	}

	// Provider sections
	if c.OpenAI.BaseURL != "" {
		checkURL(&errs, "openai.base_url", c.OpenAI.BaseURL)
	}
	checkModel(&errs, "openai", c.OpenAI.Model, c.OpenAI.Models)
	checkRange(&errs, "openai.temperature", c.OpenAI.Temperature)
	checkRange(&errs, "openai.top_p", c.OpenAI.TopP)
	checkRange(&errs, "openai.frequency_penalty", c.OpenAI.FrequencyPenalty)
	checkRange(&errs, "openai.presence_penalty", c.OpenAI.PresencePenalty)
	checkRange(&errs, "openai.max_tokens", c.OpenAI.MaxTokens)

	checkModel(&errs, "anthropic", c.Anthropic.Model, c.Anthropic.Models)
	checkRange(&errs, "anthropic.temperature", c.Anthropic.Temperature)
	checkRange(&errs, "anthropic.max_tokens", c.Anthropic.MaxTokens)

	checkModel(&errs, "gemini", c.Gemini.Model, c.Gemini.Models)
	checkRange(&errs, "gemini.temperature", c.Gemini.Temperature)
	checkRange(&errs, "gemini.top_p", c.Gemini.TopP)
	checkRange(&errs, "gemini.max_tokens", c.Gemini.MaxTokens)

	checkURL(&errs, "ollama.url", c.Ollama.URL)
	checkModel(&errs, "ollama", c.Ollama.Model, c.Ollama.Models)
	checkRange(&errs, "ollama.temperature", c.Ollama.Temperature)
	checkRange(&errs, "ollama.top_p", c.Ollama.TopP)
	checkRange(&errs, "ollama.max_tokens", c.Ollama.MaxTokens)

	if len(c.System.Instructions) == 0 {
		errs.add("system.instructions", "at least one instruction is required")
	}
	for i, instr := range c.System.Instructions {
		if strings.TrimSpace(instr.Name) == "" {
			errs.add(fmt.Sprintf("system.instructions[%d].name", i), "must not be empty")
		}
		if strings.TrimSpace(instr.Message) == "" {
			errs.add(fmt.Sprintf("system.instructions[%d].message", i), "must not be empty")
		}
	}

	if _, err := c.HotkeyOverrides(); err != nil {
		if verrs, ok := err.(ValidateErrors); ok {
			errs = append(errs, verrs...)
		} else {
			errs.add("hotkeys", "%v", err)
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// HOTKEYS
// =============================================================================

// HotkeyOverrides parses the [hotkeys] table. Action names are processed in
// sorted order, so when an action appears under both its name and an alias
// the later spelling wins. Problems are returned as ValidateErrors.
func (c *Config) HotkeyOverrides() (map[hotkey.Action][]hotkey.Event, error) {
	names := make([]string, 0, len(c.Hotkeys))
	for name := range c.Hotkeys {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs ValidateErrors
	out := make(map[hotkey.Action][]hotkey.Event, len(names))
	for _, name := range names {
		field := "hotkeys." + name
		action, err := hotkey.ParseAction(name)
		if err != nil {
			errs.add(field, "%v", err)
			continue
		}

		events := make([]hotkey.Event, 0, len(c.Hotkeys[name]))
		ok := true
		for _, binding := range c.Hotkeys[name] {
			ev, err := hotkey.Parse(binding)
			if err != nil {
				errs.add(field, "%v", err)
				ok = false
				continue
			}
			events = append(events, ev)
		}
		if ok {
			out[action] = events
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}
