// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import "github.com/jeranaias/parrot-tui/internal/model"

// Param is one adjustable row of a provider's Config tab view. It edits the
// Config it was taken from in place.
type Param struct {
	Name  string
	value func() string
	step  func(up bool)
}

// Value formats the current value.
func (p Param) Value() string { return p.value() }

// Increment moves the value one step up, or to the next model.
func (p Param) Increment() { p.step(true) }

// Decrement moves the value one step down, or to the previous model.
func (p Param) Decrement() { p.step(false) }

func rangeParam[T Number](name string, r *ValueRange[T]) Param {
	return Param{
		Name:  name,
		value: func() string { return r.String() },
		step: func(up bool) {
			if up {
				r.Increment()
			} else {
				r.Decrement()
			}
		},
	}
}

// modelParam cycles through models, wrapping at both ends.
func modelParam(selected *string, models *[]string) Param {
	return Param{
		Name:  "model",
		value: func() string { return *selected },
		step: func(up bool) {
			list := *models
			if len(list) == 0 {
				return
			}
			i := 0
			for j, m := range list {
				if m == *selected {
					i = j
					break
				}
			}
			if up {
				i = (i + 1) % len(list)
			} else {
				i = (i + len(list) - 1) % len(list)
			}
			*selected = list[i]
		},
	}
}

// Params returns the adjustable settings of a provider, model first.
func (c *Config) Params(p model.Provider) []Param {
	switch p {
	case model.ProviderAnthropic:
		a := &c.Anthropic
		return []Param{
			modelParam(&a.Model, &a.Models),
			rangeParam("temperature", &a.Temperature),
			rangeParam("max_tokens", &a.MaxTokens),
		}
	case model.ProviderGemini:
		g := &c.Gemini
		return []Param{
			modelParam(&g.Model, &g.Models),
			rangeParam("temperature", &g.Temperature),
			rangeParam("top_p", &g.TopP),
			rangeParam("max_tokens", &g.MaxTokens),
		}
	case model.ProviderOllama:
		o := &c.Ollama
		return []Param{
			modelParam(&o.Model, &o.Models),
			rangeParam("temperature", &o.Temperature),
			rangeParam("top_p", &o.TopP),
			rangeParam("max_tokens", &o.MaxTokens),
		}
	default:
		oa := &c.OpenAI
		return []Param{
			modelParam(&oa.Model, &oa.Models),
			rangeParam("temperature", &oa.Temperature),
			rangeParam("top_p", &oa.TopP),
			rangeParam("frequency_penalty", &oa.FrequencyPenalty),
			rangeParam("presence_penalty", &oa.PresencePenalty),
			rangeParam("max_tokens", &oa.MaxTokens),
		}
	}
}
