// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/parrot-tui/internal/config"
	"github.com/jeranaias/parrot-tui/internal/focus"
	"github.com/jeranaias/parrot-tui/internal/hotkey"
	"github.com/jeranaias/parrot-tui/internal/model"
	"github.com/jeranaias/parrot-tui/internal/provider"
	"github.com/jeranaias/parrot-tui/internal/telemetry"
	"github.com/jeranaias/parrot-tui/internal/util"
)

// Status texts shown after a completion.
const (
	StatusResponded   = "AI responded. "
	StatusFailed      = "An error occurred, see debug logs."
	FailureNotePrefix = "Failed to get a response from the assistant: "
)

// =============================================================================
// REQUESTS
// =============================================================================

// RequestKind identifies a gateway call.
type RequestKind int

const (
	RequestCompletion RequestKind = iota + 1
	RequestEditPrompt
	RequestEditConfig
	RequestModels
)

func (k RequestKind) String() string {
	switch k {
	case RequestCompletion:
		return "completion"
	case RequestEditPrompt:
		return "edit_prompt"
	case RequestEditConfig:
		return "edit_config"
	case RequestModels:
		return "models"
	default:
		return "unknown"
	}
}

// Request describes work the App cannot do on the loop goroutine without
// blocking it. Only the fields of its Kind are set.
type Request struct {
	Kind RequestKind

	// Completion. Ctx carries the request timeout and is canceled by
	// QuitProgram. Conversation is a snapshot, safe to read off the loop.
	Ctx          context.Context
	Completer    provider.Completer
	Conversation *model.Conversation

	// EditPrompt: the current prompt text.
	Text string

	// EditConfig: the file to open.
	Path string

	// Models: the provider to list and a config snapshot.
	Provider model.Provider
	Config   *config.Config
}

// Result is the outcome of a Request, applied back with App.Apply.
type Result struct {
	Kind RequestKind

	ConversationID string
	Completion     *provider.Completion
	Started        time.Time

	Text     string
	Provider model.Provider
	Models   []string

	Err error
}

// Run performs the network part of a completion or model request. It reads
// only the request and the App's fixed collaborators, so it is safe to call
// from any goroutine. Editor requests are not handled here because they
// need the terminal.
func (a *App) Run(req *Request) Result {
	res := Result{Kind: req.Kind, Provider: req.Provider}
	switch req.Kind {
	case RequestCompletion:
		res.ConversationID = req.Conversation.ID
		res.Provider = req.Completer.Provider()
		res.Started = time.Now()
		res.Completion, res.Err = req.Completer.Complete(req.Ctx, req.Conversation)
	case RequestModels:
		ctx, cancel := context.WithTimeout(context.Background(), req.Config.UI.RequestTimeout())
		defer cancel()
		res.Models, res.Err = a.listModels(ctx, req.Config, req.Provider)
	default:
		res.Err = errors.New("request " + req.Kind.String() + " needs the terminal")
	}
	return res
}

// Execute runs req on the calling goroutine and applies the result. Editors
// run with the process's own terminal.
func (a *App) Execute(req *Request) {
	switch req.Kind {
	case RequestEditPrompt:
		res := Result{Kind: req.Kind}
		if a.editor == nil {
			res.Err = errors.New("no editor available")
		} else {
			res.Text, res.Err = a.editor.EditText(req.Text)
		}
		a.Apply(res)
	case RequestEditConfig:
		res := Result{Kind: req.Kind}
		if a.editor == nil {
			res.Err = errors.New("no editor available")
		} else {
			res.Err = a.editor.EditFile(req.Path)
		}
		a.Apply(res)
	default:
		a.Apply(a.Run(req))
	}
}

// Apply folds a finished request back into the App.
func (a *App) Apply(res Result) {
	switch res.Kind {
	case RequestCompletion:
		a.ApplyCompletion(res)
	case RequestEditPrompt:
		a.ApplyPromptEdit(res.Text, res.Err)
	case RequestEditConfig:
		a.ApplyConfigEdit(res.Err)
	case RequestModels:
		a.ApplyModels(res.Provider, res.Models, res.Err)
	default:
		a.log.Error("unknown request result", zap.Int("kind", int(res.Kind)))
	}
}

// =============================================================================
// COMPLETION
// =============================================================================

// send appends the prompt as a user message and starts a completion for the
// active conversation. Only one completion runs at a time.
func (a *App) send() Outcome {
	text := strings.TrimSpace(a.prompt)
	if text == "" {
		a.setStatus("Cannot send empty message.")
		return Outcome{}
	}
	conv, err := a.activeConversation()
	if err != nil {
		return Outcome{}
	}

	conv.Append(model.NewUserMessage(text))
	a.prompt = ""
	a.focus.SetChat(focus.ChatMessages)
	a.persist()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.UI.RequestTimeout())
	completer, err := a.newCompleter(ctx, a.cfg.Clone())
	if err != nil {
		cancel()
		a.ApplyCompletion(Result{
			Kind:           RequestCompletion,
			ConversationID: conv.ID,
			Provider:       a.cfg.Provider,
			Started:        time.Now(),
			Err:            err,
		})
		return Outcome{Scroll: ScrollBottom}
	}

	a.busy = true
	a.cancel = cancel
	a.setStatus("Waiting for " + completer.Provider().DisplayName() + " (" + completer.Model() + ")...")
	a.log.Info("completion requested",
		zap.String("conversation", conv.ID),
		zap.Stringer("provider", completer.Provider()),
		zap.String("model", completer.Model()))

	return Outcome{
		Scroll: ScrollBottom,
		Request: &Request{
			Kind:         RequestCompletion,
			Ctx:          ctx,
			Completer:    completer,
			Conversation: conv.Clone(),
		},
	}
}

// ApplyCompletion appends the reply, or exactly one failure note, to the
// conversation the request was made for, and accepts input again.
func (a *App) ApplyCompletion(res Result) {
	a.busy = false
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}

	i := a.store.IndexOf(res.ConversationID)
	if i < 0 {
		a.log.Warn("completion for a conversation that no longer exists",
			zap.String("conversation", res.ConversationID))
		return
	}
	conv, _ := a.store.Get(i)

	record := telemetry.Record{
		ConversationID: res.ConversationID,
		Provider:       res.Provider,
		Duration:       time.Since(res.Started),
	}

	if res.Err != nil {
		a.log.Error("completion failed",
			zap.String("conversation", res.ConversationID),
			zap.Stringer("provider", res.Provider),
			zap.Error(res.Err))
		conv.Append(model.NewSystemMessage(FailureNotePrefix + res.Err.Error()))
		a.setStatus(StatusFailed)

		record.Failed = true
		record.ErrorKind = provider.KindProvider.String()
		var ce *provider.CompletionError
		if errors.As(res.Err, &ce) {
			record.ErrorKind = ce.Kind.String()
		}
	} else {
		c := res.Completion
		conv.Append(c.Message)
		a.setStatus(StatusResponded + c.Usage.String())
		a.log.Info("completion received",
			zap.String("conversation", res.ConversationID),
			zap.String("model", c.Model),
			zap.Duration("duration", c.Duration),
			zap.String("usage", c.Usage.String()))

		record.Model = c.Model
		record.PromptTokens = c.Usage.Prompt
		record.CompletionTokens = c.Usage.Completion
		record.TotalTokens = c.Usage.Total
		record.Duration = c.Duration
	}

	a.persist()
	a.recordUsage(record)
}

// =============================================================================
// EDITOR AND RELOAD
// =============================================================================

// ApplyPromptEdit replaces the prompt with the edited text.
func (a *App) ApplyPromptEdit(text string, err error) {
	if err != nil {
		a.fail("Editor failed", err)
		return
	}
	a.prompt = text
	a.focus.SetChat(focus.ChatPrompt)
	a.setStatus("Edited message.")
}

// ApplyConfigEdit reloads the config after the editor closed.
func (a *App) ApplyConfigEdit(err error) {
	if err != nil {
		a.fail("Editor failed", err)
		return
	}
	a.ReloadConfig()
}

// ReloadConfig replaces the config wholesale. On failure the old config
// stays in effect.
func (a *App) ReloadConfig() bool {
	cfg, err := a.loadConfig(a.configPath)
	if err != nil {
		a.fail("Config reload failed", err)
		return false
	}
	overrides, err := cfg.HotkeyOverrides()
	if err != nil {
		a.fail("Config reload failed", err)
		return false
	}

	a.cfg = cfg
	a.resolver = hotkey.NewResolver(overrides)
	a.logConflicts()
	a.applyCommands()
	for _, w := range cfg.Warnings {
		a.log.Warn("config warning", zap.String("warning", w))
	}

	a.newSelection = util.Clamp(a.newSelection, 0, max(len(a.Instructions())-1, 0))
	a.paramCursor = util.Clamp(a.paramCursor, 0, len(a.Params())-1)
	a.setStatus("Reloaded config file: " + a.configPath)
	a.log.Info("config reloaded", zap.String("path", a.configPath))
	return true
}

// ApplyModels stores a refreshed model list.
func (a *App) ApplyModels(p model.Provider, models []string, err error) {
	if err != nil {
		if p == model.ProviderOllama && provider.IsKind(err, provider.KindNetwork) {
			a.log.Error("ollama not reachable", zap.String("url", a.cfg.Ollama.URL), zap.Error(err))
			a.setStatus("Ollama is not running at " + a.cfg.Ollama.URL + ".")
			return
		}
		a.fail("Failed to list "+p.DisplayName()+" models", err)
		return
	}
	if p == model.ProviderOllama {
		a.cfg.SetOllamaModels(models)
	}
	a.paramCursor = util.Clamp(a.paramCursor, 0, len(a.Params())-1)
	a.setStatus("Reloaded models for " + p.DisplayName() + ".")
	a.log.Info("models refreshed", zap.Stringer("provider", p), zap.Int("count", len(models)))
}
