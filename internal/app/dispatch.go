// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"errors"

	"go.uber.org/zap"

	"github.com/jeranaias/parrot-tui/internal/focus"
	"github.com/jeranaias/parrot-tui/internal/hotkey"
	"github.com/jeranaias/parrot-tui/internal/model"
	"github.com/jeranaias/parrot-tui/internal/session"
	"github.com/jeranaias/parrot-tui/internal/util"
)

// pageSize is how far ScrollUp and ScrollDown move a list selection.
const pageSize = 10

// =============================================================================
// OUTCOME
// =============================================================================

// Scroll asks the UI to move the scrollable pane of the current tab.
type Scroll int

const (
	ScrollNone Scroll = iota
	ScrollLineUp
	ScrollLineDown
	ScrollPageUp
	ScrollPageDown
	ScrollTop
	ScrollBottom
)

// Outcome tells the UI what to do after a key was handled.
type Outcome struct {
	// Quit ends the program.
	Quit bool

	// Forward hands the raw key to the prompt text area.
	Forward bool

	// Scroll moves the visible pane.
	Scroll Scroll

	// Request is a gateway call the UI must run, or nil.
	Request *Request
}

// =============================================================================
// KEY DISPATCH
// =============================================================================

// HandleKey resolves ev against the hotkey table and runs the handler of the
// current scope. While a completion is in flight only QuitProgram is
// honored; it cancels the request.
func (a *App) HandleKey(ev hotkey.Event) Outcome {
	action, ok := a.resolver.Resolve(ev)

	if ok && action == hotkey.QuitProgram {
		if a.cancel != nil {
			a.cancel()
		}
		return Outcome{Quit: true}
	}
	if a.busy {
		a.log.Debug("input dropped while waiting for a response", zap.String("key", ev.String()))
		return Outcome{}
	}

	if ok && a.handleGlobal(action) {
		return Outcome{}
	}

	scope := a.focus.Scope()
	switch s := scope.(type) {
	case focus.ChatScope:
		return a.handleChat(s.Focus, action, ok)
	case focus.ConfigScope:
		if !ok {
			return Outcome{}
		}
		return a.handleConfig(s.View, action)
	case focus.DebugScope:
		if !ok {
			return Outcome{}
		}
		return a.handleDebug(action)
	default:
		a.log.Error("unknown focus scope", zap.Stringer("scope", scope))
		return Outcome{}
	}
}

// HandleNonKey records terminal events that do not change state.
func (a *App) HandleNonKey(desc string) {
	a.log.Debug("terminal event", zap.String("event", desc))
}

// handleGlobal runs the tab actions, which work in every scope.
func (a *App) handleGlobal(action hotkey.Action) bool {
	switch action {
	case hotkey.CycleTab:
		a.focus.CycleTab()
	case hotkey.CycleBackTab:
		a.focus.CycleBackTab()
	case hotkey.ViewChatTab:
		a.focus.SetTab(focus.TabChat)
	case hotkey.ViewConfigTab:
		a.focus.SetTab(focus.TabConfig)
	case hotkey.ViewDebugTab:
		a.focus.SetTab(focus.TabDebug)
	default:
		return false
	}
	return true
}

func (a *App) unhandled(scope focus.Scope, action hotkey.Action) Outcome {
	a.log.Debug("no handler for action",
		zap.Stringer("scope", scope),
		zap.Stringer("action", action))
	return Outcome{}
}

// =============================================================================
// CHAT TAB
// =============================================================================

func (a *App) handleChat(cf focus.ChatFocus, action hotkey.Action, ok bool) Outcome {
	// Unbound keys only mean something to the prompt.
	if !ok {
		if cf == focus.ChatPrompt {
			return Outcome{Forward: true}
		}
		return Outcome{}
	}

	// Actions shared by every chat sub-focus.
	switch action {
	case hotkey.New:
		a.newSelection = util.Clamp(a.newSelection, 0, max(len(a.Instructions())-1, 0))
		a.focus.SetChat(focus.ChatNew)
		return Outcome{}
	case hotkey.Open:
		a.focus.SetChat(focus.ChatHistory)
		return Outcome{}
	case hotkey.Edit:
		return Outcome{Request: &Request{Kind: RequestEditPrompt, Text: a.prompt}}
	}

	switch cf {
	case focus.ChatMessages:
		return a.handleMessages(action)
	case focus.ChatPrompt:
		return a.handlePrompt(action)
	case focus.ChatNew:
		return a.handleNew(action)
	case focus.ChatHistory:
		return a.handleHistory(action)
	default:
		return a.unhandled(focus.ChatScope{Focus: cf}, action)
	}
}

func (a *App) handleMessages(action hotkey.Action) Outcome {
	switch action {
	case hotkey.Select, hotkey.Confirm:
		a.focus.SetChat(focus.ChatPrompt)
	case hotkey.Cancel:
		a.focus.SetChat(focus.ChatMessages)
	case hotkey.SelectionUp:
		return Outcome{Scroll: ScrollLineUp}
	case hotkey.SelectionDown:
		return Outcome{Scroll: ScrollLineDown}
	case hotkey.ScrollUp:
		return Outcome{Scroll: ScrollPageUp}
	case hotkey.ScrollDown:
		return Outcome{Scroll: ScrollPageDown}
	case hotkey.SelectionStart:
		return Outcome{Scroll: ScrollTop}
	case hotkey.SelectionEnd:
		return Outcome{Scroll: ScrollBottom}
	case hotkey.Copy:
		conv, err := a.activeConversation()
		if err != nil {
			return Outcome{}
		}
		a.copyText(conv.String(), "Copied conversation to clipboard.")
	default:
		return a.unhandled(focus.ChatScope{Focus: focus.ChatMessages}, action)
	}
	return Outcome{}
}

// handlePrompt forwards every action it does not claim, so keys such as
// enter and the arrows keep their editing meaning.
func (a *App) handlePrompt(action hotkey.Action) Outcome {
	switch action {
	case hotkey.Confirm:
		return a.send()
	case hotkey.Cancel:
		a.focus.SetChat(focus.ChatMessages)
	case hotkey.Clear:
		a.prompt = ""
	case hotkey.Copy:
		conv, err := a.activeConversation()
		if err != nil {
			return Outcome{}
		}
		last, ok := conv.LastMessage()
		if !ok {
			a.setStatus("Nothing to copy.")
			return Outcome{}
		}
		a.copyText(last.Content, "Copied last message to clipboard.")
	default:
		return Outcome{Forward: true}
	}
	return Outcome{}
}

func (a *App) handleNew(action hotkey.Action) Outcome {
	last := max(len(a.Instructions())-1, 0)
	switch action {
	case hotkey.Cancel:
		a.focus.SetChat(focus.ChatMessages)
	case hotkey.Select, hotkey.Confirm:
		instructions := a.Instructions()
		if a.newSelection < 0 || a.newSelection >= len(instructions) {
			return Outcome{}
		}
		chosen := instructions[a.newSelection]
		a.store.StartNew(chosen.Message)
		a.focus.SetChat(focus.ChatPrompt)
		a.setStatus("New conversation: " + chosen.Name)
		a.log.Info("conversation started", zap.String("instructions", chosen.Name))
	case hotkey.SelectionUp:
		a.newSelection = util.Clamp(a.newSelection-1, 0, last)
	case hotkey.SelectionDown:
		a.newSelection = util.Clamp(a.newSelection+1, 0, last)
	case hotkey.ScrollUp:
		a.newSelection = util.Clamp(a.newSelection-pageSize, 0, last)
	case hotkey.ScrollDown:
		a.newSelection = util.Clamp(a.newSelection+pageSize, 0, last)
	case hotkey.SelectionStart:
		a.newSelection = 0
	case hotkey.SelectionEnd:
		a.newSelection = last
	default:
		return a.unhandled(focus.ChatScope{Focus: focus.ChatNew}, action)
	}
	return Outcome{}
}

// handleHistory moves the active conversation directly, so the message pane
// previews the highlighted conversation.
func (a *App) handleHistory(action hotkey.Action) Outcome {
	last := a.store.Len() - 1
	active := a.store.ActiveIndex()
	switch action {
	case hotkey.Cancel, hotkey.Select, hotkey.Confirm:
		a.focus.SetChat(focus.ChatMessages)
	case hotkey.SelectionUp:
		a.selectConversation(util.Clamp(active-1, 0, last))
	case hotkey.SelectionDown:
		a.selectConversation(util.Clamp(active+1, 0, last))
	case hotkey.ScrollUp:
		a.selectConversation(util.Clamp(active-pageSize, 0, last))
	case hotkey.ScrollDown:
		a.selectConversation(util.Clamp(active+pageSize, 0, last))
	case hotkey.SelectionStart:
		a.selectConversation(0)
	case hotkey.SelectionEnd:
		a.selectConversation(last)
	case hotkey.Clear:
		a.removeConversation(active)
	default:
		return a.unhandled(focus.ChatScope{Focus: focus.ChatHistory}, action)
	}
	return Outcome{}
}

func (a *App) selectConversation(i int) {
	if err := a.store.Select(i); err != nil {
		a.fail("Cannot select conversation", err)
	}
}

func (a *App) removeConversation(i int) {
	err := a.store.Remove(i)
	switch {
	case errors.Is(err, session.ErrLastConversation):
		a.setStatus("Cannot delete the last conversation.")
		return
	case err != nil:
		a.fail("Cannot delete conversation", err)
		return
	}
	a.setStatus("Deleted conversation.")
	a.persist()
}

// activeConversation reports a stale active index, which is an invariant
// violation, on the status line.
func (a *App) activeConversation() (*model.Conversation, error) {
	conv, err := a.store.Active()
	if err != nil {
		a.fail("No active conversation", err)
		return nil, err
	}
	return conv, nil
}

func (a *App) copyText(text, done string) {
	if a.clipboard == nil {
		a.setStatus("No clipboard available.")
		return
	}
	if err := a.clipboard.Copy(text); err != nil {
		a.fail("Copy failed", err)
		return
	}
	a.log.Debug("copied to clipboard", zap.Int("bytes", len(text)))
	a.setStatus(done)
}

// =============================================================================
// CONFIG TAB
// =============================================================================

func (a *App) handleConfig(view focus.ConfigView, action hotkey.Action) Outcome {
	switch action {
	case hotkey.Cancel:
		a.focus.SetTab(focus.TabChat)
	case hotkey.SelectionUp:
		a.focus.PrevView()
		a.paramCursor = 0
	case hotkey.SelectionDown:
		a.focus.NextView()
		a.paramCursor = 0
	case hotkey.Select, hotkey.Confirm:
		a.cfg.Provider = view.Provider()
		a.setStatus("Provider set to " + view.Provider().DisplayName() + ".")
		a.log.Info("provider changed", zap.Stringer("provider", view.Provider()))
	case hotkey.ScrollUp:
		a.paramCursor = util.Clamp(a.paramCursor-1, 0, len(a.Params())-1)
	case hotkey.ScrollDown:
		a.paramCursor = util.Clamp(a.paramCursor+1, 0, len(a.Params())-1)
	case hotkey.SelectionStart:
		a.paramCursor = 0
	case hotkey.SelectionEnd:
		a.paramCursor = len(a.Params()) - 1
	case hotkey.Increment, hotkey.Decrement:
		params := a.Params()
		if a.paramCursor >= len(params) {
			return Outcome{}
		}
		p := params[a.paramCursor]
		if action == hotkey.Increment {
			p.Increment()
		} else {
			p.Decrement()
		}
		a.setStatus(p.Name + " = " + p.Value())
	case hotkey.Edit:
		return Outcome{Request: &Request{Kind: RequestEditConfig, Path: a.configPath}}
	case hotkey.Refresh:
		a.ReloadConfig()
		if view.Provider() == model.ProviderOllama {
			return Outcome{Request: &Request{
				Kind:     RequestModels,
				Provider: model.ProviderOllama,
				Config:   a.cfg.Clone(),
			}}
		}
	default:
		return a.unhandled(focus.ConfigScope{View: view}, action)
	}
	return Outcome{}
}

// =============================================================================
// DEBUG TAB
// =============================================================================

func (a *App) handleDebug(action hotkey.Action) Outcome {
	switch action {
	case hotkey.Cancel:
		a.focus.SetTab(focus.TabChat)
	case hotkey.SelectionUp:
		return Outcome{Scroll: ScrollLineUp}
	case hotkey.SelectionDown:
		return Outcome{Scroll: ScrollLineDown}
	case hotkey.ScrollUp:
		return Outcome{Scroll: ScrollPageUp}
	case hotkey.ScrollDown:
		return Outcome{Scroll: ScrollPageDown}
	case hotkey.SelectionStart:
		return Outcome{Scroll: ScrollTop}
	case hotkey.SelectionEnd:
		return Outcome{Scroll: ScrollBottom}
	case hotkey.Clear:
		a.ring.Clear()
		a.setStatus("Cleared debug log.")
	case hotkey.Copy:
		a.copyText(a.ring.String(), "Copied debug log to clipboard.")
	default:
		return a.unhandled(focus.DebugScope{}, action)
	}
	return Outcome{}
}
