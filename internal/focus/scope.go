// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package focus

// Scope is the single region that interprets a hotkey action.
// The set of implementations is closed: ChatScope, ConfigScope, DebugScope.
type Scope interface {
	scope()
	String() string
}

// ChatScope is active on the chat tab.
type ChatScope struct {
	Focus ChatFocus
}

// ConfigScope is active on the config tab.
type ConfigScope struct {
	View ConfigView
}

// DebugScope is active on the debug tab.
type DebugScope struct{}

func (ChatScope) scope()   {}
func (ConfigScope) scope() {}
func (DebugScope) scope()  {}

func (s ChatScope) String() string   { return "chat/" + s.Focus.String() }
func (s ConfigScope) String() string { return "config/" + s.View.String() }
func (DebugScope) String() string    { return "debug" }

// AcceptsText reports whether raw keys in this scope belong to a text input.
func AcceptsText(s Scope) bool {
	cs, ok := s.(ChatScope)
	return ok && cs.Focus == ChatPrompt
}
