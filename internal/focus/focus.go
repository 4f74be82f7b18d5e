// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package focus

import "github.com/jeranaias/parrot-tui/internal/model"

// =============================================================================
// TABS
// =============================================================================

// Tab is a top-level screen.
type Tab int

const (
	TabChat Tab = iota
	TabConfig
	TabDebug
)

// tabOrder is the cycle order for CycleTab and CycleBackTab.
var tabOrder = []Tab{TabChat, TabConfig, TabDebug}

// Tabs returns the tabs in cycle order.
func Tabs() []Tab {
	out := make([]Tab, len(tabOrder))
	copy(out, tabOrder)
	return out
}

func (t Tab) String() string {
	switch t {
	case TabChat:
		return "Chat"
	case TabConfig:
		return "Config"
	case TabDebug:
		return "Debug"
	default:
		return "Unknown"
	}
}

// =============================================================================
// SUB-FOCUS
// =============================================================================

// ChatFocus is the active region inside the chat tab.
type ChatFocus int

const (
	ChatMessages ChatFocus = iota
	ChatPrompt
	ChatNew
	ChatHistory
)

func (c ChatFocus) String() string {
	switch c {
	case ChatMessages:
		return "Messages"
	case ChatPrompt:
		return "Prompt"
	case ChatNew:
		return "New"
	case ChatHistory:
		return "History"
	default:
		return "Unknown"
	}
}

// ConfigView is the provider sub-view shown in the config tab.
type ConfigView int

const (
	ConfigOpenAI ConfigView = iota
	ConfigAnthropic
	ConfigGemini
	ConfigOllama
)

var viewOrder = []ConfigView{ConfigOpenAI, ConfigAnthropic, ConfigGemini, ConfigOllama}

// Views returns the config sub-views in cycle order.
func Views() []ConfigView {
	out := make([]ConfigView, len(viewOrder))
	copy(out, viewOrder)
	return out
}

// Provider returns the provider configured by the view.
func (v ConfigView) Provider() model.Provider {
	switch v {
	case ConfigAnthropic:
		return model.ProviderAnthropic
	case ConfigGemini:
		return model.ProviderGemini
	case ConfigOllama:
		return model.ProviderOllama
	default:
		return model.ProviderOpenAI
	}
}

// ViewFor returns the config view of a provider.
func ViewFor(p model.Provider) ConfigView {
	for _, v := range viewOrder {
		if v.Provider() == p {
			return v
		}
	}
	return ConfigOpenAI
}

func (v ConfigView) String() string {
	return v.Provider().DisplayName()
}

// =============================================================================
// FOCUS
// =============================================================================

// Focus is the complete navigation state.
type Focus struct {
	Tab    Tab
	Chat   ChatFocus
	Config ConfigView
}

// Default returns the startup focus: the chat tab with the message list
// focused and the OpenAI config view selected.
func Default() Focus {
	return Focus{Tab: TabChat, Chat: ChatMessages, Config: ConfigOpenAI}
}

// Scope projects the focus onto the single active scope.
func (f Focus) Scope() Scope {
	switch f.Tab {
	case TabConfig:
		return ConfigScope{View: f.Config}
	case TabDebug:
		return DebugScope{}
	default:
		return ChatScope{Focus: f.Chat}
	}
}

// SetTab jumps to a tab, keeping each tab's sub-focus.
func (f *Focus) SetTab(t Tab) {
	f.Tab = t
}

// CycleTab advances to the next tab, wrapping around.
func (f *Focus) CycleTab() {
	f.Tab = tabOrder[(f.tabIndex()+1)%len(tabOrder)]
}

// CycleBackTab moves to the previous tab, wrapping around.
func (f *Focus) CycleBackTab() {
	n := len(tabOrder)
	f.Tab = tabOrder[(f.tabIndex()+n-1)%n]
}

func (f *Focus) tabIndex() int {
	for i, t := range tabOrder {
		if t == f.Tab {
			return i
		}
	}
	return 0
}

// SetChat sets the chat sub-focus.
func (f *Focus) SetChat(c ChatFocus) {
	f.Chat = c
}

// NextView advances the config sub-view, wrapping around.
func (f *Focus) NextView() {
	f.Config = viewOrder[(f.viewIndex()+1)%len(viewOrder)]
}

// PrevView moves the config sub-view back, wrapping around.
func (f *Focus) PrevView() {
	n := len(viewOrder)
	f.Config = viewOrder[(f.viewIndex()+n-1)%n]
}

func (f *Focus) viewIndex() int {
	for i, v := range viewOrder {
		if v == f.Config {
			return i
		}
	}
	return 0
}
