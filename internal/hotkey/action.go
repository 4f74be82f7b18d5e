// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package hotkey

import (
	"fmt"
	"strings"
)

// Action is a symbolic user intent, independent of the key that triggers it.
type Action int

// Actions in their canonical order. The order drives the resolver merge and
// must not be rearranged.
const (
	QuitProgram Action = iota
	New
	Open
	Edit
	Copy
	Clear
	Refresh
	Confirm
	Select
	Cancel
	SelectionUp
	SelectionDown
	SelectionStart
	SelectionEnd
	ScrollUp
	ScrollDown
	Increment
	Decrement
	CycleTab
	CycleBackTab
	ViewChatTab
	ViewConfigTab
	ViewDebugTab

	actionCount
)

var actionNames = [actionCount]string{
	QuitProgram:    "quit_program",
	New:            "new",
	Open:           "open",
	Edit:           "edit",
	Copy:           "copy",
	Clear:          "clear",
	Refresh:        "refresh",
	Confirm:        "confirm",
	Select:         "select",
	Cancel:         "cancel",
	SelectionUp:    "selection_up",
	SelectionDown:  "selection_down",
	SelectionStart: "selection_start",
	SelectionEnd:   "selection_end",
	ScrollUp:       "scroll_up",
	ScrollDown:     "scroll_down",
	Increment:      "increment",
	Decrement:      "decrement",
	CycleTab:       "cycle_tab",
	CycleBackTab:   "cycle_back_tab",
	ViewChatTab:    "view_chat_tab",
	ViewConfigTab:  "view_config_tab",
	ViewDebugTab:   "view_debug_tab",
}

// actionAliases are older config names still accepted on load.
var actionAliases = map[string]Action{
	"view_conversation_tab": ViewChatTab,
	"quit":                  QuitProgram,
}

// Actions returns every action in canonical order.
func Actions() []Action {
	out := make([]Action, actionCount)
	for i := range out {
		out[i] = Action(i)
	}
	return out
}

// String returns the config name of the action.
func (a Action) String() string {
	if a < 0 || a >= actionCount {
		return fmt.Sprintf("action(%d)", int(a))
	}
	return actionNames[a]
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	return a >= 0 && a < actionCount
}

// ParseAction parses a config action name such as "quit_program".
func ParseAction(name string) (Action, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, n := range actionNames {
		if n == key {
			return Action(i), nil
		}
	}
	if a, ok := actionAliases[key]; ok {
		return a, nil
	}
	return 0, fmt.Errorf("unknown hotkey action %q", name)
}
