// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/parrot-tui/internal/hotkey"
)

// teaModifiers maps the modifier prefixes bubbletea puts in KeyMsg.String.
var teaModifiers = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"alt":   hotkey.ModAlt,
	"shift": hotkey.ModShift,
}

// KeyEvent converts a bubbletea key press into a hotkey event. Multi-rune
// input, as sent by pastes and some input methods, has no event; ok is false
// for it and the raw message belongs to the prompt.
func KeyEvent(msg tea.KeyMsg) (ev hotkey.Event, ok bool) {
	if msg.Type == tea.KeyRunes {
		if len(msg.Runes) != 1 {
			return hotkey.Event{}, false
		}
		r := msg.Runes[0]
		ev.Key = hotkey.CharKey(r)
		if unicode.IsUpper(r) {
			ev.Mods |= hotkey.ModShift
		}
		if msg.Alt {
			ev.Mods |= hotkey.ModAlt
		}
		return hotkey.Normalize(ev), true
	}

	// Named keys arrive as "ctrl+shift+up", "alt+enter", "f5" or " ".
	name := msg.String()
	for {
		prefix, rest, found := strings.Cut(name, "+")
		mod, isMod := teaModifiers[prefix]
		if !found || !isMod || rest == "" {
			break
		}
		ev.Mods |= mod
		name = rest
	}

	key, err := hotkey.ParseKey(name)
	if err != nil {
		return hotkey.Event{}, false
	}
	ev.Key = key
	return hotkey.Normalize(ev), true
}
