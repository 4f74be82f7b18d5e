// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package hotkey

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// =============================================================================
// ERRORS
// =============================================================================

// Sentinel errors for binding parse failures.
var (
	ErrEmpty           = errors.New("empty hotkey")
	ErrUnknownKey      = errors.New("unrecognized key")
	ErrUnknownModifier = errors.New("unrecognized modifier key")
)

// ParseError describes a binding string that could not be parsed.
type ParseError struct {
	Input string
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("hotkey %q: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("hotkey %q: %v: '%s'", e.Input, e.Err, e.Token)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// =============================================================================
// MODIFIERS
// =============================================================================

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
	ModSuper
	ModMeta
)

// modifierOrder fixes the order modifiers are printed in.
var modifierOrder = []struct {
	mod  Modifier
	name string
}{
	{ModCtrl, "ctrl"},
	{ModAlt, "alt"},
	{ModShift, "shift"},
	{ModSuper, "super"},
	{ModMeta, "meta"},
}

var modifierNames = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"shift":   ModShift,
	"super":   ModSuper,
	"win":     ModSuper,
	"meta":    ModMeta,
}

// Has reports whether all bits of other are set.
func (m Modifier) Has(other Modifier) bool {
	return m&other == other
}

// =============================================================================
// KEYS
// =============================================================================

// Key is the canonical name of a key: a single lowercase character, "f<N>",
// or one of the named keys such as "enter" or "pageup".
type Key string

// Named keys.
const (
	KeyBackspace Key = "backspace"
	KeyEnter     Key = "enter"
	KeyLeft      Key = "left"
	KeyRight     Key = "right"
	KeyUp        Key = "up"
	KeyDown      Key = "down"
	KeyHome      Key = "home"
	KeyEnd       Key = "end"
	KeyPageUp    Key = "pageup"
	KeyPageDown  Key = "pagedown"
	KeyTab       Key = "tab"
	KeyBackTab   Key = "backtab"
	KeyDelete    Key = "delete"
	KeyInsert    Key = "insert"
	KeyEsc       Key = "esc"
	KeySpace     Key = "space"
)

// maxFunctionKey is the highest "f<N>" accepted.
const maxFunctionKey = 24

var keyAliases = map[string]Key{
	"backspace":   KeyBackspace,
	"enter":       KeyEnter,
	"return":      KeyEnter,
	"left":        KeyLeft,
	"right":       KeyRight,
	"up":          KeyUp,
	"down":        KeyDown,
	"home":        KeyHome,
	"end":         KeyEnd,
	"pageup":      KeyPageUp,
	"pgup":        KeyPageUp,
	"pagedown":    KeyPageDown,
	"pgdn":        KeyPageDown,
	"pgdown":      KeyPageDown,
	"tab":         KeyTab,
	"backtab":     KeyBackTab,
	"delete":      KeyDelete,
	"del":         KeyDelete,
	"insert":      KeyInsert,
	"ins":         KeyInsert,
	"esc":         KeyEsc,
	"escape":      KeyEsc,
	"space":       KeySpace,
	"capslock":    "capslock",
	"scrolllock":  "scrolllock",
	"numlock":     "numlock",
	"printscreen": "printscreen",
	"pause":       "pause",
	"menu":        "menu",
	"keypadbegin": "keypadbegin",

	// Modifier keys pressed on their own.
	"lcontrol": "lctrl",
	"lctrl":    "lctrl",
	"rcontrol": "rctrl",
	"rctrl":    "rctrl",
	"lalt":     "lalt",
	"ralt":     "ralt",
	"lshift":   "lshift",
	"rshift":   "rshift",
	"lsuper":   "lsuper",
	"rsuper":   "rsuper",
	"rmeta":    "rmeta",
	"lmeta":    "lmeta",
}

// CharKey returns the key for a single printable character.
func CharKey(r rune) Key {
	return Key(strings.ToLower(string(r)))
}

// FunctionKey returns the key for F1..F24.
func FunctionKey(n int) Key {
	return Key("f" + strconv.Itoa(n))
}

// ParseKey parses a single key name.
func ParseKey(name string) (Key, error) {
	name = strings.ToLower(name)
	if name == "" {
		return "", ErrEmpty
	}
	if utf8.RuneCountInString(name) == 1 {
		return Key(name), nil
	}
	if k, ok := keyAliases[name]; ok {
		return k, nil
	}
	if name[0] == 'f' {
		if n, err := strconv.Atoi(name[1:]); err == nil && n >= 1 && n <= maxFunctionKey {
			return FunctionKey(n), nil
		}
	}
	return "", ErrUnknownKey
}

// =============================================================================
// EVENTS
// =============================================================================

// Event is a key together with its modifiers.
type Event struct {
	Key  Key
	Mods Modifier
}

// Parse parses a binding such as "ctrl alt enter". The last token is the
// key; every preceding token must be a modifier.
func Parse(s string) (Event, error) {
	tokens := strings.Fields(strings.ToLower(s))
	if len(tokens) == 0 {
		return Event{}, &ParseError{Input: s, Err: ErrEmpty}
	}

	last := tokens[len(tokens)-1]
	key, err := ParseKey(last)
	if err != nil {
		return Event{}, &ParseError{Input: s, Token: last, Err: err}
	}

	var mods Modifier
	for _, tok := range tokens[:len(tokens)-1] {
		m, ok := modifierNames[tok]
		if !ok {
			return Event{}, &ParseError{Input: s, Token: tok, Err: ErrUnknownModifier}
		}
		mods |= m
	}

	return normalize(Event{Key: key, Mods: mods}), nil
}

// MustParse is like Parse but panics on error. For static tables only.
func MustParse(s string) Event {
	ev, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return ev
}

// normalize folds equivalent spellings onto one event so that table lookups
// match regardless of how the terminal reported the key.
func normalize(ev Event) Event {
	if ev.Key == KeyTab && ev.Mods.Has(ModShift) {
		ev.Key = KeyBackTab
		ev.Mods &^= ModShift
	}
	if ev.Key == " " {
		ev.Key = KeySpace
	}
	return ev
}

// Normalize returns the canonical form of ev.
func Normalize(ev Event) Event {
	return normalize(ev)
}

// String formats the event in the binding grammar, e.g. "ctrl alt enter".
func (e Event) String() string {
	parts := make([]string, 0, len(modifierOrder)+1)
	for _, m := range modifierOrder {
		if e.Mods.Has(m.mod) {
			parts = append(parts, m.name)
		}
	}
	parts = append(parts, string(e.Key))
	return strings.Join(parts, " ")
}

// MarshalText implements encoding.TextMarshaler.
func (e Event) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so bindings decode
// straight out of the config file and fail at load time.
func (e *Event) UnmarshalText(text []byte) error {
	ev, err := Parse(string(text))
	if err != nil {
		return err
	}
	*e = ev
	return nil
}
