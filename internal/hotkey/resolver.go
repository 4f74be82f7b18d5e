// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package hotkey

// =============================================================================
// DEFAULT BINDINGS
// =============================================================================

var defaultBindings = map[Action][]string{
	QuitProgram:    {"ctrl q"},
	New:            {"ctrl n"},
	Open:           {"ctrl o"},
	Edit:           {"ctrl e"},
	Copy:           {"ctrl y"},
	Clear:          {"ctrl l"},
	Refresh:        {"ctrl r", "f5"},
	Confirm:        {"alt enter", "ctrl s"},
	Select:         {"enter"},
	Cancel:         {"esc"},
	SelectionUp:    {"up"},
	SelectionDown:  {"down"},
	SelectionStart: {"home"},
	SelectionEnd:   {"end"},
	ScrollUp:       {"pageup"},
	ScrollDown:     {"pagedown"},
	Increment:      {"right"},
	Decrement:      {"left"},
	CycleTab:       {"tab"},
	CycleBackTab:   {"backtab"},
	ViewChatTab:    {"f1"},
	ViewConfigTab:  {"f2"},
	ViewDebugTab:   {"f3"},
}

// Defaults returns a fresh copy of the default binding table.
func Defaults() map[Action][]Event {
	out := make(map[Action][]Event, len(defaultBindings))
	for action, bindings := range defaultBindings {
		events := make([]Event, len(bindings))
		for i, b := range bindings {
			events[i] = MustParse(b)
		}
		out[action] = events
	}
	return out
}

// =============================================================================
// RESOLVER
// =============================================================================

// Conflict records an event claimed by two actions during the merge.
// Winner is the action the event resolves to.
type Conflict struct {
	Event  Event
	Loser  Action
	Winner Action
}

// Resolver is the flattened event to action table.
// A Resolver is immutable after construction.
type Resolver struct {
	table     map[Event]Action
	bindings  map[Action][]Event
	conflicts []Conflict
}

// NewResolver merges the user overrides over the defaults. A present key in
// overrides replaces every default binding of that action; a present key
// with no events unbinds it.
func NewResolver(overrides map[Action][]Event) *Resolver {
	r := &Resolver{
		table:    make(map[Event]Action),
		bindings: make(map[Action][]Event),
	}

	defaults := Defaults()

	// Pass 1: defaults for actions the user did not override.
	for _, action := range Actions() {
		if _, overridden := overrides[action]; overridden {
			continue
		}
		r.bind(action, defaults[action])
	}

	// Pass 2: overrides.
	for _, action := range Actions() {
		events, overridden := overrides[action]
		if !overridden {
			continue
		}
		r.bind(action, events)
	}

	return r
}

func (r *Resolver) bind(action Action, events []Event) {
	for _, ev := range events {
		ev = normalize(ev)
		if prev, taken := r.table[ev]; taken && prev != action {
			r.conflicts = append(r.conflicts, Conflict{Event: ev, Loser: prev, Winner: action})
			r.bindings[prev] = removeEvent(r.bindings[prev], ev)
		}
		r.table[ev] = action
		if !containsEvent(r.bindings[action], ev) {
			r.bindings[action] = append(r.bindings[action], ev)
		}
	}
}

// Resolve returns the action bound to ev, if any.
func (r *Resolver) Resolve(ev Event) (Action, bool) {
	action, ok := r.table[normalize(ev)]
	return action, ok
}

// Bindings returns the events that resolve to action, in bind order.
func (r *Resolver) Bindings(action Action) []Event {
	events := r.bindings[action]
	out := make([]Event, len(events))
	copy(out, events)
	return out
}

// Conflicts returns the collisions found while merging.
func (r *Resolver) Conflicts() []Conflict {
	out := make([]Conflict, len(r.conflicts))
	copy(out, r.conflicts)
	return out
}

// Len returns the number of bound events.
func (r *Resolver) Len() int {
	return len(r.table)
}

func containsEvent(events []Event, ev Event) bool {
	for _, e := range events {
		if e == ev {
			return true
		}
	}
	return false
}

func removeEvent(events []Event, ev Event) []Event {
	out := events[:0]
	for _, e := range events {
		if e != ev {
			out = append(out, e)
		}
	}
	return out
}
