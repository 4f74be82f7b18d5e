// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package hotkey maps physical key events to symbolic actions.
//
// Bindings are written in a small grammar: zero or more modifiers followed by
// a key name, separated by whitespace and matched case-insensitively.
//
//	ctrl q
//	alt enter
//	ctrl shift pageup
//	f5
//
// # Key Types
//
//   - Action: the closed set of user intents (Confirm, Cancel, ...)
//   - Event: a key plus a modifier set, comparable and usable as a map key
//   - Resolver: the flattened event to action table
//
// # Merging
//
// NewResolver performs a deterministic two-pass merge. Defaults for every
// action without an override are inserted first, then the overrides, both
// in Action order. An override replaces all default bindings of its action,
// and an empty override unbinds the action.
package hotkey
