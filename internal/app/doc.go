// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the event dispatcher of parrot.
//
// An App owns the loaded config, the conversation store, the focus state and
// the hotkey resolver. The terminal front end feeds it key events with
// HandleKey; each event is resolved to an action and handled by exactly one
// scope handler, chosen from the current focus. The returned Outcome tells
// the front end whether to quit, forward the raw key to the prompt editor,
// scroll a pane or run a Request.
//
// Requests cover everything that would block the loop: provider completions,
// model listings and the external editor. The front end runs them (Run off
// the loop, or Execute for editor requests that need the terminal) and hands
// the Result back with Apply. Completions run one at a time; while one is in
// flight every key but QuitProgram is dropped, and QuitProgram cancels it.
//
// Usage:
//
//	a, err := app.New(app.Deps{Config: cfg, ConfigPath: path, Store: store})
//	out := a.HandleKey(hotkey.MustParse("ctrl s"))
//	if out.Request != nil {
//		a.Apply(a.Run(out.Request))
//	}
package app
