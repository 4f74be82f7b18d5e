// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package focus tracks which screen region is active.
//
// Focus is the cross product of a tab and the sub-focus of each tab. Scope
// projects it onto the single region that interprets hotkey actions: a
// ChatScope, a ConfigScope or the DebugScope. Scope is a sealed interface
// so callers can type-switch over it exhaustively.
//
// All transitions are plain data mutations; Focus is never persisted.
package focus
