// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui is the bubbletea front end of parrot.
//
// The Model converts key presses to hotkey events, hands them to the
// app.App, and acts on the returned Outcome: raw keys go to the prompt
// textarea, scrolls move the message or debug viewport, and requests become
// commands. Completions run off the loop and come back as a result message;
// editors take over the terminal through tea.ExecProcess.
//
// Three tabs are drawn:
//
//   - Chat: conversation history or the system instruction list, the
//     messages of the active conversation and the prompt
//   - Config: providers, the parameters of the selected provider, usage
//     totals and a highlighted preview of the config file
//   - Debug: the in-memory log
package ui
