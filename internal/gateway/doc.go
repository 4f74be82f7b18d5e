// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway runs the external programs parrot hands work to: the
// user's editor and the clipboard command.
//
// Editor calls are split into Prepare, Command and Finish so the TUI can run
// the editor with tea.ExecProcess and give it the terminal. EditText does
// all three in one blocking call.
package gateway
