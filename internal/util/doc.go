// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by parrot's packages.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: crash-safe file replacement with fsync
//
// Text:
//   - Ellipsize: display-width aware truncation for terminal cells
//   - FirstLine: the first non-blank line of a block of text
//   - Clamp: bound a value to a closed range
//
// # Usage
//
//	// Persist conversations without risking a torn file
//	err := util.AtomicWriteFile(path, data, 0600)
//
//	// Fit a preview into a list row
//	row := util.Ellipsize(preview, width)
package util
