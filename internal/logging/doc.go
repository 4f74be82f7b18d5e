// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds parrot's zap logger.
//
// Every entry goes to an in-memory Ring shown on the Debug tab. When a file
// path is configured, entries at or above the file level are also appended
// to it as JSON lines.
package logging
