// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the ordered list of conversations and the active index.
//
// Conversations are kept newest first. The store maintains two invariants:
//
//   - the active index is in bounds whenever the store is non-empty, and is
//     re-clamped after every structural mutation;
//   - at most one conversation is empty, and when one exists it sits at
//     slot 0. StartNew reuses that slot instead of inserting a second one.
//
// The store is not safe for concurrent use. It is owned by the dispatch loop.
package session
