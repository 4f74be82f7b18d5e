// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry keeps a local ledger of completion requests.
//
// Each request, successful or not, is one row in a SQLite database with the
// provider, model, token counts and duration. The Config tab shows the
// per-provider totals.
//
// # Key Types
//
//   - Ledger: the SQLite-backed store
//   - Record: one completion request
//   - Total: aggregated counts for one provider
//
// # Usage
//
//	ledger, err := telemetry.Open(paths.UsageDB())
//	if err != nil {
//	    return err
//	}
//	defer ledger.Close()
//
//	err = ledger.Record(ctx, telemetry.Record{
//	    Provider:         model.ProviderOpenAI,
//	    Model:            "gpt-4o",
//	    PromptTokens:     120,
//	    CompletionTokens: 300,
//	})
//
// # Privacy
//
// The ledger is local-only. Message content is never stored, only counts.
package telemetry
