// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for parrot.
//
// The configuration lives in a single TOML file. On first run the file is
// written from an embedded template, so every option is visible and
// commented. Secrets may instead come from a .env file next to it or from
// the environment.
//
// # Key Types
//
//   - Config: the complete configuration
//   - ValueRange: a bounded, steppable generation parameter
//   - Paths: resolved locations of every file parrot reads or writes
//   - Watcher: debounced notifications when the config file changes
//
// # Configuration Precedence
//
// Values are resolved in this order (later wins):
//   - Built-in defaults
//   - <config dir>/config.toml
//   - <config dir>/.env
//   - Environment variables (OPENAI_API_KEY, ANTHROPIC_API_KEY,
//     GEMINI_API_KEY, OLLAMA_HOST, PARROT_PROVIDER)
//
// # Usage
//
//	paths, err := config.ResolvePaths()
//	if err != nil {
//	    return err
//	}
//	if _, err := config.EnsureConfigFile(paths.ConfigFile()); err != nil {
//	    return err
//	}
//	cfg, err := config.Load(paths.ConfigFile())
package config
