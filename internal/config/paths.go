// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// AppName names parrot's directories.
const AppName = "parrot"

// Environment variables overriding the platform directories.
const (
	EnvConfigDir = "PARROT_CONFIG_DIR"
	EnvDataDir   = "PARROT_DATA_DIR"
)

// Paths holds the two directories parrot uses. Every file path is derived
// from them.
type Paths struct {
	ConfigDir string
	DataDir   string
}

// ResolvePaths finds the config and data directories. The config directory
// is <user config dir>/parrot. The data directory is $XDG_DATA_HOME/parrot,
// falling back to ~/.local/share/parrot.
func ResolvePaths() (Paths, error) {
	var p Paths

	if dir := os.Getenv(EnvConfigDir); dir != "" {
		p.ConfigDir = dir
	} else {
		base, err := os.UserConfigDir()
		if err != nil {
			return Paths{}, fmt.Errorf("could not determine config directory: %w", err)
		}
		p.ConfigDir = filepath.Join(base, AppName)
	}

	switch {
	case os.Getenv(EnvDataDir) != "":
		p.DataDir = os.Getenv(EnvDataDir)
	case os.Getenv("XDG_DATA_HOME") != "":
		p.DataDir = filepath.Join(os.Getenv("XDG_DATA_HOME"), AppName)
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("could not determine home directory: %w", err)
		}
		p.DataDir = filepath.Join(home, ".local", "share", AppName)
	}

	return p, nil
}

// Ensure creates both directories.
func (p Paths) Ensure() error {
	for _, dir := range []string{p.ConfigDir, p.DataDir} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

func (p Paths) ConfigFile() string        { return filepath.Join(p.ConfigDir, "config.toml") }
func (p Paths) EnvFile() string           { return filepath.Join(p.ConfigDir, ".env") }
func (p Paths) ConversationsFile() string { return filepath.Join(p.DataDir, "conversations.json") }
func (p Paths) MessageFile() string       { return filepath.Join(p.DataDir, "message_text") }
func (p Paths) UsageDB() string           { return filepath.Join(p.DataDir, "usage.db") }
func (p Paths) LogFile() string           { return filepath.Join(p.DataDir, "parrot.log") }
func (p Paths) LockFile() string          { return filepath.Join(p.DataDir, "parrot.lock") }
