// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirPerm is the permission used for directories created on demand. Parrot
// stores API keys and conversation text, so directories are private.
const DirPerm os.FileMode = 0o700

// AtomicWriteFile replaces the file at path with data.
//
// The data is written to a temporary file in the same directory, synced,
// given perm, and renamed over the target. After a crash either the old
// file or the complete new file exists, never a partial one.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	// Rename is only atomic within one filesystem.
	f, err := os.CreateTemp(dir, "."+filepath.Base(absPath)+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := f.Name()

	committed := false
	defer func() {
		if !committed {
			f.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	// Windows refuses to rename an open file.
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tempPath, absPath); err != nil {
		return fmt.Errorf("replace %s: %w", absPath, err)
	}

	committed = true
	return nil
}
