// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/parrot-tui/internal/util"
)

// ErrNoEditor is returned when no editor command is configured.
var ErrNoEditor = errors.New("no editor command configured")

// EditorError reports a failed editor step.
type EditorError struct {
	Op  string // "prepare", "run" or "read"
	Err error
}

func (e *EditorError) Error() string {
	return fmt.Sprintf("editor %s: %v", e.Op, e.Err)
}

func (e *EditorError) Unwrap() error {
	return e.Err
}

// =============================================================================
// EDITOR
// =============================================================================

// Editor edits text through an external program. The file to edit is
// appended to Command as the last argument.
type Editor struct {
	Command     []string
	ScratchPath string
}

// SetCommand replaces the editor command.
func (e *Editor) SetCommand(cmd []string) {
	e.Command = append([]string(nil), cmd...)
}

// Prepare writes initial to the scratch file.
func (e *Editor) Prepare(initial string) error {
	if err := os.MkdirAll(filepath.Dir(e.ScratchPath), util.DirPerm); err != nil {
		return &EditorError{Op: "prepare", Err: err}
	}
	if err := util.AtomicWriteFile(e.ScratchPath, []byte(initial), 0o600); err != nil {
		return &EditorError{Op: "prepare", Err: err}
	}
	return nil
}

// ScratchCommand returns the command that edits the scratch file.
func (e *Editor) ScratchCommand() (*exec.Cmd, error) {
	return e.FileCommand(e.ScratchPath)
}

// FileCommand returns the command that edits path. Stdio is left unset; the
// caller attaches the terminal.
func (e *Editor) FileCommand(path string) (*exec.Cmd, error) {
	if len(e.Command) == 0 || e.Command[0] == "" {
		return nil, &EditorError{Op: "run", Err: ErrNoEditor}
	}
	args := append(append([]string(nil), e.Command[1:]...), path)
	return exec.Command(e.Command[0], args...), nil
}

// Finish reads the scratch file back. The text is trimmed and normalized
// to NFC.
func (e *Editor) Finish() (string, error) {
	data, err := os.ReadFile(e.ScratchPath)
	if err != nil {
		return "", &EditorError{Op: "read", Err: err}
	}
	return norm.NFC.String(strings.TrimSpace(string(data))), nil
}

// EditText runs the editor on initial and returns the edited text. It
// blocks until the editor exits and fails on a nonzero exit status.
func (e *Editor) EditText(initial string) (string, error) {
	if err := e.Prepare(initial); err != nil {
		return "", err
	}
	if err := e.EditFile(e.ScratchPath); err != nil {
		return "", err
	}
	return e.Finish()
}

// EditFile runs the editor on path with the process's own terminal.
func (e *Editor) EditFile(path string) error {
	cmd, err := e.FileCommand(path)
	if err != nil {
		return err
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return &EditorError{Op: "run", Err: err}
	}
	return nil
}
