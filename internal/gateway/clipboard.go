// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
)

// ClipboardError reports a failed copy.
type ClipboardError struct {
	Err    error
	Stderr string
}

func (e *ClipboardError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("clipboard: %v: %s", e.Err, e.Stderr)
	}
	return fmt.Sprintf("clipboard: %v", e.Err)
}

func (e *ClipboardError) Unwrap() error {
	return e.Err
}

// Clipboard copies text to the system clipboard. When Command is set the
// text is piped to it on stdin; otherwise the platform clipboard is used.
type Clipboard struct {
	Command []string
}

// SetCommand replaces the copy command. An empty command selects the system
// clipboard.
func (c *Clipboard) SetCommand(cmd []string) {
	c.Command = append([]string(nil), cmd...)
}

// Copy places text on the clipboard.
func (c *Clipboard) Copy(text string) error {
	if len(c.Command) == 0 || c.Command[0] == "" {
		if err := clipboard.WriteAll(text); err != nil {
			return &ClipboardError{Err: err}
		}
		return nil
	}

	cmd := exec.Command(c.Command[0], c.Command[1:]...)
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &ClipboardError{Err: err, Stderr: strings.TrimSpace(stderr.String())}
	}
	return nil
}
