// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"strings"
	"sync"
)

// Ring keeps the newest log lines in memory. It implements
// zapcore.WriteSyncer and is safe for concurrent use.
type Ring struct {
	mu       sync.Mutex
	lines    []string
	start    int
	capacity int
	version  uint64
}

// NewRing returns a Ring holding at most capacity lines.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{capacity: capacity}
}

// Write stores each newline-terminated line in p.
func (r *Ring) Write(p []byte) (int, error) {
	text := strings.TrimRight(string(p), "\n")
	if text == "" {
		return len(p), nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, line := range strings.Split(text, "\n") {
		r.push(line)
	}
	r.version++
	return len(p), nil
}

func (r *Ring) push(line string) {
	if len(r.lines) < r.capacity {
		r.lines = append(r.lines, line)
		return
	}
	r.lines[r.start] = line
	r.start = (r.start + 1) % r.capacity
}

// Sync is a no-op.
func (r *Ring) Sync() error { return nil }

// Lines returns the stored lines, oldest first.
func (r *Ring) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.lines))
	out = append(out, r.lines[r.start:]...)
	out = append(out, r.lines[:r.start]...)
	return out
}

// Len returns the number of stored lines.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lines)
}

// Version changes whenever the contents change, so views can skip
// re-rendering an unchanged log.
func (r *Ring) Version() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.version
}

// Clear drops every stored line.
func (r *Ring) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = nil
	r.start = 0
	r.version++
}

// String joins the stored lines with newlines.
func (r *Ring) String() string {
	return strings.Join(r.Lines(), "\n")
}
