// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"cmp"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Ellipsis is appended by Ellipsize when text is cut.
const Ellipsis = "…"

// Ellipsize fits s into width terminal cells, cutting on rune boundaries
// and marking the cut with Ellipsis. Wide runes count as two cells.
func Ellipsize(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= runewidth.StringWidth(Ellipsis) {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, Ellipsis)
}

// PadRight pads s with spaces to width cells. Longer strings are returned
// unchanged.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// FirstLine returns the first line of s that is not blank, trimmed.
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// Clamp bounds v to [lo, hi]. When hi < lo the result is lo.
func Clamp[T cmp.Ordered](v, lo, hi T) T {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
