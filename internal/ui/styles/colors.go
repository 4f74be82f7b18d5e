// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Purple - assistant messages, selections
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Cyan - brand color, user messages, focused borders
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Emerald - success
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Amber - system notes, warnings, the busy indicator
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Rose - errors
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// SurfaceDim - tab bar and status line
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}

// Overlay - unfocused borders, separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// SelectionBg - highlighted list row
var SelectionBg = lipgloss.AdaptiveColor{Light: "#BFDBFE", Dark: "#1E3A5F"}

// =============================================================================
// TEXT COLORS
// =============================================================================

var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// FocusRing is the border color of the focused pane.
var FocusRing = Cyan

// =============================================================================
// STATUS INDICATORS
// =============================================================================

// StatusIndicatorSet holds ASCII markers shown next to colored status text,
// so states stay readable without color.
type StatusIndicatorSet struct {
	Success string
	Error   string
	Pending string
	Active  string
}

// StatusIndicators is the marker set in use.
var StatusIndicators = StatusIndicatorSet{
	Success: "[OK]",
	Error:   "[X]",
	Pending: "[ ]",
	Active:  "[*]",
}
