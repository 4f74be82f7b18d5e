// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the parrot TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// TAB BAR STYLES
	// ==========================================================================

	TabBar      lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	Brand       lipgloss.Style

	// ==========================================================================
	// PANE STYLES
	// ==========================================================================

	Pane        lipgloss.Style
	PaneFocused lipgloss.Style
	PaneTitle   lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	SystemLabel    lipgloss.Style
	SystemText     lipgloss.Style

	// ==========================================================================
	// LIST STYLES
	// ==========================================================================

	ListItem     lipgloss.Style
	ListSelected lipgloss.Style
	ListDetail   lipgloss.Style

	// ==========================================================================
	// CONFIG STYLES
	// ==========================================================================

	ParamName     lipgloss.Style
	ParamValue    lipgloss.Style
	ParamSelected lipgloss.Style
	ProviderMark  lipgloss.Style

	// ==========================================================================
	// STATUS LINE STYLES
	// ==========================================================================

	StatusBar   lipgloss.Style
	StatusBusy  lipgloss.Style
	StatusError lipgloss.Style
	Muted       lipgloss.Style
}

// NewTheme creates a theme for the current terminal.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()

	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}

	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	// Tab bar
	t.TabBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.TabActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Cyan).
		Bold(true).
		Padding(0, 1)
	t.TabInactive = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)
	t.Brand = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true).
		Padding(0, 1)

	// Panes
	t.Pane = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay)
	t.PaneFocused = t.Pane.
		BorderForeground(FocusRing)
	t.PaneTitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	// Messages
	t.UserLabel = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.AssistantLabel = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)
	t.SystemLabel = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)
	t.SystemText = lipgloss.NewStyle().
		Foreground(Amber).
		Italic(true)

	// Lists
	t.ListItem = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.ListSelected = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SelectionBg).
		Bold(true)
	t.ListDetail = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Config
	t.ParamName = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.ParamValue = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)
	t.ParamSelected = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.ProviderMark = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	// Status line
	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)
	t.StatusBusy = t.StatusBar.
		Foreground(Amber)
	t.StatusError = t.StatusBar.
		Foreground(Rose)
	t.Muted = lipgloss.NewStyle().
		Foreground(TextMuted)
}

// PaneStyle returns the border style of a pane of the given outer size.
// Borders take one cell on each side.
func (t *Theme) PaneStyle(focused bool, width, height int) lipgloss.Style {
	s := t.Pane
	if focused {
		s = t.PaneFocused
	}
	return s.Width(max(width-2, 0)).Height(max(height-2, 0))
}
