// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the parrot TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection.

# Color System (colors.go)

  - Cyan - brand color, user messages and the focused pane
  - Purple - assistant messages and selections
  - Amber - system notes and the busy indicator
  - Rose - errors
  - Emerald - success

# Theme System (theme.go)

The Theme struct holds every style the views use, built once for the
terminal's color profile:

	theme := styles.NewTheme()
	title := theme.PaneTitle.Render("Messages")

# Animation System (animations.go)

Spinners are frame lists played back against elapsed time:

	frame := styles.LineSpinner.FrameAt(time.Since(started))
*/
package styles
