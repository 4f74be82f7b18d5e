// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "time"

// =============================================================================
// SPINNER ANIMATIONS
// =============================================================================

// SpinnerConfig holds the frames of a spinner animation.
type SpinnerConfig struct {
	Frames []string
	FPS    int
}

// LineSpinner - simple line rotation
var LineSpinner = SpinnerConfig{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    10,
}

// Duration returns the duration of each frame.
func (s SpinnerConfig) Duration() time.Duration {
	if s.FPS <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(s.FPS)
}

// FrameAt returns the frame shown after elapsed time.
func (s SpinnerConfig) FrameAt(elapsed time.Duration) string {
	if len(s.Frames) == 0 {
		return ""
	}
	if elapsed < 0 {
		elapsed = 0
	}
	return s.Frames[int(elapsed/s.Duration())%len(s.Frames)]
}
