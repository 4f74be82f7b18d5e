// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdown renders assistant replies. The glamour renderer is rebuilt only
// when the wrap width changes.
type markdown struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
}

func newMarkdown(dark bool) *markdown {
	style := "light"
	if dark {
		style = "dark"
	}
	return &markdown{style: style}
}

// Render returns text as terminal markdown wrapped to width, or the text
// itself wrapped to width if glamour fails.
func (md *markdown) Render(text string, width int) string {
	if width < 1 {
		width = 1
	}
	if md.renderer == nil || md.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(md.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			md.renderer = nil
			return wrap(text, width)
		}
		md.renderer = r
		md.width = width
	}

	out, err := md.renderer.Render(text)
	if err != nil {
		return wrap(text, width)
	}
	return strings.Trim(out, "\n")
}

// wrap soft-wraps plain text to width cells.
func wrap(text string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(text)
}

// =============================================================================
// CONFIG PREVIEW
// =============================================================================

// highlightTOML applies syntax highlighting to the config file for the
// preview pane. Unhighlightable input is returned as is.
func highlightTOML(src string, dark bool) string {
	lexer := lexers.Get("toml")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	styleName := "github"
	if dark {
		styleName = "monokai"
	}
	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, src)
	if err != nil {
		return src
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return src
	}
	return buf.String()
}
