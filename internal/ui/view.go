// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parrot-tui/internal/app"
	"github.com/jeranaias/parrot-tui/internal/focus"
	"github.com/jeranaias/parrot-tui/internal/hotkey"
	"github.com/jeranaias/parrot-tui/internal/model"
	"github.com/jeranaias/parrot-tui/internal/provider"
	"github.com/jeranaias/parrot-tui/internal/ui/styles"
	"github.com/jeranaias/parrot-tui/internal/util"
)

// =============================================================================
// LAYOUT
// =============================================================================

const (
	tabBarHeight    = 1
	statusHeight    = 1
	maxSidebarWidth = 32
	paramNameWidth  = 20
	providerWidth   = 10
)

func (m Model) bodyHeight() int {
	return max(m.height-tabBarHeight-statusHeight, 0)
}

func (m Model) sidebarWidth() int {
	return min(maxSidebarWidth, m.width/3)
}

// promptPaneHeight is the text area plus its title and border.
func (m Model) promptPaneHeight() int {
	return max(m.app.Config().UI.PromptHeight, 1) + 3
}

// layout sizes the widgets to the terminal. Panes spend two rows and two
// columns on the border and one row on the title.
func (m *Model) layout() {
	body := m.bodyHeight()
	mainWidth := m.width - m.sidebarWidth()

	m.prompt.SetWidth(max(mainWidth-2, 1))
	m.messages.Width = max(mainWidth-2, 1)
	m.messages.Height = max(body-m.promptPaneHeight()-3, 1)
	m.debug.Width = max(m.width-2, 1)
	m.debug.Height = max(body-3, 1)
}

// window returns the first visible row of a list of n rows, h of them
// visible, so that row sel is shown.
func window(sel, n, h int) int {
	if h <= 0 {
		return 0
	}
	return util.Clamp(sel-h+1, 0, max(n-h, 0))
}

// fit cuts content to w columns and h rows.
func fit(content string, w, h int) string {
	return lipgloss.NewStyle().MaxWidth(max(w, 0)).MaxHeight(max(h, 0)).Render(content)
}

// pane draws a bordered, titled box of exactly w by h cells.
func (m Model) pane(title, content string, focused bool, w, h int) string {
	innerW, innerH := max(w-2, 0), max(h-2, 0)
	body := m.theme.PaneTitle.Render(util.Ellipsize(title, innerW)) + "\n" +
		fit(content, innerW, max(innerH-1, 0))
	return m.theme.PaneStyle(focused, w, h).Render(body)
}

// =============================================================================
// RENDER CACHES
// =============================================================================

// refreshMessages re-renders the active conversation when it changed. A
// newly selected conversation opens at its end; otherwise the viewport
// keeps following the end only if it was there.
func (m *Model) refreshMessages() {
	conv, err := m.app.Store().Active()
	if err != nil {
		return
	}
	key := fmt.Sprintf("%s:%d:%d", conv.ID, len(conv.Messages), m.messages.Width)
	if key == m.messagesKey {
		return
	}

	follow := conv.ID != m.messagesID || m.messages.AtBottom()
	m.messages.SetContent(m.renderConversation(conv, m.messages.Width))
	if follow {
		m.messages.GotoBottom()
	}
	m.messagesID = conv.ID
	m.messagesKey = key
}

// refreshDebug reloads the log pane when the ring changed.
func (m *Model) refreshDebug() {
	ring := m.app.Ring()
	v := ring.Version()
	if v == m.ringVersion {
		return
	}
	follow := m.debug.AtBottom()
	m.debug.SetContent(ring.String())
	if follow {
		m.debug.GotoBottom()
	}
	m.ringVersion = v
}

func (m Model) renderConversation(conv *model.Conversation, width int) string {
	var blocks []string
	if conv.SystemInstructions != "" {
		blocks = append(blocks, m.theme.Muted.Width(width).Render("Instructions: "+conv.SystemInstructions))
	}
	if len(conv.Messages) == 0 {
		blocks = append(blocks, m.theme.Muted.Render("No messages yet."))
	}

	for _, msg := range conv.Messages {
		var label, body string
		switch msg.Role {
		case model.RoleAssistant:
			label = m.theme.AssistantLabel.Render(msg.Author())
			body = m.md.Render(msg.Content, width)
		case model.RoleSystem:
			label = m.theme.SystemLabel.Render(msg.Author())
			body = m.theme.SystemText.Width(width).Render(msg.Content)
		default:
			label = m.theme.UserLabel.Render(msg.Author())
			body = wrap(msg.Content, width)
		}
		blocks = append(blocks, label+"\n"+body)
	}
	return strings.Join(blocks, "\n\n")
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the whole screen.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var body string
	switch m.app.Focus().Tab {
	case focus.TabConfig:
		body = m.viewConfig()
	case focus.TabDebug:
		body = m.viewDebug()
	default:
		body = m.viewChat()
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.viewTabs(), body, m.viewStatus())
}

var tabActions = map[focus.Tab]hotkey.Action{
	focus.TabChat:   hotkey.ViewChatTab,
	focus.TabConfig: hotkey.ViewConfigTab,
	focus.TabDebug:  hotkey.ViewDebugTab,
}

func (m Model) viewTabs() string {
	current := m.app.Focus().Tab
	parts := []string{m.theme.Brand.Render("parrot")}
	for _, tab := range focus.Tabs() {
		label := tab.String()
		if bindings := m.app.Resolver().Bindings(tabActions[tab]); len(bindings) > 0 {
			label = bindings[0].String() + " " + label
		}
		if tab == current {
			parts = append(parts, m.theme.TabActive.Render(label))
		} else {
			parts = append(parts, m.theme.TabInactive.Render(label))
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	return m.theme.TabBar.Width(m.width).MaxHeight(tabBarHeight).Render(bar)
}

func (m Model) viewStatus() string {
	cfg := m.app.Config()
	status := m.app.Status()
	style := m.theme.StatusBar

	switch {
	case m.app.Busy():
		status = styles.LineSpinner.FrameAt(time.Since(m.busySince)) + " " + status
		style = m.theme.StatusBusy
	case strings.HasPrefix(status, app.StatusFailed):
		status = styles.StatusIndicators.Error + " " + status
		style = m.theme.StatusError
	}

	right := cfg.Provider.DisplayName() + " / " + cfg.ModelFor(cfg.Provider)
	leftWidth := max(m.width-2-lipgloss.Width(right)-1, 0)
	line := util.PadRight(util.Ellipsize(status, leftWidth), leftWidth) + " " + right
	return style.Width(m.width).MaxHeight(statusHeight).Render(line)
}

// =============================================================================
// CHAT TAB
// =============================================================================

func (m Model) viewChat() string {
	cf := m.app.Focus().Chat
	body := m.bodyHeight()
	side := m.sidebarWidth()
	mainWidth := m.width - side

	promptH := m.promptPaneHeight()
	messages := m.pane("Messages", m.messages.View(), cf == focus.ChatMessages, mainWidth, body-promptH)
	prompt := m.pane("Prompt", m.prompt.View(), cf == focus.ChatPrompt, mainWidth, promptH)
	right := lipgloss.JoinVertical(lipgloss.Left, messages, prompt)
	if side < 4 {
		return right
	}

	var sidebar string
	if cf == focus.ChatNew {
		sidebar = m.pane("New conversation", m.viewInstructions(side-2, body-3), true, side, body)
	} else {
		sidebar = m.pane("History", m.viewHistory(side-2, body-3), cf == focus.ChatHistory, side, body)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, right)
}

func (m Model) viewHistory(w, h int) string {
	store := m.app.Store()
	convs := store.Conversations()
	active := store.ActiveIndex()

	start := window(active, len(convs), h)
	end := min(start+h, len(convs))
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		lines = append(lines, m.listRow(convs[i].Preview(w-2), i == active, w))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewInstructions(w, h int) string {
	instructions := m.app.Instructions()
	sel := m.app.NewSelection()

	start := window(sel, len(instructions), h)
	end := min(start+h, len(instructions))
	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		instr := instructions[i]
		text := instr.Name + ": " + instr.Preview(w)
		lines = append(lines, m.listRow(util.Ellipsize(text, w-2), i == sel, w))
	}
	return strings.Join(lines, "\n")
}

func (m Model) listRow(text string, selected bool, w int) string {
	if selected {
		return m.theme.ListSelected.Width(w).Render("> " + text)
	}
	return m.theme.ListItem.Render("  " + text)
}

// =============================================================================
// CONFIG TAB
// =============================================================================

func (m Model) viewConfig() string {
	body := m.bodyHeight()
	side := max(m.sidebarWidth(), 16)
	rightWidth := max(m.width-side, 0)

	params := m.viewParams()
	paramsH := strings.Count(params, "\n") + 4
	usage := m.viewUsage()
	usageH := strings.Count(usage, "\n") + 4
	previewH := max(body-paramsH-usageH, 3)

	title := m.app.Focus().Config.Provider().DisplayName() + " settings"
	right := lipgloss.JoinVertical(lipgloss.Left,
		m.pane(title, params, true, rightWidth, paramsH),
		m.pane("Usage", usage, false, rightWidth, usageH),
		m.pane(filepath.Base(m.app.ConfigPath()), m.preview, false, rightWidth, previewH),
	)
	left := m.pane("Providers", m.viewProviders(side-2), true, side, body)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m Model) viewProviders(w int) string {
	f := m.app.Focus()
	active := m.app.Config().Provider

	lines := make([]string, 0, len(focus.Views()))
	for _, v := range focus.Views() {
		name := v.Provider().DisplayName()
		if v.Provider() == active {
			name += " " + m.theme.ProviderMark.Render(styles.StatusIndicators.Active)
		}
		lines = append(lines, m.listRow(name, v == f.Config, w))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewParams() string {
	params := m.app.Params()
	cursor := m.app.ParamCursor()

	lines := make([]string, 0, len(params))
	for i, p := range params {
		name := util.PadRight(p.Name, paramNameWidth)
		if i == cursor {
			lines = append(lines, m.theme.ParamSelected.Render("> "+name)+m.theme.ParamValue.Render(p.Value()))
			continue
		}
		lines = append(lines, m.theme.ParamName.Render("  "+name)+m.theme.ParamValue.Render(p.Value()))
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewUsage() string {
	totals := m.app.Totals()
	if len(totals) == 0 {
		return m.theme.Muted.Render("No requests recorded yet.")
	}

	lines := make([]string, 0, len(totals))
	for _, t := range totals {
		usage := provider.Usage{Prompt: t.PromptTokens, Completion: t.CompletionTokens, Total: t.TotalTokens}
		lines = append(lines, fmt.Sprintf("%s %d requests, %d failed. %s",
			util.PadRight(t.Provider.DisplayName(), providerWidth), t.Requests, t.Failures, usage))
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// DEBUG TAB
// =============================================================================

func (m Model) viewDebug() string {
	title := fmt.Sprintf("Debug log (%d lines)", m.app.Ring().Len())
	return m.pane(title, m.debug.View(), true, m.width, m.bodyHeight())
}
