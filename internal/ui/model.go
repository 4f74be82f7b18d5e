// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/parrot-tui/internal/app"
	"github.com/jeranaias/parrot-tui/internal/config"
	"github.com/jeranaias/parrot-tui/internal/focus"
	"github.com/jeranaias/parrot-tui/internal/gateway"
	"github.com/jeranaias/parrot-tui/internal/ui/styles"
)

// defaultFrameInterval is used when the config holds no usable frame_ms.
const defaultFrameInterval = 50 * time.Millisecond

// =============================================================================
// MESSAGES
// =============================================================================

// frameMsg is the redraw tick.
type frameMsg time.Time

// resultMsg carries a finished gateway request back to the loop.
type resultMsg struct {
	res app.Result
}

// editorDoneMsg is sent when an external editor exits.
type editorDoneMsg struct {
	kind app.RequestKind
	text string
	err  error
}

// configChangedMsg is sent when the watcher sees the config file change.
type configChangedMsg struct{}

// =============================================================================
// MODEL
// =============================================================================

// Options configures the terminal front end. App is required.
type Options struct {
	App *app.App

	// Editor runs the external editor with the terminal handed over.
	Editor *gateway.Editor

	// Watcher, when set, triggers a config reload on every settled change.
	Watcher *config.Watcher

	Theme *styles.Theme
}

// Model is the bubbletea model. It owns only presentation state; everything
// else lives in the App and is changed through it.
type Model struct {
	app     *app.App
	editor  *gateway.Editor
	watcher *config.Watcher
	theme   *styles.Theme
	md      *markdown

	width  int
	height int

	prompt   textarea.Model
	messages viewport.Model
	debug    viewport.Model

	// Render caches.
	messagesID  string
	messagesKey string
	ringVersion uint64
	cfgSeen     *config.Config
	preview     string

	busySince time.Time
}

// New creates the front end model.
func New(opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}

	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.SetValue(opts.App.Prompt())

	m := Model{
		app:      opts.App,
		editor:   opts.Editor,
		watcher:  opts.Watcher,
		theme:    theme,
		md:       newMarkdown(theme.IsDark),
		prompt:   ta,
		messages: viewport.New(0, 0),
		debug:    viewport.New(0, 0),
	}
	m.syncConfig()
	return m
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the frame tick and the config watch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.tick(), m.waitForConfigChange())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case frameMsg:
		m.refreshDebug()
		return m, m.tick()

	case resultMsg:
		return m.handleResult(msg.res)

	case editorDoneMsg:
		return m.handleResult(app.Result{Kind: msg.kind, Text: msg.text, Err: msg.err})

	case configChangedMsg:
		m.app.ReloadConfig()
		cmd := m.sync()
		return m, tea.Batch(cmd, m.waitForConfigChange())

	default:
		// Cursor blink and similar widget messages.
		if m.prompt.Focused() {
			var cmd tea.Cmd
			m.prompt, cmd = m.prompt.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.app.HandleNonKey(fmt.Sprintf("resize %dx%d", msg.Width, msg.Height))

	m.layout()
	m.messagesKey = ""
	m.refreshMessages()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ev, ok := KeyEvent(msg)
	if !ok {
		if focus.AcceptsText(m.app.Focus().Scope()) && !m.app.Busy() {
			return m, m.forward(msg)
		}
		return m, nil
	}

	out := m.app.HandleKey(ev)
	if out.Quit {
		return m, tea.Quit
	}

	var cmds []tea.Cmd
	if out.Forward {
		cmds = append(cmds, m.forward(msg))
	}
	cmds = append(cmds, m.sync())
	m.scroll(out.Scroll)

	if out.Request != nil {
		if out.Request.Kind == app.RequestCompletion {
			m.busySince = time.Now()
		}
		cmds = append(cmds, m.run(out.Request))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleResult(res app.Result) (tea.Model, tea.Cmd) {
	m.app.Apply(res)
	cmd := m.sync()
	if res.Kind == app.RequestCompletion {
		m.messages.GotoBottom()
	}
	return m, cmd
}

// forward hands a raw key to the prompt and mirrors the text into the App.
func (m *Model) forward(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	m.app.SetPrompt(m.prompt.Value())
	return cmd
}

// sync pulls App state into the widgets after anything changed it.
func (m *Model) sync() tea.Cmd {
	if m.prompt.Value() != m.app.Prompt() {
		m.prompt.SetValue(m.app.Prompt())
	}
	m.syncConfig()
	m.refreshMessages()
	m.refreshDebug()

	if focus.AcceptsText(m.app.Focus().Scope()) && !m.app.Busy() {
		return m.prompt.Focus()
	}
	m.prompt.Blur()
	return nil
}

// syncConfig re-reads the preview and re-lays out after the App swapped
// its config.
func (m *Model) syncConfig() {
	cfg := m.app.Config()
	if cfg == m.cfgSeen {
		return
	}
	m.cfgSeen = cfg
	m.prompt.SetHeight(max(cfg.UI.PromptHeight, 1))
	m.loadPreview()
	m.layout()
}

func (m *Model) loadPreview() {
	data, err := os.ReadFile(m.app.ConfigPath())
	if err != nil {
		m.preview = m.theme.Muted.Render("(config file unreadable: " + err.Error() + ")")
		return
	}
	m.preview = highlightTOML(string(data), m.theme.IsDark)
}

func (m *Model) scroll(s app.Scroll) {
	vp := &m.messages
	if m.app.Focus().Tab == focus.TabDebug {
		vp = &m.debug
	}
	switch s {
	case app.ScrollLineUp:
		vp.LineUp(1)
	case app.ScrollLineDown:
		vp.LineDown(1)
	case app.ScrollPageUp:
		vp.ViewUp()
	case app.ScrollPageDown:
		vp.ViewDown()
	case app.ScrollTop:
		vp.GotoTop()
	case app.ScrollBottom:
		vp.GotoBottom()
	}
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) tick() tea.Cmd {
	interval := m.app.Config().UI.FrameInterval()
	if interval <= 0 {
		interval = defaultFrameInterval
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

func (m Model) waitForConfigChange() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	events := m.watcher.Events()
	return func() tea.Msg {
		if _, ok := <-events; !ok {
			return nil
		}
		return configChangedMsg{}
	}
}

// run turns a Request into a command. Completions and model listings run
// off the loop; editors take over the terminal.
func (m Model) run(req *app.Request) tea.Cmd {
	switch req.Kind {
	case app.RequestEditPrompt:
		return m.editPrompt(req.Text)
	case app.RequestEditConfig:
		return m.editConfig(req.Path)
	}
	a := m.app
	return func() tea.Msg {
		return resultMsg{res: a.Run(req)}
	}
}

func (m Model) editPrompt(text string) tea.Cmd {
	done := func(text string, err error) tea.Cmd {
		return func() tea.Msg {
			return editorDoneMsg{kind: app.RequestEditPrompt, text: text, err: err}
		}
	}
	if m.editor == nil {
		return done("", gateway.ErrNoEditor)
	}
	if err := m.editor.Prepare(text); err != nil {
		return done("", err)
	}
	cmd, err := m.editor.ScratchCommand()
	if err != nil {
		return done("", err)
	}

	ed := m.editor
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		if err != nil {
			return editorDoneMsg{
				kind: app.RequestEditPrompt,
				err:  &gateway.EditorError{Op: "run", Err: err},
			}
		}
		text, err := ed.Finish()
		return editorDoneMsg{kind: app.RequestEditPrompt, text: text, err: err}
	})
}

func (m Model) editConfig(path string) tea.Cmd {
	fail := func(err error) tea.Cmd {
		return func() tea.Msg {
			return editorDoneMsg{kind: app.RequestEditConfig, err: err}
		}
	}
	if m.editor == nil {
		return fail(gateway.ErrNoEditor)
	}
	cmd, err := m.editor.FileCommand(path)
	if err != nil {
		return fail(err)
	}
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		if err != nil {
			err = &gateway.EditorError{Op: "run", Err: err}
		}
		return editorDoneMsg{kind: app.RequestEditConfig, err: err}
	})
}
