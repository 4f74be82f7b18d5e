// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jeranaias/parrot-tui/internal/config"
	"github.com/jeranaias/parrot-tui/internal/focus"
	"github.com/jeranaias/parrot-tui/internal/hotkey"
	"github.com/jeranaias/parrot-tui/internal/model"
	"github.com/jeranaias/parrot-tui/internal/provider"
	"github.com/jeranaias/parrot-tui/internal/session"
	"github.com/jeranaias/parrot-tui/internal/telemetry"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeCompleter struct {
	reply string
	err   error
	ctx   context.Context
	seen  *model.Conversation
}

func (f *fakeCompleter) Provider() model.Provider { return model.ProviderOpenAI }
func (f *fakeCompleter) Model() string            { return "gpt-test" }

func (f *fakeCompleter) Complete(ctx context.Context, conv *model.Conversation) (*provider.Completion, error) {
	f.ctx = ctx
	f.seen = conv
	if f.err != nil {
		return nil, f.err
	}
	return &provider.Completion{
		Message:  model.NewAssistantMessage(model.ProviderOpenAI, f.reply),
		Usage:    provider.Usage{Prompt: 10, Completion: 5, Total: 15},
		Model:    "gpt-test",
		Provider: model.ProviderOpenAI,
		Duration: time.Millisecond,
	}, nil
}

type fakeSaver struct {
	saves int
	last  []*model.Conversation
}

func (f *fakeSaver) Save(convs []*model.Conversation) error {
	f.saves++
	f.last = convs
	return nil
}

type fakeLedger struct {
	records []telemetry.Record
}

func (f *fakeLedger) Record(_ context.Context, r telemetry.Record) error {
	f.records = append(f.records, r)
	return nil
}

func (f *fakeLedger) Totals(context.Context) ([]telemetry.Total, error) {
	if len(f.records) == 0 {
		return nil, nil
	}
	return []telemetry.Total{{Provider: model.ProviderOpenAI, Requests: len(f.records)}}, nil
}

type fakeClipboard struct {
	text    string
	err     error
	command []string
}

func (f *fakeClipboard) SetCommand(cmd []string) { f.command = append([]string(nil), cmd...) }

func (f *fakeClipboard) Copy(text string) error {
	f.text = text
	return f.err
}

type fakeEditor struct {
	text    string
	err     error
	file    string
	command []string
}

func (f *fakeEditor) SetCommand(cmd []string) { f.command = append([]string(nil), cmd...) }

func (f *fakeEditor) EditText(string) (string, error) { return f.text, f.err }
func (f *fakeEditor) EditFile(path string) error {
	f.file = path
	return f.err
}

// =============================================================================
// HARNESS
// =============================================================================

type harness struct {
	app       *App
	completer *fakeCompleter
	saver     *fakeSaver
	ledger    *fakeLedger
	clipboard *fakeClipboard
	editor    *fakeEditor
	logs      *observer.ObservedLogs
	cfg       *config.Config
}

func newHarness(t *testing.T, loaded ...*model.Conversation) *harness {
	t.Helper()

	cfg := config.Default()
	cfg.System.Instructions = []config.Instruction{
		{Name: "Default", Message: "You are helpful."},
		{Name: "Terse", Message: "be terse"},
	}
	core, logs := observer.New(zapcore.DebugLevel)

	h := &harness{
		completer: &fakeCompleter{reply: "hello back"},
		saver:     &fakeSaver{},
		ledger:    &fakeLedger{},
		clipboard: &fakeClipboard{},
		editor:    &fakeEditor{},
		logs:      logs,
		cfg:       cfg,
	}

	a, err := New(Deps{
		Config:     cfg,
		ConfigPath: "/tmp/parrot/config.toml",
		Store:      session.New(loaded, cfg.System.Instructions[0].Message),
		Logger:     zap.New(core),
		Saver:      h.saver,
		Editor:     h.editor,
		Clipboard:  h.clipboard,
		Ledger:     h.ledger,
		NewCompleter: func(context.Context, *config.Config) (provider.Completer, error) {
			return h.completer, nil
		},
		ListModels: func(context.Context, *config.Config, model.Provider) ([]string, error) {
			return []string{"llama3.2:latest", "mistral:latest"}, nil
		},
		LoadConfig: func(string) (*config.Config, error) {
			return config.Default(), nil
		},
	})
	require.NoError(t, err)
	h.app = a
	return h
}

func (h *harness) press(binding string) Outcome {
	return h.app.HandleKey(hotkey.MustParse(binding))
}

func (h *harness) active(t *testing.T) *model.Conversation {
	t.Helper()
	conv, err := h.app.Store().Active()
	require.NoError(t, err)
	return conv
}

func withMessages(texts ...string) *model.Conversation {
	conv := model.NewConversation("sys")
	for _, s := range texts {
		conv.Append(model.NewUserMessage(s))
	}
	return conv
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

func TestNew_InitialState(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, focus.Default(), h.app.Focus())
	assert.Equal(t, "Config file: /tmp/parrot/config.toml", h.app.Status())
	assert.False(t, h.app.Busy())
	assert.Equal(t, 1, h.app.Store().Len())
}

func TestNew_RequiresConfigAndStore(t *testing.T) {
	_, err := New(Deps{})
	assert.Error(t, err)
}

func TestNew_RejectsBadHotkeys(t *testing.T) {
	cfg := config.Default()
	cfg.Hotkeys = map[string][]string{"quit_program": {"bogus q"}}
	_, err := New(Deps{Config: cfg, Store: session.New(nil, "")})
	assert.Error(t, err)
}

// =============================================================================
// SENDING
// =============================================================================

func TestSend_Success(t *testing.T) {
	h := newHarness(t)
	h.press("enter") // Messages -> Prompt
	require.Equal(t, focus.ChatPrompt, h.app.Focus().Chat)
	h.app.SetPrompt("  what is go?  ")

	out := h.press("ctrl s")
	require.NotNil(t, out.Request)
	assert.Equal(t, RequestCompletion, out.Request.Kind)
	assert.True(t, h.app.Busy())
	assert.Equal(t, "", h.app.Prompt())
	assert.Equal(t, focus.ChatMessages, h.app.Focus().Chat)
	assert.Equal(t, 1, h.saver.saves, "user message persisted before the call")

	h.app.Execute(out.Request)

	assert.False(t, h.app.Busy())
	conv := h.active(t)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "what is go?", conv.Messages[0].Content)
	assert.Equal(t, model.RoleAssistant, conv.Messages[1].Role)
	assert.Equal(t, "hello back", conv.Messages[1].Content)
	assert.Equal(t, "AI responded. Tokens: 15 [10 prompt, 5 completion]", h.app.Status())
	assert.Equal(t, 2, h.saver.saves)

	require.Len(t, h.ledger.records, 1)
	assert.False(t, h.ledger.records[0].Failed)
	assert.Equal(t, 15, h.ledger.records[0].TotalTokens)
	assert.Len(t, h.app.Totals(), 1)
}

func TestSend_LoadedConversationsWithoutIDs(t *testing.T) {
	var loaded []*model.Conversation
	require.NoError(t, json.Unmarshal([]byte(`[
		{"system_instructions": "sys", "messages": [{"role": "user", "content": "first"}]},
		{"system_instructions": "sys", "messages": [{"role": "user", "content": "second"}]}
	]`), &loaded))

	h := newHarness(t, loaded...)
	h.press("ctrl o")
	h.press("end")
	require.Equal(t, "second", h.active(t).Preview(0))
	h.press("enter") // History -> Messages
	h.press("enter") // Messages -> Prompt
	h.app.SetPrompt("question for second")

	out := h.press("ctrl s")
	require.NotNil(t, out.Request)
	h.app.Execute(out.Request)

	first, err := h.app.Store().Get(1)
	require.NoError(t, err)
	second, err := h.app.Store().Get(2)
	require.NoError(t, err)
	assert.Len(t, first.Messages, 1, "reply leaked into another conversation")
	require.Len(t, second.Messages, 3)
	assert.Equal(t, "hello back", second.Messages[2].Content)
}

func TestSend_ReplyFollowsRequestNotSelection(t *testing.T) {
	h := newHarness(t, withMessages("older"))
	h.press("enter")
	h.app.SetPrompt("q")
	out := h.press("ctrl s")
	require.NotNil(t, out.Request)
	sent := h.active(t)

	require.NoError(t, h.app.Store().Select(1))
	h.app.Execute(out.Request)

	older, err := h.app.Store().Get(1)
	require.NoError(t, err)
	assert.Len(t, older.Messages, 1)
	require.Len(t, sent.Messages, 2)
	assert.Equal(t, model.RoleAssistant, sent.Messages[1].Role)
}

func TestSend_SnapshotIsIndependent(t *testing.T) {
	h := newHarness(t)
	h.press("enter")
	h.app.SetPrompt("question")
	out := h.press("ctrl s")

	snapshot := out.Request.Conversation
	h.active(t).Append(model.NewSystemMessage("local"))
	assert.Len(t, snapshot.Messages, 1)
}

func TestSend_EmptyPrompt(t *testing.T) {
	h := newHarness(t)
	h.press("enter")
	h.app.SetPrompt(" \n\t ")

	out := h.press("ctrl s")
	assert.Nil(t, out.Request)
	assert.Equal(t, "Cannot send empty message.", h.app.Status())
	assert.True(t, h.active(t).IsEmpty())
	assert.Equal(t, focus.ChatPrompt, h.app.Focus().Chat)
}

func TestSend_TimeoutAppendsOneNote(t *testing.T) {
	h := newHarness(t)
	h.completer.err = &provider.CompletionError{
		Kind:     provider.KindTimeout,
		Provider: model.ProviderOpenAI,
		Message:  "request timed out",
		Cause:    context.DeadlineExceeded,
	}
	h.press("enter")
	h.app.SetPrompt("hello")
	out := h.press("alt enter")
	h.app.Execute(out.Request)

	conv := h.active(t)
	var notes []model.Message
	for _, m := range conv.Messages {
		if m.Role == model.RoleSystem {
			notes = append(notes, m)
		}
	}
	require.Len(t, notes, 1)
	assert.True(t, strings.HasPrefix(notes[0].Content, FailureNotePrefix))
	assert.Contains(t, notes[0].Content, "request timed out")
	assert.Equal(t, StatusFailed, h.app.Status())
	assert.False(t, h.app.Busy())

	require.Len(t, h.ledger.records, 1)
	assert.True(t, h.ledger.records[0].Failed)
	assert.Equal(t, "timeout", h.ledger.records[0].ErrorKind)
	assert.Equal(t, 1, h.logs.FilterMessage("completion failed").Len())

	// Input is accepted again.
	h.press("tab")
	assert.Equal(t, focus.TabConfig, h.app.Focus().Tab)
}

func TestSend_CompleterConstructionFails(t *testing.T) {
	h := newHarness(t)
	h.app.newCompleter = func(context.Context, *config.Config) (provider.Completer, error) {
		return nil, &provider.CompletionError{Kind: provider.KindConfig, Message: "no API key configured for OpenAI"}
	}
	h.press("enter")
	h.app.SetPrompt("hello")

	out := h.press("ctrl s")
	assert.Nil(t, out.Request)
	assert.False(t, h.app.Busy())
	conv := h.active(t)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, FailureNotePrefix+"no API key configured for OpenAI", conv.Messages[1].Content)
	assert.Equal(t, "config", h.ledger.records[0].ErrorKind)
}

func TestBusy_DropsInputExceptQuit(t *testing.T) {
	h := newHarness(t)
	h.press("enter")
	h.app.SetPrompt("hello")
	out := h.press("ctrl s")
	require.True(t, h.app.Busy())

	before := h.app.Focus()
	for _, key := range []string{"tab", "f2", "ctrl n", "a", "enter"} {
		got := h.press(key)
		assert.Equal(t, Outcome{}, got, key)
	}
	assert.Equal(t, before, h.app.Focus())

	got := h.press("ctrl q")
	assert.True(t, got.Quit)
	assert.ErrorIs(t, out.Request.Ctx.Err(), context.Canceled)
}

// =============================================================================
// GLOBAL ACTIONS
// =============================================================================

func TestQuit_FromEveryScope(t *testing.T) {
	h := newHarness(t)
	scopes := []func(){
		func() {},
		func() { h.press("enter") },
		func() { h.press("ctrl n") },
		func() { h.press("ctrl o") },
		func() { h.press("f2") },
		func() { h.press("f2"); h.press("down") },
		func() { h.press("f3") },
	}
	for i, enter := range scopes {
		h.app.focus = focus.Default()
		enter()
		out := h.press("ctrl q")
		assert.True(t, out.Quit, "scope %d (%s)", i, h.app.Focus().Scope())
	}
}

func TestTabs(t *testing.T) {
	h := newHarness(t)
	h.press("f3")
	assert.Equal(t, focus.TabDebug, h.app.Focus().Tab)
	h.press("tab")
	assert.Equal(t, focus.TabChat, h.app.Focus().Tab)
	h.press("shift tab")
	assert.Equal(t, focus.TabDebug, h.app.Focus().Tab)
	h.press("f1")
	assert.Equal(t, focus.TabChat, h.app.Focus().Tab)
}

// =============================================================================
// CHAT SUB-FOCUS
// =============================================================================

func TestPrompt_ForwardsUnclaimedKeys(t *testing.T) {
	h := newHarness(t)

	out := h.app.HandleKey(hotkey.Event{Key: hotkey.CharKey('a')})
	assert.False(t, out.Forward, "messages focus does not take text")

	h.press("enter")
	for _, ev := range []hotkey.Event{
		{Key: hotkey.CharKey('a')},
		hotkey.MustParse("enter"),
		hotkey.MustParse("left"),
		hotkey.MustParse("up"),
	} {
		out := h.app.HandleKey(ev)
		assert.True(t, out.Forward, ev.String())
	}
}

func TestPrompt_ClearAndCancel(t *testing.T) {
	h := newHarness(t)
	h.press("enter")
	h.app.SetPrompt("draft")

	h.press("ctrl l")
	assert.Equal(t, "", h.app.Prompt())

	h.press("esc")
	assert.Equal(t, focus.ChatMessages, h.app.Focus().Chat)
}

func TestNewConversation_ReplacesEmptySlot(t *testing.T) {
	h := newHarness(t, withMessages("old"))
	require.Equal(t, 2, h.app.Store().Len())

	h.press("ctrl n")
	assert.Equal(t, focus.ChatNew, h.app.Focus().Chat)
	h.press("down")
	assert.Equal(t, 1, h.app.NewSelection())
	h.press("down")
	assert.Equal(t, 1, h.app.NewSelection(), "selection clamps at the end")
	h.press("enter")

	assert.Equal(t, 2, h.app.Store().Len(), "empty slot 0 reused")
	assert.Equal(t, 0, h.app.Store().ActiveIndex())
	assert.Equal(t, "be terse", h.active(t).SystemInstructions)
	assert.Equal(t, focus.ChatPrompt, h.app.Focus().Chat)
	empty := 0
	for _, conv := range h.app.Store().Conversations() {
		if conv.IsEmpty() {
			empty++
		}
	}
	assert.Equal(t, 1, empty)
}

func TestHistory_SelectsAndDeletes(t *testing.T) {
	h := newHarness(t, withMessages("a"), withMessages("b"))
	h.press("ctrl o")
	assert.Equal(t, focus.ChatHistory, h.app.Focus().Chat)

	h.press("end")
	assert.Equal(t, 2, h.app.Store().ActiveIndex())
	h.press("up")
	assert.Equal(t, 1, h.app.Store().ActiveIndex())
	assert.Equal(t, "a", h.active(t).Preview(0))

	h.press("ctrl l")
	assert.Equal(t, 2, h.app.Store().Len())
	assert.Equal(t, "Deleted conversation.", h.app.Status())
	assert.Equal(t, 1, h.saver.saves)
	assert.Equal(t, "b", h.active(t).Preview(0))

	h.press("enter")
	assert.Equal(t, focus.ChatMessages, h.app.Focus().Chat)
}

func TestHistory_CannotDeleteLast(t *testing.T) {
	h := newHarness(t)
	h.press("ctrl o")
	h.press("ctrl l")
	assert.Equal(t, "Cannot delete the last conversation.", h.app.Status())
	assert.Equal(t, 1, h.app.Store().Len())
}

func TestMessages_ScrollAndCopy(t *testing.T) {
	h := newHarness(t, withMessages("hi"))
	require.NoError(t, h.app.Store().Select(1))

	assert.Equal(t, ScrollPageUp, h.press("pgup").Scroll)
	assert.Equal(t, ScrollLineDown, h.press("down").Scroll)
	assert.Equal(t, ScrollBottom, h.press("end").Scroll)

	h.press("ctrl y")
	assert.Equal(t, "User: hi\n", h.clipboard.text)
	assert.Equal(t, "Copied conversation to clipboard.", h.app.Status())

	h.clipboard.err = errors.New("no display")
	h.press("ctrl y")
	assert.Contains(t, h.app.Status(), "no display")
}

func TestEditPrompt(t *testing.T) {
	h := newHarness(t)
	h.editor.text = "from the editor"

	out := h.press("ctrl e")
	require.NotNil(t, out.Request)
	assert.Equal(t, RequestEditPrompt, out.Request.Kind)

	h.app.Execute(out.Request)
	assert.Equal(t, "from the editor", h.app.Prompt())
	assert.Equal(t, focus.ChatPrompt, h.app.Focus().Chat)

	h.editor.err = errors.New("exit status 1")
	h.app.Execute(out.Request)
	assert.Equal(t, "from the editor", h.app.Prompt(), "failed edit keeps the prompt")
	assert.Contains(t, h.app.Status(), "Editor failed")
}

// =============================================================================
// CONFIG AND DEBUG TABS
// =============================================================================

func TestConfig_ViewsParamsAndProvider(t *testing.T) {
	h := newHarness(t)
	h.press("f2")

	h.press("down")
	assert.Equal(t, focus.ConfigAnthropic, h.app.Focus().Config)
	h.press("up")
	h.press("up")
	assert.Equal(t, focus.ConfigOllama, h.app.Focus().Config)

	h.press("enter")
	assert.Equal(t, model.ProviderOllama, h.app.Config().Provider)

	before := h.app.Config().Ollama.Temperature.Value
	h.press("pgdown") // cursor to temperature
	assert.Equal(t, 1, h.app.ParamCursor())
	h.press("right")
	assert.InDelta(t, before+0.1, h.app.Config().Ollama.Temperature.Value, 1e-9)
	assert.Equal(t, "temperature = 0.9", h.app.Status())
	h.press("left")
	h.press("left")
	assert.Equal(t, "temperature = 0.7", h.app.Status())

	h.press("esc")
	assert.Equal(t, focus.TabChat, h.app.Focus().Tab)
}

func TestConfig_ModelCycle(t *testing.T) {
	h := newHarness(t)
	h.press("f2")
	models := h.app.Config().OpenAI.Models
	require.Greater(t, len(models), 1)

	h.press("right")
	assert.Equal(t, models[1], h.app.Config().OpenAI.Model)
	h.press("left")
	h.press("left")
	assert.Equal(t, models[len(models)-1], h.app.Config().OpenAI.Model)
}

func TestConfig_RefreshOllamaModels(t *testing.T) {
	h := newHarness(t)
	h.press("f2")
	h.press("up") // wraps to Ollama

	out := h.press("f5")
	require.NotNil(t, out.Request)
	assert.Equal(t, RequestModels, out.Request.Kind)
	assert.True(t, strings.HasPrefix(h.app.Status(), "Reloaded config file"))

	h.app.Execute(out.Request)
	assert.Equal(t, []string{"llama3.2:latest", "mistral:latest"}, h.app.Config().Ollama.Models)
	assert.Equal(t, "llama3.2:latest", h.app.Config().Ollama.Model, "uninstalled selection replaced")
	assert.Equal(t, "Reloaded models for Ollama.", h.app.Status())
}

func TestReload_FailureKeepsConfig(t *testing.T) {
	h := newHarness(t)
	old := h.app.Config()
	h.app.loadConfig = func(string) (*config.Config, error) {
		return nil, &config.Error{Path: "config.toml", Err: errors.New("bad toml")}
	}

	assert.False(t, h.app.ReloadConfig())
	assert.Same(t, old, h.app.Config())
	assert.Contains(t, h.app.Status(), "Config reload failed")
	assert.Equal(t, 1, h.logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestReload_UpdatesGatewayCommands(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, h.cfg.Commands.Editor, h.editor.command)

	h.app.loadConfig = func(string) (*config.Config, error) {
		cfg := config.Default()
		cfg.Commands.Editor = []string{"nano", "-w"}
		cfg.Commands.Copy = []string{"wl-copy"}
		return cfg, nil
	}
	require.True(t, h.app.ReloadConfig())
	assert.Equal(t, []string{"nano", "-w"}, h.editor.command)
	assert.Equal(t, []string{"wl-copy"}, h.clipboard.command)
}

func TestConfig_RefreshOllamaNotRunning(t *testing.T) {
	h := newHarness(t)
	h.app.listModels = func(context.Context, *config.Config, model.Provider) ([]string, error) {
		return nil, &provider.CompletionError{
			Kind:     provider.KindNetwork,
			Provider: model.ProviderOllama,
			Message:  "Ollama is not running",
		}
	}
	h.press("f2")
	h.press("up")

	out := h.press("f5")
	require.NotNil(t, out.Request)
	h.app.Execute(out.Request)
	assert.Equal(t, "Ollama is not running at "+h.app.Config().Ollama.URL+".", h.app.Status())
}

func TestReload_RebuildsHotkeys(t *testing.T) {
	h := newHarness(t)
	h.app.loadConfig = func(string) (*config.Config, error) {
		cfg := config.Default()
		cfg.Hotkeys = map[string][]string{"quit_program": {"ctrl x"}}
		return cfg, nil
	}

	require.True(t, h.app.ReloadConfig())
	assert.False(t, h.press("ctrl q").Quit)
	assert.True(t, h.press("ctrl x").Quit)
	assert.Equal(t, "Reloaded config file: /tmp/parrot/config.toml", h.app.Status())
}

func TestEditConfig_Reloads(t *testing.T) {
	h := newHarness(t)
	h.press("f2")
	out := h.press("ctrl e")
	require.NotNil(t, out.Request)

	h.app.Execute(out.Request)
	assert.Equal(t, "/tmp/parrot/config.toml", h.editor.file)
	assert.True(t, strings.HasPrefix(h.app.Status(), "Reloaded config file"))
}

func TestDebug_ClearAndCopy(t *testing.T) {
	h := newHarness(t)
	_, _ = h.app.Ring().Write([]byte("line one\nline two\n"))
	h.press("f3")

	h.press("ctrl y")
	assert.Equal(t, "line one\nline two", h.clipboard.text)

	h.press("ctrl l")
	assert.Equal(t, 0, h.app.Ring().Len())
	assert.Equal(t, ScrollTop, h.press("home").Scroll)
}

func TestUnhandledActionLogged(t *testing.T) {
	h := newHarness(t)
	h.press("f3")
	h.press("right") // Increment means nothing on the debug tab

	entries := h.logs.FilterMessage("no handler for action").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "debug", entries[0].ContextMap()["scope"])
	assert.Equal(t, "increment", entries[0].ContextMap()["action"])
}

func TestShutdown_Saves(t *testing.T) {
	h := newHarness(t, withMessages("keep me"))
	h.app.Shutdown()
	require.Equal(t, 1, h.saver.saves)
	assert.Len(t, h.saver.last, 1)
}
