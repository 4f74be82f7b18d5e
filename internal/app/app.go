// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/parrot-tui/internal/config"
	"github.com/jeranaias/parrot-tui/internal/focus"
	"github.com/jeranaias/parrot-tui/internal/hotkey"
	"github.com/jeranaias/parrot-tui/internal/logging"
	"github.com/jeranaias/parrot-tui/internal/model"
	"github.com/jeranaias/parrot-tui/internal/provider"
	"github.com/jeranaias/parrot-tui/internal/session"
	"github.com/jeranaias/parrot-tui/internal/telemetry"
	"github.com/jeranaias/parrot-tui/internal/util"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Saver persists the conversations worth keeping.
type Saver interface {
	Save(convs []*model.Conversation) error
}

// Editor edits text or files in an external program.
type Editor interface {
	EditText(initial string) (string, error)
	EditFile(path string) error
}

// Clipboard receives copied text.
type Clipboard interface {
	Copy(text string) error
}

// CommandSetter is implemented by an Editor or Clipboard that runs a command
// named in the config. The App pushes the current command at construction
// and after every reload.
type CommandSetter interface {
	SetCommand(cmd []string)
}

// UsageLedger records completion requests.
type UsageLedger interface {
	Record(ctx context.Context, r telemetry.Record) error
	Totals(ctx context.Context) ([]telemetry.Total, error)
}

// CompleterFactory builds the completer for the configured provider.
type CompleterFactory func(ctx context.Context, cfg *config.Config) (provider.Completer, error)

// ModelLister returns the models available for a provider.
type ModelLister func(ctx context.Context, cfg *config.Config, p model.Provider) ([]string, error)

// ConfigLoader reads the config file.
type ConfigLoader func(path string) (*config.Config, error)

// Deps are the collaborators of an App. Config and Store are required. A nil
// Saver, Editor, Clipboard or Ledger disables that feature; nil functions
// fall back to the provider and config packages.
type Deps struct {
	Config     *config.Config
	ConfigPath string
	Store      *session.Store
	Logger     *zap.Logger
	Ring       *logging.Ring

	Saver     Saver
	Editor    Editor
	Clipboard Clipboard
	Ledger    UsageLedger

	NewCompleter CompleterFactory
	ListModels   ModelLister
	LoadConfig   ConfigLoader
}

// =============================================================================
// APP
// =============================================================================

// ledgerTimeout bounds a usage ledger write or query.
const ledgerTimeout = 2 * time.Second

// App is the aggregate the dispatch loop drives. It is not safe for
// concurrent use: every method runs on the loop goroutine.
type App struct {
	cfg        *config.Config
	configPath string
	store      *session.Store
	resolver   *hotkey.Resolver
	focus      focus.Focus
	log        *zap.Logger
	ring       *logging.Ring

	saver     Saver
	editor    Editor
	clipboard Clipboard
	ledger    UsageLedger

	newCompleter CompleterFactory
	listModels   ModelLister
	loadConfig   ConfigLoader

	prompt       string
	status       string
	newSelection int
	paramCursor  int
	totals       []telemetry.Total

	busy   bool
	cancel context.CancelFunc
}

// New builds an App. The hotkey resolver is built from the config's
// overrides, which Load has already validated.
func New(deps Deps) (*App, error) {
	if deps.Config == nil || deps.Store == nil {
		return nil, errors.New("app: config and store are required")
	}
	overrides, err := deps.Config.HotkeyOverrides()
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	a := &App{
		cfg:          deps.Config,
		configPath:   deps.ConfigPath,
		store:        deps.Store,
		resolver:     hotkey.NewResolver(overrides),
		focus:        focus.Default(),
		log:          deps.Logger,
		ring:         deps.Ring,
		saver:        deps.Saver,
		editor:       deps.Editor,
		clipboard:    deps.Clipboard,
		ledger:       deps.Ledger,
		newCompleter: deps.NewCompleter,
		listModels:   deps.ListModels,
		loadConfig:   deps.LoadConfig,
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	if a.ring == nil {
		a.ring = logging.NewRing(deps.Config.UI.LogCapacity)
	}
	if a.newCompleter == nil {
		a.newCompleter = provider.New
	}
	if a.listModels == nil {
		a.listModels = provider.Models
	}
	if a.loadConfig == nil {
		a.loadConfig = config.Load
	}

	a.logConflicts()
	a.applyCommands()
	a.refreshTotals()
	a.status = "Config file: " + a.configPath
	a.log.Info("app initialized",
		zap.String("provider", a.cfg.Provider.String()),
		zap.Int("conversations", a.store.Len()))
	return a, nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

func (a *App) Config() *config.Config     { return a.cfg }
func (a *App) ConfigPath() string         { return a.configPath }
func (a *App) Store() *session.Store      { return a.store }
func (a *App) Focus() focus.Focus         { return a.focus }
func (a *App) Resolver() *hotkey.Resolver { return a.resolver }
func (a *App) Ring() *logging.Ring        { return a.ring }
func (a *App) Status() string             { return a.status }
func (a *App) Busy() bool                 { return a.busy }
func (a *App) Prompt() string             { return a.prompt }
func (a *App) NewSelection() int          { return a.newSelection }
func (a *App) ParamCursor() int           { return a.paramCursor }

// Totals returns the per-provider usage totals from the ledger.
func (a *App) Totals() []telemetry.Total { return a.totals }

// SetPrompt records the prompt buffer after the UI edited it.
func (a *App) SetPrompt(text string) { a.prompt = text }

// Instructions returns the system instructions offered for new conversations.
func (a *App) Instructions() []config.Instruction {
	return a.cfg.System.Instructions
}

// Params returns the adjustable settings shown in the current config view.
func (a *App) Params() []config.Param {
	return a.cfg.Params(a.focus.Config.Provider())
}

// =============================================================================
// STATUS AND LOGGING
// =============================================================================

func (a *App) setStatus(msg string) {
	a.status = util.FirstLine(msg)
}

// fail logs err and puts a one-line summary on the status line.
func (a *App) fail(msg string, err error) {
	a.log.Error(msg, zap.Error(err))
	a.setStatus(msg + ": " + err.Error())
}

// applyCommands hands the configured editor and copy commands to the
// collaborators that run them.
func (a *App) applyCommands() {
	if s, ok := a.editor.(CommandSetter); ok {
		s.SetCommand(a.cfg.Commands.Editor)
	}
	if s, ok := a.clipboard.(CommandSetter); ok {
		s.SetCommand(a.cfg.Commands.Copy)
	}
}

func (a *App) logConflicts() {
	for _, c := range a.resolver.Conflicts() {
		a.log.Warn("hotkey bound to two actions",
			zap.String("key", c.Event.String()),
			zap.String("kept", c.Winner.String()),
			zap.String("dropped", c.Loser.String()))
	}
}

// =============================================================================
// PERSISTENCE AND USAGE
// =============================================================================

// persist writes the conversations. Failures are reported, never fatal.
func (a *App) persist() {
	if a.saver == nil {
		return
	}
	if err := a.saver.Save(a.store.Persistable()); err != nil {
		a.fail("Failed to save conversations", err)
	}
}

func (a *App) recordUsage(r telemetry.Record) {
	if a.ledger == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), ledgerTimeout)
	defer cancel()
	if err := a.ledger.Record(ctx, r); err != nil {
		a.log.Warn("usage ledger write failed", zap.Error(err))
		return
	}
	a.refreshTotals()
}

func (a *App) refreshTotals() {
	if a.ledger == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), ledgerTimeout)
	defer cancel()
	totals, err := a.ledger.Totals(ctx)
	if err != nil {
		a.log.Warn("usage ledger query failed", zap.Error(err))
		return
	}
	a.totals = totals
}

// Shutdown cancels an in-flight completion and saves the conversations.
func (a *App) Shutdown() {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.persist()
	a.log.Info("app shut down")
}
