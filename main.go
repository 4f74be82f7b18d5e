// parrot - a terminal client for chatting with LLM providers.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/jeranaias/parrot-tui/internal/app"
	"github.com/jeranaias/parrot-tui/internal/config"
	"github.com/jeranaias/parrot-tui/internal/gateway"
	"github.com/jeranaias/parrot-tui/internal/logging"
	"github.com/jeranaias/parrot-tui/internal/session"
	"github.com/jeranaias/parrot-tui/internal/storage"
	"github.com/jeranaias/parrot-tui/internal/telemetry"
	"github.com/jeranaias/parrot-tui/internal/ui"
	"github.com/jeranaias/parrot-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// envDebug lowers the log file level to debug when set.
const envDebug = "PARROT_DEBUG"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the components together and blocks until the TUI exits.
func run() error {
	// =========================================================================
	// CONFIG
	// =========================================================================

	paths, err := config.ResolvePaths()
	if err != nil {
		return err
	}
	if err := paths.Ensure(); err != nil {
		return err
	}
	cfgPath := paths.ConfigFile()
	created, err := config.EnsureConfigFile(cfgPath)
	if err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("parrot must be run in an interactive terminal")
	}

	// =========================================================================
	// DATA DIRECTORY
	// =========================================================================

	lock, err := storage.Acquire(paths.LockFile())
	if err != nil {
		return err
	}
	defer lock.Release()

	logger, err := logging.New(logging.Options{
		Ring:      logging.NewRing(cfg.UI.LogCapacity),
		FilePath:  paths.LogFile(),
		FileLevel: zapcore.InfoLevel,
		Debug:     os.Getenv(envDebug) != "",
	})
	if err != nil {
		return err
	}
	defer logger.Close()

	log := logger.Logger
	log.Info("parrot starting",
		zap.String("version", Version),
		zap.String("commit", GitCommit),
		zap.String("built", BuildDate),
		zap.String("config", cfgPath),
		zap.String("data", paths.DataDir))
	if created {
		log.Info("wrote default config file", zap.String("path", cfgPath))
	}
	for _, w := range cfg.Warnings {
		log.Warn(w, zap.String("path", cfgPath))
	}

	convFile := storage.NewConversationFile(paths.ConversationsFile())
	loaded, err := convFile.Load()
	if err != nil {
		return err
	}
	store := session.New(loaded, cfg.System.Instructions[0].Message)

	ledger, err := telemetry.Open(paths.UsageDB())
	if err != nil {
		log.Warn("usage ledger unavailable", zap.Error(err))
	} else {
		defer ledger.Close()
	}

	// =========================================================================
	// APP
	// =========================================================================

	// The App hands both collaborators their commands, now and on reload.
	editor := &gateway.Editor{ScratchPath: paths.MessageFile()}
	deps := app.Deps{
		Config:     cfg,
		ConfigPath: cfgPath,
		Store:      store,
		Logger:     log,
		Ring:       logger.Ring,
		Saver:      convFile,
		Editor:     editor,
		Clipboard:  &gateway.Clipboard{},
	}
	if ledger != nil {
		deps.Ledger = ledger
	}
	a, err := app.New(deps)
	if err != nil {
		return err
	}
	defer a.Shutdown()

	var watcher *config.Watcher
	if cfg.UI.WatchConfig {
		watcher, err = config.NewWatcher(cfgPath, config.WatcherOptions{
			OnError: func(err error) { log.Warn("config watcher", zap.Error(err)) },
		})
		if err != nil {
			log.Warn("config watch disabled", zap.Error(err))
		} else {
			defer watcher.Close()
		}
	}

	// =========================================================================
	// TUI
	// =========================================================================

	m := ui.New(ui.Options{
		App:     a,
		Editor:  editor,
		Watcher: watcher,
		Theme:   styles.NewTheme(),
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running parrot: %w", err)
	}
	return nil
}
