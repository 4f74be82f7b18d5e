// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"
)

// =============================================================================
// CONFIG FILE WATCHER
// =============================================================================

// WatcherOptions tunes a Watcher. Zero values select the defaults.
type WatcherOptions struct {
	// Debounce is how long the file must be quiet before a change is
	// reported. Editors write in bursts.
	Debounce time.Duration

	// MinInterval is the minimum time between two reports.
	MinInterval time.Duration

	// OnError receives watcher errors. Optional.
	OnError func(error)
}

const (
	defaultDebounce    = 250 * time.Millisecond
	defaultMinInterval = time.Second
	pollInterval       = 50 * time.Millisecond
)

// Watcher reports changes to a single config file. The parent directory is
// watched so that editors replacing the file by rename are seen.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	limiter *rate.Limiter
	opts    WatcherOptions

	events chan struct{}

	mu      sync.Mutex
	pending time.Time // zero when nothing is pending

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher starts watching path.
func NewWatcher(path string, opts WatcherOptions) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = defaultMinInterval
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		path:    abs,
		watcher: fw,
		limiter: rate.NewLimiter(rate.Every(opts.MinInterval), 1),
		opts:    opts,
		events:  make(chan struct{}, 1),
		ctx:     ctx,
		cancel:  cancel,
	}

	w.wg.Add(2)
	go w.processEvents()
	go w.processPending()

	return w, nil
}

// Events delivers one value per settled change. Changes arriving while a
// value is still unread are coalesced into it.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Path returns the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Close stops the watcher and waits for its goroutines.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			w.pending = time.Now()
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.opts.OnError != nil {
				w.opts.OnError(err)
			}
		}
	}
}

func (w *Watcher) processPending() {
	defer w.wg.Done()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case now := <-ticker.C:
			w.mu.Lock()
			ready := !w.pending.IsZero() && now.Sub(w.pending) >= w.opts.Debounce
			// A rate-limited change stays pending and is retried next tick.
			if ready && w.limiter.AllowN(now, 1) {
				w.pending = time.Time{}
			} else {
				ready = false
			}
			w.mu.Unlock()

			if ready {
				select {
				case w.events <- struct{}{}:
				default:
				}
			}
		}
	}
}
