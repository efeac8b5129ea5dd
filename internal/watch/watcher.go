// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package watch discards pending changes whose files were modified on disk
// outside the tracker.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/jeranaias/redline/internal/tracker"
)

// DefaultDebounce coalesces bursts of file events before acting.
const DefaultDebounce = 500 * time.Millisecond

// Watcher invalidates pending changes on external file modification.
type Watcher struct {
	tracker  *tracker.Tracker
	fsw      *fsnotify.Watcher
	debounce time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	watched map[string]bool      // absolute file path -> tracked
	dirRefs map[string]int       // watched directory -> tracked file count
	pending map[string]time.Time // file path -> last event time

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	started     bool
	done        chan struct{}
}

// New creates a watcher bound to tr. Call Start to begin watching and
// Close to release resources.
func New(tr *tracker.Tracker, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		tracker:  tr,
		fsw:      fsw,
		debounce: debounce,
		logger:   logger,
		watched:  make(map[string]bool),
		dirRefs:  make(map[string]int),
		pending:  make(map[string]time.Time),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}, nil
}

// Start subscribes to the tracker and begins processing file events.
func (w *Watcher) Start() {
	w.started = true
	w.unsubscribe = w.tracker.Subscribe(w.syncWatchSet)
	w.syncWatchSet(w.tracker.GetPendingChanges())
	go w.loop()
}

// Close stops watching and releases the underlying watcher.
func (w *Watcher) Close() error {
	if w.unsubscribe != nil {
		w.unsubscribe()
	}
	w.cancel()
	err := w.fsw.Close()
	if w.started {
		<-w.done
	}
	return err
}

// syncWatchSet reconciles the watch set with the tracker's current
// registry. Runs on every tracker mutation.
func (w *Watcher) syncWatchSet(changes []*tracker.PendingChange) {
	current := make(map[string]bool, len(changes))
	for _, pc := range changes {
		if abs, err := filepath.Abs(pc.Diff.FilePath); err == nil {
			current[abs] = true
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for path := range current {
		if !w.watched[path] {
			w.watched[path] = true
			w.addDirLocked(filepath.Dir(path))
		}
	}
	for path := range w.watched {
		if !current[path] {
			delete(w.watched, path)
			delete(w.pending, path)
			w.removeDirLocked(filepath.Dir(path))
		}
	}
}

// addDirLocked watches the parent directory of a tracked file. Directories
// are watched instead of files so that rename-over writes (the common
// atomic-save pattern in editors) keep producing events.
func (w *Watcher) addDirLocked(dir string) {
	w.dirRefs[dir]++
	if w.dirRefs[dir] == 1 {
		if err := w.fsw.Add(dir); err != nil {
			w.logger.Warn("failed to watch directory",
				zap.String("dir", dir), zap.Error(err))
		}
	}
}

func (w *Watcher) removeDirLocked(dir string) {
	w.dirRefs[dir]--
	if w.dirRefs[dir] <= 0 {
		delete(w.dirRefs, dir)
		_ = w.fsw.Remove(dir)
	}
}

// loop consumes file events and flushes debounced invalidations.
func (w *Watcher) loop() {
	defer close(w.done)

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	const relevant = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove
	if event.Op&relevant == 0 {
		return
	}

	path, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}

	w.mu.Lock()
	if w.watched[path] {
		w.pending[path] = time.Now()
	}
	w.mu.Unlock()
}

// flush discards pending changes whose files have been quiet for a full
// debounce window since their last external event.
func (w *Watcher) flush() {
	now := time.Now()

	w.mu.Lock()
	var stale []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.debounce {
			stale = append(stale, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range stale {
		// Match registered changes by absolute path: callers may have
		// registered a relative one.
		for _, pc := range w.tracker.GetPendingChanges() {
			abs, err := filepath.Abs(pc.Diff.FilePath)
			if err != nil || abs != path {
				continue
			}
			w.logger.Warn("discarding stale pending change: file modified externally",
				zap.String("file", path),
				zap.String("id", pc.Diff.ID))
			w.tracker.DiscardChange(pc.Diff.ID)
		}
	}
}
