// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tracker owns the registry of in-flight file diffs awaiting
// accept/reject/apply decisions.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/redline/internal/diff"
)

// ErrNotFound is returned by ApplyChanges when the referenced diff id is
// not registered. The convenience mutations treat the same condition as a
// silent no-op instead; see the package documentation.
var ErrNotFound = errors.New("pending change not found")

// =============================================================================
// TYPES
// =============================================================================

// PendingChange wraps a registered FileDiff. The tracker owns the wrapped
// diff exclusively until ApplyChanges or DiscardChange removes it; callers
// receiving PendingChange values (from getters or subscriptions) must treat
// them as read-only snapshots and mutate only through tracker operations.
type PendingChange struct {
	Diff *diff.FileDiff
}

// Recorder receives successfully applied diffs, e.g. for journaling.
type Recorder interface {
	RecordApplied(d *diff.FileDiff) error
}

// Subscriber receives the full ordered pending-change list after every
// registry mutation.
type Subscriber func(changes []*PendingChange)

// Options configures a Tracker.
type Options struct {
	// DiffOptions tunes diff computation for AddChange.
	DiffOptions diff.Options

	// Sink receives reconstructed content on ApplyChanges.
	// Defaults to a FileSink writing atomically with mode 0644.
	Sink WriteSink

	// Recorder, if set, is notified of every successfully applied diff.
	Recorder Recorder

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// Tracker is the stateful registry of pending changes.
type Tracker struct {
	// mu serializes all operations, including the sink write during
	// ApplyChanges. Hunk and diff status updates span multiple fields.
	mu sync.Mutex

	changes map[string]*PendingChange
	order   []string // insertion order of diff ids

	subscribers map[int]Subscriber
	nextSubID   int

	diffOpts diff.Options
	sink     WriteSink
	recorder Recorder
	logger   *zap.Logger
}

// New creates a tracker with default options.
func New() *Tracker {
	return NewWithOptions(Options{})
}

// NewWithOptions creates a tracker with custom options.
func NewWithOptions(opts Options) *Tracker {
	if opts.Sink == nil {
		opts.Sink = FileSink{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.DiffOptions == (diff.Options{}) {
		opts.DiffOptions = diff.DefaultOptions()
	}
	return &Tracker{
		changes:     make(map[string]*PendingChange),
		subscribers: make(map[int]Subscriber),
		diffOpts:    opts.DiffOptions,
		sink:        opts.Sink,
		recorder:    opts.Recorder,
		logger:      opts.Logger,
	}
}

// =============================================================================
// REGISTRATION
// =============================================================================

// AddChange computes the diff between originalContent and modifiedContent,
// stamps it with filePath and provenance metadata, registers it and returns
// it. Subscribers are notified.
func (t *Tracker) AddChange(filePath, originalContent, modifiedContent, source, description string) *diff.FileDiff {
	d := diff.Compute(originalContent, modifiedContent, t.diffOpts)
	d.FilePath = filePath
	d.Source = source
	d.Description = description

	t.mu.Lock()
	t.changes[d.ID] = &PendingChange{Diff: d}
	t.order = append(t.order, d.ID)
	subs, snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.logger.Debug("change registered",
		zap.String("id", d.ID),
		zap.String("file", filePath),
		zap.Int("hunks", len(d.Hunks)))

	deliver(subs, snapshot)
	return d
}

// GetPendingChanges returns the registered changes in insertion order.
func (t *Tracker) GetPendingChanges() []*PendingChange {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pendingLocked()
}

// GetChangeForFile returns the first registered change for filePath, or nil.
func (t *Tracker) GetChangeForFile(filePath string) *PendingChange {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, id := range t.order {
		if pc := t.changes[id]; pc != nil && pc.Diff.FilePath == filePath {
			return pc
		}
	}
	return nil
}

// GetPendingCount returns the number of registered diffs still awaiting a
// decision, i.e. those whose status is pending or partially accepted.
// Fully accepted or fully rejected diffs are resolved but uncommitted and
// are not counted.
func (t *Tracker) GetPendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	count := 0
	for _, pc := range t.changes {
		switch pc.Diff.Status {
		case diff.StatusPending, diff.StatusPartiallyAccepted:
			count++
		}
	}
	return count
}

// =============================================================================
// HUNK STATE MACHINE
// =============================================================================

// AcceptHunk marks the named hunk accepted and re-derives the diff status.
// No-op if diffID or hunkID is unknown. Both decisions are reversible by
// calling the opposite operation.
func (t *Tracker) AcceptHunk(diffID, hunkID string) {
	t.setHunkStatus(diffID, hunkID, diff.HunkAccepted)
}

// RejectHunk marks the named hunk rejected and re-derives the diff status.
// No-op if diffID or hunkID is unknown.
func (t *Tracker) RejectHunk(diffID, hunkID string) {
	t.setHunkStatus(diffID, hunkID, diff.HunkRejected)
}

func (t *Tracker) setHunkStatus(diffID, hunkID string, status diff.HunkStatus) {
	t.mu.Lock()
	pc, ok := t.changes[diffID]
	if !ok {
		t.mu.Unlock()
		return
	}
	h := pc.Diff.Hunk(hunkID)
	if h == nil {
		t.mu.Unlock()
		return
	}

	h.Status = status
	pc.Diff.Status = diff.DeriveStatus(pc.Diff.Hunks)
	subs, snapshot := t.snapshotLocked()
	t.mu.Unlock()

	deliver(subs, snapshot)
}

// AcceptAll marks every hunk of the diff accepted. No-op if diffID is
// unknown.
func (t *Tracker) AcceptAll(diffID string) {
	t.setAllHunks(diffID, diff.HunkAccepted, diff.StatusAccepted)
}

// RejectAll marks every hunk of the diff rejected. No-op if diffID is
// unknown.
func (t *Tracker) RejectAll(diffID string) {
	t.setAllHunks(diffID, diff.HunkRejected, diff.StatusRejected)
}

func (t *Tracker) setAllHunks(diffID string, hunkStatus diff.HunkStatus, diffStatus diff.DiffStatus) {
	t.mu.Lock()
	pc, ok := t.changes[diffID]
	if !ok {
		t.mu.Unlock()
		return
	}

	for _, h := range pc.Diff.Hunks {
		h.Status = hunkStatus
	}
	// Uniform by construction, so the derivation is skipped.
	pc.Diff.Status = diffStatus
	subs, snapshot := t.snapshotLocked()
	t.mu.Unlock()

	deliver(subs, snapshot)
}

// =============================================================================
// APPLY / DISCARD
// =============================================================================

// ApplyChanges reconstructs the diff's result content from its accepted
// hunks, writes it through the sink, marks the diff applied, removes it
// from the registry and returns the written content.
//
// Returns ErrNotFound if diffID is unknown. If the sink write fails the
// error propagates and the diff stays registered, with its status exactly
// as it was.
func (t *Tracker) ApplyChanges(ctx context.Context, diffID string) (string, error) {
	t.mu.Lock()
	pc, ok := t.changes[diffID]
	if !ok {
		t.mu.Unlock()
		return "", fmt.Errorf("%w: %s", ErrNotFound, diffID)
	}

	content := diff.ResultContent(pc.Diff)
	if err := t.sink.Write(ctx, pc.Diff.FilePath, content); err != nil {
		t.mu.Unlock()
		return "", fmt.Errorf("failed to write %s: %w", pc.Diff.FilePath, err)
	}

	pc.Diff.Status = diff.StatusApplied
	t.removeLocked(diffID)

	if t.recorder != nil {
		if err := t.recorder.RecordApplied(pc.Diff); err != nil {
			t.logger.Warn("failed to record applied change",
				zap.String("id", diffID), zap.Error(err))
		}
	}

	subs, snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.logger.Info("change applied",
		zap.String("id", diffID),
		zap.String("file", pc.Diff.FilePath))

	deliver(subs, snapshot)
	return content, nil
}

// DiscardChange removes the diff from the registry without writing
// anything. No-op if diffID is unknown.
func (t *Tracker) DiscardChange(diffID string) {
	t.mu.Lock()
	if _, ok := t.changes[diffID]; !ok {
		t.mu.Unlock()
		return
	}
	t.removeLocked(diffID)
	subs, snapshot := t.snapshotLocked()
	t.mu.Unlock()

	t.logger.Debug("change discarded", zap.String("id", diffID))
	deliver(subs, snapshot)
}

// ClearAll empties the registry.
func (t *Tracker) ClearAll() {
	t.mu.Lock()
	t.changes = make(map[string]*PendingChange)
	t.order = nil
	subs, snapshot := t.snapshotLocked()
	t.mu.Unlock()

	deliver(subs, snapshot)
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// Subscribe registers fn to receive the full ordered pending-change list
// after every registry mutation. The returned function unsubscribes.
//
// Callbacks run outside the registry lock, so a subscriber may call back
// into the tracker. Delivered diffs are live registry objects: treat them
// as read-only snapshots and mutate only through tracker operations.
func (t *Tracker) Subscribe(fn Subscriber) func() {
	t.mu.Lock()
	id := t.nextSubID
	t.nextSubID++
	t.subscribers[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.subscribers, id)
		t.mu.Unlock()
	}
}

// =============================================================================
// INTERNAL
// =============================================================================

// pendingLocked returns the ordered change list. Caller holds mu.
func (t *Tracker) pendingLocked() []*PendingChange {
	out := make([]*PendingChange, 0, len(t.order))
	for _, id := range t.order {
		if pc, ok := t.changes[id]; ok {
			out = append(out, pc)
		}
	}
	return out
}

// snapshotLocked collects the current subscribers and pending list for
// delivery after the lock is released. Caller holds mu.
func (t *Tracker) snapshotLocked() ([]Subscriber, []*PendingChange) {
	subs := make([]Subscriber, 0, len(t.subscribers))
	for _, fn := range t.subscribers {
		subs = append(subs, fn)
	}
	return subs, t.pendingLocked()
}

// removeLocked deletes a change from the registry. Caller holds mu.
func (t *Tracker) removeLocked(diffID string) {
	delete(t.changes, diffID)
	for i, id := range t.order {
		if id == diffID {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

func deliver(subs []Subscriber, snapshot []*PendingChange) {
	for _, fn := range subs {
		fn(snapshot)
	}
}
