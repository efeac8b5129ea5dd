// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tracker owns the registry of in-flight file diffs awaiting
// accept/reject/apply decisions.
package tracker

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/redline/internal/diff"
)

// memorySink captures writes in memory and can be told to fail.
type memorySink struct {
	mu     sync.Mutex
	writes map[string]string
	err    error
}

func newMemorySink() *memorySink {
	return &memorySink{writes: make(map[string]string)}
}

func (s *memorySink) Write(ctx context.Context, path, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.writes[path] = content
	return nil
}

func newTestTracker(sink WriteSink) *Tracker {
	return NewWithOptions(Options{Sink: sink})
}

func TestAddChange(t *testing.T) {
	tr := newTestTracker(newMemorySink())

	d := tr.AddChange("main.go", "a\nb\n", "a\nx\nb\n", "assistant", "insert x")

	require.NotNil(t, d)
	assert.Equal(t, "main.go", d.FilePath)
	assert.Equal(t, "assistant", d.Source)
	assert.Equal(t, "insert x", d.Description)
	assert.Equal(t, diff.StatusPending, d.Status)
	require.Len(t, d.Hunks, 1)

	changes := tr.GetPendingChanges()
	require.Len(t, changes, 1)
	assert.Same(t, d, changes[0].Diff)
}

func TestGetChangeForFile(t *testing.T) {
	tr := newTestTracker(newMemorySink())

	first := tr.AddChange("a.go", "1\n", "2\n", "test", "")
	tr.AddChange("b.go", "1\n", "2\n", "test", "")
	second := tr.AddChange("a.go", "2\n", "3\n", "test", "")

	pc := tr.GetChangeForFile("a.go")
	require.NotNil(t, pc)
	assert.Same(t, first, pc.Diff, "first match by insertion order wins")
	_ = second

	assert.Nil(t, tr.GetChangeForFile("missing.go"))
}

func TestHunkStatusDerivation(t *testing.T) {
	tr := newTestTracker(newMemorySink())

	// Two well-separated change regions produce two hunks.
	original := "a1\na2\na3\na4\na5\na6\na7\na8\na9\na10\na11\na12"
	modified := "a1\nb2\na3\na4\na5\na6\na7\na8\na9\na10\nb11\na12"
	d := tr.AddChange("f.txt", original, modified, "test", "")
	require.Len(t, d.Hunks, 2)

	tr.AcceptHunk(d.ID, d.Hunks[0].ID)
	assert.Equal(t, diff.StatusPartiallyAccepted, d.Status)

	tr.AcceptHunk(d.ID, d.Hunks[1].ID)
	assert.Equal(t, diff.StatusAccepted, d.Status)

	// Decisions are reversible: re-assign, no undo.
	tr.RejectHunk(d.ID, d.Hunks[0].ID)
	assert.Equal(t, diff.HunkRejected, d.Hunks[0].Status)
	assert.Equal(t, diff.StatusPartiallyAccepted, d.Status)

	tr.RejectHunk(d.ID, d.Hunks[1].ID)
	assert.Equal(t, diff.StatusRejected, d.Status)
}

func TestHunkOps_MissingIDsAreNoOps(t *testing.T) {
	tr := newTestTracker(newMemorySink())
	d := tr.AddChange("f.txt", "a\n", "b\n", "test", "")

	// None of these may panic, error or mutate anything.
	tr.AcceptHunk("no-such-diff", d.Hunks[0].ID)
	tr.AcceptHunk(d.ID, "no-such-hunk")
	tr.RejectHunk("no-such-diff", "no-such-hunk")
	tr.AcceptAll("no-such-diff")
	tr.RejectAll("no-such-diff")
	tr.DiscardChange("no-such-diff")

	assert.Equal(t, diff.StatusPending, d.Status)
	assert.Equal(t, diff.HunkPending, d.Hunks[0].Status)
	assert.Len(t, tr.GetPendingChanges(), 1)
}

func TestAcceptAllRejectAll(t *testing.T) {
	tr := newTestTracker(newMemorySink())
	d := tr.AddChange("f.txt", "a\nb\nc\n", "a\nB\nc\n", "test", "")

	tr.AcceptAll(d.ID)
	assert.Equal(t, diff.StatusAccepted, d.Status)
	for _, h := range d.Hunks {
		assert.Equal(t, diff.HunkAccepted, h.Status)
	}

	tr.RejectAll(d.ID)
	assert.Equal(t, diff.StatusRejected, d.Status)
	for _, h := range d.Hunks {
		assert.Equal(t, diff.HunkRejected, h.Status)
	}
}

func TestGetPendingCount(t *testing.T) {
	tr := newTestTracker(newMemorySink())

	a := tr.AddChange("a.txt", "1\n", "2\n", "test", "")
	b := tr.AddChange("b.txt", "1\n", "2\n", "test", "")

	// Two well-separated regions give c two hunks.
	original := "a1\na2\na3\na4\na5\na6\na7\na8\na9\na10\na11\na12"
	modified := "a1\nb2\na3\na4\na5\na6\na7\na8\na9\na10\nb11\na12"
	c := tr.AddChange("c.txt", original, modified, "test", "")
	require.Len(t, c.Hunks, 2)
	assert.Equal(t, 3, tr.GetPendingCount())

	// Fully resolved diffs are not pending, even though still registered.
	tr.AcceptAll(a.ID)
	tr.RejectAll(b.ID)
	assert.Equal(t, 1, tr.GetPendingCount())
	assert.Len(t, tr.GetPendingChanges(), 3)

	// A partially accepted diff still counts.
	tr.AcceptHunk(c.ID, c.Hunks[0].ID)
	assert.Equal(t, diff.StatusPartiallyAccepted, c.Status)
	assert.Equal(t, 1, tr.GetPendingCount())

	// Resolving the second hunk resolves the diff.
	tr.AcceptHunk(c.ID, c.Hunks[1].ID)
	assert.Equal(t, 0, tr.GetPendingCount())
}

func TestApplyChanges(t *testing.T) {
	sink := newMemorySink()
	tr := newTestTracker(sink)

	d := tr.AddChange("f.txt", "a\nb\n", "a\nx\nb\n", "test", "")
	tr.AcceptAll(d.ID)

	content, err := tr.ApplyChanges(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, "a\nx\nb\n", content)
	assert.Equal(t, "a\nx\nb\n", sink.writes["f.txt"])
	assert.Equal(t, diff.StatusApplied, d.Status)
	assert.Empty(t, tr.GetPendingChanges(), "applied change leaves the registry")
}

func TestApplyChanges_PartialSelection(t *testing.T) {
	sink := newMemorySink()
	tr := newTestTracker(sink)

	original := "a1\na2\na3\na4\na5\na6\na7\na8\na9\na10\na11\na12"
	modified := "a1\nb2\na3\na4\na5\na6\na7\na8\na9\na10\nb11\na12"
	d := tr.AddChange("f.txt", original, modified, "test", "")
	require.Len(t, d.Hunks, 2)

	tr.AcceptHunk(d.ID, d.Hunks[0].ID)
	tr.RejectHunk(d.ID, d.Hunks[1].ID)

	content, err := tr.ApplyChanges(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, "a1\nb2\na3\na4\na5\na6\na7\na8\na9\na10\na11\na12", content)
}

func TestApplyChanges_NotFound(t *testing.T) {
	tr := newTestTracker(newMemorySink())
	tr.AddChange("f.txt", "a\n", "b\n", "test", "")

	_, err := tr.ApplyChanges(context.Background(), "no-such-id")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "no-such-id")
	assert.Len(t, tr.GetPendingChanges(), 1, "registry size unchanged")
}

func TestApplyChanges_WriteFailureLeavesStateUntouched(t *testing.T) {
	sink := newMemorySink()
	sink.err = errors.New("disk full")
	tr := newTestTracker(sink)

	d := tr.AddChange("f.txt", "a\nb\n", "a\nx\nb\n", "test", "")
	tr.AcceptAll(d.ID)

	_, err := tr.ApplyChanges(context.Background(), d.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	// No partial state transition: still registered, status as it was.
	require.Len(t, tr.GetPendingChanges(), 1)
	assert.Equal(t, diff.StatusAccepted, d.Status)

	// A later retry succeeds once the sink recovers.
	sink.mu.Lock()
	sink.err = nil
	sink.mu.Unlock()
	content, err := tr.ApplyChanges(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, "a\nx\nb\n", content)
}

func TestDiscardChange(t *testing.T) {
	tr := newTestTracker(newMemorySink())
	d := tr.AddChange("f.txt", "a\n", "b\n", "test", "")

	tr.DiscardChange(d.ID)
	assert.Empty(t, tr.GetPendingChanges())

	// Discarding again is a no-op.
	tr.DiscardChange(d.ID)
}

func TestClearAll(t *testing.T) {
	tr := newTestTracker(newMemorySink())
	tr.AddChange("a.txt", "1\n", "2\n", "test", "")
	tr.AddChange("b.txt", "1\n", "2\n", "test", "")

	tr.ClearAll()
	assert.Empty(t, tr.GetPendingChanges())
	assert.Equal(t, 0, tr.GetPendingCount())
}

func TestSubscribe(t *testing.T) {
	tr := newTestTracker(newMemorySink())

	var mu sync.Mutex
	var updates [][]*PendingChange
	unsubscribe := tr.Subscribe(func(changes []*PendingChange) {
		mu.Lock()
		updates = append(updates, changes)
		mu.Unlock()
	})

	d := tr.AddChange("f.txt", "a\n", "b\n", "test", "")
	tr.AcceptAll(d.ID)
	tr.DiscardChange(d.ID)

	mu.Lock()
	require.Len(t, updates, 3)
	assert.Len(t, updates[0], 1, "add delivers the new change")
	assert.Len(t, updates[1], 1, "accept delivers the current list")
	assert.Len(t, updates[2], 0, "discard delivers the emptied list")
	mu.Unlock()

	unsubscribe()
	tr.AddChange("g.txt", "a\n", "b\n", "test", "")

	mu.Lock()
	assert.Len(t, updates, 3, "no delivery after unsubscribe")
	mu.Unlock()
}

func TestSubscriberMayCallBackIntoTracker(t *testing.T) {
	tr := newTestTracker(newMemorySink())

	var counts []int
	tr.Subscribe(func(changes []*PendingChange) {
		// Callbacks run outside the registry lock.
		counts = append(counts, tr.GetPendingCount())
	})

	tr.AddChange("f.txt", "a\n", "b\n", "test", "")
	require.Len(t, counts, 1)
	assert.Equal(t, 1, counts[0])
}

func TestConcurrentMutations(t *testing.T) {
	tr := newTestTracker(newMemorySink())

	d := tr.AddChange("f.txt", "a\nb\nc\nd\ne\n", "a\nB\nc\nD\ne\n", "test", "")
	require.NotEmpty(t, d.Hunks)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				tr.AcceptHunk(d.ID, d.Hunks[0].ID)
			} else {
				tr.RejectHunk(d.ID, d.Hunks[0].ID)
			}
			_ = tr.GetPendingCount()
			_ = tr.GetPendingChanges()
		}(i)
	}
	wg.Wait()

	// Whatever interleaving happened, the derived status matches the
	// hunk statuses.
	assert.Equal(t, diff.DeriveStatus(d.Hunks), d.Status)
}

func TestFileSink(t *testing.T) {
	dir := t.TempDir()
	tr := NewWithOptions(Options{})

	path := dir + "/out.txt"
	d := tr.AddChange(path, "", "hello\n", "test", "")
	tr.AcceptAll(d.ID)

	content, err := tr.ApplyChanges(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", content)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}
