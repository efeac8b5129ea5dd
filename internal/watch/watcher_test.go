// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package watch discards pending changes whose files were modified on disk
// outside the tracker.
package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/redline/internal/tracker"
)

func TestWatcher_DiscardsStaleChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "watched.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\n"), 0644))

	tr := tracker.New()
	w, err := New(tr, 50*time.Millisecond, nil)
	require.NoError(t, err)
	w.Start()
	defer w.Close()

	d := tr.AddChange(path, "a\nb\n", "a\nx\nb\n", "test", "")
	require.Len(t, tr.GetPendingChanges(), 1)

	// Simulate an external editor saving over the file.
	time.Sleep(100 * time.Millisecond) // let the watch set sync
	require.NoError(t, os.WriteFile(path, []byte("a\nb\nc\n"), 0644))

	assert.Eventually(t, func() bool {
		return len(tr.GetPendingChanges()) == 0
	}, 3*time.Second, 20*time.Millisecond, "stale change should be discarded")

	// The discarded diff itself is untouched apart from deregistration.
	assert.NotNil(t, d)
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "watched.txt")
	other := filepath.Join(dir, "other.txt")
	require.NoError(t, os.WriteFile(watched, []byte("a\n"), 0644))

	tr := tracker.New()
	w, err := New(tr, 50*time.Millisecond, nil)
	require.NoError(t, err)
	w.Start()
	defer w.Close()

	tr.AddChange(watched, "a\n", "b\n", "test", "")
	time.Sleep(100 * time.Millisecond)

	// Writes to a sibling file must not invalidate the pending change.
	require.NoError(t, os.WriteFile(other, []byte("noise\n"), 0644))
	time.Sleep(300 * time.Millisecond)

	assert.Len(t, tr.GetPendingChanges(), 1)
}

func TestWatcher_WatchSetFollowsRegistry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0644))

	tr := tracker.New()
	w, err := New(tr, 50*time.Millisecond, nil)
	require.NoError(t, err)
	w.Start()
	defer w.Close()

	d := tr.AddChange(path, "a\n", "b\n", "test", "")
	time.Sleep(100 * time.Millisecond)

	abs, _ := filepath.Abs(path)
	w.mu.Lock()
	assert.True(t, w.watched[abs])
	w.mu.Unlock()

	tr.DiscardChange(d.ID)
	time.Sleep(100 * time.Millisecond)

	w.mu.Lock()
	assert.False(t, w.watched[abs])
	w.mu.Unlock()
}
