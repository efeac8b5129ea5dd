// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package watch discards pending changes whose files were modified on disk
// outside the tracker.
//
// A pending diff is computed against a snapshot of the original content;
// once the file changes underneath it, hunk line ranges no longer line up
// and applying the diff would corrupt the document. The watcher keeps its
// watch set in sync with the tracker's registry via a subscription and
// discards a pending change when its file sees an external write, after a
// debounce window.
//
// The tracker's own applies do not trip the watcher: by the time the file
// sink writes, the change has already left the registry.
package watch
