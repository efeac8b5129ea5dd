// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tracker owns the registry of in-flight file diffs awaiting
// accept/reject/apply decisions.
//
// All text algorithms are delegated to the diff package; this package
// drives the hunk and diff status state machine, notifies subscribers of
// every registry mutation, and hands reconstructed content to a WriteSink
// when a change is applied.
//
// # Lookup semantics
//
// Missing-id lookups on the convenience mutations (AcceptHunk, RejectHunk,
// AcceptAll, RejectAll, DiscardChange) are silent no-ops by design: a UI
// may race a concurrent discard and speculative calls must stay safe. Only
// ApplyChanges surfaces a missing id, as ErrNotFound, because it carries
// explicit user intent whose failure must not be swallowed.
//
// # Concurrency
//
// A single mutex serializes every operation, including the sink write
// inside ApplyChanges. Status updates touch multiple fields and must never
// be observed half-done, and holding the lock across the write resolves
// the apply/discard race deterministically: a discard racing an in-flight
// apply blocks until the apply finishes and then finds nothing to remove.
package tracker
