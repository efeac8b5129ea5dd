// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff computes structured, hunk-granular diffs between two
// versions of a text document.
package diff

import (
	"fmt"
	"strings"
)

// =============================================================================
// LINE TYPES
// =============================================================================

// LineType classifies one aligned line of a comparison.
type LineType string

const (
	// LineUnchanged is a line present in both texts
	LineUnchanged LineType = "unchanged"
	// LineAdded is a line present only in the modified text
	LineAdded LineType = "added"
	// LineRemoved is a line present only in the original text
	LineRemoved LineType = "removed"
)

// String returns the string representation of the line type.
func (t LineType) String() string {
	return string(t)
}

// Prefix returns the unified-diff prefix character for this line type.
func (t LineType) Prefix() string {
	switch t {
	case LineAdded:
		return "+"
	case LineRemoved:
		return "-"
	default:
		return " "
	}
}

// =============================================================================
// DIFF LINE
// =============================================================================

// DiffLine is a single aligned line of the comparison.
//
// Line numbers are 1-indexed. OriginalLineNumber is zero for added lines
// (the original text does not contain them); ModifiedLineNumber is zero
// for removed lines.
type DiffLine struct {
	Content            string   `json:"content"`
	Type               LineType `json:"type"`
	OriginalLineNumber int      `json:"originalLineNumber,omitempty"`
	ModifiedLineNumber int      `json:"modifiedLineNumber,omitempty"`
}

// =============================================================================
// HUNK
// =============================================================================

// HunkStatus is the accept/reject state of a single hunk.
type HunkStatus string

const (
	// HunkPending means no decision has been made yet
	HunkPending HunkStatus = "pending"
	// HunkAccepted means the hunk's changes will be kept
	HunkAccepted HunkStatus = "accepted"
	// HunkRejected means the hunk's changes will be dropped
	HunkRejected HunkStatus = "rejected"
)

// String returns the string representation of the hunk status.
func (s HunkStatus) String() string {
	return string(s)
}

// DiffHunk is a contiguous, context-padded run of diff lines containing at
// least one change.
//
// Start/length ranges are 1-indexed. Hunks within one FileDiff are ordered
// by ascending OriginalStart and never overlap in original-line space.
type DiffHunk struct {
	ID             string     `json:"id"`
	OriginalStart  int        `json:"originalStart"`
	OriginalLength int        `json:"originalLength"`
	ModifiedStart  int        `json:"modifiedStart"`
	ModifiedLength int        `json:"modifiedLength"`
	Lines          []DiffLine `json:"lines"`
	Status         HunkStatus `json:"status"`
}

// HasChanges reports whether the hunk contains at least one added or
// removed line.
func (h *DiffHunk) HasChanges() bool {
	for _, line := range h.Lines {
		if line.Type != LineUnchanged {
			return true
		}
	}
	return false
}

// =============================================================================
// FILE DIFF
// =============================================================================

// DiffStatus is the derived state of a whole FileDiff.
type DiffStatus string

const (
	// StatusPending means no hunk has been decided
	StatusPending DiffStatus = "pending"
	// StatusAccepted means every hunk is accepted
	StatusAccepted DiffStatus = "accepted"
	// StatusRejected means every hunk is rejected
	StatusRejected DiffStatus = "rejected"
	// StatusPartiallyAccepted means some hunks are decided, mixed or partial
	StatusPartiallyAccepted DiffStatus = "partially_accepted"
	// StatusApplied is terminal: the result has been written out
	StatusApplied DiffStatus = "applied"
)

// String returns the string representation of the diff status.
func (s DiffStatus) String() string {
	return string(s)
}

// Stats holds summary statistics for a diff.
type Stats struct {
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	FileMode  string `json:"fileMode"` // "new", "modified", "deleted"
}

// FileDiff is the full comparison result for one file.
//
// Status is derived from the hunk statuses (see DeriveStatus) except for
// the terminal StatusApplied, which is set once the result content has
// been written out. Source and Description are provenance metadata, opaque
// to the algorithms in this package. CreatedAt is Unix milliseconds.
type FileDiff struct {
	ID              string      `json:"id"`
	FilePath        string      `json:"filePath"`
	OriginalContent string      `json:"originalContent"`
	ModifiedContent string      `json:"modifiedContent"`
	Hunks           []*DiffHunk `json:"hunks"`
	Status          DiffStatus  `json:"status"`
	Source          string      `json:"source,omitempty"`
	Description     string      `json:"description,omitempty"`
	CreatedAt       int64       `json:"createdAt"`
	Stats           Stats       `json:"stats"`
}

// Hunk returns the hunk with the given id, or nil if absent.
func (d *FileDiff) Hunk(hunkID string) *DiffHunk {
	for _, h := range d.Hunks {
		if h.ID == hunkID {
			return h
		}
	}
	return nil
}

// Summary returns a human-readable one-line summary of the diff.
func (d *FileDiff) Summary() string {
	var parts []string

	switch d.Stats.FileMode {
	case "new":
		parts = append(parts, "New file")
	case "deleted":
		parts = append(parts, "File deleted")
	default:
		parts = append(parts, "Modified")
	}

	if d.Stats.Additions > 0 {
		parts = append(parts, fmt.Sprintf("+%d", d.Stats.Additions))
	}
	if d.Stats.Deletions > 0 {
		parts = append(parts, fmt.Sprintf("-%d", d.Stats.Deletions))
	}

	return strings.Join(parts, " ")
}

// =============================================================================
// STATUS DERIVATION
// =============================================================================

// DeriveStatus computes the diff-level status implied by the hunk statuses:
// all accepted -> accepted, all rejected -> rejected, any decision ->
// partially accepted, no decisions -> pending.
//
// A diff with no hunks stays pending.
func DeriveStatus(hunks []*DiffHunk) DiffStatus {
	accepted, rejected := 0, 0
	for _, h := range hunks {
		switch h.Status {
		case HunkAccepted:
			accepted++
		case HunkRejected:
			rejected++
		case HunkPending:
			// undecided
		}
	}

	total := len(hunks)
	switch {
	case total > 0 && accepted == total:
		return StatusAccepted
	case total > 0 && rejected == total:
		return StatusRejected
	case accepted > 0 || rejected > 0:
		return StatusPartiallyAccepted
	default:
		return StatusPending
	}
}
