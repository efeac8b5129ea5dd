// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff computes structured, hunk-granular diffs between two
// versions of a text document.
package diff

import (
	"sort"
	"strings"
)

// =============================================================================
// RECONCILIATION
// =============================================================================

// ApplyHunks reconstructs text from the original plus only the hunks whose
// status is HunkAccepted. Lines not covered by any accepted hunk are copied
// through from the original verbatim.
//
// Pending hunks contribute nothing: for reconstruction purposes a pending
// hunk is not an accepted one.
func ApplyHunks(original string, hunks []*DiffHunk) string {
	accepted := make([]*DiffHunk, 0, len(hunks))
	for _, h := range hunks {
		if h.Status == HunkAccepted {
			accepted = append(accepted, h)
		}
	}

	// Hunks are non-overlapping by construction, but a stable sort keeps
	// the walk deterministic if a caller hands in hand-built ones.
	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].OriginalStart < accepted[j].OriginalStart
	})

	origLines := splitLines(original)
	out := make([]string, 0, len(origLines))
	cursor := 0 // 0-indexed position in origLines

	for _, h := range accepted {
		// Copy everything before the hunk through unchanged.
		for cursor < h.OriginalStart-1 && cursor < len(origLines) {
			out = append(out, origLines[cursor])
			cursor++
		}

		// Within the hunk: unchanged lines both contribute output and
		// consume original input, added lines contribute output only,
		// removed lines consume input only.
		for _, line := range h.Lines {
			switch line.Type {
			case LineUnchanged:
				out = append(out, line.Content)
				cursor++
			case LineAdded:
				out = append(out, line.Content)
			case LineRemoved:
				cursor++
			}
		}
	}

	// Copy through whatever the last hunk did not reach.
	for cursor < len(origLines) {
		out = append(out, origLines[cursor])
		cursor++
	}

	return strings.Join(out, "\n")
}

// ResultContent computes the final document content implied by the current
// hunk decisions of d.
//
// If nothing is accepted the original content is returned as-is; if every
// hunk is accepted the modified content is returned as-is. Both fast paths
// are byte-exact because the full source texts are retained on the diff.
func ResultContent(d *FileDiff) string {
	accepted := 0
	for _, h := range d.Hunks {
		if h.Status == HunkAccepted {
			accepted++
		}
	}

	switch {
	case accepted == 0:
		return d.OriginalContent
	case accepted == len(d.Hunks):
		return d.ModifiedContent
	default:
		return ApplyHunks(d.OriginalContent, d.Hunks)
	}
}
