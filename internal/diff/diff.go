// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff computes structured, hunk-granular diffs between two
// versions of a text document.
package diff

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// OPTIONS
// =============================================================================

// DefaultContextLines is the number of unchanged lines kept around a change
// when no explicit value is configured.
const DefaultContextLines = 3

// hunkMergeFactor sets the split window between change regions: a run of
// more than hunkMergeFactor*ContextLines unchanged lines closes the current
// hunk. Two changes separated by fewer unchanged lines than that collapse
// into one hunk, which is the standard unified-diff context behavior.
const hunkMergeFactor = 2

// Options tunes the comparison.
type Options struct {
	// TrimTrailingWhitespace strips trailing whitespace from every line
	// before comparison.
	TrimTrailingWhitespace bool `json:"trimTrailingWhitespace,omitempty"`

	// IgnoreWhitespace collapses internal whitespace runs to a single
	// space and trims both ends before comparison.
	IgnoreWhitespace bool `json:"ignoreWhitespace,omitempty"`

	// ContextLines is the number of unchanged lines retained before and
	// after a change inside a hunk. Zero or negative means the default.
	ContextLines int `json:"contextLines,omitempty"`
}

// DefaultOptions returns the default comparison options.
func DefaultOptions() Options {
	return Options{ContextLines: DefaultContextLines}
}

// context returns the effective context line count.
func (o Options) context() int {
	if o.ContextLines > 0 {
		return o.ContextLines
	}
	return DefaultContextLines
}

// mergeWindow returns the run of consecutive unchanged lines that closes
// the current hunk during grouping.
func (o Options) mergeWindow() int {
	return hunkMergeFactor * o.context()
}

// =============================================================================
// DIFF COMPUTATION
// =============================================================================

// Compute diffs original against modified using LCS alignment and groups
// the result into context-padded hunks.
//
// Compute never fails: empty strings, missing trailing newlines and
// whitespace-only content all produce well-formed (possibly hunk-less)
// results. FilePath is left blank for the caller to fill in; the
// computation itself is path-agnostic.
func Compute(original, modified string, opts Options) *FileDiff {
	origLines := preprocess(splitLines(original), opts)
	modLines := preprocess(splitLines(modified), opts)

	lines := alignLines(origLines, modLines)

	d := &FileDiff{
		ID:              uuid.NewString(),
		OriginalContent: original,
		ModifiedContent: modified,
		Hunks:           groupHunks(lines, opts),
		Status:          StatusPending,
		CreatedAt:       time.Now().UnixMilli(),
	}

	for _, line := range lines {
		switch line.Type {
		case LineAdded:
			d.Stats.Additions++
		case LineRemoved:
			d.Stats.Deletions++
		}
	}

	switch {
	case original == "" && modified != "":
		d.Stats.FileMode = "new"
	case original != "" && modified == "":
		d.Stats.FileMode = "deleted"
	default:
		d.Stats.FileMode = "modified"
	}

	return d
}

// splitLines splits content on newline boundaries. The final empty element
// produced by a trailing newline is kept on purpose: joining the pieces
// back with "\n" must restore the input byte for byte.
func splitLines(content string) []string {
	return strings.Split(content, "\n")
}

// preprocess applies the whitespace options to every line. The returned
// slice is what gets compared and what hunk line content is built from, so
// that the two always agree.
func preprocess(lines []string, opts Options) []string {
	if !opts.TrimTrailingWhitespace && !opts.IgnoreWhitespace {
		return lines
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		if opts.IgnoreWhitespace {
			line = strings.Join(strings.Fields(line), " ")
		} else if opts.TrimTrailingWhitespace {
			line = strings.TrimRight(line, " \t")
		}
		out[i] = line
	}
	return out
}

// alignLines computes the LCS alignment of the two line slices and emits
// one DiffLine per aligned position, in document order.
func alignLines(orig, mod []string) []DiffLine {
	m, n := len(orig), len(mod)

	// dp[i][j] = LCS length of orig[:i] and mod[:j]
	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if orig[i-1] == mod[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else {
				dp[i][j] = max(dp[i-1][j], dp[i][j-1])
			}
		}
	}

	// Backtrack from (m, n). The branch order below is a fixed tie-break:
	// when the LCS score ties, insertions win over deletions. Changing it
	// changes the emitted alignment, so it must stay as is for
	// deterministic output.
	lines := make([]DiffLine, 0, max(m, n))
	i, j := m, n
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && orig[i-1] == mod[j-1]:
			lines = append(lines, DiffLine{
				Content:            orig[i-1],
				Type:               LineUnchanged,
				OriginalLineNumber: i,
				ModifiedLineNumber: j,
			})
			i--
			j--
		case j > 0 && (i == 0 || dp[i][j-1] >= dp[i-1][j]):
			lines = append(lines, DiffLine{
				Content:            mod[j-1],
				Type:               LineAdded,
				ModifiedLineNumber: j,
			})
			j--
		default:
			lines = append(lines, DiffLine{
				Content:            orig[i-1],
				Type:               LineRemoved,
				OriginalLineNumber: i,
			})
			i--
		}
	}

	// Backtracking walked right to left; restore document order.
	for a, b := 0, len(lines)-1; a < b; a, b = a+1, b-1 {
		lines[a], lines[b] = lines[b], lines[a]
	}
	return lines
}

// =============================================================================
// HUNK GROUPING
// =============================================================================

// groupHunks scans the flat aligned line sequence and groups changes into
// hunks, padding each with up to ContextLines unchanged lines on both
// sides. Changes closer together than the merge window end up in one hunk.
func groupHunks(lines []DiffLine, opts Options) []*DiffHunk {
	context := opts.context()
	window := opts.mergeWindow()

	var hunks []*DiffHunk
	var current []DiffLine
	trailing := 0 // consecutive unchanged lines at the end of current

	for i, line := range lines {
		isChange := line.Type != LineUnchanged

		if current == nil {
			if !isChange {
				continue
			}
			// Open a hunk, back-filling leading context.
			start := max(0, i-context)
			current = append(current, lines[start:i]...)
		}

		current = append(current, line)
		if isChange {
			trailing = 0
		} else {
			trailing++
			if trailing > window {
				hunks = appendHunk(hunks, current, trailing, context)
				current = nil
				trailing = 0
			}
		}
	}

	if current != nil {
		hunks = appendHunk(hunks, current, trailing, context)
	}

	return hunks
}

// appendHunk trims the trailing unchanged run down to the context size,
// builds the hunk and appends it. Hunks left without any change after
// trimming are dropped.
func appendHunk(hunks []*DiffHunk, lines []DiffLine, trailing, context int) []*DiffHunk {
	if trailing > context {
		lines = lines[:len(lines)-(trailing-context)]
	}

	h := buildHunk(lines)
	if h == nil {
		return hunks
	}
	return append(hunks, h)
}

// buildHunk constructs a DiffHunk from its final line sequence, recording
// the 1-indexed start positions and per-side lengths. Returns nil if the
// lines hold no change.
func buildHunk(lines []DiffLine) *DiffHunk {
	h := &DiffHunk{
		ID:            uuid.NewString(),
		OriginalStart: 1,
		ModifiedStart: 1,
		Lines:         append([]DiffLine(nil), lines...),
		Status:        HunkPending,
	}

	if !h.HasChanges() {
		return nil
	}

	if first := lines[0]; first.OriginalLineNumber > 0 {
		h.OriginalStart = first.OriginalLineNumber
	}
	if first := lines[0]; first.ModifiedLineNumber > 0 {
		h.ModifiedStart = first.ModifiedLineNumber
	}

	for _, line := range lines {
		// Unchanged and removed lines occupy original-line space;
		// unchanged and added lines occupy modified-line space.
		if line.Type != LineAdded {
			h.OriginalLength++
		}
		if line.Type != LineRemoved {
			h.ModifiedLength++
		}
	}

	return h
}

// max returns the larger of two integers.
func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
