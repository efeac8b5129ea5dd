// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff computes structured, hunk-granular diffs between two
// versions of a text document and reconstructs document content from a
// partial selection of accepted hunks.
//
// # Key Types
//
//   - LineType: kind of an aligned line (unchanged, added, removed)
//   - DiffLine: single aligned line with 1-indexed positions in each text
//   - DiffHunk: contiguous, context-padded change region with a status
//   - FileDiff: complete comparison result for one file
//   - Options: comparison tuning (whitespace handling, context size)
//
// # Usage
//
// Compute a diff and reconstruct content from accepted hunks:
//
//	d := diff.Compute(original, modified, diff.DefaultOptions())
//	d.Hunks[0].Status = diff.HunkAccepted
//	result := diff.ResultContent(d)
//
// The computation is a classic LCS alignment: O(m*n) time and space for
// texts of m and n lines. Callers diffing very large files should bound
// input size themselves; this package never fails on any string input.
package diff
