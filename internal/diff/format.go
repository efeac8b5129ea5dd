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
// UNIFIED DIFF FORMAT
// =============================================================================

// FormatUnified renders the diff in standard unified diff format.
func FormatUnified(d *FileDiff) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("--- a/%s\n", d.FilePath))
	sb.WriteString(fmt.Sprintf("+++ b/%s\n", d.FilePath))

	for _, hunk := range d.Hunks {
		sb.WriteString(fmt.Sprintf("@@ -%d,%d +%d,%d @@\n",
			hunk.OriginalStart, hunk.OriginalLength,
			hunk.ModifiedStart, hunk.ModifiedLength))

		for _, line := range hunk.Lines {
			sb.WriteString(line.Type.Prefix())
			sb.WriteString(line.Content)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
