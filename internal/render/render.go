// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render formats file diffs for terminal display.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/redline/internal/diff"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	colorAdded   = lipgloss.Color("#34d399") // emerald
	colorRemoved = lipgloss.Color("#fb7185") // rose
	colorHeader  = lipgloss.Color("#22d3ee") // cyan
	colorMuted   = lipgloss.Color("#6b7280") // gray

	filePathStyle = lipgloss.NewStyle().Foreground(colorHeader).Bold(true)
	statsStyle    = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
	addStyle      = lipgloss.NewStyle().Foreground(colorAdded)
	removeStyle   = lipgloss.NewStyle().Foreground(colorRemoved)
	contextStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	hunkHeadStyle = lipgloss.NewStyle().Foreground(colorHeader).Bold(true)
	badgeStyle    = lipgloss.NewStyle().Bold(true)
)

// statusBadge returns a short colored marker for a hunk status.
func statusBadge(status diff.HunkStatus) string {
	switch status {
	case diff.HunkAccepted:
		return badgeStyle.Foreground(colorAdded).Render("[accepted]")
	case diff.HunkRejected:
		return badgeStyle.Foreground(colorRemoved).Render("[rejected]")
	default:
		return badgeStyle.Foreground(colorMuted).Render("[pending]")
	}
}

// =============================================================================
// RENDERING
// =============================================================================

// FileDiff renders a complete diff: file path, stats line and every hunk.
func FileDiff(d *diff.FileDiff) string {
	var sb strings.Builder

	sb.WriteString(filePathStyle.Render(d.FilePath))
	sb.WriteString("\n")
	sb.WriteString(statsStyle.Render(d.Summary()))
	sb.WriteString("\n\n")

	if len(d.Hunks) == 0 {
		sb.WriteString(statsStyle.Render("No changes"))
		sb.WriteString("\n")
		return sb.String()
	}

	for i, hunk := range d.Hunks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(Hunk(hunk))
	}

	return sb.String()
}

// Hunk renders a single hunk with its header, status badge and lines.
func Hunk(h *diff.DiffHunk) string {
	var sb strings.Builder

	header := fmt.Sprintf("@@ -%d,%d +%d,%d @@",
		h.OriginalStart, h.OriginalLength,
		h.ModifiedStart, h.ModifiedLength)
	sb.WriteString(hunkHeadStyle.Render(header))
	sb.WriteString(" ")
	sb.WriteString(statusBadge(h.Status))
	sb.WriteString("\n")

	for _, line := range h.Lines {
		sb.WriteString(renderLine(line))
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderLine formats one diff line with line numbers and a +/- gutter.
func renderLine(line diff.DiffLine) string {
	var style lipgloss.Style
	var nums string

	switch line.Type {
	case diff.LineAdded:
		style = addStyle
		nums = fmt.Sprintf("     %4d", line.ModifiedLineNumber)
	case diff.LineRemoved:
		style = removeStyle
		nums = fmt.Sprintf("%4d     ", line.OriginalLineNumber)
	default:
		style = contextStyle
		nums = fmt.Sprintf("%4d %4d", line.OriginalLineNumber, line.ModifiedLineNumber)
	}

	return fmt.Sprintf("%s %s", statsStyle.Render(nums),
		style.Render(line.Type.Prefix()+line.Content))
}
