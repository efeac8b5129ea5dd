// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render formats file diffs for terminal display.
package render

import (
	"strings"
	"testing"

	"github.com/jeranaias/redline/internal/diff"
)

func TestFileDiff(t *testing.T) {
	d := diff.Compute("a\nb\nc", "a\nx\nc", diff.DefaultOptions())
	d.FilePath = "main.go"

	out := FileDiff(d)

	for _, want := range []string{"main.go", "Modified", "@@ -1,3 +1,3 @@", "+x", "-b", "[pending]"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestFileDiff_NoChanges(t *testing.T) {
	d := diff.Compute("same", "same", diff.DefaultOptions())
	d.FilePath = "main.go"

	out := FileDiff(d)
	if !strings.Contains(out, "No changes") {
		t.Errorf("Expected 'No changes' marker:\n%s", out)
	}
}

func TestHunk_StatusBadges(t *testing.T) {
	d := diff.Compute("a\n", "b\n", diff.DefaultOptions())
	h := d.Hunks[0]

	h.Status = diff.HunkAccepted
	if out := Hunk(h); !strings.Contains(out, "[accepted]") {
		t.Errorf("Expected accepted badge:\n%s", out)
	}

	h.Status = diff.HunkRejected
	if out := Hunk(h); !strings.Contains(out, "[rejected]") {
		t.Errorf("Expected rejected badge:\n%s", out)
	}
}
