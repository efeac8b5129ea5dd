// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff computes structured, hunk-granular diffs between two
// versions of a text document.
package diff_test

import (
	"fmt"

	"github.com/jeranaias/redline/internal/diff"
)

func ExampleCompute() {
	original := "line1\nline2\nline3"
	modified := "line1\nmodified\nline3\nline4"

	d := diff.Compute(original, modified, diff.DefaultOptions())

	fmt.Println(d.Summary())
	fmt.Println("hunks:", len(d.Hunks))

	// Output:
	// Modified +2 -1
	// hunks: 1
}

func ExampleFormatUnified() {
	d := diff.Compute("line1\nline2\nline3", "line1\nmodified\nline3", diff.DefaultOptions())
	d.FilePath = "file.txt"

	fmt.Println(diff.FormatUnified(d))

	// Output:
	// --- a/file.txt
	// +++ b/file.txt
	// @@ -1,3 +1,3 @@
	//  line1
	// -line2
	// +modified
	//  line3
}

func ExampleResultContent() {
	original := "a\nb\n"
	modified := "a\nx\nb\n"

	d := diff.Compute(original, modified, diff.DefaultOptions())

	// Nothing accepted yet: reconstruction returns the original.
	fmt.Printf("%q\n", diff.ResultContent(d))

	// Accept the single hunk: reconstruction returns the modified text.
	d.Hunks[0].Status = diff.HunkAccepted
	fmt.Printf("%q\n", diff.ResultContent(d))

	// Output:
	// "a\nb\n"
	// "a\nx\nb\n"
}
