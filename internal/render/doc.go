// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render formats file diffs for terminal display.
//
// This is one-shot presentation only: colored hunks with line numbers and
// per-hunk status badges. Interactive accept/reject surfaces live in the
// embedding application, not here.
package render
