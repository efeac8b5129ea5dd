// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history journals applied changes to a local SQLite database.
//
// The journal is an audit trail, not working state: the tracker records a
// row after each successful apply, and the CLI can report what was applied
// to a file and when. Rows are pruned to a configurable maximum.
package history
