// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for redline.
//
// The main export is AtomicWriteFile, the write primitive behind the
// tracker's file sink and config persistence: documents being reconciled
// must never be observed half-written, even across a crash.
package util
