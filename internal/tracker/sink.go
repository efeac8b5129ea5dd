// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tracker owns the registry of in-flight file diffs awaiting
// accept/reject/apply decisions.
package tracker

import (
	"context"
	"os"

	"github.com/jeranaias/redline/internal/util"
)

// WriteSink receives the reconstructed document content when a change is
// applied. The tracker never opens file handles itself; the sink is the
// single injected write capability, called exactly once per successful
// apply.
type WriteSink interface {
	Write(ctx context.Context, path string, content string) error
}

// FileSink writes content to the local filesystem atomically.
type FileSink struct {
	// Perm is the file mode for written files. Zero means 0644.
	Perm os.FileMode
}

// Write implements WriteSink.
func (s FileSink) Write(ctx context.Context, path string, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	perm := s.Perm
	if perm == 0 {
		perm = 0644
	}
	return util.AtomicWriteFile(path, []byte(content), perm)
}
