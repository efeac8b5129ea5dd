// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history journals applied changes to a local SQLite database.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/redline/internal/diff"
)

// schema is the journal table layout. applied_at is Unix milliseconds.
const schema = `
CREATE TABLE IF NOT EXISTS applied_changes (
	id             TEXT PRIMARY KEY,
	file_path      TEXT NOT NULL,
	source         TEXT,
	description    TEXT,
	additions      INTEGER NOT NULL DEFAULT 0,
	deletions      INTEGER NOT NULL DEFAULT 0,
	hunks_total    INTEGER NOT NULL DEFAULT 0,
	hunks_accepted INTEGER NOT NULL DEFAULT 0,
	applied_at     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_applied_changes_file ON applied_changes(file_path);
CREATE INDEX IF NOT EXISTS idx_applied_changes_time ON applied_changes(applied_at);
`

// Entry is one journaled apply.
type Entry struct {
	ID            string
	FilePath      string
	Source        string
	Description   string
	Additions     int
	Deletions     int
	HunksTotal    int
	HunksAccepted int
	AppliedAt     time.Time
}

// Store is a SQLite-backed journal of applied changes.
type Store struct {
	db         *sql.DB
	maxEntries int
	logger     *zap.Logger
}

// Open opens (or creates) the journal database at path. maxEntries limits
// retained rows (0 = unlimited).
func Open(path string, maxEntries int, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db, maxEntries: maxEntries, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordApplied journals an applied diff. Implements tracker.Recorder.
func (s *Store) RecordApplied(d *diff.FileDiff) error {
	accepted := 0
	for _, h := range d.Hunks {
		if h.Status == diff.HunkAccepted {
			accepted++
		}
	}

	_, err := s.db.Exec(`
		INSERT INTO applied_changes
			(id, file_path, source, description, additions, deletions,
			 hunks_total, hunks_accepted, applied_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.FilePath, d.Source, d.Description,
		d.Stats.Additions, d.Stats.Deletions,
		len(d.Hunks), accepted, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record applied change: %w", err)
	}

	if s.maxEntries > 0 {
		if err := s.prune(); err != nil {
			s.logger.Warn("failed to prune history", zap.Error(err))
		}
	}

	s.logger.Debug("applied change journaled",
		zap.String("id", d.ID), zap.String("file", d.FilePath))
	return nil
}

// ListByFile returns the journal entries for filePath, newest first.
func (s *Store) ListByFile(filePath string) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, file_path, source, description, additions, deletions,
		       hunks_total, hunks_accepted, applied_at
		FROM applied_changes
		WHERE file_path = ?
		ORDER BY applied_at DESC`, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Recent returns the n most recent journal entries, newest first.
func (s *Store) Recent(n int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, file_path, source, description, additions, deletions,
		       hunks_total, hunks_accepted, applied_at
		FROM applied_changes
		ORDER BY applied_at DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Count returns the number of journaled entries.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM applied_changes").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}

// prune drops the oldest rows beyond maxEntries.
func (s *Store) prune() error {
	_, err := s.db.Exec(`
		DELETE FROM applied_changes
		WHERE id NOT IN (
			SELECT id FROM applied_changes
			ORDER BY applied_at DESC, id
			LIMIT ?
		)`, s.maxEntries)
	return err
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var appliedAt int64
		if err := rows.Scan(&e.ID, &e.FilePath, &e.Source, &e.Description,
			&e.Additions, &e.Deletions, &e.HunksTotal, &e.HunksAccepted,
			&appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.AppliedAt = time.UnixMilli(appliedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
