// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package backup records original file state before destructive writes and
// restores it when a plugin installation fails partway through.
package backup

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianForge/pkg/logging"
)

// Manager defines the interface for session-scoped backup operations.
//
// # Description
//
// Manager captures the pre-mutation content of files about to be
// overwritten, so a failed installation sequence can be undone. Backups
// live only in memory for the duration of one install session; a crash
// mid-installation leaves no rollback capability, which is an accepted
// tradeoff rather than a bug.
//
// # Thread Safety
//
// Implementations should be safe for concurrent use, but concurrent
// installation sessions against the same project are not a supported
// scenario; the caller must serialize them.
type Manager interface {
	// HasBackup reports whether a backup exists for the path.
	HasBackup(path string) bool

	// RecordBackup captures the file's current content before its first
	// mutation in this session. Later calls for the same path are no-ops.
	RecordBackup(path string) error

	// Restore writes a path's original content back (or deletes the file
	// if it did not exist) and drops the backup entry.
	Restore(path string) error

	// RestoreAll restores every tracked path in reverse recording order
	// and clears all entries.
	RestoreAll() RestoreResult

	// Tracked returns the backed-up paths in recording order.
	Tracked() []string
}

// Entry tracks one file's pre-mutation state.
//
// existed distinguishes "file held this content" from "file was absent":
// restoring an absent file means deleting it, not writing empty content.
type Entry struct {
	path    string
	content []byte
	mode    os.FileMode
	existed bool
}

// RestoreResult reports the outcome of a RestoreAll call.
//
// Rollback is best-effort: a failure restoring one path never stops the
// remaining restores, and the caller gets the full picture of what was
// recovered versus what was not.
type RestoreResult struct {
	// Restored lists paths restored successfully, in restore order.
	Restored []string

	// Failed maps paths to the error that prevented their restore.
	Failed map[string]error
}

// Err aggregates the restore failures into a single error, or nil if every
// restore succeeded.
func (r RestoreResult) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failed))
	for path, err := range r.Failed {
		errs = append(errs, fmt.Errorf("restore %s: %w", path, err))
	}
	return errors.Join(errs...)
}

// Session implements Manager for one installation attempt.
//
// # Description
//
// Session is an append-only log with single-shot capture semantics: the
// first RecordBackup for a path wins, so two sequential writes to the same
// file within one session restore to the state before the first write.
// RestoreAll undoes layered edits cleanly by walking the log in reverse.
//
// Each session carries a generated ID used to correlate log entries across
// the install/validate/restore flow.
//
// # Example
//
//	session := backup.NewSession(logger)
//
//	// before each destructive write
//	if err := session.RecordBackup(path); err != nil {
//	    return err
//	}
//
//	// on failure anywhere in the sequence
//	result := session.RestoreAll()
//	if err := result.Err(); err != nil {
//	    logger.Error("partial rollback", "error", err)
//	}
type Session struct {
	id      string
	entries map[string]*Entry
	order   []string
	log     *logging.Logger
	mu      sync.Mutex
}

// NewSession creates an empty backup session.
func NewSession(logger *logging.Logger) *Session {
	if logger == nil {
		logger = logging.Default()
	}
	id := uuid.NewString()
	return &Session{
		id:      id,
		entries: make(map[string]*Entry),
		log:     logger.With("backup_session", id),
	}
}

// ID returns the session's correlation id.
func (s *Session) ID() string { return s.id }

// HasBackup reports whether a backup exists for the path.
func (s *Session) HasBackup(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[path]
	return ok
}

// RecordBackup captures the current content of path, or a tombstone if the
// file does not exist.
//
// # Description
//
// Only the first call per path captures anything; the earliest pre-mutation
// state within the session is the one preserved. Read failures other than
// "not exist" are returned so the caller can abort before mutating a file
// it cannot back up.
func (s *Session) RecordBackup(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[path]; ok {
		return nil
	}

	entry := &Entry{path: path, mode: 0644}

	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		// Tombstone: restore means delete.
	case err != nil:
		return fmt.Errorf("failed to stat %s: %w", path, err)
	default:
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("failed to read %s for backup: %w", path, readErr)
		}
		entry.content = content
		entry.mode = info.Mode()
		entry.existed = true
	}

	s.entries[path] = entry
	s.order = append(s.order, path)
	s.log.Debug("recorded backup", "path", path, "existed", entry.existed)
	return nil
}

// Restore writes the original content back for one path and removes its
// entry. No-op if the path has no backup.
func (s *Session) Restore(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restoreLocked(path)
}

// RestoreAll restores every tracked path, last-recorded first, and clears
// the session.
//
// # Description
//
// Safe with zero backups (no-op) and safe to call repeatedly: the second
// call finds no entries and restores nothing. A failed restore is logged
// and recorded in the result, and the walk continues; partial-failure
// transparency matters more here than all-or-nothing atomicity.
func (s *Session) RestoreAll() RestoreResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := RestoreResult{Failed: make(map[string]error)}

	for i := len(s.order) - 1; i >= 0; i-- {
		path := s.order[i]
		if _, ok := s.entries[path]; !ok {
			continue
		}
		if err := s.restoreLocked(path); err != nil {
			s.log.Warn("failed to restore file", "path", path, "error", err)
			result.Failed[path] = err
			continue
		}
		result.Restored = append(result.Restored, path)
	}

	s.entries = make(map[string]*Entry)
	s.order = nil
	return result
}

// Tracked returns the backed-up paths in recording order. Paths already
// restored individually no longer hold a backup and are not reported.
func (s *Session) Tracked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.order))
	for _, path := range s.order {
		if _, ok := s.entries[path]; ok {
			out = append(out, path)
		}
	}
	return out
}

// restoreLocked restores one path. Caller holds s.mu.
func (s *Session) restoreLocked(path string) error {
	entry, ok := s.entries[path]
	if !ok {
		return nil
	}

	if !entry.existed {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	} else {
		if err := os.WriteFile(path, entry.content, entry.mode); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		// WriteFile applies the mode only on create.
		if err := os.Chmod(path, entry.mode); err != nil {
			return fmt.Errorf("failed to chmod %s: %w", path, err)
		}
	}

	delete(s.entries, path)
	s.log.Debug("restored file", "path", path, "existed", entry.existed)
	return nil
}

// Compile-time interface check
var _ Manager = (*Session)(nil)
