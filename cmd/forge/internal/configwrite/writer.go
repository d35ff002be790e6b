// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package configwrite performs the file mutations plugin installs need,
// delegating backup bookkeeping to a backup session so every destructive
// write can be undone.
package configwrite

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AleutianAI/AleutianForge/cmd/forge/internal/backup"
	"github.com/AleutianAI/AleutianForge/pkg/logging"
)

// Op classifies a file mutation for reporting.
type Op string

const (
	OpCreate Op = "create"
	OpWrite  Op = "write"
	OpAppend Op = "append"
	OpInject Op = "inject"
	OpNone   Op = "none" // idempotent no-op, nothing was changed
)

// FileChange records one completed mutation.
type FileChange struct {
	Path     string `json:"path"`
	Op       Op     `json:"op"`
	BackedUp bool   `json:"backed_up"`
}

// Writer performs file mutations guarded by a backup session.
//
// # Description
//
// Every operation that can affect an existing file records a backup through
// the session before mutating, so any downstream failure in an installation
// sequence can be undone with the session's RestoreAll. Mutation failures
// are never swallowed; they surface to the caller, who decides whether to
// roll back.
//
// # Thread Safety
//
// Writer itself holds no mutable state; concurrency is bounded by the
// backup session it wraps (one logical install session at a time).
type Writer struct {
	backups backup.Manager
	log     *logging.Logger
}

// NewWriter creates a writer bound to a backup session.
func NewWriter(backups backup.Manager, logger *logging.Logger) *Writer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Writer{backups: backups, log: logger}
}

// WriteFile overwrites (or creates) a file.
//
// When withBackup is set and the file exists, its content is captured
// first. Parent directories are created as needed.
func (w *Writer) WriteFile(path string, content []byte, withBackup bool) (FileChange, error) {
	change := FileChange{Path: path, Op: OpWrite}

	if withBackup {
		if _, err := os.Stat(path); err == nil {
			if err := w.backups.RecordBackup(path); err != nil {
				return change, err
			}
			change.BackedUp = true
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return change, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return change, fmt.Errorf("failed to write file %s: %w", path, err)
	}

	w.log.Debug("wrote file", "path", path, "bytes", len(content), "backed_up", change.BackedUp)
	return change, nil
}

// CreateFile writes a new file and fails with ErrFileExists if the target
// is already present. Creation never silently overwrites.
func (w *Writer) CreateFile(path string, content []byte) (FileChange, error) {
	change := FileChange{Path: path, Op: OpCreate}

	if _, err := os.Stat(path); err == nil {
		return change, fmt.Errorf("%w: %s", ErrFileExists, path)
	} else if !os.IsNotExist(err) {
		return change, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	// Record the tombstone so a rollback deletes the created file.
	if err := w.backups.RecordBackup(path); err != nil {
		return change, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return change, fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return change, fmt.Errorf("failed to write file %s: %w", path, err)
	}

	w.log.Debug("created file", "path", path, "bytes", len(content))
	return change, nil
}

// AppendToFile appends a suffix to a file, creating it when absent.
func (w *Writer) AppendToFile(path string, suffix []byte, withBackup bool) (FileChange, error) {
	change := FileChange{Path: path, Op: OpAppend}

	existing, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return change, fmt.Errorf("failed to read %s: %w", path, err)
		}
		existing = nil
	} else if withBackup {
		if err := w.backups.RecordBackup(path); err != nil {
			return change, err
		}
		change.BackedUp = true
	}

	combined := append(existing, suffix...)
	if err := os.WriteFile(path, combined, 0644); err != nil {
		return change, fmt.Errorf("failed to write file %s: %w", path, err)
	}

	w.log.Debug("appended to file", "path", path, "bytes", len(suffix))
	return change, nil
}

// InjectImport inserts an import statement into an existing source file.
//
// # Description
//
// The statement goes after the last existing import line, or at the top of
// the file when there are none. Injection is idempotent: if the statement
// already appears textually, nothing is written and the returned change has
// Op == OpNone.
//
// # Error Conditions
//
//   - ErrFileNotFound: the target file does not exist
func (w *Writer) InjectImport(path, importStatement string) (FileChange, error) {
	change := FileChange{Path: path, Op: OpInject}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return change, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return change, fmt.Errorf("failed to read %s: %w", path, err)
	}

	content := string(data)
	if strings.Contains(content, importStatement) {
		change.Op = OpNone
		return change, nil
	}

	if err := w.backups.RecordBackup(path); err != nil {
		return change, err
	}
	change.BackedUp = true

	lines := strings.Split(content, "\n")
	insertAt := 0
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "import ") || strings.HasPrefix(trimmed, "import{") {
			insertAt = i + 1
		}
	}

	updated := make([]string, 0, len(lines)+1)
	updated = append(updated, lines[:insertAt]...)
	updated = append(updated, importStatement)
	updated = append(updated, lines[insertAt:]...)

	if err := os.WriteFile(path, []byte(strings.Join(updated, "\n")), 0644); err != nil {
		return change, fmt.Errorf("failed to write file %s: %w", path, err)
	}

	w.log.Debug("injected import", "path", path, "statement", importStatement)
	return change, nil
}

// ModifyPackageJSON reads, mutates, and rewrites a project's package.json.
//
// # Description
//
// The parsed document is handed to mutate, which edits it in place (adding
// dependencies, scripts, and so on). The file is backed up before the
// rewrite. A missing or unparseable package.json fails with
// ErrPackageJSONRead; no partial-JSON recovery is attempted.
func (w *Writer) ModifyPackageJSON(projectRoot string, mutate func(pkg map[string]any) error) (FileChange, error) {
	path := filepath.Join(projectRoot, "package.json")
	change := FileChange{Path: path, Op: OpWrite}

	data, err := os.ReadFile(path)
	if err != nil {
		return change, fmt.Errorf("%w: %v", ErrPackageJSONRead, err)
	}

	var pkg map[string]any
	if err := json.Unmarshal(data, &pkg); err != nil {
		return change, fmt.Errorf("%w: %v", ErrPackageJSONRead, err)
	}

	if err := w.backups.RecordBackup(path); err != nil {
		return change, err
	}
	change.BackedUp = true

	if err := mutate(pkg); err != nil {
		return change, fmt.Errorf("package.json mutation failed: %w", err)
	}

	out, err := json.MarshalIndent(pkg, "", "  ")
	if err != nil {
		return change, fmt.Errorf("failed to serialize package.json: %w", err)
	}
	out = append(out, '\n')

	if err := os.WriteFile(path, out, 0644); err != nil {
		return change, fmt.Errorf("failed to write file %s: %w", path, err)
	}

	w.log.Debug("modified package.json", "path", path)
	return change, nil
}
