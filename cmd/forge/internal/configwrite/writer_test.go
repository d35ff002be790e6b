// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package configwrite

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AleutianAI/AleutianForge/cmd/forge/internal/backup"
	"github.com/AleutianAI/AleutianForge/pkg/logging"
)

func newWriter(t *testing.T) (*Writer, *backup.Session) {
	t.Helper()
	logger := logging.New(logging.Config{Quiet: true})
	session := backup.NewSession(logger)
	return NewWriter(session, logger), session
}

func TestWriter_WriteFile_BacksUpExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "postcss.config.js")
	os.WriteFile(path, []byte("old"), 0644)

	w, session := newWriter(t)
	change, err := w.WriteFile(path, []byte("new"), true)
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if !change.BackedUp {
		t.Error("existing file should have been backed up")
	}

	if err := session.Restore(path); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "old" {
		t.Errorf("restored content = %q, want %q", got, "old")
	}
}

func TestWriter_WriteFile_CreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src", "styles", "main.css")

	w, _ := newWriter(t)
	if _, err := w.WriteFile(path, []byte("@tailwind base;\n"), true); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not created: %v", err)
	}
}

func TestWriter_CreateFile_FailsOnExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tsconfig.json")
	os.WriteFile(path, []byte("{}"), 0644)

	w, _ := newWriter(t)
	_, err := w.CreateFile(path, []byte("{}"))
	if !errors.Is(err, ErrFileExists) {
		t.Errorf("err = %v, want ErrFileExists", err)
	}

	// The original must be untouched.
	got, _ := os.ReadFile(path)
	if string(got) != "{}" {
		t.Errorf("existing file was modified: %q", got)
	}
}

func TestWriter_CreateFile_RollbackDeletes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tailwind.config.js")

	w, session := newWriter(t)
	if _, err := w.CreateFile(path, []byte("module.exports = {}\n")); err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}

	result := session.RestoreAll()
	if err := result.Err(); err != nil {
		t.Fatalf("RestoreAll failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("created file should be deleted on rollback")
	}
}

func TestWriter_AppendToFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".gitignore")
	os.WriteFile(path, []byte("node_modules\n"), 0644)

	w, _ := newWriter(t)
	change, err := w.AppendToFile(path, []byte("dist\n"), true)
	if err != nil {
		t.Fatalf("AppendToFile failed: %v", err)
	}
	if !change.BackedUp {
		t.Error("existing file should have been backed up")
	}

	got, _ := os.ReadFile(path)
	if string(got) != "node_modules\ndist\n" {
		t.Errorf("content = %q", got)
	}
}

func TestWriter_AppendToFile_Absent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	w, _ := newWriter(t)
	change, err := w.AppendToFile(path, []byte("VITE_API=api\n"), true)
	if err != nil {
		t.Fatalf("AppendToFile failed: %v", err)
	}
	if change.BackedUp {
		t.Error("absent file has nothing to back up")
	}

	got, _ := os.ReadFile(path)
	if string(got) != "VITE_API=api\n" {
		t.Errorf("content = %q", got)
	}
}

func TestWriter_InjectImport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.ts")
	source := strings.Join([]string{
		`import { createApp } from "vue"`,
		`import App from "./App.vue"`,
		``,
		`createApp(App).mount("#app")`,
	}, "\n")
	os.WriteFile(path, []byte(source), 0644)

	w, _ := newWriter(t)
	statement := `import "./styles/main.css"`
	change, err := w.InjectImport(path, statement)
	if err != nil {
		t.Fatalf("InjectImport failed: %v", err)
	}
	if change.Op != OpInject {
		t.Errorf("Op = %q, want %q", change.Op, OpInject)
	}

	got, _ := os.ReadFile(path)
	lines := strings.Split(string(got), "\n")
	if lines[2] != statement {
		t.Errorf("import inserted at wrong position, lines = %q", lines)
	}
}

func TestWriter_InjectImport_Idempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.ts")
	statement := `import "./styles/main.css"`
	os.WriteFile(path, []byte(statement+"\n"), 0644)

	w, _ := newWriter(t)
	change, err := w.InjectImport(path, statement)
	if err != nil {
		t.Fatalf("InjectImport failed: %v", err)
	}
	if change.Op != OpNone {
		t.Errorf("Op = %q, want OpNone for an already-present import", change.Op)
	}

	got, _ := os.ReadFile(path)
	if string(got) != statement+"\n" {
		t.Errorf("file was modified: %q", got)
	}
}

func TestWriter_InjectImport_NoImports(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.js")
	os.WriteFile(path, []byte("console.log(1)\n"), 0644)

	w, _ := newWriter(t)
	if _, err := w.InjectImport(path, `import "./x.css"`); err != nil {
		t.Fatalf("InjectImport failed: %v", err)
	}

	got, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(got), `import "./x.css"`) {
		t.Errorf("import should be at file top, got %q", got)
	}
}

func TestWriter_InjectImport_MissingFile(t *testing.T) {
	w, _ := newWriter(t)
	_, err := w.InjectImport("/nonexistent.ts", `import "x"`)
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("err = %v, want ErrFileNotFound", err)
	}
}

func TestWriter_ModifyPackageJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "package.json")
	os.WriteFile(path, []byte(`{"name":"demo","dependencies":{}}`), 0644)

	w, session := newWriter(t)
	_, err := w.ModifyPackageJSON(dir, func(pkg map[string]any) error {
		deps := pkg["dependencies"].(map[string]any)
		deps["zustand"] = "^4.5.0"
		return nil
	})
	if err != nil {
		t.Fatalf("ModifyPackageJSON failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	var pkg map[string]any
	if err := json.Unmarshal(data, &pkg); err != nil {
		t.Fatalf("rewritten package.json is invalid: %v", err)
	}
	deps := pkg["dependencies"].(map[string]any)
	if deps["zustand"] != "^4.5.0" {
		t.Errorf("dependency not added: %v", deps)
	}

	// Rollback recovers the exact original bytes.
	if err := session.Restore(path); err != nil {
		t.Fatal(err)
	}
	restored, _ := os.ReadFile(path)
	if string(restored) != `{"name":"demo","dependencies":{}}` {
		t.Errorf("restored = %q", restored)
	}
}

func TestWriter_ModifyPackageJSON_Missing(t *testing.T) {
	w, _ := newWriter(t)
	_, err := w.ModifyPackageJSON(t.TempDir(), func(map[string]any) error { return nil })
	if !errors.Is(err, ErrPackageJSONRead) {
		t.Errorf("err = %v, want ErrPackageJSONRead", err)
	}
}

func TestWriter_ModifyPackageJSON_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "package.json"), []byte("{not json"), 0644)

	w, _ := newWriter(t)
	_, err := w.ModifyPackageJSON(dir, func(map[string]any) error { return nil })
	if !errors.Is(err, ErrPackageJSONRead) {
		t.Errorf("err = %v, want ErrPackageJSONRead", err)
	}
}
