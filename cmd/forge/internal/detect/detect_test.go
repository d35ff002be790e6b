// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package detect

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/AleutianAI/AleutianForge/pkg/logging"
)

func testDetector() *Detector {
	return NewDetector(logging.New(logging.Config{Quiet: true}))
}

// writeProject lays out a fake project directory for detection.
func writeProject(t *testing.T, packageJSON string, extraFiles ...string) string {
	t.Helper()
	dir := t.TempDir()
	if packageJSON != "" {
		if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(packageJSON), 0644); err != nil {
			t.Fatalf("writing package.json: %v", err)
		}
	}
	for _, name := range extraFiles {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return dir
}

func TestDetect_Frameworks(t *testing.T) {
	tests := []struct {
		name string
		pkg  string
		want Framework
	}{
		{
			name: "react",
			pkg:  `{"dependencies": {"react": "^18.2.0", "react-dom": "^18.2.0"}}`,
			want: FrameworkReact,
		},
		{
			name: "nextjs wins over react",
			pkg:  `{"dependencies": {"next": "14.1.0", "react": "^18.2.0"}}`,
			want: FrameworkNextJS,
		},
		{
			name: "vue",
			pkg:  `{"dependencies": {"vue": "^3.4.21"}}`,
			want: FrameworkVue,
		},
		{
			name: "nuxt wins over vue",
			pkg:  `{"dependencies": {"nuxt": "^3.10.0", "vue": "^3.4.21"}}`,
			want: FrameworkNuxt,
		},
		{
			name: "sveltekit wins over svelte",
			pkg:  `{"devDependencies": {"@sveltejs/kit": "^2.0.0", "svelte": "^4.2.0"}}`,
			want: FrameworkSvelteKit,
		},
		{
			name: "svelte from devDependencies",
			pkg:  `{"devDependencies": {"svelte": "^4.2.0"}}`,
			want: FrameworkSvelte,
		},
		{
			name: "astro",
			pkg:  `{"dependencies": {"astro": "^4.5.0"}}`,
			want: FrameworkAstro,
		},
		{
			name: "no framework is vanilla",
			pkg:  `{"dependencies": {"lodash": "^4.17.21"}}`,
			want: FrameworkVanilla,
		},
	}

	d := testDetector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeProject(t, tt.pkg)
			project, err := d.Detect(dir)
			if err != nil {
				t.Fatalf("Detect failed: %v", err)
			}
			if project.Framework != tt.want {
				t.Errorf("framework = %q, want %q", project.Framework, tt.want)
			}
		})
	}
}

func TestDetect_BundlerFromDependency(t *testing.T) {
	dir := writeProject(t, `{"devDependencies": {"vite": "^5.1.0"}}`)
	project, err := testDetector().Detect(dir)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if project.Bundler != BundlerVite {
		t.Errorf("bundler = %q, want vite", project.Bundler)
	}
}

func TestDetect_BundlerFromConfigFile(t *testing.T) {
	// Dependency hoisted away by a workspace; the config file still names it.
	dir := writeProject(t, `{"dependencies": {"react": "^18.2.0"}}`, "webpack.config.js")
	project, err := testDetector().Detect(dir)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if project.Bundler != BundlerWebpack {
		t.Errorf("bundler = %q, want webpack", project.Bundler)
	}
}

func TestDetect_NoBundler(t *testing.T) {
	dir := writeProject(t, `{"dependencies": {"react": "^18.2.0"}}`)
	project, err := testDetector().Detect(dir)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if project.Bundler != BundlerNone {
		t.Errorf("bundler = %q, want none", project.Bundler)
	}
}

func TestDetect_PackageManagerFromLockfiles(t *testing.T) {
	tests := []struct {
		lockfile string
		want     PackageManager
	}{
		{"pnpm-lock.yaml", PMPnpm},
		{"yarn.lock", PMYarn},
		{"package-lock.json", PMNpm},
		{"bun.lockb", PMBun},
	}

	d := testDetector()
	for _, tt := range tests {
		t.Run(tt.lockfile, func(t *testing.T) {
			dir := writeProject(t, `{}`, tt.lockfile)
			project, err := d.Detect(dir)
			if err != nil {
				t.Fatalf("Detect failed: %v", err)
			}
			if project.PackageManager != tt.want {
				t.Errorf("package manager = %q, want %q", project.PackageManager, tt.want)
			}
		})
	}
}

func TestDetect_PackageManagerFieldWinsOverLockfile(t *testing.T) {
	dir := writeProject(t, `{"packageManager": "pnpm@9.1.0"}`, "yarn.lock")
	project, err := testDetector().Detect(dir)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if project.PackageManager != PMPnpm {
		t.Errorf("package manager = %q, want pnpm", project.PackageManager)
	}
}

func TestDetect_DefaultPackageManager(t *testing.T) {
	dir := writeProject(t, `{}`)
	project, err := testDetector().Detect(dir)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if project.PackageManager != PMNpm {
		t.Errorf("package manager = %q, want npm default", project.PackageManager)
	}
}

func TestDetect_TypeScript(t *testing.T) {
	dir := writeProject(t, `{}`, "tsconfig.json")
	project, err := testDetector().Detect(dir)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if !project.TypeScript {
		t.Error("expected TypeScript project")
	}
}

func TestDetect_MissingPackageJSON(t *testing.T) {
	dir := t.TempDir()
	_, err := testDetector().Detect(dir)
	if !errors.Is(err, ErrNoPackageJSON) {
		t.Fatalf("expected ErrNoPackageJSON, got %v", err)
	}
}

func TestDetect_InvalidPackageJSON(t *testing.T) {
	dir := writeProject(t, `{not json`)
	_, err := testDetector().Detect(dir)
	if !errors.Is(err, ErrInvalidPackageJSON) {
		t.Fatalf("expected ErrInvalidPackageJSON, got %v", err)
	}
}

func TestFindRoot_WalksUpward(t *testing.T) {
	root := writeProject(t, `{"name": "app"}`)
	nested := filepath.Join(root, "src", "components")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("creating nested dirs: %v", err)
	}

	found, err := testDetector().FindRoot(nested)
	if err != nil {
		t.Fatalf("FindRoot failed: %v", err)
	}
	if found != root {
		t.Errorf("root = %q, want %q", found, root)
	}
}

func TestFindRoot_BoundedAscent(t *testing.T) {
	// Deeper than the ascent bound: the package.json must not be found.
	root := writeProject(t, `{"name": "app"}`)
	deep := root
	for i := 0; i < maxRootAscent+2; i++ {
		deep = filepath.Join(deep, "d")
	}
	if err := os.MkdirAll(deep, 0755); err != nil {
		t.Fatalf("creating deep dirs: %v", err)
	}

	_, err := testDetector().FindRoot(deep)
	if !errors.Is(err, ErrNoPackageJSON) {
		t.Fatalf("expected ErrNoPackageJSON beyond ascent bound, got %v", err)
	}
}

func TestHasDependency(t *testing.T) {
	project := &Project{
		Dependencies:    map[string]string{"react": "^18.2.0"},
		DevDependencies: map[string]string{"vite": "^5.1.0"},
	}
	if !project.HasDependency("react") || !project.HasDependency("vite") {
		t.Error("expected both dependency maps to be consulted")
	}
	if project.HasDependency("svelte") {
		t.Error("unexpected dependency hit")
	}
}
