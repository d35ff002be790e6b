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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AleutianAI/AleutianForge/pkg/logging"
)

// Framework identifies the detected frontend framework.
type Framework string

const (
	FrameworkReact     Framework = "react"
	FrameworkNextJS    Framework = "nextjs"
	FrameworkVue       Framework = "vue"
	FrameworkNuxt      Framework = "nuxt"
	FrameworkSvelte    Framework = "svelte"
	FrameworkSvelteKit Framework = "sveltekit"
	FrameworkAstro     Framework = "astro"

	// FrameworkVanilla means no recognized framework dependency was found.
	FrameworkVanilla Framework = "vanilla"
)

// Bundler identifies the detected build tool.
type Bundler string

const (
	BundlerVite    Bundler = "vite"
	BundlerWebpack Bundler = "webpack"
	BundlerRollup  Bundler = "rollup"
	BundlerEsbuild Bundler = "esbuild"
	BundlerNone    Bundler = "none"
)

// PackageManager identifies the package manager the project uses.
type PackageManager string

const (
	PMNpm  PackageManager = "npm"
	PMPnpm PackageManager = "pnpm"
	PMYarn PackageManager = "yarn"
	PMBun  PackageManager = "bun"
)

// Project is the read-only result of detection.
type Project struct {
	Root            string            `json:"root"`
	Name            string            `json:"name,omitempty"`
	Framework       Framework         `json:"framework"`
	Bundler         Bundler           `json:"bundler"`
	PackageManager  PackageManager    `json:"package_manager"`
	TypeScript      bool              `json:"typescript"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"dev_dependencies,omitempty"`
}

// HasDependency reports whether the package appears in either dependency map.
func (p *Project) HasDependency(name string) bool {
	if _, ok := p.Dependencies[name]; ok {
		return true
	}
	_, ok := p.DevDependencies[name]
	return ok
}

// packageJSON is the subset of package.json detection reads.
type packageJSON struct {
	Name            string            `json:"name"`
	PackageManager  string            `json:"packageManager"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// maxRootAscent bounds the upward walk in FindRoot. Detection must never
// crawl to the filesystem root on a stray invocation.
const maxRootAscent = 8

// frameworkMarkers maps a framework to the dependency that identifies it.
// Order matters: meta-frameworks are checked before the framework they
// build on.
var frameworkMarkers = []struct {
	dep       string
	framework Framework
}{
	{"next", FrameworkNextJS},
	{"nuxt", FrameworkNuxt},
	{"@sveltejs/kit", FrameworkSvelteKit},
	{"astro", FrameworkAstro},
	{"react", FrameworkReact},
	{"vue", FrameworkVue},
	{"svelte", FrameworkSvelte},
}

// bundlerMarkers maps a bundler to its dependency name and the config file
// basenames that identify it when the dependency is hoisted away.
var bundlerMarkers = []struct {
	dep     string
	bundler Bundler
	configs []string
}{
	{"vite", BundlerVite, []string{"vite.config.js", "vite.config.ts", "vite.config.mjs", "vite.config.mts"}},
	{"webpack", BundlerWebpack, []string{"webpack.config.js", "webpack.config.ts", "webpack.config.cjs"}},
	{"rollup", BundlerRollup, []string{"rollup.config.js", "rollup.config.ts", "rollup.config.mjs"}},
	{"esbuild", BundlerEsbuild, nil},
}

// lockfileMarkers maps lockfile basenames to the package manager that owns
// them, in precedence order.
var lockfileMarkers = []struct {
	file string
	pm   PackageManager
}{
	{"bun.lockb", PMBun},
	{"bun.lock", PMBun},
	{"pnpm-lock.yaml", PMPnpm},
	{"yarn.lock", PMYarn},
	{"package-lock.json", PMNpm},
}

// Detector inspects project directories.
//
// # Thread Safety
//
// Detector is stateless apart from its logger and safe for concurrent use.
type Detector struct {
	log *logging.Logger
}

// NewDetector creates a detector. A nil logger falls back to the package
// default.
func NewDetector(logger *logging.Logger) *Detector {
	if logger == nil {
		logger = logging.Default()
	}
	return &Detector{log: logger}
}

// FindRoot walks upward from start looking for a directory containing
// package.json.
//
// # Inputs
//
//   - start: directory to begin from; may be relative
//
// # Outputs
//
//   - string: absolute path of the nearest ancestor with a package.json
//   - error: ErrNoPackageJSON if none is found within the ascent bound
func (d *Detector) FindRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", start, err)
	}

	for i := 0; i <= maxRootAscent; i++ {
		if _, err := os.Stat(filepath.Join(dir, "package.json")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("%w: searched %d levels up from %s", ErrNoPackageJSON, maxRootAscent, start)
}

// Detect reads the project at projectRoot and reports its framework,
// bundler, and package manager.
//
// # Description
//
// Reads package.json exactly once and performs constant-count stat calls
// against the project root. It never descends into node_modules or source
// directories.
//
// # Inputs
//
//   - projectRoot: directory containing package.json
//
// # Outputs
//
//   - *Project: detection result, never nil on success
//   - error: ErrNoPackageJSON or ErrInvalidPackageJSON, wrapped with the path
func (d *Detector) Detect(projectRoot string) (*Project, error) {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", projectRoot, err)
	}

	pkgPath := filepath.Join(root, "package.json")
	data, err := os.ReadFile(pkgPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoPackageJSON, root)
		}
		return nil, fmt.Errorf("reading %s: %w", pkgPath, err)
	}

	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPackageJSON, pkgPath, err)
	}

	project := &Project{
		Root:            root,
		Name:            pkg.Name,
		Framework:       detectFramework(&pkg),
		Dependencies:    pkg.Dependencies,
		DevDependencies: pkg.DevDependencies,
	}
	project.Bundler = detectBundler(root, project)
	project.PackageManager = detectPackageManager(root, &pkg)
	project.TypeScript = fileExists(filepath.Join(root, "tsconfig.json"))

	d.log.Debug("project detected",
		"root", root,
		"framework", project.Framework,
		"bundler", project.Bundler,
		"package_manager", project.PackageManager,
	)
	return project, nil
}

func detectFramework(pkg *packageJSON) Framework {
	for _, marker := range frameworkMarkers {
		if _, ok := pkg.Dependencies[marker.dep]; ok {
			return marker.framework
		}
		if _, ok := pkg.DevDependencies[marker.dep]; ok {
			return marker.framework
		}
	}
	return FrameworkVanilla
}

func detectBundler(root string, project *Project) Bundler {
	for _, marker := range bundlerMarkers {
		if project.HasDependency(marker.dep) {
			return marker.bundler
		}
		for _, cfg := range marker.configs {
			if fileExists(filepath.Join(root, cfg)) {
				return marker.bundler
			}
		}
	}
	return BundlerNone
}

func detectPackageManager(root string, pkg *packageJSON) PackageManager {
	// The packageManager field ("pnpm@9.1.0") is authoritative when present.
	if pkg.PackageManager != "" {
		name, _, _ := strings.Cut(pkg.PackageManager, "@")
		switch PackageManager(name) {
		case PMNpm, PMPnpm, PMYarn, PMBun:
			return PackageManager(name)
		}
	}

	for _, marker := range lockfileMarkers {
		if fileExists(filepath.Join(root, marker.file)) {
			return marker.pm
		}
	}
	return PMNpm
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
