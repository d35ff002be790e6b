// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AleutianAI/AleutianForge/cmd/forge/internal/configwrite"
	"github.com/AleutianAI/AleutianForge/cmd/forge/internal/detect"
	"github.com/AleutianAI/AleutianForge/cmd/forge/internal/registry"
	"github.com/AleutianAI/AleutianForge/pkg/logging"
)

// Planner maps catalog descriptors onto executable steps for one project.
type Planner struct {
	registry *registry.Registry
	project  *detect.Project
	writer   *configwrite.Writer
	pm       CommandRunner
	log      *logging.Logger
}

// NewPlanner creates a planner. All collaborators are required except the
// logger, which falls back to the package default.
func NewPlanner(reg *registry.Registry, project *detect.Project, writer *configwrite.Writer, pm CommandRunner, logger *logging.Logger) *Planner {
	if logger == nil {
		logger = logging.Default()
	}
	return &Planner{
		registry: reg,
		project:  project,
		writer:   writer,
		pm:       pm,
		log:      logger,
	}
}

// configStepBuilders maps plugin names to their config-scaffolding step
// builder. Plugins without an entry only install packages.
var configStepBuilders = map[string]func(*Planner, registry.Descriptor) Step{
	"tailwindcss": (*Planner).tailwindSteps,
	"zustand":     (*Planner).zustandSteps,
	"pinia":       (*Planner).piniaSteps,
	"prettier":    (*Planner).prettierSteps,
}

// BuildSteps plans the installation of the named plugins in order.
//
// # Error Conditions
//
//   - registry.ErrUnknownPlugin: a name is not in the catalog
//   - ErrUnsupportedFramework: a plugin does not support the detected
//     framework
//   - ErrNothingToInstall: the selection produced no steps
func (p *Planner) BuildSteps(plugins []string) ([]Step, error) {
	var steps []Step
	for _, name := range plugins {
		desc, ok := p.registry.Get(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", registry.ErrUnknownPlugin, name)
		}
		if !desc.SupportsFramework(string(p.project.Framework)) {
			return nil, fmt.Errorf("%w: %s does not support %s", ErrUnsupportedFramework, name, p.project.Framework)
		}

		if len(desc.Packages) > 0 {
			steps = append(steps, p.packageStep(desc, desc.Packages, false))
		}
		if len(desc.DevPackages) > 0 {
			steps = append(steps, p.packageStep(desc, desc.DevPackages, true))
		}
		if build, ok := configStepBuilders[name]; ok {
			steps = append(steps, build(p, desc))
		}
	}

	if len(steps) == 0 {
		return nil, ErrNothingToInstall
	}
	return steps, nil
}

// packageStep installs a descriptor's packages through the project's
// package manager, with an uninstall rollback.
func (p *Planner) packageStep(desc registry.Descriptor, packages []string, dev bool) Step {
	install := installCommand(p.project.PackageManager, packages, dev)
	uninstall := uninstallCommand(p.project.PackageManager, packages)
	suffix := ""
	if dev {
		suffix = " (dev)"
	}

	return Step{
		Name: fmt.Sprintf("install %s packages%s", desc.Name, suffix),
		Apply: func(ctx context.Context) error {
			return p.pm.Run(ctx, p.project.Root, install)
		},
		Rollback: func(ctx context.Context) error {
			return p.pm.Run(ctx, p.project.Root, uninstall)
		},
	}
}

// scriptExt picks the source extension for generated files.
func (p *Planner) scriptExt() string {
	if p.project.TypeScript {
		return "ts"
	}
	return "js"
}

// Config-file steps rely on the backup session for rollback: every write
// below goes through the config writer, which captures originals before
// touching them, so Rollback stays nil and RestoreAll does the undo.

func (p *Planner) tailwindSteps(desc registry.Descriptor) Step {
	return Step{
		Name: "scaffold tailwindcss config",
		Apply: func(ctx context.Context) error {
			root := p.project.Root
			if _, err := p.writer.CreateFile(filepath.Join(root, "tailwind.config.js"), []byte(tailwindConfig)); err != nil {
				return err
			}
			if _, err := p.writer.CreateFile(filepath.Join(root, "postcss.config.js"), []byte(postcssConfig)); err != nil {
				return err
			}

			// Prepend the directives to the main stylesheet when one exists.
			for _, css := range []string{"src/index.css", "src/style.css", "src/app.css"} {
				path := filepath.Join(root, css)
				if _, err := os.Stat(path); err != nil {
					continue
				}
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				content := append([]byte(tailwindDirectives), data...)
				if _, err := p.writer.WriteFile(path, content, true); err != nil {
					return err
				}
				break
			}
			return nil
		},
	}
}

func (p *Planner) zustandSteps(desc registry.Descriptor) Step {
	return Step{
		Name: "scaffold zustand store",
		Apply: func(ctx context.Context) error {
			path := filepath.Join(p.project.Root, "src", "store", "useAppStore."+p.scriptExt())
			_, err := p.writer.CreateFile(path, []byte(zustandStore))
			return err
		},
	}
}

func (p *Planner) piniaSteps(desc registry.Descriptor) Step {
	return Step{
		Name: "scaffold pinia store",
		Apply: func(ctx context.Context) error {
			root := p.project.Root
			ext := p.scriptExt()

			path := filepath.Join(root, "src", "stores", "counter."+ext)
			if _, err := p.writer.CreateFile(path, []byte(piniaStore)); err != nil {
				return err
			}

			// Register the plugin in the entry point when we can find it.
			for _, main := range []string{"src/main." + ext, "src/main.js", "src/main.ts"} {
				entry := filepath.Join(root, main)
				if _, err := os.Stat(entry); err != nil {
					continue
				}
				if _, err := p.writer.InjectImport(entry, "import { createPinia } from 'pinia'"); err != nil {
					return err
				}
				break
			}
			return nil
		},
	}
}

func (p *Planner) prettierSteps(desc registry.Descriptor) Step {
	return Step{
		Name: "scaffold prettier config",
		Apply: func(ctx context.Context) error {
			root := p.project.Root
			if _, err := p.writer.CreateFile(filepath.Join(root, ".prettierrc"), []byte(prettierConfig)); err != nil {
				return err
			}
			_, err := p.writer.ModifyPackageJSON(root, func(pkg map[string]any) error {
				scripts, _ := pkg["scripts"].(map[string]any)
				if scripts == nil {
					scripts = make(map[string]any)
					pkg["scripts"] = scripts
				}
				if _, exists := scripts["format"]; !exists {
					scripts["format"] = "prettier --write ."
				}
				return nil
			})
			return err
		},
	}
}

const tailwindConfig = `/** @type {import('tailwindcss').Config} */
module.exports = {
  content: ['./index.html', './src/**/*.{js,ts,jsx,tsx,vue,svelte,astro}'],
  theme: {
    extend: {},
  },
  plugins: [],
}
`

const postcssConfig = `module.exports = {
  plugins: {
    tailwindcss: {},
    autoprefixer: {},
  },
}
`

const tailwindDirectives = `@tailwind base;
@tailwind components;
@tailwind utilities;

`

const zustandStore = `import { create } from 'zustand'

export const useAppStore = create((set) => ({
  count: 0,
  increment: () => set((state) => ({ count: state.count + 1 })),
  reset: () => set({ count: 0 }),
}))
`

const piniaStore = `import { defineStore } from 'pinia'

export const useCounterStore = defineStore('counter', {
  state: () => ({ count: 0 }),
  actions: {
    increment() {
      this.count++
    },
  },
})
`

const prettierConfig = `{
  "semi": false,
  "singleQuote": true,
  "trailingComma": "es5"
}
`
