// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package registry holds the embedded plugin catalog and derives the
// compatibility rule set from it.
package registry

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianForge/cmd/forge/internal/compat"
	"github.com/AleutianAI/AleutianForge/pkg/validation"
)

//go:embed plugins.yaml
var embeddedCatalog []byte

// catalogValidate validates descriptor structs on load.
var catalogValidate = validator.New()

// Descriptor describes one installable plugin.
//
// # Fields
//
//   - Frameworks: frameworks the plugin supports; empty means all
//   - Packages / DevPackages: npm packages (with pinned ranges) the
//     installer adds to dependencies / devDependencies
//   - IncompatibleWith: plugins this one must never be combined with
//   - Discourages: combinations that warn but may be overridden
//   - ConflictsWithFrameworks: frameworks the plugin itself is useless or
//     harmful under
//   - Requires: bare plugin names or name@range external packages
//   - Recommends: non-blocking companion suggestions
type Descriptor struct {
	Name                    string   `yaml:"name" validate:"required"`
	Description             string   `yaml:"description" validate:"required"`
	Category                string   `yaml:"category" validate:"required,oneof=styling state routing data forms testing linting build"`
	Frameworks              []string `yaml:"frameworks,omitempty"`
	Packages                []string `yaml:"packages,omitempty"`
	DevPackages             []string `yaml:"devPackages,omitempty"`
	IncompatibleWith        []string `yaml:"incompatibleWith,omitempty"`
	Discourages             []string `yaml:"discourages,omitempty"`
	ConflictsWithFrameworks []string `yaml:"conflictsWithFrameworks,omitempty"`
	Requires                []string `yaml:"requires,omitempty"`
	Recommends              []string `yaml:"recommends,omitempty"`
	Reason                  string   `yaml:"reason,omitempty"`
}

// SupportsFramework reports whether the plugin can be installed into a
// project using the given framework. Plugins with no framework list are
// universal.
func (d Descriptor) SupportsFramework(framework string) bool {
	if len(d.Frameworks) == 0 {
		return true
	}
	for _, fw := range d.Frameworks {
		if fw == framework {
			return true
		}
	}
	return false
}

// exclusiveGroup is a named mutually-exclusive plugin set in the catalog.
type exclusiveGroup struct {
	Name    string   `yaml:"name" validate:"required"`
	Reason  string   `yaml:"reason" validate:"required"`
	Plugins []string `yaml:"plugins" validate:"required,min=2"`
}

// catalogFile is the on-disk catalog shape.
type catalogFile struct {
	Version         int              `yaml:"version" validate:"required,eq=1"`
	ExclusiveGroups []exclusiveGroup `yaml:"exclusiveGroups"`
	Plugins         []Descriptor     `yaml:"plugins" validate:"required,min=1"`
}

// Registry is the loaded, validated plugin catalog.
//
// # Thread Safety
//
// Registry is immutable after Load and safe for concurrent use.
type Registry struct {
	byName map[string]Descriptor
	order  []string
	groups []exclusiveGroup
}

// Load parses and validates the embedded catalog.
//
// The embedded catalog ships with the binary, so a load failure is a build
// defect rather than a user error; callers normally treat it as fatal.
func Load() (*Registry, error) {
	return Parse(embeddedCatalog)
}

// Parse builds a registry from raw catalog YAML.
//
// # Error Conditions
//
//   - ErrCatalogInvalid: YAML syntax errors, failed struct validation,
//     duplicate plugin names, or group/conflict references to plugins the
//     catalog does not define
func Parse(data []byte) (*Registry, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogInvalid, err)
	}
	if err := catalogValidate.Struct(&file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogInvalid, err)
	}

	reg := &Registry{
		byName: make(map[string]Descriptor, len(file.Plugins)),
		groups: file.ExclusiveGroups,
	}
	for _, desc := range file.Plugins {
		if err := catalogValidate.Struct(&desc); err != nil {
			return nil, fmt.Errorf("%w: plugin %q: %v", ErrCatalogInvalid, desc.Name, err)
		}
		if _, dup := reg.byName[desc.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate plugin %q", ErrCatalogInvalid, desc.Name)
		}
		if err := checkPackageSpecs(desc); err != nil {
			return nil, err
		}
		reg.byName[desc.Name] = desc
		reg.order = append(reg.order, desc.Name)
	}

	if err := reg.checkReferences(); err != nil {
		return nil, err
	}
	return reg, nil
}

// checkPackageSpecs rejects descriptors whose package lists would not be
// safe to hand to a package manager command line.
func checkPackageSpecs(desc Descriptor) error {
	for _, list := range [][]string{desc.Packages, desc.DevPackages, desc.Requires, desc.Recommends} {
		if err := validation.ValidatePackageSpecs(list); err != nil {
			return fmt.Errorf("%w: plugin %q: %v", ErrCatalogInvalid, desc.Name, err)
		}
	}
	return nil
}

// checkReferences verifies that every plugin name mentioned by a group or a
// conflict list is itself defined. Requirements and recommendations are
// exempt: they may name external npm packages.
func (r *Registry) checkReferences() error {
	for _, group := range r.groups {
		for _, name := range group.Plugins {
			if _, ok := r.byName[name]; !ok {
				return fmt.Errorf("%w: group %q references unknown plugin %q", ErrCatalogInvalid, group.Name, name)
			}
		}
	}
	for _, desc := range r.byName {
		for _, other := range append(desc.IncompatibleWith, desc.Discourages...) {
			if _, ok := r.byName[other]; !ok {
				return fmt.Errorf("%w: plugin %q references unknown plugin %q", ErrCatalogInvalid, desc.Name, other)
			}
		}
	}
	return nil
}

// Get returns the descriptor for a plugin name.
func (r *Registry) Get(name string) (Descriptor, bool) {
	desc, ok := r.byName[name]
	return desc, ok
}

// List returns every descriptor in catalog order.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

// ListForFramework returns the descriptors installable under the given
// framework, in catalog order.
func (r *Registry) ListForFramework(framework string) []Descriptor {
	var out []Descriptor
	for _, name := range r.order {
		if desc := r.byName[name]; desc.SupportsFramework(framework) {
			out = append(out, desc)
		}
	}
	return out
}

// GenerateRules derives the compatibility rule set from catalog metadata.
//
// # Description
//
// The output is deterministic for a given catalog:
//
//   - each exclusive group yields one blocking exclusivity rule
//   - incompatibleWith entries yield blocking pairwise conflicts,
//     de-duplicated so a symmetric declaration produces one rule
//   - discourages entries yield overridable warning conflicts
//   - conflictsWithFrameworks entries yield framework-scoped single-plugin
//     conflicts
//   - requires and recommends map to their rule kinds directly
//
// The result feeds compat.NewValidator; rebuilding after a catalog change
// is the caller's responsibility.
func (r *Registry) GenerateRules() []compat.Rule {
	var rules []compat.Rule

	for _, group := range r.groups {
		rules = append(rules, compat.ExclusiveRule{
			RuleMeta: compat.RuleMeta{Severity: compat.SeverityError, Reason: group.Reason},
			Plugins:  group.Plugins,
		})
	}

	seenPairs := make(map[string]bool)
	pairKey := func(a, b string) string {
		if b < a {
			a, b = b, a
		}
		return a + "\x00" + b
	}

	for _, name := range r.order {
		desc := r.byName[name]

		for _, other := range desc.IncompatibleWith {
			if key := pairKey(desc.Name, other); !seenPairs[key] {
				seenPairs[key] = true
				rules = append(rules, compat.ConflictRule{
					RuleMeta: compat.RuleMeta{Severity: compat.SeverityError, Reason: desc.Reason},
					Plugins:  []string{desc.Name, other},
				})
			}
		}

		for _, other := range desc.Discourages {
			if key := pairKey(desc.Name, other); !seenPairs[key] {
				seenPairs[key] = true
				rules = append(rules, compat.ConflictRule{
					RuleMeta: compat.RuleMeta{Severity: compat.SeverityWarning, AllowOverride: true, Reason: desc.Reason},
					Plugins:  []string{desc.Name, other},
				})
			}
		}

		for _, fw := range desc.ConflictsWithFrameworks {
			rules = append(rules, compat.ConflictRule{
				RuleMeta: compat.RuleMeta{Severity: compat.SeverityError, Framework: fw, Reason: desc.Reason},
				Plugins:  []string{desc.Name},
			})
		}

		if len(desc.Requires) > 0 {
			rules = append(rules, compat.RequiresRule{
				RuleMeta: compat.RuleMeta{Severity: compat.SeverityError, Reason: desc.Reason},
				Plugin:   desc.Name,
				Requires: desc.Requires,
			})
		}

		if len(desc.Recommends) > 0 {
			rules = append(rules, compat.RecommendsRule{
				RuleMeta:   compat.RuleMeta{Severity: compat.SeverityInfo, Reason: desc.Reason},
				Plugin:     desc.Name,
				Recommends: desc.Recommends,
			})
		}
	}

	return rules
}

// Categories returns the distinct plugin categories in sorted order.
func (r *Registry) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, desc := range r.byName {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			out = append(out, desc.Category)
		}
	}
	sort.Strings(out)
	return out
}
