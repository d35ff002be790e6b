// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for inputs that end up in subprocess
// calls or file paths. Package specifications from the catalog are handed
// to the package manager on a command line; validating them first prevents
// command injection through a malformed spec.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// namePattern matches valid npm package names, optionally scoped.
// Allows: lowercase letters, digits, dots, hyphens, underscores,
// an optional @scope/ prefix. Max length: 214 characters (npm's limit).
var namePattern = regexp.MustCompile(`^(@[a-z0-9][a-z0-9._-]*/)?[a-z0-9][a-z0-9._-]*$`)

// versionPattern matches the version-range suffix of a spec.
// Allows: digits, letters, dots, hyphens, and the range operators
// ^ ~ > < = * x plus || and spaces for compound ranges.
var versionPattern = regexp.MustCompile(`^[\^~><=*x0-9a-zA-Z.|\- ]+$`)

// ValidatePackageName validates a bare npm package name.
//
// Valid names:
//   - 1-214 characters
//   - lowercase letters, digits, dots, hyphens, underscores
//   - optional @scope/ prefix (same character rules for the scope)
//
// Returns an error if the name is invalid.
//
// Example:
//
//	if err := validation.ValidatePackageName(name); err != nil {
//	    return fmt.Errorf("invalid package: %w", err)
//	}
//	// Safe to pass to the package manager
func ValidatePackageName(name string) error {
	if name == "" {
		return fmt.Errorf("package name cannot be empty")
	}
	if len(name) > 214 {
		return fmt.Errorf("package name too long: %d characters (max 214)", len(name))
	}
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid package name: %q (lowercase alphanumerics, dots, hyphens, underscores, optional @scope/)", name)
	}
	return nil
}

// ValidatePackageSpec validates a package specification of the form
// name or name@range, where name may itself be scoped (@scope/name).
// The @ separating name from range is the last one outside the scope.
func ValidatePackageSpec(spec string) error {
	if spec == "" {
		return fmt.Errorf("package spec cannot be empty")
	}
	if strings.HasSuffix(spec, "@") {
		return fmt.Errorf("package spec has empty version range: %q", spec)
	}

	name, rng := splitSpec(spec)
	if err := ValidatePackageName(name); err != nil {
		return err
	}
	if rng != "" && !versionPattern.MatchString(rng) {
		return fmt.Errorf("invalid version range in %q: %q", spec, rng)
	}
	return nil
}

// ValidatePackageSpecs validates multiple specs.
// Returns an error listing every invalid spec if any fail validation.
func ValidatePackageSpecs(specs []string) error {
	var invalid []string
	for _, s := range specs {
		if err := ValidatePackageSpec(s); err != nil {
			invalid = append(invalid, s)
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid package specs: %v", invalid)
	}
	return nil
}

// splitSpec separates a spec into name and version range. A leading @
// belongs to the scope, not the range separator.
func splitSpec(spec string) (string, string) {
	search := spec
	offset := 0
	if strings.HasPrefix(spec, "@") {
		search = spec[1:]
		offset = 1
	}
	i := strings.LastIndex(search, "@")
	if i < 0 {
		return spec, ""
	}
	return spec[:offset+i], spec[offset+i+1:]
}
