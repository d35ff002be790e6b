// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package compat implements the plugin compatibility engine for forge.
//
// The engine answers one question: given a set of plugins the user wants to
// add to a project, are they safe to install together? It does this with a
// declarative rule model and an indexed constraint checker:
//
//   - Rules: a tagged union of four constraint kinds (exclusive, conflict,
//     requires, recommends), optionally scoped to a project framework.
//   - Index: four lookup maps built once per rule set, so validation cost
//     scales with the number of selected plugins rather than rules x plugins.
//   - Validator: evaluates a selection against the index plus the detected
//     project context and returns a structured Result.
//
// # Design
//
// Validation never returns an error for well-formed inputs. Violations are
// data, not exceptions: they are collected into Result.Errors,
// Result.Warnings, and Result.Suggestions, and Result.Valid is true exactly
// when Errors is empty. A malformed rule is logged and skipped so one bad
// catalog entry cannot take down the whole check.
//
// The index and validator are pure after construction and safe to share
// between goroutines. Rebuild the index whenever the rule set changes; there
// is no incremental update.
//
// # Usage
//
//	rules := registry.GenerateRules(catalog)
//	v := compat.NewValidator(rules, logger)
//	result := v.Validate([]string{"zustand", "tailwindcss"}, &compat.ProjectContext{
//	    Framework:    "react",
//	    Dependencies: project.Dependencies,
//	})
//	if !result.Valid {
//	    // surface result.Errors to the user, abort installation
//	}
package compat
