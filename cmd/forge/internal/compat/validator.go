// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package compat

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/AleutianAI/AleutianForge/pkg/logging"
)

// ProjectContext is the detector-supplied view of the target project that
// validation runs against. Dependencies and DevDependencies map package
// names to the version range declared in package.json.
type ProjectContext struct {
	Framework       string
	Dependencies    map[string]string
	DevDependencies map[string]string
}

// declaredVersion looks a package up in either dependency map.
func (c *ProjectContext) declaredVersion(name string) (string, bool) {
	if c == nil {
		return "", false
	}
	if v, ok := c.Dependencies[name]; ok {
		return v, true
	}
	if v, ok := c.DevDependencies[name]; ok {
		return v, true
	}
	return "", false
}

// ViolationType identifies which check produced a violation.
type ViolationType string

const (
	ViolationExclusivity       ViolationType = "exclusivity"
	ViolationConflict          ViolationType = "conflict"
	ViolationFrameworkConflict ViolationType = "framework_conflict"
	ViolationDependency        ViolationType = "dependency"
)

// Violation is one detected rule violation. It is data, never an error
// value: the caller decides whether to block, warn, or override.
type Violation struct {
	Type          ViolationType `json:"type"`
	Plugins       []string      `json:"plugins"`
	Reason        string        `json:"reason"`
	Severity      Severity      `json:"severity"`
	AllowOverride bool          `json:"allow_override"`
}

// Result aggregates one validation run.
//
// Valid is true exactly when Errors is empty. A Result is never mutated
// after Validate returns; callers may cache or discard it freely.
type Result struct {
	Valid       bool        `json:"valid"`
	Errors      []Violation `json:"errors,omitempty"`
	Warnings    []Violation `json:"warnings,omitempty"`
	Suggestions []string    `json:"suggestions,omitempty"`
}

// Validator evaluates plugin selections against an indexed rule set.
//
// # Description
//
// A Validator is built once per rule-set snapshot and reused across
// validation runs. Validate is a pure function of its inputs: the same
// selection, context, and rule set always produce the same Result, so
// re-validating is idempotent.
//
// # Thread Safety
//
// Validator is immutable after construction and safe for concurrent use.
type Validator struct {
	index *Index
	log   *logging.Logger
}

// NewValidator builds a validator over the given rule list.
//
// Malformed rules are logged at warn level and skipped; they never abort
// construction.
func NewValidator(rules []Rule, logger *logging.Logger) *Validator {
	if logger == nil {
		logger = logging.Default()
	}
	index, skipped := NewIndex(rules)
	for _, err := range skipped {
		logger.Warn("skipping malformed compatibility rule", "error", err)
	}
	return &Validator{index: index, log: logger}
}

// Index exposes the underlying rule index for callers that need raw
// lookups (for example, reverse-dependency queries in the CLI).
func (v *Validator) Index() *Index { return v.index }

// Validate evaluates a candidate plugin selection against the rule set and
// the optional project context.
//
// # Description
//
// Checks run in a fixed order: exclusivity, framework-agnostic conflicts,
// framework-scoped conflicts, dependencies, recommendations. Within each
// category, violations follow the selection order, not rule-declaration
// order. Rules scoped to a framework other than ctx.Framework never fire;
// with a nil ctx only global rules apply.
//
// # Inputs
//
//   - selected: candidate plugin names, order preserved in output
//   - ctx: detected project context, may be nil
//
// # Outputs
//
//   - Result: errors, warnings, and suggestions; Valid iff zero errors
func (v *Validator) Validate(selected []string, ctx *ProjectContext) Result {
	var result Result

	activeFramework := ""
	if ctx != nil {
		activeFramework = ctx.Framework
	}

	// Exclusivity groups.
	for _, violation := range v.index.ExclusivityViolations(selected) {
		meta := violation.Rule.Meta()
		if !meta.appliesTo(activeFramework) {
			continue
		}
		result.route(Violation{
			Type:          ViolationExclusivity,
			Plugins:       violation.Selected,
			Reason:        exclusivityReason(violation),
			Severity:      meta.Severity,
			AllowOverride: meta.AllowOverride,
		})
	}

	// Conflicts. Global rules need two selected members; a framework-scoped
	// rule listing a single plugin conflicts with the framework itself and
	// fires as soon as that plugin is selected.
	for _, hit := range v.index.ConflictCandidates(selected) {
		meta := hit.Rule.Meta()
		if !meta.appliesTo(activeFramework) {
			continue
		}

		if meta.Framework == "" {
			if len(hit.Selected) >= 2 {
				result.route(Violation{
					Type:          ViolationConflict,
					Plugins:       hit.Selected,
					Reason:        conflictReason(hit),
					Severity:      meta.Severity,
					AllowOverride: meta.AllowOverride,
				})
			}
			continue
		}

		threshold := 2
		if len(hit.Rule.Plugins) == 1 {
			threshold = 1
		}
		if len(hit.Selected) >= threshold {
			result.route(Violation{
				Type:          ViolationFrameworkConflict,
				Plugins:       hit.Selected,
				Reason:        frameworkConflictReason(hit, meta.Framework),
				Severity:      meta.Severity,
				AllowOverride: meta.AllowOverride,
			})
		}
	}

	// Dependencies. Unmet requirements are always hard errors.
	selectedSet := toSet(selected)
	for _, rule := range v.index.Requirements(selected) {
		if !rule.Meta().appliesTo(activeFramework) {
			continue
		}
		for _, req := range rule.Requires {
			if missing, reason := v.unmetRequirement(rule, req, selectedSet, ctx); missing {
				result.Errors = append(result.Errors, Violation{
					Type:          ViolationDependency,
					Plugins:       []string{rule.Plugin},
					Reason:        reason,
					Severity:      SeverityError,
					AllowOverride: rule.AllowOverride,
				})
			}
		}
	}

	// Recommendations become free-text suggestions, never violations.
	for _, rule := range v.index.Recommendations(selected) {
		if !rule.Meta().appliesTo(activeFramework) {
			continue
		}
		for _, rec := range rule.Recommends {
			bare, _ := splitRequirement(rec)
			if selectedSet[bare] {
				continue
			}
			if _, declared := ctx.declaredVersion(bare); declared {
				continue
			}
			result.Suggestions = append(result.Suggestions, suggestionText(rule, rec))
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// unmetRequirement checks one requirement token. Versioned tokens denote
// external packages and are checked against the project's declared
// dependencies; bare tokens must be part of the selection itself.
func (v *Validator) unmetRequirement(rule RequiresRule, req string, selectedSet map[string]bool, ctx *ProjectContext) (bool, string) {
	bare, constraint := splitRequirement(req)

	if constraint == "" {
		if selectedSet[bare] {
			return false, ""
		}
		reason := fmt.Sprintf("%s requires %s, which is not in the selection", rule.Plugin, bare)
		if rule.Reason != "" {
			reason += ": " + rule.Reason
		}
		return true, reason
	}

	declared, ok := ctx.declaredVersion(bare)
	if !ok {
		return true, fmt.Sprintf("%s requires %s@%s, which is not declared in package.json", rule.Plugin, bare, constraint)
	}
	if !rangeSatisfies(declared, constraint) {
		return true, fmt.Sprintf("%s requires %s@%s, but the project declares %s@%s", rule.Plugin, bare, constraint, bare, declared)
	}
	return false, ""
}

// rangeSatisfies reports whether a declared package.json range satisfies a
// required constraint. Ranges are not resolved against a registry, so the
// check is best-effort: the declared range's base version is tested against
// the required constraint, and any unparseable input counts as satisfied
// (presence in package.json is the hard requirement).
func rangeSatisfies(declared, constraint string) bool {
	base := strings.TrimLeft(strings.TrimSpace(declared), "^~=v")
	if i := strings.IndexAny(base, " <>|"); i >= 0 {
		// Compound ranges ("1.x || 2.x", ">=1 <2") are out of scope for a
		// best-effort check.
		return true
	}
	version, err := semver.NewVersion(base)
	if err != nil {
		return true
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return true
	}
	return c.Check(version)
}

// route appends a violation to errors or warnings based on severity.
// Only error severity blocks; warning and info surface without failing
// validation.
func (r *Result) route(v Violation) {
	if v.Severity == SeverityError {
		r.Errors = append(r.Errors, v)
		return
	}
	r.Warnings = append(r.Warnings, v)
}

func exclusivityReason(violation ExclusivityViolation) string {
	reason := fmt.Sprintf("only one of [%s] may be installed; selected %s",
		strings.Join(violation.Rule.Plugins, ", "), strings.Join(violation.Selected, ", "))
	if violation.Rule.Reason != "" {
		reason += ": " + violation.Rule.Reason
	}
	return reason
}

func conflictReason(hit ConflictHit) string {
	reason := fmt.Sprintf("%s are known to conflict", strings.Join(hit.Selected, " and "))
	if hit.Rule.Reason != "" {
		reason += ": " + hit.Rule.Reason
	}
	return reason
}

func frameworkConflictReason(hit ConflictHit, framework string) string {
	var reason string
	if len(hit.Rule.Plugins) == 1 {
		reason = fmt.Sprintf("%s is incompatible with %s projects", hit.Rule.Plugins[0], framework)
	} else {
		reason = fmt.Sprintf("%s conflict under %s", strings.Join(hit.Selected, " and "), framework)
	}
	if hit.Rule.Reason != "" {
		reason += ": " + hit.Rule.Reason
	}
	return reason
}

func suggestionText(rule RecommendsRule, rec string) string {
	bare, _ := splitRequirement(rec)
	text := fmt.Sprintf("consider adding %s alongside %s", bare, rule.Plugin)
	if rule.Reason != "" {
		text += ": " + rule.Reason
	}
	return text
}
