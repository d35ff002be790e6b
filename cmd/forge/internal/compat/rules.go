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

	"gopkg.in/yaml.v3"
)

// RuleKind discriminates the rule variants.
type RuleKind string

const (
	// KindExclusive marks a group where at most one plugin may be selected.
	KindExclusive RuleKind = "exclusive"

	// KindConflict marks plugins that are discouraged together.
	KindConflict RuleKind = "conflict"

	// KindRequires marks a plugin that mandates companion plugins or
	// external packages.
	KindRequires RuleKind = "requires"

	// KindRecommends marks a non-blocking pairing suggestion.
	KindRecommends RuleKind = "recommends"
)

// Severity classifies how a violated rule is reported.
type Severity string

const (
	// SeverityError blocks installation.
	SeverityError Severity = "error"

	// SeverityWarning is surfaced but does not block.
	SeverityWarning Severity = "warning"

	// SeverityInfo is informational only.
	SeverityInfo Severity = "info"
)

// UnmarshalYAML validates severity values at the decoding boundary.
func (s *Severity) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	incoming := Severity(raw)
	switch incoming {
	case SeverityError, SeverityWarning, SeverityInfo:
		*s = incoming
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSeverity, raw)
	}
}

// RuleMeta carries the fields shared by every rule variant.
//
// Framework scopes the rule to one detected framework; empty means the rule
// is global. Reason is surfaced verbatim in validation output.
type RuleMeta struct {
	Severity      Severity
	Framework     string
	AllowOverride bool
	Reason        string
}

// Meta returns the shared rule fields.
func (m RuleMeta) Meta() RuleMeta { return m }

// appliesTo reports whether a rule with this meta is in scope for the given
// active framework. An empty active framework means no project context was
// supplied, in which case only global rules apply.
func (m RuleMeta) appliesTo(activeFramework string) bool {
	if m.Framework == "" {
		return true
	}
	return activeFramework != "" && m.Framework == activeFramework
}

// Rule is the sealed interface over the four constraint variants.
//
// # Description
//
// Modeling the variants as distinct types (rather than one struct with
// optional fields) makes invalid field combinations unrepresentable: an
// exclusive rule cannot carry a requirement list, and a requires rule cannot
// name a conflict group. Code that needs variant data type-switches on the
// concrete types.
type Rule interface {
	// Kind identifies the variant.
	Kind() RuleKind

	// Meta returns the shared severity/framework/override/reason fields.
	Meta() RuleMeta

	// wellFormed reports a structural problem with the rule, if any.
	// Malformed rules are skipped during index construction, never fatal.
	wellFormed() error
}

// ExclusiveRule declares a group from which at most one plugin may be
// selected (for example, the state-management libraries).
type ExclusiveRule struct {
	RuleMeta
	Plugins []string
}

// Kind identifies the variant.
func (r ExclusiveRule) Kind() RuleKind { return KindExclusive }

func (r ExclusiveRule) wellFormed() error {
	if len(r.Plugins) < 2 {
		return &MalformedRuleError{Kind: KindExclusive, Detail: strings.Join(r.Plugins, ","), Err: ErrMissingPlugins}
	}
	return nil
}

// ConflictRule declares two or more plugins that should not be combined.
//
// A framework-scoped conflict with a single listed plugin means the plugin
// conflicts with the framework itself and fires as soon as it is selected.
type ConflictRule struct {
	RuleMeta
	Plugins []string
}

// Kind identifies the variant.
func (r ConflictRule) Kind() RuleKind { return KindConflict }

func (r ConflictRule) wellFormed() error {
	// Single-plugin conflicts are only meaningful with a framework scope.
	if len(r.Plugins) == 0 || (len(r.Plugins) == 1 && r.Framework == "") {
		return &MalformedRuleError{Kind: KindConflict, Detail: strings.Join(r.Plugins, ","), Err: ErrMissingPlugins}
	}
	return nil
}

// RequiresRule declares that selecting Plugin mandates the presence of each
// entry in Requires.
//
// A requirement of the form "name@range" (for example "vue@^3.0.0") denotes
// an external package that must already be declared in the project's
// dependencies; a bare name denotes another plugin that must be part of the
// same selection.
type RequiresRule struct {
	RuleMeta
	Plugin   string
	Requires []string
}

// Kind identifies the variant.
func (r RequiresRule) Kind() RuleKind { return KindRequires }

func (r RequiresRule) wellFormed() error {
	if r.Plugin == "" {
		return &MalformedRuleError{Kind: KindRequires, Err: ErrMissingPlugin}
	}
	if len(r.Requires) == 0 {
		return &MalformedRuleError{Kind: KindRequires, Detail: r.Plugin, Err: ErrMissingRequires}
	}
	return nil
}

// RecommendsRule declares non-blocking companion suggestions for Plugin.
type RecommendsRule struct {
	RuleMeta
	Plugin     string
	Recommends []string
}

// Kind identifies the variant.
func (r RecommendsRule) Kind() RuleKind { return KindRecommends }

func (r RecommendsRule) wellFormed() error {
	if r.Plugin == "" {
		return &MalformedRuleError{Kind: KindRecommends, Err: ErrMissingPlugin}
	}
	if len(r.Recommends) == 0 {
		return &MalformedRuleError{Kind: KindRecommends, Detail: r.Plugin, Err: ErrMissingRecommends}
	}
	return nil
}

// Compile-time variant checks.
var (
	_ Rule = ExclusiveRule{}
	_ Rule = ConflictRule{}
	_ Rule = RequiresRule{}
	_ Rule = RecommendsRule{}
)

// =============================================================================
// YAML decoding boundary
// =============================================================================

// RuleDoc is the on-disk shape of a rule: one struct with optional fields,
// discriminated by Type. ToRule converts it into the proper variant and
// rejects inconsistent field combinations, so the optional-field shape never
// leaks past the catalog loader.
type RuleDoc struct {
	Type          RuleKind `yaml:"type"`
	Plugins       []string `yaml:"plugins,omitempty"`
	Plugin        string   `yaml:"plugin,omitempty"`
	Requires      []string `yaml:"requires,omitempty"`
	Recommends    []string `yaml:"recommends,omitempty"`
	Framework     string   `yaml:"framework,omitempty"`
	Severity      Severity `yaml:"severity,omitempty"`
	AllowOverride bool     `yaml:"allowOverride,omitempty"`
	Reason        string   `yaml:"reason,omitempty"`
}

// ToRule converts the document into its tagged-union form.
//
// # Error Conditions
//
//   - ErrUnknownRuleKind: Type is not one of the four kinds
//   - ErrConflictingPayload: fields from another variant are populated
//   - the variant's own structural errors (via wellFormed)
func (d RuleDoc) ToRule() (Rule, error) {
	meta := RuleMeta{
		Severity:      d.Severity,
		Framework:     d.Framework,
		AllowOverride: d.AllowOverride,
		Reason:        d.Reason,
	}
	if meta.Severity == "" {
		meta.Severity = SeverityError
	}

	var rule Rule
	switch d.Type {
	case KindExclusive:
		if d.Plugin != "" || len(d.Requires) > 0 || len(d.Recommends) > 0 {
			return nil, &MalformedRuleError{Kind: d.Type, Err: ErrConflictingPayload}
		}
		rule = ExclusiveRule{RuleMeta: meta, Plugins: d.Plugins}
	case KindConflict:
		if d.Plugin != "" || len(d.Requires) > 0 || len(d.Recommends) > 0 {
			return nil, &MalformedRuleError{Kind: d.Type, Err: ErrConflictingPayload}
		}
		rule = ConflictRule{RuleMeta: meta, Plugins: d.Plugins}
	case KindRequires:
		if len(d.Plugins) > 0 || len(d.Recommends) > 0 {
			return nil, &MalformedRuleError{Kind: d.Type, Err: ErrConflictingPayload}
		}
		rule = RequiresRule{RuleMeta: meta, Plugin: d.Plugin, Requires: d.Requires}
	case KindRecommends:
		if len(d.Plugins) > 0 || len(d.Requires) > 0 {
			return nil, &MalformedRuleError{Kind: d.Type, Err: ErrConflictingPayload}
		}
		rule = RecommendsRule{RuleMeta: meta, Plugin: d.Plugin, Recommends: d.Recommends}
	default:
		return nil, &MalformedRuleError{Kind: d.Type, Err: ErrUnknownRuleKind}
	}

	if err := rule.wellFormed(); err != nil {
		return nil, err
	}
	return rule, nil
}

// ParseRuleDocs decodes a YAML rule list into tagged-union rules.
//
// # Description
//
// This is the entry point for user-supplied rule files layered on top of
// the catalog-derived rule set. Documents that fail conversion are skipped
// and reported in the second return value, matching the index's
// malformed-rule policy; only a YAML syntax error aborts the parse.
func ParseRuleDocs(data []byte) ([]Rule, []error, error) {
	var docs []RuleDoc
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	var rules []Rule
	var skipped []error
	for i, doc := range docs {
		rule, err := doc.ToRule()
		if err != nil {
			skipped = append(skipped, fmt.Errorf("rule %d: %w", i, err))
			continue
		}
		rules = append(rules, rule)
	}
	return rules, skipped, nil
}

// splitRequirement splits a requirement token into its bare package name and
// optional version constraint. Scoped npm names ("@vitejs/plugin-vue@^4.0.0")
// keep their leading @.
func splitRequirement(token string) (name, constraint string) {
	search := token
	offset := 0
	if strings.HasPrefix(token, "@") {
		search = token[1:]
		offset = 1
	}
	idx := strings.Index(search, "@")
	if idx < 0 {
		return token, ""
	}
	return token[:offset+idx], token[offset+idx+1:]
}
