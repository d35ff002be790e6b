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

// Index provides O(1) average lookup from a plugin name to the rules that
// mention it.
//
// # Description
//
// The validator used to scan every rule for every selected plugin, which is
// quadratic in practice. Index replaces that with four specialized maps
// built once per rule-set snapshot:
//
//   - conflict map: plugin -> conflict rules listing it
//   - dependency map: plugin -> its requires rule, plus a reverse map from
//     bare requirement names to the plugins that require them
//   - recommendation map: plugin -> its recommends rule
//   - exclusivity map: plugin -> its exclusive group
//
// Construction is a pure function of the rule list: two builds from the same
// rules answer every query identically. There is no incremental update;
// rebuild whenever the rule set changes.
//
// Every conflict rule is registered under each of its member plugins, so any
// rule with two or more selected members is always reachable from at least
// one selected plugin's bucket. This makes the full-scan fallback some older
// validators carry unnecessary; the property tests in this package check the
// indexed lookup against a naive pairwise scan.
//
// # Thread Safety
//
// Index is immutable after construction and safe for concurrent use.
type Index struct {
	conflicts   map[string][]conflictEntry
	requires    map[string]RequiresRule
	reverseDeps map[string][]string
	recommends  map[string]RecommendsRule
	exclusive   map[string]exclusiveEntry
}

// conflictEntry pairs a conflict rule with a build-time ordinal used to
// de-duplicate rules reachable from more than one selected plugin.
type conflictEntry struct {
	id   int
	rule ConflictRule
}

// exclusiveEntry pairs an exclusive rule with its synthetic group id. The id
// is bookkeeping only and has no external meaning.
type exclusiveEntry struct {
	group int
	rule  ExclusiveRule
}

// ConflictHit reports one conflict rule reachable from a selection, together
// with the rule members that are actually selected (in selection order).
type ConflictHit struct {
	Rule     ConflictRule
	Selected []string
}

// ExclusivityViolation reports an exclusive group with more than one
// selected member. Selected is exactly the intersection of the group with
// the selection, in selection order.
type ExclusivityViolation struct {
	Rule     ExclusiveRule
	Selected []string
}

// NewIndex builds the four lookup maps from a rule list.
//
// # Description
//
// Malformed rules are skipped and returned for the caller to log; a bad
// catalog entry must not abort validation. The build is deterministic:
// bucket contents follow rule-list order.
//
// # Inputs
//
//   - rules: the full ordered rule list
//
// # Outputs
//
//   - *Index: ready-to-query index
//   - []error: one MalformedRuleError per skipped rule (nil if none)
func NewIndex(rules []Rule) (*Index, []error) {
	ix := &Index{
		conflicts:   make(map[string][]conflictEntry),
		requires:    make(map[string]RequiresRule),
		reverseDeps: make(map[string][]string),
		recommends:  make(map[string]RecommendsRule),
		exclusive:   make(map[string]exclusiveEntry),
	}

	var skipped []error
	nextConflict := 0
	nextGroup := 0

	for _, rule := range rules {
		if err := rule.wellFormed(); err != nil {
			skipped = append(skipped, err)
			continue
		}

		switch r := rule.(type) {
		case ConflictRule:
			entry := conflictEntry{id: nextConflict, rule: r}
			nextConflict++
			for _, p := range r.Plugins {
				ix.conflicts[p] = append(ix.conflicts[p], entry)
			}

		case RequiresRule:
			ix.requires[r.Plugin] = r
			for _, req := range r.Requires {
				bare, _ := splitRequirement(req)
				ix.reverseDeps[bare] = append(ix.reverseDeps[bare], r.Plugin)
			}

		case RecommendsRule:
			ix.recommends[r.Plugin] = r

		case ExclusiveRule:
			entry := exclusiveEntry{group: nextGroup, rule: r}
			nextGroup++
			for _, p := range r.Plugins {
				ix.exclusive[p] = entry
			}
		}
	}

	return ix, skipped
}

// ConflictCandidates returns every conflict rule reachable from the
// selection, de-duplicated by rule, without applying a member threshold.
//
// The validator applies the threshold itself because framework-scoped
// single-plugin conflicts fire at one selected member while ordinary
// conflicts need two.
func (ix *Index) ConflictCandidates(selected []string) []ConflictHit {
	seen := make(map[int]bool)
	selectedSet := toSet(selected)

	var hits []ConflictHit
	for _, name := range selected {
		for _, entry := range ix.conflicts[name] {
			if seen[entry.id] {
				continue
			}
			seen[entry.id] = true
			hits = append(hits, ConflictHit{
				Rule:     entry.rule,
				Selected: intersect(selected, entry.rule.Plugins, selectedSet),
			})
		}
	}
	return hits
}

// Conflicts returns the active conflicts in a selection: rules with at least
// two selected members, in selection order, each rule reported once.
func (ix *Index) Conflicts(selected []string) []ConflictHit {
	candidates := ix.ConflictCandidates(selected)
	active := candidates[:0]
	for _, hit := range candidates {
		if len(hit.Selected) >= 2 {
			active = append(active, hit)
		}
	}
	return active
}

// Requirements returns the requires rule for each selected plugin that has
// one, in selection order.
func (ix *Index) Requirements(selected []string) []RequiresRule {
	var rules []RequiresRule
	for _, name := range selected {
		if r, ok := ix.requires[name]; ok {
			rules = append(rules, r)
		}
	}
	return rules
}

// Recommendations returns the recommends rule for each selected plugin that
// has one, in selection order.
func (ix *Index) Recommendations(selected []string) []RecommendsRule {
	var rules []RecommendsRule
	for _, name := range selected {
		if r, ok := ix.recommends[name]; ok {
			rules = append(rules, r)
		}
	}
	return rules
}

// ExclusivityViolations returns each exclusive group with more than one
// selected member. A fully-selected three-way group yields one violation,
// not three.
func (ix *Index) ExclusivityViolations(selected []string) []ExclusivityViolation {
	seen := make(map[int]bool)
	selectedSet := toSet(selected)

	var violations []ExclusivityViolation
	for _, name := range selected {
		entry, ok := ix.exclusive[name]
		if !ok || seen[entry.group] {
			continue
		}
		seen[entry.group] = true

		members := intersect(selected, entry.rule.Plugins, selectedSet)
		if len(members) > 1 {
			violations = append(violations, ExclusivityViolation{
				Rule:     entry.rule,
				Selected: members,
			})
		}
	}
	return violations
}

// Dependents returns the plugins whose requires rule names the given bare
// package, in rule-list order. Useful for "what would break" queries.
func (ix *Index) Dependents(bareName string) []string {
	deps := ix.reverseDeps[bareName]
	out := make([]string, len(deps))
	copy(out, deps)
	return out
}

// toSet builds a membership set from a selection.
func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// intersect returns the members of group present in selected, ordered by
// their position in selected.
func intersect(selected, group []string, selectedSet map[string]bool) []string {
	groupSet := toSet(group)
	var members []string
	for _, name := range selected {
		if groupSet[name] && selectedSet[name] {
			members = append(members, name)
		}
	}
	return members
}
