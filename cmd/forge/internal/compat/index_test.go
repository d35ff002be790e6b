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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIndex_SkipsMalformed(t *testing.T) {
	rules := []Rule{
		ExclusiveRule{RuleMeta: RuleMeta{Severity: SeverityError}, Plugins: []string{"only-one"}},
		RequiresRule{RuleMeta: RuleMeta{Severity: SeverityError}, Plugin: "", Requires: []string{"x"}},
		ConflictRule{RuleMeta: RuleMeta{Severity: SeverityError}, Plugins: []string{"a", "b"}},
	}

	ix, skipped := NewIndex(rules)
	require.Len(t, skipped, 2)
	for _, err := range skipped {
		var malformed *MalformedRuleError
		assert.ErrorAs(t, err, &malformed)
	}

	// The valid conflict rule survived the bad neighbors.
	hits := ix.Conflicts([]string{"a", "b"})
	require.Len(t, hits, 1)
}

// Two builds from the same rule list answer queries identically.
func TestNewIndex_Deterministic(t *testing.T) {
	rules := []Rule{
		ConflictRule{RuleMeta: RuleMeta{Severity: SeverityError}, Plugins: []string{"a", "b"}},
		ConflictRule{RuleMeta: RuleMeta{Severity: SeverityWarning}, Plugins: []string{"b", "c"}},
		ExclusiveRule{RuleMeta: RuleMeta{Severity: SeverityError}, Plugins: []string{"a", "c", "d"}},
		RequiresRule{RuleMeta: RuleMeta{Severity: SeverityError}, Plugin: "a", Requires: []string{"e"}},
	}

	first, _ := NewIndex(rules)
	second, _ := NewIndex(rules)
	selection := []string{"d", "c", "b", "a"}

	assert.Equal(t, first.Conflicts(selection), second.Conflicts(selection))
	assert.Equal(t, first.ExclusivityViolations(selection), second.ExclusivityViolations(selection))
	assert.Equal(t, first.Requirements(selection), second.Requirements(selection))
}

func TestIndex_ConflictsDedupAndOrder(t *testing.T) {
	rules := []Rule{
		ConflictRule{RuleMeta: RuleMeta{Severity: SeverityError, Reason: "r1"}, Plugins: []string{"a", "b", "c"}},
	}
	ix, skipped := NewIndex(rules)
	require.Empty(t, skipped)

	// Reachable from all three selected members, reported once, with the
	// selected subset in selection order.
	hits := ix.Conflicts([]string{"c", "a", "b"})
	require.Len(t, hits, 1)
	assert.Equal(t, []string{"c", "a", "b"}, hits[0].Selected)

	// One selected member is a candidate but not an active conflict.
	assert.Empty(t, ix.Conflicts([]string{"a"}))
	require.Len(t, ix.ConflictCandidates([]string{"a"}), 1)
}

func TestIndex_ExclusivityIntersection(t *testing.T) {
	rules := []Rule{
		ExclusiveRule{RuleMeta: RuleMeta{Severity: SeverityError}, Plugins: []string{"w", "x", "y", "z"}},
	}
	ix, _ := NewIndex(rules)

	violations := ix.ExclusivityViolations([]string{"other", "y", "w"})
	require.Len(t, violations, 1)
	assert.Equal(t, []string{"y", "w"}, violations[0].Selected)

	assert.Empty(t, ix.ExclusivityViolations([]string{"z", "other"}))
}

func TestIndex_RequirementsSelectionOrder(t *testing.T) {
	rules := []Rule{
		RequiresRule{RuleMeta: RuleMeta{Severity: SeverityError}, Plugin: "a", Requires: []string{"dep-a"}},
		RequiresRule{RuleMeta: RuleMeta{Severity: SeverityError}, Plugin: "b", Requires: []string{"dep-b"}},
	}
	ix, _ := NewIndex(rules)

	got := ix.Requirements([]string{"b", "missing", "a"})
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Plugin)
	assert.Equal(t, "a", got[1].Plugin)
}

func TestIndex_Dependents(t *testing.T) {
	rules := []Rule{
		RequiresRule{RuleMeta: RuleMeta{Severity: SeverityError}, Plugin: "pinia", Requires: []string{"vue@^3.0.0"}},
		RequiresRule{RuleMeta: RuleMeta{Severity: SeverityError}, Plugin: "vue-router", Requires: []string{"vue@^3.0.0"}},
		RequiresRule{RuleMeta: RuleMeta{Severity: SeverityError}, Plugin: "zustand", Requires: []string{"react"}},
	}
	ix, _ := NewIndex(rules)

	// Versioned requirements index under the bare package name.
	assert.Equal(t, []string{"pinia", "vue-router"}, ix.Dependents("vue"))
	assert.Equal(t, []string{"zustand"}, ix.Dependents("react"))
	assert.Empty(t, ix.Dependents("svelte"))

	// Callers get a copy, not the internal slice.
	deps := ix.Dependents("vue")
	deps[0] = "mutated"
	assert.Equal(t, []string{"pinia", "vue-router"}, ix.Dependents("vue"))
}

func TestIndex_EmptyRuleSet(t *testing.T) {
	ix, skipped := NewIndex(nil)
	assert.Empty(t, skipped)
	assert.Empty(t, ix.Conflicts([]string{"a", "b"}))
	assert.Empty(t, ix.ExclusivityViolations([]string{"a", "b"}))
	assert.Empty(t, ix.Requirements([]string{"a"}))
	assert.Empty(t, ix.Recommendations([]string{"a"}))
}
