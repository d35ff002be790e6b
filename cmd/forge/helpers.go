// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"os"
	"path/filepath"

	"github.com/AleutianAI/AleutianForge/cmd/forge/internal/compat"
	"github.com/AleutianAI/AleutianForge/cmd/forge/internal/registry"
	"github.com/AleutianAI/AleutianForge/pkg/logging"
)

// customRulesFile is the project-local rules file merged on top of the
// catalog-derived rule set. Teams use it to forbid or discourage
// combinations the shipped catalog has no opinion on.
const customRulesFile = "forge.rules.yaml"

// buildRules derives the rule set for a project: catalog rules plus any
// project-local custom rules. An empty root skips the custom layer.
func buildRules(reg *registry.Registry, root string, log *logging.Logger) []compat.Rule {
	rules := reg.GenerateRules()
	if root != "" {
		rules = append(rules, loadCustomRules(root, log)...)
	}
	return rules
}

// loadCustomRules reads the project's rules file, if present. Any failure
// is logged and yields nil: a broken rules file must not take validation
// down with it.
func loadCustomRules(root string, log *logging.Logger) []compat.Rule {
	path := filepath.Join(root, customRulesFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("could not read custom rules", "path", path, "error", err)
		}
		return nil
	}

	rules, skipped, err := compat.ParseRuleDocs(data)
	if err != nil {
		log.Warn("could not parse custom rules", "path", path, "error", err)
		return nil
	}
	for _, skip := range skipped {
		log.Warn("skipping malformed custom rule", "path", path, "error", skip)
	}
	return rules
}
