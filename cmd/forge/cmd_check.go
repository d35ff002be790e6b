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
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianForge/cmd/forge/internal/compat"
	"github.com/AleutianAI/AleutianForge/cmd/forge/internal/detect"
	"github.com/AleutianAI/AleutianForge/cmd/forge/internal/registry"
	"github.com/AleutianAI/AleutianForge/pkg/logging"
	"github.com/AleutianAI/AleutianForge/pkg/ux"
)

// runCheckCommand validates a plugin selection without touching the
// project. Outside a project the check still runs, but only against the
// global rules.
func runCheckCommand(cmd *cobra.Command, args []string) {
	start := time.Now()
	log := newLogger()
	defer log.Close()

	cfg := OutputConfig{JSON: jsonOutput, Quiet: quietMode}

	reg, err := registry.Load()
	if err != nil {
		os.Exit(OutputResult(cfg, "check", start, nil, false, err))
	}

	ctx, framework, root := projectContext(log, cfg)

	validator := compat.NewValidator(buildRules(reg, root, log), log)
	validation := validator.Validate(args, ctx)

	result := CheckResult{
		Plugins:    args,
		Framework:  framework,
		Validation: validation,
	}

	if !cfg.JSON && !cfg.Quiet {
		printValidation(args, validation)
	}

	hasFindings := len(validation.Errors) > 0
	os.Exit(OutputResult(cfg, "check", start, result, hasFindings, nil))
}

// projectContext detects the surrounding project, if any. A missing
// package.json is not an error for check: the selection is validated
// against the global rules only, and the returned root is empty.
func projectContext(log *logging.Logger, cfg OutputConfig) (*compat.ProjectContext, string, string) {
	detector := detect.NewDetector(log)
	root, err := detector.FindRoot(projectDir)
	if err != nil {
		if errors.Is(err, detect.ErrNoPackageJSON) && !cfg.JSON && !cfg.Quiet {
			ux.Warning("no project detected; checking global rules only")
		}
		return nil, "", ""
	}
	project, err := detector.Detect(root)
	if err != nil {
		log.Warn("project detection failed", "root", root, "error", err)
		return nil, "", ""
	}
	return &compat.ProjectContext{
		Framework:       string(project.Framework),
		Dependencies:    project.Dependencies,
		DevDependencies: project.DevDependencies,
	}, string(project.Framework), root
}

// printValidation renders a Result for humans.
func printValidation(selected []string, result compat.Result) {
	ux.Title(fmt.Sprintf("Checking %s", strings.Join(selected, ", ")))

	for _, v := range result.Errors {
		ux.Error(fmt.Sprintf("[%s] %s: %s", v.Type, strings.Join(v.Plugins, " + "), v.Reason))
	}
	for _, v := range result.Warnings {
		ux.Warning(fmt.Sprintf("[%s] %s: %s", v.Type, strings.Join(v.Plugins, " + "), v.Reason))
	}
	for _, s := range result.Suggestions {
		ux.Suggestion(s)
	}

	if result.Valid && len(result.Warnings) == 0 {
		ux.Success("selection is compatible")
	}
	ux.Summary(len(result.Errors), len(result.Warnings), len(result.Suggestions))
}
