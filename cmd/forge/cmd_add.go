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
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianForge/cmd/forge/config"
	"github.com/AleutianAI/AleutianForge/cmd/forge/internal/backup"
	"github.com/AleutianAI/AleutianForge/cmd/forge/internal/compat"
	"github.com/AleutianAI/AleutianForge/cmd/forge/internal/configwrite"
	"github.com/AleutianAI/AleutianForge/cmd/forge/internal/detect"
	"github.com/AleutianAI/AleutianForge/cmd/forge/internal/installer"
	"github.com/AleutianAI/AleutianForge/cmd/forge/internal/registry"
	"github.com/AleutianAI/AleutianForge/pkg/ux"
)

// runAddCommand installs plugins into the detected project: validate the
// selection, plan the steps, then execute them under backup protection so
// a failure leaves the project as it was found.
func runAddCommand(cmd *cobra.Command, args []string) {
	start := time.Now()
	log := newLogger()
	defer log.Close()

	cfg := OutputConfig{JSON: jsonOutput, Quiet: quietMode}

	reg, err := registry.Load()
	if err != nil {
		os.Exit(OutputResult(cfg, "add", start, nil, false, err))
	}

	// Unlike check, add needs a real project to write into.
	detector := detect.NewDetector(log)
	root, err := detector.FindRoot(projectDir)
	if err != nil {
		os.Exit(OutputResult(cfg, "add", start, nil, false, err))
	}
	project, err := detector.Detect(root)
	if err != nil {
		os.Exit(OutputResult(cfg, "add", start, nil, false, err))
	}
	if pm := config.Global.Install.PackageManager; pm != "" {
		project.PackageManager = detect.PackageManager(pm)
	}

	validator := compat.NewValidator(buildRules(reg, root, log), log)
	validation := validator.Validate(args, &compat.ProjectContext{
		Framework:       string(project.Framework),
		Dependencies:    project.Dependencies,
		DevDependencies: project.DevDependencies,
	})

	result := AddResult{
		Plugins:    args,
		Project:    project,
		Validation: validation,
		DryRun:     dryRun,
	}

	if !cfg.JSON && !cfg.Quiet {
		printValidation(args, validation)
	}

	if blocked, reason := installBlocked(validation); blocked {
		if !cfg.JSON && !cfg.Quiet {
			ux.Error(reason)
		}
		os.Exit(OutputResult(cfg, "add", start, result, true, nil))
	}
	if forceInstall && !validation.Valid && !cfg.JSON && !cfg.Quiet {
		ux.Warning("proceeding despite overridable errors (--force)")
	}

	// The writer and the runner share one backup session so a failed run
	// restores files captured by either.
	session := backup.NewSession(log)
	writer := configwrite.NewWriter(session, log)
	planner := installer.NewPlanner(reg, project, writer, installer.NewExecRunner(log), log)
	steps, err := planner.BuildSteps(args)
	if err != nil {
		os.Exit(OutputResult(cfg, "add", start, result, false, err))
	}

	runner := installer.NewRunner(session, log, installer.RunnerConfig{
		StepTimeout: time.Duration(config.Global.Install.StepTimeoutSeconds) * time.Second,
	})
	runner.AddAll(steps)
	result.Steps = runner.StepNames()

	if dryRun {
		if !cfg.JSON && !cfg.Quiet {
			ux.Title("Planned steps")
			for _, name := range result.Steps {
				ux.Info(name)
			}
		}
		os.Exit(OutputResult(cfg, "add", start, result, false, nil))
	}

	report, err := runner.Run(context.Background())
	if err != nil {
		if !cfg.JSON && !cfg.Quiet {
			reportFailure(report)
		}
		os.Exit(OutputResult(cfg, "add", start, result, false, err))
	}
	result.Installed = true

	if !cfg.JSON && !cfg.Quiet {
		ux.Success(fmt.Sprintf("installed %s in %s", strings.Join(args, ", "), report.Duration.Round(time.Millisecond)))
	}
	os.Exit(OutputResult(cfg, "add", start, result, false, nil))
}

// installBlocked decides whether validation errors stop the install.
// --force clears errors only when every one of them allows an override.
func installBlocked(result compat.Result) (bool, string) {
	if result.Valid {
		return false, ""
	}
	if !forceInstall {
		return true, "validation failed; rerun with --force to override overridable errors"
	}
	for _, v := range result.Errors {
		if !v.AllowOverride {
			return true, fmt.Sprintf("cannot override: %s", v.Reason)
		}
	}
	return false, ""
}

// reportFailure renders a failed install for humans. Rollback already ran
// by the time Run returns.
func reportFailure(report *installer.Report) {
	if report == nil {
		return
	}
	ux.Error(fmt.Sprintf("step %q failed: %v", report.FailedStep, report.Err))
	for _, re := range report.RollbackErrors {
		ux.Warning(fmt.Sprintf("rollback of %q failed: %v", re.Step, re.Err))
	}
	if report.Restore != nil {
		if len(report.Restore.Failed) == 0 {
			ux.Info(fmt.Sprintf("restored %d file(s); project is back to its previous state", len(report.Restore.Restored)))
		} else {
			for path, err := range report.Restore.Failed {
				ux.Error(fmt.Sprintf("could not restore %s: %v", path, err))
			}
		}
	}
}
