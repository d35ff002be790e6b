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

// runPluginsCommand lists the catalog. When the working directory is a
// project, plugins incompatible with its framework are marked.
func runPluginsCommand(cmd *cobra.Command, args []string) {
	start := time.Now()
	log := newLogger()
	defer log.Close()

	cfg := OutputConfig{JSON: jsonOutput, Quiet: quietMode}

	reg, err := registry.Load()
	if err != nil {
		os.Exit(OutputResult(cfg, "plugins", start, nil, false, err))
	}

	// Detection is best-effort here: outside a project everything lists as
	// compatible.
	framework := ""
	detector := detect.NewDetector(log)
	if root, err := detector.FindRoot(projectDir); err == nil {
		if project, err := detector.Detect(root); err == nil {
			framework = string(project.Framework)
		}
	}

	if dependentsOf != "" {
		listDependents(cfg, reg, start, log)
		return
	}

	result := PluginListResult{Framework: framework}
	for _, desc := range reg.List() {
		if categoryName != "" && desc.Category != categoryName {
			continue
		}
		result.Plugins = append(result.Plugins, PluginInfo{
			Name:        desc.Name,
			Description: desc.Description,
			Category:    desc.Category,
			Compatible:  framework == "" || desc.SupportsFramework(framework),
		})
	}
	result.Count = len(result.Plugins)

	if !cfg.JSON && !cfg.Quiet {
		if framework != "" {
			ux.Title(fmt.Sprintf("Plugins (%s project)", framework))
		} else {
			ux.Title("Plugins")
		}
		for _, info := range result.Plugins {
			line := fmt.Sprintf("%-18s %-9s %s", info.Name, info.Category, info.Description)
			if info.Compatible {
				ux.Info(line)
			} else {
				ux.Muted(line + " (incompatible)")
			}
		}
	}

	os.Exit(OutputResult(cfg, "plugins", start, result, false, nil))
}

// listDependents answers --dependents: which plugins would be affected if
// the given package were removed.
func listDependents(cfg OutputConfig, reg *registry.Registry, start time.Time, log *logging.Logger) {
	validator := compat.NewValidator(reg.GenerateRules(), log)
	dependents := validator.Index().Dependents(dependentsOf)

	result := struct {
		Package    string   `json:"package"`
		Dependents []string `json:"dependents"`
	}{Package: dependentsOf, Dependents: dependents}

	if !cfg.JSON && !cfg.Quiet {
		if len(dependents) == 0 {
			ux.Info(fmt.Sprintf("nothing in the catalog requires %s", dependentsOf))
		} else {
			ux.Info(fmt.Sprintf("required by: %s", strings.Join(dependents, ", ")))
		}
	}
	os.Exit(OutputResult(cfg, "plugins", start, result, false, nil))
}
