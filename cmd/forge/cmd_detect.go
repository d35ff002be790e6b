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
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianForge/cmd/forge/internal/detect"
	"github.com/AleutianAI/AleutianForge/pkg/ux"
)

// runDetectCommand reports what forge can learn about the project.
func runDetectCommand(cmd *cobra.Command, args []string) {
	start := time.Now()
	log := newLogger()
	defer log.Close()

	cfg := OutputConfig{JSON: jsonOutput, Quiet: quietMode}
	detector := detect.NewDetector(log)

	root, err := detector.FindRoot(projectDir)
	if err != nil {
		os.Exit(OutputResult(cfg, "detect", start, nil, false, err))
	}

	project, err := detector.Detect(root)
	if err != nil {
		os.Exit(OutputResult(cfg, "detect", start, nil, false, err))
	}

	if !cfg.JSON && !cfg.Quiet {
		ux.Title("Project")
		ux.Field("root", project.Root)
		if project.Name != "" {
			ux.Field("name", project.Name)
		}
		ux.Field("framework", string(project.Framework))
		ux.Field("bundler", string(project.Bundler))
		ux.Field("package manager", string(project.PackageManager))
		ux.Field("typescript", fmt.Sprintf("%t", project.TypeScript))
		ux.Field("dependencies", fmt.Sprintf("%d (%d dev)", len(project.Dependencies), len(project.DevDependencies)))
	}

	os.Exit(OutputResult(cfg, "detect", start, project, false, nil))
}
