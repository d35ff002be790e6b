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
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianForge/cmd/forge/config"
	"github.com/AleutianAI/AleutianForge/pkg/ux"
)

// --- Global Command Variables ---
var (
	jsonOutput   bool
	quietMode    bool
	projectDir   string
	forceInstall bool
	dryRun       bool
	categoryName string
	dependentsOf string

	rootCmd = &cobra.Command{
		Use:   "forge",
		Short: "A cli to scaffold and extend frontend projects safely",
		Long: `Forge adds plugins to existing frontend projects: it validates the
selection against a compatibility rule set, installs packages through
your own package manager, writes config files with automatic backups,
and rolls everything back if any step fails.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Config load failures are non-fatal; defaults still work.
			if err := config.Load(); err != nil {
				ux.Warning("could not load ~/.forge/forge.yaml, using defaults")
			}
			if quietMode || config.Global.Output.Quiet {
				quietMode = true
				ux.SetQuiet(true)
			}
			if jsonOutput {
				// JSON consumers get clean stdout.
				ux.SetQuiet(true)
			}
		},
	}

	detectCmd = &cobra.Command{
		Use:   "detect",
		Short: "Detect the framework, bundler, and package manager of a project",
		Run:   runDetectCommand, // Defined in cmd_detect.go
	}

	pluginsCmd = &cobra.Command{
		Use:   "plugins",
		Short: "List the plugin catalog, marking compatibility with the current project",
		Run:   runPluginsCommand, // Defined in cmd_plugins.go
	}

	checkCmd = &cobra.Command{
		Use:   "check [plugins...]",
		Short: "Validate a plugin selection without installing anything",
		Args:  cobra.MinimumNArgs(1),
		Run:   runCheckCommand, // Defined in cmd_check.go
	}

	addCmd = &cobra.Command{
		Use:   "add [plugins...]",
		Short: "Validate and install plugins into the current project",
		Args:  cobra.MinimumNArgs(1),
		Run:   runAddCommand, // Defined in cmd_add.go
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Suppress output, exit code only")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "p", ".", "Project directory")

	pluginsCmd.Flags().StringVar(&categoryName, "category", "", "Only list plugins in this category")
	pluginsCmd.Flags().StringVar(&dependentsOf, "dependents", "", "List plugins that require the given package")

	addCmd.Flags().BoolVar(&forceInstall, "force", false, "Proceed past overridable violations")
	addCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Plan the installation without executing it")

	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(pluginsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(addCmd)
}
