// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

type ForgeConfig struct {
	// Install: knobs for the installation runner
	Install InstallConfig `yaml:"install"`

	// Logging: file logging for debugging failed installs
	Logging LoggingConfig `yaml:"logging"`

	// Output: terminal output behavior
	Output OutputConfig `yaml:"output"`
}

type InstallConfig struct {
	// StepTimeoutSeconds bounds each installation step. Package installs on
	// a cold cache can be slow; raise this on weak connections.
	StepTimeoutSeconds int `yaml:"step_timeout_seconds"` // e.g. 120

	// PackageManager forces a package manager instead of detecting one.
	// Empty means detect from lockfiles.
	PackageManager string `yaml:"package_manager,omitempty"`
}

type LoggingConfig struct {
	// Level can be "debug", "info", "warn", "error".
	Level string `yaml:"level"`

	// Dir is where JSON log files go. Empty disables file logging.
	Dir string `yaml:"dir,omitempty"`
}

type OutputConfig struct {
	// Quiet suppresses non-error output by default.
	Quiet bool `yaml:"quiet"`
}

func DefaultConfig() ForgeConfig {
	return ForgeConfig{
		Install: InstallConfig{
			StepTimeoutSeconds: 120,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Output: OutputConfig{
			Quiet: false,
		},
	}
}
