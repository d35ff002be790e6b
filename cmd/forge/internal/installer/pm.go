// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package installer

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/AleutianAI/AleutianForge/cmd/forge/internal/detect"
	"github.com/AleutianAI/AleutianForge/pkg/logging"
)

// Command is a package-manager invocation, ready to execute in the project
// root.
type Command struct {
	Name string
	Args []string
}

// String renders the command the way a user would type it.
func (c Command) String() string {
	return c.Name + " " + strings.Join(c.Args, " ")
}

// CommandRunner executes package-manager commands. The indirection keeps
// tests from spawning real installs.
type CommandRunner interface {
	// Run executes the command with dir as its working directory.
	Run(ctx context.Context, dir string, cmd Command) error
}

// ExecRunner runs commands through the OS.
type ExecRunner struct {
	log *logging.Logger
}

var _ CommandRunner = (*ExecRunner)(nil)

// NewExecRunner creates a runner that shells out to the package manager.
func NewExecRunner(logger *logging.Logger) *ExecRunner {
	if logger == nil {
		logger = logging.Default()
	}
	return &ExecRunner{log: logger}
}

// Run executes the command, surfacing combined output on failure so the
// user sees what the package manager complained about.
func (e *ExecRunner) Run(ctx context.Context, dir string, cmd Command) error {
	e.log.Debug("running package manager", "dir", dir, "command", cmd.String())

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = dir
	out, err := c.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w\n%s", cmd.String(), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// installCommand builds the add command for the given package manager.
func installCommand(pm detect.PackageManager, packages []string, dev bool) Command {
	switch pm {
	case detect.PMPnpm:
		args := []string{"add"}
		if dev {
			args = append(args, "-D")
		}
		return Command{Name: "pnpm", Args: append(args, packages...)}
	case detect.PMYarn:
		args := []string{"add"}
		if dev {
			args = append(args, "--dev")
		}
		return Command{Name: "yarn", Args: append(args, packages...)}
	case detect.PMBun:
		args := []string{"add"}
		if dev {
			args = append(args, "-d")
		}
		return Command{Name: "bun", Args: append(args, packages...)}
	default:
		args := []string{"install"}
		if dev {
			args = append(args, "--save-dev")
		}
		return Command{Name: "npm", Args: append(args, packages...)}
	}
}

// uninstallCommand builds the remove command used during rollback. Version
// ranges are stripped: removal addresses the bare package name.
func uninstallCommand(pm detect.PackageManager, packages []string) Command {
	bare := make([]string, len(packages))
	for i, pkg := range packages {
		bare[i] = barePackageName(pkg)
	}

	switch pm {
	case detect.PMPnpm:
		return Command{Name: "pnpm", Args: append([]string{"remove"}, bare...)}
	case detect.PMYarn:
		return Command{Name: "yarn", Args: append([]string{"remove"}, bare...)}
	case detect.PMBun:
		return Command{Name: "bun", Args: append([]string{"remove"}, bare...)}
	default:
		return Command{Name: "npm", Args: append([]string{"uninstall"}, bare...)}
	}
}

// barePackageName strips the version range from "name@range", preserving
// scoped names.
func barePackageName(pkg string) string {
	search := pkg
	offset := 0
	if strings.HasPrefix(pkg, "@") {
		search = pkg[1:]
		offset = 1
	}
	if idx := strings.Index(search, "@"); idx >= 0 {
		return pkg[:offset+idx]
	}
	return pkg
}
