// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package installer turns a validated plugin selection into an executed,
// rollback-capable installation.
//
// # Description
//
// Installation is a sequence of steps (install packages, write config
// files, patch entry points) executed by a Runner. When any step fails the
// runner rolls the completed steps back in reverse order and then restores
// every file the backup session captured, so a failed installation leaves
// the project as it was found.
//
// The Planner maps catalog descriptors to steps. Package installation is
// delegated to the project's own package manager binary; the planner only
// constructs the command line.
package installer
