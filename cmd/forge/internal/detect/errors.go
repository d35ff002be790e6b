// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package detect

import "errors"

var (
	// ErrNoPackageJSON indicates the directory (and its bounded ancestry)
	// holds no package.json and is not a node project.
	ErrNoPackageJSON = errors.New("no package.json found")

	// ErrInvalidPackageJSON indicates package.json exists but cannot be
	// parsed.
	ErrInvalidPackageJSON = errors.New("package.json is not valid JSON")
)
