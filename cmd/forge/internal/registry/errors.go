// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package registry

import "errors"

var (
	// ErrCatalogInvalid indicates the plugin catalog failed parsing or
	// validation. For the embedded catalog this is a build defect.
	ErrCatalogInvalid = errors.New("plugin catalog is invalid")

	// ErrUnknownPlugin indicates a requested plugin is not in the catalog.
	ErrUnknownPlugin = errors.New("unknown plugin")
)
