// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package configwrite

import "errors"

// Sentinel errors for file mutations.
//
// ErrFileExists and ErrPackageJSONRead are distinct conditions callers
// match on: a pre-existing file on CreateFile may be treated as "skip
// creation" rather than a failure, and an unreadable package.json is always
// fatal to the modifying operation.
var (
	ErrFileExists      = errors.New("file already exists")
	ErrFileNotFound    = errors.New("file not found")
	ErrPackageJSONRead = errors.New("failed to read package.json")
)
