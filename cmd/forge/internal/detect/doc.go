// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package detect inspects an existing frontend project and reports its
// framework, bundler, and package manager.
//
// # Description
//
// Detection is read-only and cheap: it parses package.json once and checks
// for well-known lockfiles and bundler config files in the project root.
// Meta-frameworks win over their base framework (a Next.js project also
// depends on react; it is reported as nextjs). A project with no recognized
// framework dependency is reported as vanilla rather than an error, so the
// caller can still validate framework-agnostic rules against it.
//
// # Usage
//
//	detector := detect.NewDetector(logger)
//	project, err := detector.Detect("/path/to/app")
//	if err != nil {
//		// no package.json, or package.json unreadable
//	}
//	fmt.Println(project.Framework, project.PackageManager)
package detect
