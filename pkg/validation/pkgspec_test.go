// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package validation

import (
	"strings"
	"testing"
)

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		pkg     string
		wantErr bool
	}{
		// Valid names
		{"simple", "react", false},
		{"hyphenated", "react-router-dom", false},
		{"scoped", "@reduxjs/toolkit", false},
		{"scoped with hyphen", "@sveltejs/kit", false},
		{"with digit", "d3", false},
		{"dotted", "lodash.merge", false},
		{"underscore", "string_decoder", false},

		// Invalid names
		{"empty", "", true},
		{"uppercase", "React", true},
		{"leading dot", ".hidden", true},
		{"shell metachar", "react;rm -rf /", true},
		{"backtick", "pkg`id`", true},
		{"dollar", "pkg$(id)", true},
		{"space", "two words", true},
		{"bare scope", "@scope/", true},
		{"path traversal", "../etc/passwd", true},
		{"too long", strings.Repeat("a", 215), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.pkg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageName(%q) error = %v, wantErr %v", tt.pkg, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePackageSpec(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{"bare name", "vue", false},
		{"caret range", "vue@^3.0.0", false},
		{"tilde range", "tailwindcss@~3.4.0", false},
		{"compound range", "react@^17.0.0 || ^18.0.0", false},
		{"scoped with range", "@reduxjs/toolkit@^2.2.0", false},
		{"wildcard", "vitest@*", false},
		{"x range", "vue@3.x", false},

		{"empty", "", true},
		{"empty range", "vue@", true},
		{"injection in range", "vue@^3.0.0;curl evil", true},
		{"injection in name", "vue$(id)@^3.0.0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageSpec(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageSpec(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePackageSpecs(t *testing.T) {
	if err := ValidatePackageSpecs([]string{"vue", "pinia@^2.1.0"}); err != nil {
		t.Errorf("valid specs rejected: %v", err)
	}

	err := ValidatePackageSpecs([]string{"vue", "bad;spec", "another`one`"})
	if err == nil {
		t.Fatal("expected error for invalid specs")
	}
	if !strings.Contains(err.Error(), "bad;spec") || !strings.Contains(err.Error(), "another`one`") {
		t.Errorf("error should list every invalid spec, got: %v", err)
	}
}

func TestSplitSpec(t *testing.T) {
	tests := []struct {
		spec     string
		wantName string
		wantRng  string
	}{
		{"vue", "vue", ""},
		{"vue@^3.0.0", "vue", "^3.0.0"},
		{"@sveltejs/kit", "@sveltejs/kit", ""},
		{"@sveltejs/kit@^2.0.0", "@sveltejs/kit", "^2.0.0"},
	}

	for _, tt := range tests {
		name, rng := splitSpec(tt.spec)
		if name != tt.wantName || rng != tt.wantRng {
			t.Errorf("splitSpec(%q) = (%q, %q), want (%q, %q)", tt.spec, name, rng, tt.wantName, tt.wantRng)
		}
	}
}
