// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package compat

import (
	"errors"
	"fmt"
)

// Sentinel errors for rule construction and decoding.
//
// Validation itself never returns errors; these surface only when a rule
// definition is structurally inconsistent for its kind.
var (
	ErrUnknownRuleKind    = errors.New("unknown rule kind")
	ErrInvalidSeverity    = errors.New("invalid severity")
	ErrMissingPlugins     = errors.New("rule requires at least two plugins")
	ErrMissingPlugin      = errors.New("rule requires a subject plugin")
	ErrMissingRequires    = errors.New("requires rule has an empty requirement list")
	ErrMissingRecommends  = errors.New("recommends rule has an empty recommendation list")
	ErrConflictingPayload = errors.New("rule payload does not match its kind")
)

// MalformedRuleError wraps a structural problem with one rule, keeping
// enough context to log which catalog entry was skipped.
type MalformedRuleError struct {
	Kind   RuleKind
	Detail string
	Err    error
}

// Error implements the error interface.
func (e *MalformedRuleError) Error() string {
	return fmt.Sprintf("malformed %s rule (%s): %v", e.Kind, e.Detail, e.Err)
}

// Unwrap returns the underlying error.
func (e *MalformedRuleError) Unwrap() error {
	return e.Err
}
