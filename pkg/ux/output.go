// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides styled terminal output for the forge CLI.
package ux

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Aleutian color palette - deep ocean teals and arctic waters
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7") // Bright teal - highlights, success
	ColorTealPrimary = lipgloss.Color("#20B9B4") // Primary teal - main brand color
	ColorSlate       = lipgloss.Color("#2C4A54") // Slate - muted text, borders

	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title     lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorSlate),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorTealBright).Bold(true),
}

// colorEnabled is false when stdout is not a terminal, so piped output
// stays free of escape sequences.
var colorEnabled = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

// quiet suppresses all non-error output when set.
var quiet atomic.Bool

// SetQuiet toggles quiet mode. Errors still print.
func SetQuiet(on bool) { quiet.Store(on) }

// SetColor overrides terminal color detection. Used by --json output paths
// and tests.
func SetColor(on bool) { colorEnabled = on }

func render(style lipgloss.Style, text string) string {
	if !colorEnabled {
		return text
	}
	return style.Render(text)
}

// Title prints a styled heading.
func Title(text string) {
	if quiet.Load() {
		return
	}
	fmt.Println(render(Styles.Title, text))
}

// Success prints a success message with a checkmark.
func Success(text string) {
	if quiet.Load() {
		return
	}
	fmt.Printf("%s %s\n", render(Styles.Success, "✓"), text)
}

// Warning prints a warning message.
func Warning(text string) {
	if quiet.Load() {
		return
	}
	fmt.Printf("%s %s\n", render(Styles.Warning, "⚠"), render(Styles.Warning, text))
}

// Error prints an error message to stderr. Quiet mode does not silence
// errors.
func Error(text string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", render(Styles.Error, "✗"), render(Styles.Error, text))
}

// Info prints an informational line.
func Info(text string) {
	if quiet.Load() {
		return
	}
	fmt.Printf("%s %s\n", render(Styles.Muted, "│"), text)
}

// Suggestion prints a non-blocking recommendation.
func Suggestion(text string) {
	if quiet.Load() {
		return
	}
	fmt.Printf("%s %s\n", render(Styles.Highlight, "→"), text)
}

// Muted prints secondary text.
func Muted(text string) {
	if quiet.Load() {
		return
	}
	fmt.Println(render(Styles.Muted, text))
}

// Field prints an aligned name/value pair, for detection summaries.
func Field(name, value string) {
	if quiet.Load() {
		return
	}
	fmt.Printf("  %s %s\n", render(Styles.Muted, fmt.Sprintf("%-16s", name+":")), value)
}

// Summary prints validation counts on one line.
func Summary(errors, warnings, suggestions int) {
	if quiet.Load() {
		return
	}
	fmt.Printf("\n%s %s  %s %s  %s %s\n",
		render(Styles.Error, fmt.Sprintf("%d", errors)), render(Styles.Muted, "errors"),
		render(Styles.Warning, fmt.Sprintf("%d", warnings)), render(Styles.Muted, "warnings"),
		render(Styles.Highlight, fmt.Sprintf("%d", suggestions)), render(Styles.Muted, "suggestions"),
	)
}
