/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package climod provides the shared terminal utilities behind raftctl:
// colored output, table/JSON rendering, and interactive prompts.
package climod

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// ANSI color codes for terminal output.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
)

var colorsEnabled = true

func init() {
	if os.Getenv("NO_COLOR") != "" {
		colorsEnabled = false
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		colorsEnabled = false
	}
}

// SetColorsEnabled enables or disables color output.
func SetColorsEnabled(enabled bool) {
	colorsEnabled = enabled
}

func colorize(color, text string) string {
	if !colorsEnabled {
		return text
	}
	return color + text + Reset
}

func SuccessIcon() string { return colorize(Green, "✓") }
func ErrorIcon() string   { return colorize(Red, "✗") }
func WarningIcon() string { return colorize(Yellow, "⚠") }
func InfoIcon() string    { return colorize(Cyan, "ℹ") }

// PrintSuccess prints a success message with icon.
func PrintSuccess(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", SuccessIcon(), colorize(Green, fmt.Sprintf(format, args...)))
}

// PrintError prints an error message with icon.
func PrintError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorIcon(), colorize(Red, fmt.Sprintf(format, args...)))
}

// PrintWarning prints a warning message with icon.
func PrintWarning(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", WarningIcon(), colorize(Yellow, fmt.Sprintf(format, args...)))
}

// PrintInfo prints an info message with icon.
func PrintInfo(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", InfoIcon(), colorize(Cyan, fmt.Sprintf(format, args...)))
}
