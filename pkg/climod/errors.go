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

package climod

import (
	"fmt"
	"os"
)

// CLIError is a user-facing error with optional remediation suggestions.
type CLIError struct {
	Message     string
	Detail      string
	Suggestions []string
	ExitCode    int
}

func (e *CLIError) Error() string { return e.Message }

// Print prints the error with formatting.
func (e *CLIError) Print() {
	fmt.Fprintf(os.Stderr, "\n%s %s\n", ErrorIcon(), colorize(Red, e.Message))
	if e.Detail != "" {
		fmt.Fprintf(os.Stderr, "  %s\n", colorize(Dim, e.Detail))
	}
	for _, s := range e.Suggestions {
		fmt.Fprintf(os.Stderr, "    • %s\n", s)
	}
}

// Exit prints the error and exits with its ExitCode.
func (e *CLIError) Exit() {
	e.Print()
	os.Exit(e.ExitCode)
}

// NewCLIError creates a new CLI error with exit code 1.
func NewCLIError(message string) *CLIError {
	return &CLIError{Message: message, ExitCode: 1}
}

func (e *CLIError) WithDetail(detail string) *CLIError {
	e.Detail = detail
	return e
}

func (e *CLIError) WithSuggestion(s string) *CLIError {
	e.Suggestions = append(e.Suggestions, s)
	return e
}

// ErrConnectionFailed reports that raftctl could not reach a node's admin
// surface.
func ErrConnectionFailed(addr string, err error) *CLIError {
	return NewCLIError("failed to connect to raftedge admin surface").
		WithDetail(fmt.Sprintf("could not reach %s: %v", addr, err)).
		WithSuggestion("ensure raftedged is running and RAFTEDGE_ADMIN_ADDR matches").
		WithSuggestion("check firewall rules for the admin port")
}

// ErrInvalidCommand reports an unrecognized REPL command.
func ErrInvalidCommand(cmd string) *CLIError {
	return NewCLIError(fmt.Sprintf("unknown command: %s", cmd)).
		WithSuggestion("type 'help' for a list of available commands")
}

// ErrMissingArgument reports a command invoked without its required
// argument.
func ErrMissingArgument(arg, usage string) *CLIError {
	return NewCLIError(fmt.Sprintf("missing required argument: %s", arg)).
		WithSuggestion(fmt.Sprintf("usage: %s", usage))
}
