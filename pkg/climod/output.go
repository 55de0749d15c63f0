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
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"
)

// OutputFormat is the rendering mode for Table.Print.
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
)

// ParseOutputFormat parses a --format flag value, defaulting to table.
func ParseOutputFormat(s string) OutputFormat {
	if strings.ToLower(s) == "json" {
		return FormatJSON
	}
	return FormatTable
}

// Table renders rows (the follower list or audit events) in either
// tabular or JSON form.
type Table struct {
	headers []string
	rows    [][]string
	format  OutputFormat
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers, format: FormatTable}
}

// SetFormat sets the output format.
func (t *Table) SetFormat(format OutputFormat) {
	t.format = format
}

// AddRow adds a row to the table.
func (t *Table) AddRow(values ...string) {
	t.rows = append(t.rows, values)
}

// Print outputs the table in the configured format.
func (t *Table) Print() {
	if t.format == FormatJSON {
		t.printJSON()
		return
	}
	t.printTable()
}

func (t *Table) printTable() {
	if len(t.rows) == 0 {
		fmt.Println("(no followers)")
		return
	}

	width := terminalWidth()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, colorize(Bold, strings.Join(t.headers, "\t")))
	seps := make([]string, len(t.headers))
	for i, h := range t.headers {
		seps[i] = strings.Repeat("─", len(h))
	}
	fmt.Fprintln(w, strings.Join(seps, "\t"))
	for _, row := range t.rows {
		fmt.Fprintln(w, strings.Join(truncateLastColumn(row, width), "\t"))
	}
	w.Flush()
}

// terminalWidth returns the connected terminal's column count, or 0 (no
// truncation) if stdout isn't a terminal.
func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0
	}
	return w
}

// truncateLastColumn shortens a row's final cell (typically the widest,
// free-text column such as an audit Detail) so the line fits within width,
// leaving every other column untouched.
func truncateLastColumn(row []string, width int) []string {
	if width <= 0 || len(row) == 0 {
		return row
	}
	budget := width
	for _, cell := range row[:len(row)-1] {
		budget -= len(cell) + 1
	}
	last := row[len(row)-1]
	if budget > 3 && len(last) > budget {
		out := append([]string(nil), row...)
		out[len(out)-1] = last[:budget-3] + "..."
		return out
	}
	return row
}

func (t *Table) printJSON() {
	result := make([]map[string]string, len(t.rows))
	for i, row := range t.rows {
		rowMap := make(map[string]string, len(row))
		for j, val := range row {
			if j < len(t.headers) {
				rowMap[t.headers[j]] = val
			}
		}
		result[i] = rowMap
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		PrintError("format JSON: %v", err)
		return
	}
	fmt.Println(string(data))
}
