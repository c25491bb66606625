// Package ui renders attrkit command output for a terminal
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Table prints rows under bold column headers
type Table struct {
	w       io.Writer
	headers []string
	rows    [][]string
	noColor bool
}

// NewTable creates a table with the given headers
func NewTable(w io.Writer, noColor bool, headers ...string) *Table {
	return &Table{w: w, headers: headers, noColor: noColor}
}

// AddRow appends one row; missing cells render empty
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Len returns the number of rows added so far
func (t *Table) Len() int { return len(t.rows) }

// Render writes the table. Nothing is written without headers.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	head := newColor(t.noColor, color.Bold, color.FgCyan)
	gray := newColor(t.noColor, color.FgHiBlack)

	for i, h := range t.headers {
		head.Fprint(t.w, padRight(h, widths[i]))
		fmt.Fprint(t.w, sep(i, len(widths)))
	}
	for i, width := range widths {
		gray.Fprint(t.w, strings.Repeat("-", width))
		fmt.Fprint(t.w, sep(i, len(widths)))
	}
	for _, row := range t.rows {
		for i := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			fmt.Fprint(t.w, padRight(cell, widths[i]))
			fmt.Fprint(t.w, sep(i, len(widths)))
		}
	}
}

func sep(i, n int) string {
	if i == n-1 {
		return "\n"
	}
	return "  "
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// KeyValueTable prints aligned "key: value" lines
type KeyValueTable struct {
	w       io.Writer
	keys    []string
	values  []string
	noColor bool
}

// NewKeyValueTable creates an empty key/value table
func NewKeyValueTable(w io.Writer, noColor bool) *KeyValueTable {
	return &KeyValueTable{w: w, noColor: noColor}
}

// AddRow appends key and value
func (t *KeyValueTable) AddRow(key, value string) {
	t.keys = append(t.keys, key)
	t.values = append(t.values, value)
}

// Render writes every row with keys padded to the widest key
func (t *KeyValueTable) Render() {
	width := 0
	for _, k := range t.keys {
		if len(k) > width {
			width = len(k)
		}
	}
	key := newColor(t.noColor, color.FgCyan)
	for i, k := range t.keys {
		key.Fprint(t.w, padRight(k+":", width+1))
		fmt.Fprintf(t.w, " %s\n", t.values[i])
	}
}

// Header writes an underlined section title
func Header(w io.Writer, title string, noColor bool) {
	newColor(noColor, color.Bold, color.FgCyan).Fprintln(w, title)
	newColor(noColor, color.FgHiBlack).Fprintln(w, strings.Repeat("=", len(title)))
}

func newColor(noColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}
	return c
}
