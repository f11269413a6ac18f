// Package table renders aligned text tables whose cells may carry ANSI colors.
package table

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/rythin-sr/LiveSplit.Dishonored/coloransi"
)

// FormatFunc colors a cell value after its width was measured.
type FormatFunc func(value string) string

// ColumnSpec defines a column's properties
type ColumnSpec struct {
	Header     string
	BlankValue string     // Value to show for empty cells (default: "-")
	Format     FormatFunc // Optional colorizer
	MinWidth   int
}

// Table collects rows and renders them with every column padded to its widest cell.
type Table struct {
	columns []ColumnSpec
	rows    [][]string
	widths  []int
	indent  string
}

// New creates a table with the given columns.
func New(cols ...ColumnSpec) *Table {
	t := &Table{
		columns: cols,
		widths:  make([]int, len(cols)),
	}
	for i := range t.columns {
		if t.columns[i].BlankValue == "" {
			t.columns[i].BlankValue = "-"
		}
		t.widths[i] = max(t.columns[i].MinWidth, VisibleLength(t.columns[i].Header))
	}
	return t
}

// Indent prefixes every rendered line.
func (t *Table) Indent(prefix string) *Table {
	t.indent = prefix
	return t
}

// AddRow appends a row, missing and empty cells show the column's blank value.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.columns))
	for i := range row {
		if i < len(cells) && cells[i] != "" {
			row[i] = cells[i]
		} else {
			row[i] = t.columns[i].BlankValue
		}
		t.widths[i] = max(t.widths[i], VisibleLength(row[i]))
	}
	t.rows = append(t.rows, row)
}

// Len is the number of rows added.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render writes the header, a dashed rule and every row.
func (t *Table) Render(w io.Writer) error {
	headers := make([]string, len(t.columns))
	rule := make([]string, len(t.columns))
	for i, col := range t.columns {
		headers[i] = t.pad(col.Header, i)
		rule[i] = strings.Repeat("-", t.widths[i])
	}
	if err := t.line(w, headers); err != nil {
		return err
	}
	if err := t.line(w, rule); err != nil {
		return err
	}

	for _, row := range t.rows {
		cells := make([]string, len(row))
		for i, val := range row {
			if f := t.columns[i].Format; f != nil {
				val = f(val)
			}
			cells[i] = t.pad(val, i)
		}
		if err := t.line(w, cells); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) line(w io.Writer, cells []string) error {
	// the last column is not padded
	if n := len(cells); n > 0 {
		cells[n-1] = strings.TrimRight(cells[n-1], " ")
	}
	_, err := fmt.Fprintln(w, t.indent+strings.Join(cells, "  "))
	return err
}

func (t *Table) pad(s string, col int) string {
	visible := VisibleLength(s)
	if visible >= t.widths[col] {
		return s
	}
	return s + strings.Repeat(" ", t.widths[col]-visible)
}

// VisibleLength counts the runes of s that end up on screen.
func VisibleLength(s string) int {
	return utf8.RuneCountInString(coloransi.Strip(s))
}
