// Package table holds the in-memory tabular value produced by ingestion:
// an ordered list of named columns, each an ordered list of cells.
package table

import (
	"fmt"
	"strings"
)

// Column is a named, ordered sequence of cells.
type Column struct {
	Name   string
	Values []Value
}

// Numeric reports whether the column holds at least one Number and no Text.
func (c Column) Numeric() bool {
	seen := false
	for _, v := range c.Values {
		switch v.Kind() {
		case Text:
			return false
		case Number:
			seen = true
		}
	}
	return seen
}

// Table is a rectangular set of columns. All columns have the same length.
type Table struct {
	Columns []Column
}

// Build creates a Table from a header row and raw data rows.
//
// Short rows are padded with missing cells. Rows longer than the header
// extend it with "Unnamed: i" columns; callers that must reject such rows
// check widths before calling Build.
func Build(header []string, rows [][]string) *Table {
	width := len(header)
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	names := NormalizeHeader(header, width)

	raw := make([][]string, width)
	for c := range raw {
		raw[c] = make([]string, len(rows))
	}
	for r, row := range rows {
		for c := 0; c < width; c++ {
			if c < len(row) {
				raw[c][r] = row[c]
			}
		}
	}

	t := &Table{Columns: make([]Column, width)}
	for c := range t.Columns {
		t.Columns[c] = Column{Name: names[c], Values: InferColumn(raw[c])}
	}
	return t
}

// NormalizeHeader returns width column names derived from header.
// Blank names become "Unnamed: i" and repeated names get ".1", ".2", ...
// suffixes in order of appearance.
func NormalizeHeader(header []string, width int) []string {
	names := make([]string, width)
	seen := make(map[string]int, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if n, dup := seen[name]; dup {
			base := name
			for {
				n++
				name = fmt.Sprintf("%s.%d", base, n)
				if _, taken := seen[name]; !taken {
					break
				}
			}
			seen[base] = n
		}
		seen[name] = 0
		names[i] = name
	}
	return names
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, t.NumCols())
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Row returns the cells of row i in column order.
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.Columns))
	for c, col := range t.Columns {
		row[c] = col.Values[i]
	}
	return row
}

// Slice returns a new table holding rows [from, to).
func (t *Table) Slice(from, to int) *Table {
	n := t.NumRows()
	from = clamp(from, 0, n)
	to = clamp(to, from, n)

	out := &Table{Columns: make([]Column, len(t.Columns))}
	for c, col := range t.Columns {
		vals := make([]Value, to-from)
		copy(vals, col.Values[from:to])
		out.Columns[c] = Column{Name: col.Name, Values: vals}
	}
	return out
}

// Head returns the first n rows.
func (t *Table) Head(n int) *Table { return t.Slice(0, n) }

// Tail returns the last n rows.
func (t *Table) Tail(n int) *Table { return t.Slice(t.NumRows()-n, t.NumRows()) }

// MissingCounts returns the number of missing cells per column.
func (t *Table) MissingCounts() []int {
	counts := make([]int, len(t.Columns))
	for c, col := range t.Columns {
		for _, v := range col.Values {
			if v.IsMissing() {
				counts[c]++
			}
		}
	}
	return counts
}

// DropEmptyRows returns a copy without the rows whose cells are all missing.
func (t *Table) DropEmptyRows() *Table {
	keep := make([]int, 0, t.NumRows())
	for r := 0; r < t.NumRows(); r++ {
		for _, col := range t.Columns {
			if !col.Values[r].IsMissing() {
				keep = append(keep, r)
				break
			}
		}
	}

	out := &Table{Columns: make([]Column, len(t.Columns))}
	for c, col := range t.Columns {
		vals := make([]Value, len(keep))
		for i, r := range keep {
			vals[i] = col.Values[r]
		}
		out.Columns[c] = Column{Name: col.Name, Values: vals}
	}
	return out
}

// Records returns the rows as strings, missing cells rendered empty.
func (t *Table) Records() [][]string {
	out := make([][]string, t.NumRows())
	for r := range out {
		rec := make([]string, len(t.Columns))
		for c, col := range t.Columns {
			rec[c] = col.Values[r].String()
		}
		out[r] = rec
	}
	return out
}

// Equal reports whether a and b have the same names and cells.
func Equal(a, b *Table) bool {
	if a.NumCols() != b.NumCols() || a.NumRows() != b.NumRows() {
		return false
	}
	for c := range a.Columns {
		ca, cb := a.Columns[c], b.Columns[c]
		if ca.Name != cb.Name {
			return false
		}
		for r := range ca.Values {
			if ca.Values[r] != cb.Values[r] {
				return false
			}
		}
	}
	return true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
