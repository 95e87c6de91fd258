// Package summary computes and prints a descriptive overview of a table:
// shape, column listing, head/tail previews, per-column statistics and
// missing-value counts.
package summary

import (
	"math"
	"sort"

	"github.com/JonMunkholm/tabinspect/internal/table"
)

// Column types reported in a ColumnSummary.
const (
	TypeNumber = "number"
	TypeText   = "text"
	TypeEmpty  = "empty"
)

// DefaultPreviewRows is the number of rows shown in head and tail previews.
const DefaultPreviewRows = 5

// Summary is the descriptive overview of one table.
type Summary struct {
	Rows     int             `json:"rows"`
	Columns  []ColumnSummary `json:"columns"`
	Head     Preview         `json:"head"`
	Tail     Preview         `json:"tail"`
	Encoding string          `json:"encoding,omitempty"`
}

// ColumnSummary holds statistics for one column. Exactly one of Numeric
// and Text is set unless the column has no values at all.
type ColumnSummary struct {
	Index   int           `json:"index"`
	Name    string        `json:"name"`
	Type    string        `json:"type"`
	Count   int           `json:"count"`
	Missing int           `json:"missing"`
	Numeric *NumericStats `json:"numeric,omitempty"`
	Text    *TextStats    `json:"text,omitempty"`
}

// NumericStats mirrors the usual describe() output. Std is nil for a
// single value.
type NumericStats struct {
	Mean float64  `json:"mean"`
	Std  *float64 `json:"std"`
	Min  float64  `json:"min"`
	P25  float64  `json:"p25"`
	P50  float64  `json:"p50"`
	P75  float64  `json:"p75"`
	Max  float64  `json:"max"`
}

// TextStats describes a text column: distinct values and the most
// frequent one. Ties go to the value seen first.
type TextStats struct {
	Unique int    `json:"unique"`
	Top    string `json:"top"`
	Freq   int    `json:"freq"`
}

// Preview is a rendered slice of rows. Missing cells render as "NaN".
type Preview struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Describe summarizes t. previewRows <= 0 uses DefaultPreviewRows.
func Describe(t *table.Table, previewRows int) Summary {
	if previewRows <= 0 {
		previewRows = DefaultPreviewRows
	}

	s := Summary{
		Rows:    t.NumRows(),
		Columns: make([]ColumnSummary, t.NumCols()),
		Head:    preview(t.Head(previewRows)),
		Tail:    preview(t.Tail(previewRows)),
	}

	missing := t.MissingCounts()
	for i, col := range t.Columns {
		cs := ColumnSummary{
			Index:   i + 1,
			Name:    col.Name,
			Missing: missing[i],
			Count:   len(col.Values) - missing[i],
		}
		switch {
		case cs.Count == 0:
			cs.Type = TypeEmpty
		case col.Numeric():
			cs.Type = TypeNumber
			cs.Numeric = describeNumbers(col.Values)
		default:
			cs.Type = TypeText
			cs.Text = describeText(col.Values)
		}
		s.Columns[i] = cs
	}
	return s
}

func preview(t *table.Table) Preview {
	p := Preview{Columns: t.Names(), Rows: make([][]string, t.NumRows())}
	for r := range p.Rows {
		row := t.Row(r)
		cells := make([]string, len(row))
		for c, v := range row {
			cells[c] = v.Display()
		}
		p.Rows[r] = cells
	}
	return p
}

func describeNumbers(values []table.Value) *NumericStats {
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		if f, ok := v.Float(); ok {
			xs = append(xs, f)
		}
	}
	sort.Float64s(xs)

	var sum float64
	for _, x := range xs {
		sum += x
	}
	n := float64(len(xs))
	mean := sum / n

	st := &NumericStats{
		Mean: mean,
		Min:  xs[0],
		P25:  percentile(xs, 0.25),
		P50:  percentile(xs, 0.50),
		P75:  percentile(xs, 0.75),
		Max:  xs[len(xs)-1],
	}

	if len(xs) > 1 {
		var ss float64
		for _, x := range xs {
			d := x - mean
			ss += d * d
		}
		std := math.Sqrt(ss / (n - 1))
		st.Std = &std
	}
	return st
}

// percentile interpolates linearly between the closest ranks of sorted xs.
func percentile(xs []float64, p float64) float64 {
	pos := p * float64(len(xs)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return xs[lo]
	}
	return xs[lo] + (xs[hi]-xs[lo])*(pos-float64(lo))
}

func describeText(values []table.Value) *TextStats {
	counts := make(map[string]int)
	var order []string
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		s := v.String()
		if _, seen := counts[s]; !seen {
			order = append(order, s)
		}
		counts[s]++
	}

	st := &TextStats{Unique: len(order)}
	for _, s := range order {
		if counts[s] > st.Freq {
			st.Top, st.Freq = s, counts[s]
		}
	}
	return st
}
