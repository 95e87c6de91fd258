package table

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind tags the scalar held by a Value.
type Kind uint8

const (
	Missing Kind = iota
	Number
	Text
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Text:
		return "text"
	default:
		return "missing"
	}
}

// Value is a single cell: a number, a text, or the missing marker.
// The zero Value is missing.
type Value struct {
	kind Kind
	num  float64
	text string
}

// Num returns a Number cell.
func Num(f float64) Value { return Value{kind: Number, num: f} }

// Str returns a Text cell. An empty string is still text, not missing.
func Str(s string) Value { return Value{kind: Text, text: s} }

// Null returns the missing marker.
func Null() Value { return Value{} }

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsMissing() bool { return v.kind == Missing }

// Float returns the numeric payload and whether the cell is a Number.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == Number
}

// String renders the cell the way it is written to delimited output.
// Missing renders as the empty string.
func (v Value) String() string {
	switch v.kind {
	case Number:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case Text:
		return v.text
	default:
		return ""
	}
}

// Display renders the cell for previews, showing missing cells as NaN.
func (v Value) Display() string {
	if v.kind == Missing {
		return "NaN"
	}
	return v.String()
}

// Any returns float64, string or nil, for encoders and database drivers.
func (v Value) Any() any {
	switch v.kind {
	case Number:
		return v.num
	case Text:
		return v.text
	default:
		return nil
	}
}

// missingTokens are the raw cell values read as the missing marker.
var missingTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// IsMissingToken reports whether raw is read as a missing cell.
func IsMissingToken(raw string) bool {
	_, ok := missingTokens[raw]
	return ok
}

// numericRegex accepts integers, decimals and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// parseNumber parses raw as a float if it looks like a plain decimal number.
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if !numericRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// InferColumn converts raw cells into Values. If every non-missing cell is
// numeric the column becomes Number cells, otherwise all non-missing cells
// are kept as Text.
func InferColumn(raw []string) []Value {
	out := make([]Value, len(raw))
	numeric := true
	for i, s := range raw {
		if IsMissingToken(s) {
			continue
		}
		f, ok := parseNumber(s)
		if !ok {
			numeric = false
			break
		}
		out[i] = Num(f)
	}
	if numeric {
		return out
	}
	for i, s := range raw {
		if IsMissingToken(s) {
			out[i] = Null()
			continue
		}
		out[i] = Str(s)
	}
	return out
}
