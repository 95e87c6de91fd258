package ingest

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind selects the loader used for a file.
type Kind int

const (
	Delimited Kind = iota + 1
	Spreadsheet
)

func (k Kind) String() string {
	switch k {
	case Delimited:
		return "delimited"
	case Spreadsheet:
		return "spreadsheet"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// accepted lists the extensions each kind will load.
var accepted = map[Kind][]string{
	Delimited:   {".csv"},
	Spreadsheet: {".xls", ".xlsx"},
}

// expectation is the InvalidFormat message for each kind.
var expectation = map[Kind]string{
	Delimited:   "expected .csv",
	Spreadsheet: "expected .xls or .xlsx",
}

// SourcePath is a path plus its lowercase extension.
type SourcePath struct {
	Raw string
	Ext string
}

// ParseSourcePath splits path into its raw form and lowercase extension.
func ParseSourcePath(path string) SourcePath {
	return SourcePath{Raw: path, Ext: strings.ToLower(filepath.Ext(path))}
}

// Accepts reports whether the extension belongs to kind's accepted set.
func (p SourcePath) Accepts(kind Kind) bool {
	for _, ext := range accepted[kind] {
		if p.Ext == ext {
			return true
		}
	}
	return false
}

// KindForPath picks Spreadsheet for workbook extensions and Delimited for
// everything else, so unknown extensions are reported as "expected .csv".
func KindForPath(path string) Kind {
	if ParseSourcePath(path).Accepts(Spreadsheet) {
		return Spreadsheet
	}
	return Delimited
}

// ParseKind maps a user-facing token to a Kind. "auto" and "" defer to
// KindForPath.
func ParseKind(token, path string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "", "auto":
		return KindForPath(path), nil
	case "csv", "delimited":
		return Delimited, nil
	case "excel", "xls", "xlsx", "spreadsheet":
		return Spreadsheet, nil
	default:
		return 0, fmt.Errorf("unknown kind %q: use auto, csv or excel", token)
	}
}
