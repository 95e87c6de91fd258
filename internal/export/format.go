// Package export writes a cleaned copy of a table as CSV, XLSX, JSON or
// into a PostgreSQL table.
package export

import (
	"fmt"
	"strings"
)

// Format is an export target.
type Format int

const (
	CSV Format = iota + 1
	XLSX
	JSON
	Postgres
)

func (f Format) String() string {
	switch f {
	case CSV:
		return "csv"
	case XLSX:
		return "xlsx"
	case JSON:
		return "json"
	case Postgres:
		return "postgres"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Extension returns the file extension for file formats, "" for Postgres.
func (f Format) Extension() string {
	switch f {
	case CSV, XLSX, JSON:
		return "." + f.String()
	default:
		return ""
	}
}

// ParseFormat accepts the menu numbers 1-4 and the format names.
func ParseFormat(token string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "1", "csv":
		return CSV, nil
	case "2", "excel", "xlsx", "spreadsheet":
		return XLSX, nil
	case "3", "json":
		return JSON, nil
	case "4", "postgres", "postgresql", "db":
		return Postgres, nil
	default:
		return 0, fmt.Errorf("unknown format %q", token)
	}
}
