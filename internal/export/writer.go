package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/tabinspect/internal/logging"
	"github.com/JonMunkholm/tabinspect/internal/table"
)

// ErrNoDatabase is returned for the Postgres format when no sink is set.
var ErrNoDatabase = errors.New("database is not configured")

// SheetName is the worksheet written by XLSX exports.
const SheetName = "Sheet1"

// Sink stores a table under a name outside the filesystem.
type Sink interface {
	Write(ctx context.Context, t *table.Table, name string) error
}

// Writer writes cleaned tables into a directory or a Sink.
type Writer struct {
	dir  string
	sink Sink
}

// Option configures a Writer.
type Option func(*Writer)

// WithSink enables the Postgres format.
func WithSink(s Sink) Option {
	return func(w *Writer) { w.sink = s }
}

// NewWriter creates a Writer rooted at dir ("" is the working directory).
func NewWriter(dir string, opts ...Option) *Writer {
	w := &Writer{dir: dir}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// HasSink reports whether the Postgres format is available.
func (w *Writer) HasSink() bool { return w.sink != nil }

// Write drops all-missing rows from t and stores the result as name in
// format. It returns the file path, or "postgres:<table>" for the sink.
func (w *Writer) Write(ctx context.Context, t *table.Table, format Format, name string) (string, error) {
	name = cleanName(name, format)
	if name == "" {
		return "", errors.New("output name is required")
	}

	cleaned := t.DropEmptyRows()
	logger := logging.WithFields(ctx, "format", format.String(), "name", name)

	if format == Postgres {
		if w.sink == nil {
			return "", ErrNoDatabase
		}
		if err := w.sink.Write(ctx, cleaned, name); err != nil {
			return "", fmt.Errorf("write postgres table %s: %w", name, err)
		}
		logger.Info("exported table", "rows", cleaned.NumRows())
		return "postgres:" + TableName(name), nil
	}

	path := filepath.Join(w.dir, name+format.Extension())

	var err error
	switch format {
	case CSV:
		err = writeCSV(path, cleaned)
	case XLSX:
		err = writeXLSX(path, cleaned)
	case JSON:
		err = writeJSON(path, cleaned)
	default:
		return "", fmt.Errorf("unknown format %s", format)
	}
	if err != nil {
		return "", fmt.Errorf("export %s: %w", path, err)
	}

	logger.Info("exported file", "path", path, "rows", cleaned.NumRows())
	return path, nil
}

// cleanName keeps only the base name and drops a trailing extension that
// matches the format.
func cleanName(name string, format Format) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = filepath.Base(name)
	if ext := format.Extension(); ext != "" && strings.EqualFold(filepath.Ext(name), ext) {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}

func writeCSV(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(t.Names()); err != nil {
		f.Close()
		return err
	}
	if err := cw.WriteAll(t.Records()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeXLSX(path string, t *table.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return err
	}

	header := make([]any, t.NumCols())
	for i, name := range t.Names() {
		header[i] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for r := 0; r < t.NumRows(); r++ {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		row := t.Row(r)
		values := make([]any, len(row))
		for i, v := range row {
			values[i] = v.Any()
		}
		if err := sw.SetRow(cell, values); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}
	return f.SaveAs(path)
}

// writeJSON writes an array of records with keys in column order.
// Missing cells are null.
func writeJSON(path string, t *table.Table) error {
	names := t.Names()
	keys := make([][]byte, len(names))
	for i, name := range names {
		k, err := json.Marshal(name)
		if err != nil {
			return err
		}
		keys[i] = k
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for r := 0; r < t.NumRows(); r++ {
		if r > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for c, v := range t.Row(r) {
			if c > 0 {
				buf.WriteByte(',')
			}
			val, err := json.Marshal(v.Any())
			if err != nil {
				return fmt.Errorf("row %d column %s: %w", r, names[c], err)
			}
			buf.Write(keys[c])
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteString("]\n")

	return os.WriteFile(path, buf.Bytes(), 0o644)
}
