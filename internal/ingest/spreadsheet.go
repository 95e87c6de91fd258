package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/tabinspect/internal/logging"
	"github.com/JonMunkholm/tabinspect/internal/table"
)

// Engine reads the first worksheet of a workbook into a table.
type Engine interface {
	Open(ctx context.Context, path string) (*table.Table, error)
}

// MissingDependencyError is returned by an Engine whose optional runtime
// component is not installed.
type MissingDependencyError struct {
	Package string
	Err     error
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("optional dependency %q is not available: %v", e.Package, e.Err)
}

func (e *MissingDependencyError) Unwrap() error { return e.Err }

// ExcelizeEngine reads .xlsx workbooks in-process.
type ExcelizeEngine struct{}

// Open reads the first worksheet; its first row is the header. Cells are
// read unformatted so number formats do not turn numbers into text.
func (ExcelizeEngine) Open(_ context.Context, path string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no worksheets")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q: %w", sheets[0], errNoColumns)
	}

	return table.Build(rows[0], rows[1:]), nil
}

// ConvertEngine reads legacy .xls workbooks by converting them to .xlsx
// with an external converter and handing the result to Next.
type ConvertEngine struct {
	// Binary is the converter looked up on PATH, e.g. "soffice".
	Binary string
	// Package is what the installer must install to provide Binary.
	Package string
	// Next reads the converted workbook.
	Next Engine

	lookPath func(file string) (string, error)
	run      func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// NewConvertEngine creates a ConvertEngine backed by os/exec.
func NewConvertEngine(binary, pkg string) *ConvertEngine {
	return &ConvertEngine{
		Binary:   binary,
		Package:  pkg,
		Next:     ExcelizeEngine{},
		lookPath: exec.LookPath,
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).CombinedOutput()
		},
	}
}

// Open converts path into a temporary directory and reads the copy.
// A missing source is reported before the converter is looked up.
func (e *ConvertEngine) Open(ctx context.Context, path string) (*table.Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	bin, err := e.lookPath(e.Binary)
	if err != nil {
		return nil, &MissingDependencyError{Package: e.Package, Err: err}
	}

	dir, err := os.MkdirTemp("", "tabinspect-xls-*")
	if err != nil {
		return nil, fmt.Errorf("create conversion dir: %w", err)
	}
	defer os.RemoveAll(dir)

	out, err := e.run(ctx, bin, "--headless", "--convert-to", "xlsx", "--outdir", dir, path)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w: %s", filepath.Base(path), err, strings.TrimSpace(string(out)))
	}

	converted := filepath.Join(dir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+".xlsx")
	return e.Next.Open(ctx, converted)
}

// SpreadsheetLoader loads workbooks through the Engine registered for the
// file extension, installing a missing engine at most once per call.
type SpreadsheetLoader struct {
	engines   map[string]Engine
	installer Installer
}

// SpreadsheetOption configures a SpreadsheetLoader.
type SpreadsheetOption func(*SpreadsheetLoader)

// WithEngine registers e for the extension ext (".xlsx", ".xls").
func WithEngine(ext string, e Engine) SpreadsheetOption {
	return func(l *SpreadsheetLoader) { l.engines[strings.ToLower(ext)] = e }
}

// NewSpreadsheetLoader creates a loader with excelize for .xlsx and the
// default converter for .xls. installer may be nil, which turns a missing
// engine straight into a MissingDependency failure.
func NewSpreadsheetLoader(installer Installer, opts ...SpreadsheetOption) *SpreadsheetLoader {
	l := &SpreadsheetLoader{
		engines: map[string]Engine{
			".xlsx": ExcelizeEngine{},
			".xls":  NewConvertEngine("soffice", "libreoffice"),
		},
		installer: installer,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads path. A missing engine triggers one install and one retry.
func (l *SpreadsheetLoader) Load(ctx context.Context, path string) Result {
	logger := logging.WithFields(ctx, "path", path)

	ext := strings.ToLower(filepath.Ext(path))
	eng, ok := l.engines[ext]
	if !ok {
		return failed(InvalidFormat, "%s", expectation[Spreadsheet])
	}

	t, err := eng.Open(ctx, path)

	var missing *MissingDependencyError
	if errors.As(err, &missing) {
		logger.Warn("spreadsheet engine unavailable", "package", missing.Package, "error", missing.Err)
		if l.installer == nil || !l.installer.Install(ctx, missing.Package) {
			return failed(MissingDependency, "%s", missing.Package)
		}

		t, err = eng.Open(ctx, path)
		if errors.As(err, &missing) {
			return failed(MissingDependency, "%s", missing.Package)
		}
	}

	if err != nil {
		return failed(ParseError, "%v", err)
	}

	logger.Debug("loaded workbook", "rows", t.NumRows(), "columns", t.NumCols())
	return loaded(t, "")
}
