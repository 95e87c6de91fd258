// Package application runs the interactive inspect-and-save flow.
package application

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/JonMunkholm/tabinspect/internal/export"
	"github.com/JonMunkholm/tabinspect/internal/ingest"
	"github.com/JonMunkholm/tabinspect/internal/summary"
)

const banner = "TABULAR FILE INSPECTOR"

// Session is one pass of the interactive menu: ask for a file, summarize
// it and optionally save a cleaned copy.
type Session struct {
	In  io.Reader
	Out io.Writer

	Loader *ingest.Loader
	Writer *export.Writer

	// DefaultPath is used when the path prompt is left empty.
	DefaultPath string
	PreviewRows int
	Color       bool

	lines *bufio.Scanner
	ok    *color.Color
	warn  *color.Color
	fail  *color.Color
}

// Run executes the flow. A failed load is reported to Out and ends the
// session without an error; only I/O and context errors are returned.
func (s *Session) Run(ctx context.Context) error {
	s.init()

	fmt.Fprintf(s.Out, "\n%s\n%s\n%s\n", strings.Repeat("=", 50), center(banner, 50), strings.Repeat("=", 50))

	path := s.ask(fmt.Sprintf("\nPath to a .csv, .xls or .xlsx file (Enter for %s): ", s.DefaultPath))
	path = strings.Trim(path, `"'`)
	if path == "" {
		path = s.DefaultPath
	}
	fmt.Fprintf(s.Out, "\nReading: %s\n", path)

	res := s.Loader.Load(ctx, path, ingest.KindForPath(path))
	if err := ctx.Err(); err != nil {
		return err
	}
	if !res.Loaded() {
		s.fail.Fprintf(s.Out, "\n✗ %s\n", ingest.FormatUserError(res.Err()))
		return nil
	}
	if res.Encoding != "" {
		s.ok.Fprintf(s.Out, "\n✓ File read with encoding %s\n", res.Encoding)
	} else {
		s.ok.Fprintf(s.Out, "\n✓ File read successfully\n")
	}

	sum := summary.Describe(res.Table, s.PreviewRows)
	sum.Encoding = res.Encoding
	if err := summary.Print(s.Out, sum, summary.Options{Color: s.Color}); err != nil {
		return fmt.Errorf("print summary: %w", err)
	}

	if !yes(s.ask("\nSave cleaned data? (y/n): ")) {
		fmt.Fprintln(s.Out, "\nNothing saved.")
		return nil
	}

	name := s.ask("Output file name (without extension): ")

	choices := "1-CSV, 2-Excel, 3-JSON"
	if s.Writer.HasSink() {
		choices += ", 4-PostgreSQL"
	}
	format, err := export.ParseFormat(s.ask(fmt.Sprintf("\nFormat? (%s): ", choices)))
	if err != nil || (format == export.Postgres && !s.Writer.HasSink()) {
		s.warn.Fprintln(s.Out, "\n! Invalid option, nothing saved")
		return nil
	}

	dest, err := s.Writer.Write(ctx, res.Table, format, name)
	if err != nil {
		s.fail.Fprintf(s.Out, "\n✗ %s\n", ingest.FormatUserError(err))
		return nil
	}
	s.ok.Fprintf(s.Out, "\n✓ Saved as %s\n", dest)
	return nil
}

func (s *Session) init() {
	s.lines = bufio.NewScanner(s.In)
	s.ok = color.New(color.FgGreen)
	s.warn = color.New(color.FgYellow)
	s.fail = color.New(color.FgRed)
	if !s.Color {
		for _, c := range []*color.Color{s.ok, s.warn, s.fail} {
			c.DisableColor()
		}
	}
}

// ask prints prompt and returns the trimmed answer. End of input reads as
// an empty answer.
func (s *Session) ask(prompt string) string {
	fmt.Fprint(s.Out, prompt)
	if !s.lines.Scan() {
		fmt.Fprintln(s.Out)
		return ""
	}
	return strings.TrimSpace(s.lines.Text())
}

func yes(answer string) bool {
	switch strings.ToLower(answer) {
	case "y", "yes", "s", "si", "sí":
		return true
	}
	return false
}

func center(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad/2) + s
}
