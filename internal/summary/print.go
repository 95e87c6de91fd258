package summary

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// Options controls Print.
type Options struct {
	// Color enables ANSI colors for headings.
	Color bool
}

// Print writes s to w as plain-text sections.
func Print(w io.Writer, s Summary, opts Options) error {
	heading := color.New(color.FgCyan, color.Bold)
	if !opts.Color {
		heading.DisableColor()
	}

	p := &printer{w: w, heading: heading}

	p.section("Shape")
	p.linef("Rows: %d\tColumns: %d", s.Rows, len(s.Columns))
	if s.Encoding != "" {
		p.linef("Encoding: %s", s.Encoding)
	}

	p.section("Columns")
	for _, c := range s.Columns {
		p.linef("%3d. %s (%s)", c.Index, c.Name, c.Type)
	}

	p.section(fmt.Sprintf("First %d rows", len(s.Head.Rows)))
	p.grid(s.Head)

	p.section(fmt.Sprintf("Last %d rows", len(s.Tail.Rows)))
	p.grid(s.Tail)

	p.section("Statistics")
	p.stats(s.Columns)

	p.section("Missing values")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range s.Columns {
		fmt.Fprintf(tw, "%s\t%d\n", c.Name, c.Missing)
	}
	p.flush(tw)

	return p.err
}

type printer struct {
	w       io.Writer
	heading *color.Color
	err     error
}

func (p *printer) section(title string) {
	if p.err != nil {
		return
	}
	_, p.err = p.heading.Fprintf(p.w, "\n%s\n", title)
}

func (p *printer) linef(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) flush(tw *tabwriter.Writer) {
	if err := tw.Flush(); err != nil && p.err == nil {
		p.err = err
	}
}

func (p *printer) grid(pv Preview) {
	if len(pv.Columns) == 0 {
		p.linef("(no columns)")
		return
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(pv.Columns, "\t"))
	for _, row := range pv.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	p.flush(tw)
}

func (p *printer) stats(cols []ColumnSummary) {
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "column\tcount\tunique\ttop\tfreq\tmean\tstd\tmin\t25%\t50%\t75%\tmax\t")
	for _, c := range cols {
		cells := []string{c.Name, strconv.Itoa(c.Count), "", "", "", "", "", "", "", "", "", ""}
		if t := c.Text; t != nil {
			cells[2] = strconv.Itoa(t.Unique)
			cells[3] = t.Top
			cells[4] = strconv.Itoa(t.Freq)
		}
		if n := c.Numeric; n != nil {
			cells[5] = formatFloat(n.Mean)
			cells[6] = "NaN"
			if n.Std != nil {
				cells[6] = formatFloat(*n.Std)
			}
			cells[7] = formatFloat(n.Min)
			cells[8] = formatFloat(n.P25)
			cells[9] = formatFloat(n.P50)
			cells[10] = formatFloat(n.P75)
			cells[11] = formatFloat(n.Max)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	p.flush(tw)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}
