package cli

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/tabinspect/internal/export"
	"github.com/JonMunkholm/tabinspect/internal/ingest"
	"github.com/JonMunkholm/tabinspect/internal/summary"
)

func newInspectCmd(a *app) *cobra.Command {
	var (
		kind   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <path>",
		Short: "Print the summary of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.load(cmd, args[0], kind)
			if err != nil {
				return err
			}

			sum := summary.Describe(res.Table, a.cfg.Ingest.PreviewRows)
			sum.Encoding = res.Encoding
			if asJSON {
				enc := json.NewEncoder(a.streams.Out)
				enc.SetIndent("", "  ")
				return enc.Encode(sum)
			}
			return summary.Print(a.streams.Out, sum, summary.Options{Color: !color.NoColor})
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "auto", "File kind: auto, csv or excel")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		kind   string
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Save a cleaned copy of a file",
		Long: "Loads the file, drops rows where every cell is missing and writes the\n" +
			"result as csv, xlsx, json or into a PostgreSQL table (DATABASE_URL).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			res, err := a.load(cmd, args[0], kind)
			if err != nil {
				return err
			}

			dest, err := a.writer.Write(cmd.Context(), res.Table, f, out)
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Fprintf(a.streams.Out, "✓ Saved as %s\n", dest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "auto", "File kind: auto, csv or excel")
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "Output format: csv, xlsx, json or postgres")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output name without extension (required)")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

// load resolves the kind token and loads path, returning the failure as
// an error.
func (a *app) load(cmd *cobra.Command, path, kindToken string) (ingest.Result, error) {
	kind, err := ingest.ParseKind(kindToken, path)
	if err != nil {
		return ingest.Result{}, err
	}

	res := a.loader.Load(cmd.Context(), path, kind)
	if err := res.Err(); err != nil {
		return res, fmt.Errorf("load %s: %w", path, err)
	}
	return res, nil
}
