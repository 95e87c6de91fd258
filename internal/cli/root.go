// Package cli implements the tabinspect command line.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/JonMunkholm/tabinspect/internal/application"
	"github.com/JonMunkholm/tabinspect/internal/config"
	"github.com/JonMunkholm/tabinspect/internal/ingest"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI against the process streams and returns the exit code.
func Execute(cfg *config.Config) int {
	streams := Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
	return run(newRootCmd(cfg, streams, isTerminal(os.Stdin)), streams)
}

func run(rootCmd *cobra.Command, streams Streams) int {
	if err := rootCmd.Execute(); err != nil {
		red := color.New(color.FgRed)
		var f *ingest.Failure
		if errors.As(err, &f) {
			red.Fprintf(streams.Err, "Error: %s\n", ingest.FormatUserError(err))
		} else {
			red.Fprintf(streams.Err, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func newRootCmd(cfg *config.Config, streams Streams, tty bool) *cobra.Command {
	a := newApp(cfg, streams)

	var (
		interactive bool
		noColor     bool
	)

	rootCmd := &cobra.Command{
		Use:   "tabinspect",
		Short: "Inspect and clean a CSV or Excel file",
		Long: "Loads a delimited or spreadsheet file, prints a descriptive summary\n" +
			"and optionally saves a cleaned copy as CSV, Excel, JSON or a PostgreSQL table.\n\n" +
			"Run without arguments in a terminal for the interactive menu.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if noColor {
				color.NoColor = true
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !interactive && !tty {
				return cmd.Help()
			}
			s := &application.Session{
				In:          streams.In,
				Out:         streams.Out,
				Loader:      a.loader,
				Writer:      a.writer,
				DefaultPath: cfg.Ingest.DefaultPath,
				PreviewRows: cfg.Ingest.PreviewRows,
				Color:       !color.NoColor,
			}
			return s.Run(cmd.Context())
		},
	}

	rootCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Run the interactive menu even when stdin is not a terminal")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.SetIn(streams.In)
	rootCmd.SetOut(streams.Out)
	rootCmd.SetErr(streams.Err)

	rootCmd.AddCommand(newInspectCmd(a))
	rootCmd.AddCommand(newExportCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newVersionCmd(streams))

	return rootCmd
}

func newVersionCmd(streams Streams) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(streams.Out, "tabinspect version %s (commit: %s)\n", version, commit)
			return err
		},
	}
}
