package cli

import (
	"io"

	"github.com/JonMunkholm/tabinspect/internal/config"
	"github.com/JonMunkholm/tabinspect/internal/export"
	"github.com/JonMunkholm/tabinspect/internal/ingest"
	"github.com/JonMunkholm/tabinspect/internal/metrics"
)

// Streams are the standard streams a command reads and writes.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// app holds the collaborators shared by all commands.
type app struct {
	cfg       *config.Config
	streams   Streams
	recorder  *metrics.Recorder
	installer *ingest.CommandInstaller
	loader    *ingest.Loader
	writer    *export.Writer
}

// newApp wires the loader, installer, exporter and metrics from cfg.
// Installer output goes to the error stream so stdout stays the summary.
func newApp(cfg *config.Config, streams Streams) *app {
	rec := metrics.NewRecorder()

	resolver := ingest.NewResolver(ingest.WithDelimiter(cfg.Ingest.DelimiterRune()))

	installer := &ingest.CommandInstaller{
		Command: cfg.Install.CommandArgs(),
		Enabled: cfg.Install.Enabled,
		Timeout: cfg.Install.Timeout,
		Out:     streams.Err,
	}
	sheets := ingest.NewSpreadsheetLoader(installer,
		ingest.WithEngine(".xls", ingest.NewConvertEngine(cfg.Install.XLSConverter, cfg.Install.XLSPackage)),
	)

	var opts []export.Option
	if cfg.Database.Enabled() {
		opts = append(opts, export.WithSink(export.URLSink{URL: cfg.Database.URL, MaxConns: cfg.Database.MaxConns}))
	}

	return &app{
		cfg:       cfg,
		streams:   streams,
		recorder:  rec,
		installer: installer,
		loader:    ingest.NewLoader(resolver, sheets, ingest.WithObserver(rec)),
		writer:    export.NewWriter(cfg.Export.Dir, opts...),
	}
}
