package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/tabinspect/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr         string
		allowInstall bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve inspect and export over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr()
			}

			// Requests must not change host packages unless asked for.
			a.installer.Enabled = a.cfg.Install.Enabled && allowInstall
			if !a.installer.Enabled {
				slog.Info("automatic installation disabled for serve")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, a, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default SERVER_HOST:SERVER_PORT)")
	cmd.Flags().BoolVar(&allowInstall, "allow-install", false, "Let API requests install missing spreadsheet engines (needs INSTALL_ENABLED)")
	return cmd
}

// serve runs the HTTP server until ctx is cancelled, then shuts it down
// within the configured timeout.
func serve(ctx context.Context, a *app, addr string) error {
	srv := web.NewServer(a.loader, a.writer, web.Options{
		ReadTimeout:    a.cfg.Server.ReadTimeout,
		WriteTimeout:   a.cfg.Server.WriteTimeout,
		RequestTimeout: a.cfg.Server.RequestTimeout,
		PreviewRows:    a.cfg.Ingest.PreviewRows,
		Metrics:        a.recorder.Handler(),

		MaxConcurrentLoads: a.cfg.Server.MaxConcurrentLoads,
		MaxWait:            a.cfg.Server.LoadWait,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
