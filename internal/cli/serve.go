package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/JustJay7/court-fetcher/internal/observability"
	"github.com/JustJay7/court-fetcher/internal/server"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	shutdownTracing, err := observability.InitTracing(context.Background(), observability.TracingConfig{
		Enabled:      a.cfg.TracingEnabled,
		ServiceName:  a.cfg.ServiceName,
		Exporter:     a.cfg.TracingExporter,
		OTLPEndpoint: a.cfg.OTLPEndpoint,
	}, a.logger)
	if err != nil {
		return err
	}

	srv := server.New(a.cfg, a.svc, a.logger)
	srv.OnShutdown(shutdownTracing)

	a.logger.Info("Starting Court Data Fetcher",
		"host", a.cfg.Host,
		"port", a.cfg.Port,
		"database", a.cfg.DatabaseDriver,
		"courts", len(a.svc.Courts()),
	)

	return srv.Run()
}
