package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/nsistat/udpstat/internal/config"
	"github.com/nsistat/udpstat/internal/exporter"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *options) *cobra.Command {
	var (
		listen      string
		metricsPath string
		endpoints   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the UDP tables as Prometheus metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg.Exporter
			if listen != "" {
				cfg.ListenAddress = listen
			}
			if metricsPath != "" {
				cfg.MetricsPath = metricsPath
			}
			if cmd.Flags().Changed("endpoints") {
				cfg.Endpoints = endpoints
			}
			if err := config.ValidateMetricsPath(cfg.MetricsPath); err != nil {
				return fmt.Errorf("--metrics-path: %w", err)
			}

			p, _, err := opts.provider()
			if err != nil {
				return err
			}
			reg, err := exporter.NewRegistry(exporter.NewCollector(p, cfg.Endpoints))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info("starting udpstat exporter", "version", versionString(), "listen", cfg.ListenAddress)
			return exporter.Serve(ctx, exporter.ServerConfig{
				ListenAddress: cfg.ListenAddress,
				MetricsPath:   cfg.MetricsPath,
			}, reg)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&listen, "listen", "", "address to listen on (default from config, :9867)")
	fl.StringVar(&metricsPath, "metrics-path", "", "path of the metrics endpoint")
	fl.BoolVar(&endpoints, "endpoints", false, "export one series per bound endpoint")
	return cmd
}
