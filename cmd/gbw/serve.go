package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aculich/gcp-billing-watcher/internal/logger"
	"github.com/aculich/gcp-billing-watcher/internal/metrics"
	"github.com/aculich/gcp-billing-watcher/internal/services"
	"github.com/aculich/gcp-billing-watcher/internal/version"
)

const defaultMetricsAddr = "127.0.0.1:9464"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the watcher headless and expose metrics",
	Long: `Run the refresh scheduler without the terminal UI. Cost, budget and
alert level are exported as Prometheus metrics on /metrics and the
rendered status is served as JSON on /status.

Desktop notifications are still sent when the alert level rises.`,
	Example: `  gbw serve
  gbw serve --metrics-addr :9464`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Setup(os.Stderr, cfg.LogLevel)
	if cfg.MetricsAddr == "" {
		cfg.MetricsAddr = defaultMetricsAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mgr, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	mgr.Start()
	logger.Info(mgr.Snapshot().Catalog.Started, "version", version.Version, "metrics", cfg.MetricsAddr)

	srv := metrics.NewServer(cfg.MetricsAddr, mgr.Collector(), mgr.StatusView)
	runErr := srv.Run(ctx)
	stop()

	closeErr := mgr.Close()
	logger.Info(mgr.Snapshot().Catalog.Stopped)

	if runErr != nil {
		return fmt.Errorf("metrics server: %w", runErr)
	}
	return closeErr
}
