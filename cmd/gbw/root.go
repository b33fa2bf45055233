package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/aculich/gcp-billing-watcher/internal/app"
	"github.com/aculich/gcp-billing-watcher/internal/config"
	"github.com/aculich/gcp-billing-watcher/internal/logger"
	"github.com/aculich/gcp-billing-watcher/internal/metrics"
	"github.com/aculich/gcp-billing-watcher/internal/services"
	"github.com/aculich/gcp-billing-watcher/internal/ui/tabs/dashboard"
	"github.com/aculich/gcp-billing-watcher/internal/ui/tabs/history"
	"github.com/aculich/gcp-billing-watcher/internal/ui/tabs/info"
	"github.com/aculich/gcp-billing-watcher/internal/version"
)

// Global flags
var metricsAddr string

var rootCmd = &cobra.Command{
	Use:   "gbw",
	Short: "Google Cloud billing watcher",
	Long: `gbw watches the current month's Google Cloud spend through the
BigQuery billing export and shows it in a terminal dashboard.

Running gbw without a subcommand starts the interactive UI. Billing
settings (project, dataset, table, budget, refresh interval) are read
from the settings file and reloaded when it changes.

Keyboard shortcuts:
  1-3, Tab/Shift+Tab   Switch between tabs
  r                    Refresh now
  c                    Configure project ID
  o                    Copy the billing console URL
  ?                    Toggle help
  q, Ctrl+C            Quit`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics and /status on this address (overrides GBW_METRICS_ADDR)")
	rootCmd.SetVersionTemplate("{{ .Version }}\n")
	rootCmd.Version = version.Info()
}

// loadConfig loads the process configuration and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}
	return cfg, nil
}

// startMetrics runs the metrics server in the background when an address is set.
func startMetrics(ctx context.Context, cfg *config.Config, mgr *services.Manager) {
	if cfg.MetricsAddr == "" {
		return
	}
	srv := metrics.NewServer(cfg.MetricsAddr, mgr.Collector(), mgr.StatusView)
	go func() {
		if err := srv.Run(ctx); err != nil {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The UI owns the terminal, so logs go to a file.
	logFile, err := logger.OpenFile(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mgr, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := mgr.Close(); closeErr != nil {
			logger.Warn("error closing services", "error", closeErr)
		}
		logger.Info(mgr.Snapshot().Catalog.Stopped)
	}()

	startMetrics(ctx, cfg, mgr)

	model := app.NewModel(mgr)
	state := model.State()
	model.SetTabs([]app.Tab{
		dashboard.New(state),
		history.New(state),
		info.New(state, cfg),
	})

	mgr.Start()
	logger.Info(mgr.Snapshot().Catalog.Started, "version", version.Version)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
