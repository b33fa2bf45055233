package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aculich/gcp-billing-watcher/internal/logger"
	"github.com/aculich/gcp-billing-watcher/internal/models"
	"github.com/aculich/gcp-billing-watcher/internal/services"
)

var onceFlags struct {
	jsonOutput bool
}

// errNotHealthy makes the command exit non-zero without repeating the output.
var errNotHealthy = errors.New("billing status unavailable")

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Fetch the current month's cost once and print it",
	Long: `Run a single billing query using the saved settings, print the status
line followed by the detail lines, and exit.

The exit code is non-zero when the project is not configured or the
query fails, which makes the command usable from scripts and status bars.`,
	Example: `  gbw once
  gbw once --json | jq .output.summary`,
	RunE: runOnce,
}

func init() {
	rootCmd.AddCommand(onceCmd)
	onceCmd.Flags().BoolVar(&onceFlags.jsonOutput, "json", false, "print the full status as JSON")
}

func runOnce(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Setup(os.Stderr, cfg.LogLevel)
	cfg.Notifications = false

	mgr, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer mgr.Close()

	snap := mgr.Refresh(cmd.Context(), models.TriggerManual)

	out := cmd.OutOrStdout()
	if onceFlags.jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("failed to encode status: %w", err)
		}
	} else {
		fmt.Fprintln(out, snap.Output.Summary)
		for _, line := range snap.Output.Tooltip {
			fmt.Fprintln(out, line)
		}
	}

	if !snap.Status.IsSuccess() {
		return errNotHealthy
	}
	return nil
}
