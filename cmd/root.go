package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vero-group/fleet-cli/internal/config"
)

const (
	appName    = "fleet-cli"
	appVersion = "1"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Vehicle fleet reconciliation and report generation",
	Long:  "Reconciles CSV vehicle data against the Baubuddy active-vehicle source and produces a styled Excel report with dynamic column selection.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
