package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/mrr-sync/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "mrr-sync",
	Short:         "Sync CRM monthly recurring revenue into Canny",
	Long:          "Reads the HubSpot revenue export, pushes monthly spend to matching Canny companies, and reports Canny companies missing from the export to Slack.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if err := config.InitLogger(c.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		cfg = c

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError logs a fatal command error once. Before the logger exists
// (config failed to load) it falls back to a plain line on w.
func reportError(w io.Writer, err error) {
	if cfg == nil {
		fmt.Fprintln(w, "Error:", err)
		return
	}
	zap.L().Error("mrr-sync failed", zap.Error(err))
	_ = zap.L().Sync()
}
