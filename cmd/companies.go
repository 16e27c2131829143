package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sells-group/mrr-sync/internal/directory"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List Canny companies with their current monthly spend",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("companies"); err != nil {
			return err
		}
		if err := reserveStdout(cfg); err != nil {
			return err
		}

		dir, err := listDirectory(ctx, cfg, newCannyClient(cfg))
		if err != nil {
			return err
		}
		return writeYAML(cmd.OutOrStdout(), "-", companyRows(dir))
	},
}

func init() {
	rootCmd.AddCommand(companiesCmd)
}

// companyRow is the printable form of a Canny company.
type companyRow struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	MonthlySpend string `yaml:"monthly_spend"`
}

func companyRows(dir *directory.Directory) []companyRow {
	rows := make([]companyRow, 0, dir.Len())
	for _, name := range dir.Names() {
		c, _ := dir.Get(name)
		rows = append(rows, companyRow{ID: c.ID, Name: c.Name, MonthlySpend: c.MonthlySpend.String()})
	}
	return rows
}
