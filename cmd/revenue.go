package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/mrr-sync/internal/model"
	"github.com/sells-group/mrr-sync/internal/revenue"
)

var revenueCmd = &cobra.Command{
	Use:   "revenue",
	Short: "Parse the revenue export and print monthly spend per company",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("revenue"); err != nil {
			return err
		}
		if err := reserveStdout(cfg); err != nil {
			return err
		}

		report, err := revenue.Extract(cmd.Context(), revenueOptions(cfg))
		if err != nil {
			return eris.Wrap(err, "extract revenue")
		}

		zap.L().Info("revenue report parsed",
			zap.String("file", cfg.Revenue.File),
			zap.Int("companies", len(report)),
		)
		return writeYAML(cmd.OutOrStdout(), "-", revenueRows(report))
	},
}

func init() {
	rootCmd.AddCommand(revenueCmd)
}

// revenueRow is the printable form of a revenue record.
type revenueRow struct {
	Name             string   `yaml:"name"`
	TotalCustomerARR *float64 `yaml:"total_customer_arr"`
	MonthlySpend     string   `yaml:"monthly_spend"`
}

func revenueRows(report model.RevenueReport) []revenueRow {
	rows := make([]revenueRow, 0, len(report))
	for _, name := range report.Names() {
		rec := report[name]
		rows = append(rows, revenueRow{
			Name:             rec.Name,
			TotalCustomerARR: rec.TotalCustomerARR,
			MonthlySpend:     rec.MonthlySpend.String(),
		})
	}
	return rows
}
