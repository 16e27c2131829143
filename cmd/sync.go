package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/mrr-sync/internal/config"
	"github.com/sells-group/mrr-sync/internal/directory"
	"github.com/sells-group/mrr-sync/internal/reconcile"
	"github.com/sells-group/mrr-sync/internal/revenue"
	"github.com/sells-group/mrr-sync/pkg/canny"
	"github.com/sells-group/mrr-sync/pkg/slack"
)

var (
	syncDryRun     bool
	syncReportPath string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push monthly spend to Canny and report naming mismatches",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		mode := "sync"
		if syncDryRun {
			mode = "dry-run"
		}
		if err := cfg.Validate(mode); err != nil {
			return err
		}
		if syncReportPath == "-" {
			if err := reserveStdout(cfg); err != nil {
				return err
			}
		}

		restore := zap.ReplaceGlobals(zap.L().With(zap.String("run_id", uuid.NewString())))
		defer restore()

		res, err := runSync(ctx, cfg, newClients(cfg), syncDryRun)
		if err != nil {
			return err
		}

		if syncReportPath != "" {
			if err := writeYAML(cmd.OutOrStdout(), syncReportPath, res); err != nil {
				return eris.Wrap(err, "write report")
			}
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "log updates and notification without calling Canny update or Slack")
	syncCmd.Flags().StringVar(&syncReportPath, "report", "", "write the run result as YAML to this path (- for stdout)")
	rootCmd.AddCommand(syncCmd)
}

// clients bundles the external services a sync talks to.
type clients struct {
	canny canny.Client
	slack slack.Client
}

func newClients(c *config.Config) clients {
	return clients{
		canny: newCannyClient(c),
		slack: slack.NewClient(c.Slack.Token, slack.WithAPIURL(c.Slack.APIURL)),
	}
}

func newCannyClient(c *config.Config) canny.Client {
	timeout := time.Duration(c.Canny.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return canny.NewClient(c.Canny.APIKey,
		canny.WithBaseURL(c.Canny.BaseURL),
		canny.WithHTTPClient(&http.Client{Timeout: timeout}),
		canny.WithRateLimit(c.Canny.RateLimit),
	)
}

func revenueOptions(c *config.Config) revenue.Options {
	return revenue.Options{
		Path:           c.Revenue.File,
		Sheet:          c.Revenue.Sheet,
		RequiredFields: c.Revenue.RequiredFields,
		NameColumn:     c.Revenue.NameColumn,
		ARRColumn:      c.Revenue.ARRColumn,
		SkipRows:       c.Revenue.SkipRows,
		Delimiter:      c.Revenue.Delimiter(),
	}
}

// listDirectory pages through Canny with the configured strategy.
func listDirectory(ctx context.Context, c *config.Config, lister directory.Lister) (*directory.Directory, error) {
	pager, err := directory.NewPager(c.Canny.Pagination, c.Canny.TotalCompanies, c.Canny.PageSize)
	if err != nil {
		return nil, err
	}
	return directory.ListAll(ctx, lister, pager), nil
}

// runSync runs extract, list and reconcile in order. Only extraction and
// configuration problems are returned; per-company failures live in the
// result.
func runSync(ctx context.Context, c *config.Config, cl clients, dryRun bool) (*reconcile.Result, error) {
	report, err := revenue.Extract(ctx, revenueOptions(c))
	if err != nil {
		return nil, eris.Wrap(err, "extract revenue")
	}
	zap.L().Info("revenue report parsed",
		zap.String("file", c.Revenue.File),
		zap.Int("companies", len(report)),
	)

	dir, err := listDirectory(ctx, c, cl.canny)
	if err != nil {
		return nil, err
	}

	notifier := reconcile.NewSlackNotifier(cl.slack, c.Slack.Channel, c.Slack.Username)
	rec := reconcile.New(cl.canny, notifier, reconcile.Options{
		Header: c.Slack.Header,
		DryRun: dryRun,
	})
	return rec.Run(ctx, report, dir), nil
}
