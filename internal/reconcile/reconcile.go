// Package reconcile joins the revenue report with the Canny directory,
// pushes monthly spend for matched companies and reports the rest.
package reconcile

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/mrr-sync/internal/directory"
	"github.com/sells-group/mrr-sync/internal/model"
	"github.com/sells-group/mrr-sync/pkg/canny"
)

// DefaultHeader prefixes the mismatch notification.
const DefaultHeader = "Canny.io Company with naming mismatch to revenue report:"

// Updater pushes a company record to Canny.
type Updater interface {
	UpdateCompany(ctx context.Context, company canny.Company) error
}

// Notifier delivers the mismatch message.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Options configures a Reconciler.
type Options struct {
	Header string
	DryRun bool // skip updates and notification, log what would happen
}

// UpdateFailure records a company whose update call failed.
type UpdateFailure struct {
	Name         string `json:"name" yaml:"name"`
	MonthlySpend string `json:"monthly_spend" yaml:"monthly_spend"`
	Error        string `json:"error" yaml:"error"`
}

// Result is the outcome of one reconciliation. Every directory name lands in
// exactly one of Updated, Failed or Missing.
type Result struct {
	Updated     []string        `json:"updated" yaml:"updated"`
	Failed      []UpdateFailure `json:"failed" yaml:"failed"`
	Missing     []string        `json:"missing" yaml:"missing"`
	Notified    bool            `json:"notified" yaml:"notified"`
	NotifyError string          `json:"notify_error,omitempty" yaml:"notify_error,omitempty"`
	DryRun      bool            `json:"dry_run" yaml:"dry_run"`
}

// Total returns the number of companies the run looked at.
func (r *Result) Total() int {
	return len(r.Updated) + len(r.Failed) + len(r.Missing)
}

// Reconciler matches directory companies to revenue records by exact name.
type Reconciler struct {
	updater  Updater
	notifier Notifier
	opts     Options
}

// New creates a Reconciler. An empty header falls back to DefaultHeader.
func New(updater Updater, notifier Notifier, opts Options) *Reconciler {
	if opts.Header == "" {
		opts.Header = DefaultHeader
	}
	return &Reconciler{updater: updater, notifier: notifier, opts: opts}
}

// Run walks the directory in order. Matched companies get the revenue
// record's monthly spend and are updated one at a time; a failed update is
// logged and the walk continues. Unmatched names are sent in a single
// notification. Run never fails as a whole.
func (r *Reconciler) Run(ctx context.Context, revenue model.RevenueReport, dir *directory.Directory) *Result {
	res := &Result{DryRun: r.opts.DryRun}

	for _, name := range dir.Names() {
		company, _ := dir.Get(name)

		rec, ok := revenue.Lookup(name)
		if !ok {
			res.Missing = append(res.Missing, name)
			continue
		}

		company.MonthlySpend = rec.MonthlySpend
		dir.Set(company)

		if r.opts.DryRun {
			zap.L().Info("dry run: would update company",
				zap.String("name", name),
				zap.Stringer("monthly_spend", company.MonthlySpend),
			)
			res.Updated = append(res.Updated, name)
			continue
		}

		if err := r.updater.UpdateCompany(ctx, company); err != nil {
			zap.L().Error("update company failed",
				zap.String("name", name),
				zap.Stringer("monthly_spend", company.MonthlySpend),
				zap.Error(err),
			)
			res.Failed = append(res.Failed, UpdateFailure{
				Name:         name,
				MonthlySpend: company.MonthlySpend.String(),
				Error:        err.Error(),
			})
			continue
		}
		res.Updated = append(res.Updated, name)
	}

	r.report(ctx, res)

	zap.L().Info("reconciliation complete",
		zap.Int("companies", res.Total()),
		zap.Int("updated", len(res.Updated)),
		zap.Int("failed", len(res.Failed)),
		zap.Int("missing", len(res.Missing)),
		zap.Bool("dry_run", res.DryRun),
	)
	return res
}

// report sends the mismatch notification when any names are missing.
func (r *Reconciler) report(ctx context.Context, res *Result) {
	if len(res.Missing) == 0 {
		zap.L().Info("no canny companies missing MRR")
		return
	}

	text := MismatchMessage(r.opts.Header, res.Missing)
	if r.opts.DryRun {
		zap.L().Info("dry run: would send mismatch notification", zap.String("text", text))
		return
	}

	if err := r.notifier.Notify(ctx, text); err != nil {
		zap.L().Error("mismatch notification failed",
			zap.Int("missing", len(res.Missing)),
			zap.Error(err),
		)
		res.NotifyError = err.Error()
		return
	}
	res.Notified = true
}

// MismatchMessage renders the header followed by one missing name per line.
func MismatchMessage(header string, missing []string) string {
	return header + "\n" + strings.Join(missing, "\n")
}
