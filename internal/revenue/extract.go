// Package revenue extracts per-company monthly spend from a CRM revenue export.
package revenue

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/mrr-sync/internal/fetcher"
	"github.com/sells-group/mrr-sync/internal/model"
	"github.com/sells-group/mrr-sync/pkg/canny"
)

// Default column names of the HubSpot export.
const (
	DefaultNameColumn = "Company name"
	DefaultARRColumn  = "Total Customer ARR"
)

// Options configures Extract.
type Options struct {
	Path           string
	Sheet          string
	RequiredFields []string
	NameColumn     string
	ARRColumn      string
	SkipRows       int  // rows above the header
	Delimiter      rune // csv only
}

func (o Options) withDefaults() Options {
	if o.NameColumn == "" {
		o.NameColumn = DefaultNameColumn
	}
	if o.ARRColumn == "" {
		o.ARRColumn = DefaultARRColumn
	}
	return o
}

// Required returns the configured required columns followed by the name and
// ARR columns when the configuration leaves them out. Blank entries and
// duplicates are dropped.
func (o Options) Required() []string {
	o = o.withDefaults()

	seen := make(map[string]bool, len(o.RequiredFields)+2)
	var out []string
	for _, f := range append(append([]string{}, o.RequiredFields...), o.NameColumn, o.ARRColumn) {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// MissingColumnsError lists every required column absent from the export.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "revenue: the following required fields are missing: " + strings.Join(e.Columns, ", ")
}

// MissingColumns returns the required columns not present in header, in
// required order.
func MissingColumns(header, required []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, r := range required {
		if !present[r] {
			missing = append(missing, r)
		}
	}
	return missing
}

// Extract reads the revenue export and returns one record per company.
// Nothing is returned unless every row parses.
func Extract(ctx context.Context, opts Options) (model.RevenueReport, error) {
	opts = opts.withDefaults()

	table, err := fetcher.ReadTable(ctx, opts.Path, fetcher.TableOptions{
		Sheet:     opts.Sheet,
		SkipRows:  opts.SkipRows,
		Delimiter: opts.Delimiter,
	})
	if err != nil {
		return nil, eris.Wrap(err, "revenue: read export")
	}

	if missing := MissingColumns(table.Header, opts.Required()); len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	nameIdx := table.Index(opts.NameColumn)
	arrIdx := table.Index(opts.ARRColumn)

	report := make(model.RevenueReport, len(table.Rows))
	for i, row := range table.Rows {
		line := i + 2 // 1-based, after the header

		name := strings.TrimSpace(cellAt(row, nameIdx))
		if name == "" {
			if isBlank(row) {
				continue
			}
			zap.L().Warn("revenue: skipping row without company name", zap.Int("row", line))
			continue
		}

		arr, err := ParseARR(cellAt(row, arrIdx))
		if err != nil {
			return nil, eris.Wrapf(err, "revenue: row %d (%s)", line, name)
		}

		if _, dup := report[name]; dup {
			zap.L().Debug("revenue: duplicate company name, keeping later row",
				zap.String("name", name),
				zap.Int("row", line),
			)
		}
		report[name] = model.NewRevenueRecord(name, arr)
	}

	return report, nil
}

// ParseARR parses an ARR cell. Blank cells and NaN yield nil. A dollar sign
// (before or after the sign), thousands separators and surrounding spaces are
// ignored. Infinite values and values whose monthly spend exceeds
// canny.MaxSpend are rejected.
func ParseARR(raw string) (*float64, error) {
	s := strings.TrimSpace(raw)
	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], strings.TrimSpace(s[1:])
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if sign == "" && (s == "" || strings.EqualFold(s, "nan")) {
		return nil, nil
	}

	v, err := strconv.ParseFloat(sign+s, 64)
	if err != nil || math.IsNaN(v) {
		return nil, eris.Errorf("invalid ARR value %q", raw)
	}
	if math.IsInf(v, 0) || math.Abs(v/12) > canny.MaxSpend {
		return nil, eris.Errorf("ARR value %q out of range", raw)
	}
	return &v, nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
