package model

import (
	"sort"

	"github.com/sells-group/mrr-sync/pkg/canny"
)

// RevenueRecord is one company row from the CRM revenue export.
type RevenueRecord struct {
	Name             string      `json:"name" yaml:"name"`
	TotalCustomerARR *float64    `json:"total_customer_arr" yaml:"total_customer_arr"` // nil when the cell is blank
	MonthlySpend     canny.Spend `json:"-" yaml:"-"`
}

// NewRevenueRecord derives the monthly spend from arr. A nil arr yields the
// NaN sentinel.
func NewRevenueRecord(name string, arr *float64) RevenueRecord {
	rec := RevenueRecord{Name: name, TotalCustomerARR: arr, MonthlySpend: canny.NaN}
	if arr != nil {
		rec.MonthlySpend = canny.SpendFromARR(*arr)
	}
	return rec
}

// RevenueReport maps company name to its revenue record. Later rows with the
// same name replace earlier ones.
type RevenueReport map[string]RevenueRecord

// Lookup returns the record for name, if present.
func (r RevenueReport) Lookup(name string) (RevenueRecord, bool) {
	rec, ok := r[name]
	return rec, ok
}

// Names returns the company names in sorted order.
func (r RevenueReport) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
