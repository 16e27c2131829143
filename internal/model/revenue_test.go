package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/mrr-sync/pkg/canny"
)

func TestNewRevenueRecord(t *testing.T) {
	arr := 1200.0
	rec := NewRevenueRecord("Acme", &arr)
	assert.Equal(t, "Acme", rec.Name)
	assert.Equal(t, "100", rec.MonthlySpend.String())
	assert.InDelta(t, 1200.0, *rec.TotalCustomerARR, 0.001)

	blank := NewRevenueRecord("Globex", nil)
	assert.Nil(t, blank.TotalCustomerARR)
	assert.True(t, blank.MonthlySpend.IsNaN())
	assert.Equal(t, canny.NaN, blank.MonthlySpend)
}

func TestRevenueReport_LookupAndNames(t *testing.T) {
	arr := 24.0
	report := RevenueReport{
		"Zeta": NewRevenueRecord("Zeta", &arr),
		"Acme": NewRevenueRecord("Acme", nil),
	}

	rec, ok := report.Lookup("Zeta")
	assert.True(t, ok)
	assert.Equal(t, canny.NewSpend(2), rec.MonthlySpend)

	_, ok = report.Lookup("zeta")
	assert.False(t, ok, "lookup is exact")

	assert.Equal(t, []string{"Acme", "Zeta"}, report.Names())
}
