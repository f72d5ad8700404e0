package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/atlas-erp/atlas-erp/internal/ledger/coa"
)

func TestBuildCashFlowBucketsByActivity(t *testing.T) {
	from := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)

	cf := BuildCashFlow(from, to, []CashMovement{
		{EntryID: 1, Activity: coa.ActivityOperating, Amount: decimal.NewFromInt(5000)},
		{EntryID: 2, Activity: coa.ActivityOperating, Amount: decimal.NewFromInt(-1200)},
		{EntryID: 3, Activity: coa.ActivityInvesting, Amount: decimal.NewFromInt(-3000)},
		{EntryID: 4, Activity: coa.ActivityFinancing, Amount: decimal.NewFromInt(10000)},
	})

	assert.Equal(t, "5000.00", cf.Operating.Inflow.StringFixed(2))
	assert.Equal(t, "1200.00", cf.Operating.Outflow.StringFixed(2))
	assert.Equal(t, "3800.00", cf.Operating.Net.StringFixed(2))
	assert.Equal(t, 2, cf.Operating.Payments)

	assert.Equal(t, "-3000.00", cf.Investing.Net.StringFixed(2))
	assert.Equal(t, 1, cf.Investing.Payments)

	assert.Equal(t, "10000.00", cf.Financing.Net.StringFixed(2))
	assert.Equal(t, "10800.00", cf.NetChange.StringFixed(2))
}

func TestBuildCashFlowDefaultsUntaggedToOperating(t *testing.T) {
	from := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC)

	cf := BuildCashFlow(from, to, []CashMovement{
		{EntryID: 1, Activity: "", Amount: decimal.NewFromInt(250)},
	})

	assert.Equal(t, "250.00", cf.Operating.Net.StringFixed(2))
	assert.Equal(t, 1, cf.Operating.Payments)
	assert.True(t, cf.Investing.Net.IsZero())
	assert.True(t, cf.Financing.Net.IsZero())
}

func TestBuildCashFlowEmpty(t *testing.T) {
	from := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC)

	cf := BuildCashFlow(from, to, nil)
	assert.True(t, cf.NetChange.IsZero())
	assert.Equal(t, 0, cf.Operating.Payments)
	assert.Equal(t, "Operating Activities", cf.Operating.Label)
}
