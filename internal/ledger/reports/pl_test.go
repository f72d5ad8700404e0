package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-erp/atlas-erp/internal/ledger/coa"
)

func plRange() (time.Time, time.Time) {
	return time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC)
}

func TestBuildProfitAndLossNetIncome(t *testing.T) {
	from, to := plRange()
	pl := BuildProfitAndLoss(from, to, []MovementRow{
		{AccountID: 1, Code: "4000", Name: "Sales", Type: coa.AccountTypeRevenue, Amount: decimal.NewFromInt(9000)},
		{AccountID: 2, Code: "5000", Name: "Rent", Type: coa.AccountTypeExpense, Amount: decimal.NewFromInt(2000)},
		{AccountID: 3, Code: "5100", Name: "Salaries", Type: coa.AccountTypeExpense, Amount: decimal.NewFromInt(4000)},
	})

	assert.Equal(t, "9000.00", pl.Revenue.Total.StringFixed(2))
	assert.Equal(t, "6000.00", pl.Expense.Total.StringFixed(2))
	assert.Equal(t, "3000.00", pl.NetIncome.StringFixed(2))
	assert.Equal(t, from, pl.From)
	assert.Equal(t, to, pl.To)
}

func TestBuildProfitAndLossRollsChildrenIntoParent(t *testing.T) {
	from, to := plRange()
	parentID := int64(1)
	pl := BuildProfitAndLoss(from, to, []MovementRow{
		{AccountID: 1, Code: "4000", Name: "Sales", Type: coa.AccountTypeRevenue, Amount: decimal.NewFromInt(1000)},
		{AccountID: 2, ParentID: &parentID, Code: "4010", Name: "Domestic", Type: coa.AccountTypeRevenue, Amount: decimal.NewFromInt(600)},
		{AccountID: 3, ParentID: &parentID, Code: "4020", Name: "Export", Type: coa.AccountTypeRevenue, Amount: decimal.NewFromInt(400)},
	})

	require.Len(t, pl.Revenue.Accounts, 1)
	parent := pl.Revenue.Accounts[0]
	assert.Equal(t, "2000.00", parent.Amount.StringFixed(2), "parent amount includes children")
	require.Len(t, parent.Children, 2)
	assert.Equal(t, "4010", parent.Children[0].Code)
	assert.Equal(t, "2000.00", pl.Revenue.Total.StringFixed(2))
}

func TestBuildProfitAndLossOrphanChildBecomesRoot(t *testing.T) {
	from, to := plRange()
	missing := int64(42)
	pl := BuildProfitAndLoss(from, to, []MovementRow{
		{AccountID: 1, ParentID: &missing, Code: "5200", Name: "Utilities", Type: coa.AccountTypeExpense, Amount: decimal.NewFromInt(150)},
	})

	require.Len(t, pl.Expense.Accounts, 1)
	assert.Equal(t, "150.00", pl.Expense.Total.StringFixed(2))
}

func TestBuildProfitAndLossNegativeMovement(t *testing.T) {
	from, to := plRange()
	pl := BuildProfitAndLoss(from, to, []MovementRow{
		{AccountID: 1, Code: "4000", Name: "Sales", Type: coa.AccountTypeRevenue, Amount: decimal.NewFromInt(500)},
		{AccountID: 2, Code: "4900", Name: "Refunds", Type: coa.AccountTypeRevenue, Amount: decimal.NewFromInt(-100)},
	})
	assert.Equal(t, "400.00", pl.Revenue.Total.StringFixed(2))
	assert.Equal(t, "400.00", pl.NetIncome.StringFixed(2))
}
