package reports

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-erp/atlas-erp/internal/ledger/coa"
)

func TestWriteTrialBalanceCSV(t *testing.T) {
	tb := BuildTrialBalance([]AccountBalance{
		{AccountID: 1, Code: "1000", Name: "Cash", Type: coa.AccountTypeAsset, Balance: decimal.NewFromInt(1500)},
		{AccountID: 2, Code: "4000", Name: "Sales", Type: coa.AccountTypeRevenue, Balance: decimal.NewFromInt(1500)},
	})

	var buf bytes.Buffer
	require.NoError(t, WriteTrialBalanceCSV(&buf, tb))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, []string{"Code", "Name", "Type", "Debit", "Credit"}, records[0])
	assert.Equal(t, []string{"1000", "Cash", "ASSET", "1,500.00", ""}, records[1])
	assert.Equal(t, []string{"4000", "Sales", "REVENUE", "", "1,500.00"}, records[2])
	assert.Equal(t, []string{"", "Total", "", "1,500.00", "1,500.00"}, records[3])
}

func TestWriteTrialBalanceCSVEmptyReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTrialBalanceCSV(&buf, TrialBalance{}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"", "Total", "", "", ""}, records[1])
}
