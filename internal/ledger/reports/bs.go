package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/atlas-erp/atlas-erp/internal/ledger/coa"
)

// equationEpsilon bounds acceptable rounding drift in the balance sheet
// equation.
var equationEpsilon = decimal.NewFromFloat(0.01)

// BalanceSheetRow is one account inside a section.
type BalanceSheetRow struct {
	Code    string
	Name    string
	Balance decimal.Decimal
}

// BalanceSheetSection groups accounts under one classification.
type BalanceSheetSection struct {
	Label string
	Rows  []BalanceSheetRow
	Total decimal.Decimal
}

// BalanceSheet partitions assets and liabilities by sub-type and checks the
// accounting equation. A mismatch is surfaced through Delta and Balanced,
// never hidden.
type BalanceSheet struct {
	CurrentAssets       BalanceSheetSection
	FixedAssets         BalanceSheetSection
	CurrentLiabilities  BalanceSheetSection
	LongTermLiabilities BalanceSheetSection
	Equity              BalanceSheetSection
	TotalAssets         decimal.Decimal
	TotalLiabilities    decimal.Decimal
	TotalEquity         decimal.Decimal
	Delta               decimal.Decimal
	Balanced            bool
}

// BuildBalanceSheet aggregates balances into the five balance sheet buckets.
// Revenue and expense balances fold into equity as current earnings, keeping
// the equation closed without a separate closing entry.
func BuildBalanceSheet(accounts []AccountBalance) BalanceSheet {
	bs := BalanceSheet{
		CurrentAssets:       BalanceSheetSection{Label: "Current Assets"},
		FixedAssets:         BalanceSheetSection{Label: "Fixed Assets"},
		CurrentLiabilities:  BalanceSheetSection{Label: "Current Liabilities"},
		LongTermLiabilities: BalanceSheetSection{Label: "Long-Term Liabilities"},
		Equity:              BalanceSheetSection{Label: "Equity"},
	}
	var earnings decimal.Decimal
	for _, acc := range accounts {
		row := BalanceSheetRow{Code: acc.Code, Name: acc.Name, Balance: acc.Balance}
		switch acc.Type {
		case coa.AccountTypeAsset:
			if acc.SubType == coa.SubTypeFixedAsset {
				appendRow(&bs.FixedAssets, row)
			} else {
				appendRow(&bs.CurrentAssets, row)
			}
		case coa.AccountTypeLiability:
			if acc.SubType == coa.SubTypeLongTermLiability {
				appendRow(&bs.LongTermLiabilities, row)
			} else {
				appendRow(&bs.CurrentLiabilities, row)
			}
		case coa.AccountTypeEquity:
			appendRow(&bs.Equity, row)
		case coa.AccountTypeRevenue:
			earnings = earnings.Add(acc.Balance)
		case coa.AccountTypeExpense:
			earnings = earnings.Sub(acc.Balance)
		}
	}
	if !earnings.IsZero() {
		appendRow(&bs.Equity, BalanceSheetRow{Name: "Current Earnings", Balance: earnings})
	}
	for _, section := range []*BalanceSheetSection{&bs.CurrentAssets, &bs.FixedAssets, &bs.CurrentLiabilities, &bs.LongTermLiabilities, &bs.Equity} {
		sort.Slice(section.Rows, func(i, j int) bool { return section.Rows[i].Code < section.Rows[j].Code })
	}
	bs.TotalAssets = bs.CurrentAssets.Total.Add(bs.FixedAssets.Total)
	bs.TotalLiabilities = bs.CurrentLiabilities.Total.Add(bs.LongTermLiabilities.Total)
	bs.TotalEquity = bs.Equity.Total
	bs.Delta = bs.TotalAssets.Sub(bs.TotalLiabilities.Add(bs.TotalEquity))
	bs.Balanced = bs.Delta.Abs().LessThanOrEqual(equationEpsilon)
	return bs
}

func appendRow(section *BalanceSheetSection, row BalanceSheetRow) {
	section.Rows = append(section.Rows, row)
	section.Total = section.Total.Add(row.Balance)
}
