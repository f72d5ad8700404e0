package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/atlas-erp/atlas-erp/internal/ledger/coa"
)

// AccountBalance models a ledger account with its posted balance expressed
// in the account's normal side.
type AccountBalance struct {
	AccountID int64
	ParentID  *int64
	Code      string
	Name      string
	Type      coa.AccountType
	SubType   coa.SubType
	Balance   decimal.Decimal
}

// TrialBalanceRow places an account balance in its debit or credit column.
type TrialBalanceRow struct {
	Code   string
	Name   string
	Type   coa.AccountType
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// TrialBalance lists every account with column totals. TotalDebit equal to
// TotalCredit is the system-level correctness check.
type TrialBalance struct {
	Rows        []TrialBalanceRow
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	IsBalanced  bool
}

// BuildTrialBalance derives the trial balance from account balances. A
// balance that has gone negative on its normal side shows in the opposite
// column.
func BuildTrialBalance(accounts []AccountBalance) TrialBalance {
	tb := TrialBalance{}
	for _, acc := range accounts {
		if acc.Balance.IsZero() {
			continue
		}
		row := TrialBalanceRow{Code: acc.Code, Name: acc.Name, Type: acc.Type}
		side := acc.Type.NormalSide()
		amount := acc.Balance
		if amount.IsNegative() {
			amount = amount.Neg()
			if side == coa.SideDebit {
				side = coa.SideCredit
			} else {
				side = coa.SideDebit
			}
		}
		if side == coa.SideDebit {
			row.Debit = amount
			tb.TotalDebit = tb.TotalDebit.Add(amount)
		} else {
			row.Credit = amount
			tb.TotalCredit = tb.TotalCredit.Add(amount)
		}
		tb.Rows = append(tb.Rows, row)
	}
	sort.Slice(tb.Rows, func(i, j int) bool { return tb.Rows[i].Code < tb.Rows[j].Code })
	tb.IsBalanced = tb.TotalDebit.Equal(tb.TotalCredit)
	return tb
}
