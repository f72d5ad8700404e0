package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlas-erp/atlas-erp/internal/ledger/coa"
)

// MovementRow is a revenue or expense account's net movement over a date
// range, signed positively on the account's normal side. The profit & loss
// report is period-bound, so it derives from posted entries in range rather
// than from current balances.
type MovementRow struct {
	AccountID int64
	ParentID  *int64
	Code      string
	Name      string
	Type      coa.AccountType
	Amount    decimal.Decimal
}

// ProfitAndLossAccount is a display row, nesting direct children for
// indentation.
type ProfitAndLossAccount struct {
	Code     string
	Name     string
	Amount   decimal.Decimal
	Children []ProfitAndLossAccount
}

// ProfitAndLossSection groups accounts by nature.
type ProfitAndLossSection struct {
	Label    string
	Accounts []ProfitAndLossAccount
	Total    decimal.Decimal
}

// ProfitAndLoss is the structured report output.
type ProfitAndLoss struct {
	From      time.Time
	To        time.Time
	Revenue   ProfitAndLossSection
	Expense   ProfitAndLossSection
	NetIncome decimal.Decimal
}

// BuildProfitAndLoss aggregates movements into revenue and expense sections
// with one-level parent rollups. A parent's amount includes its children.
func BuildProfitAndLoss(from, to time.Time, rows []MovementRow) ProfitAndLoss {
	pl := ProfitAndLoss{
		From:    from,
		To:      to,
		Revenue: ProfitAndLossSection{Label: "Revenue"},
		Expense: ProfitAndLossSection{Label: "Expense"},
	}
	byID := make(map[int64]MovementRow, len(rows))
	for _, row := range rows {
		byID[row.AccountID] = row
	}
	childrenOf := make(map[int64][]MovementRow)
	var roots []MovementRow
	for _, row := range rows {
		if row.ParentID != nil {
			if _, ok := byID[*row.ParentID]; ok {
				childrenOf[*row.ParentID] = append(childrenOf[*row.ParentID], row)
				continue
			}
		}
		roots = append(roots, row)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Code < roots[j].Code })
	for _, root := range roots {
		account := ProfitAndLossAccount{Code: root.Code, Name: root.Name, Amount: root.Amount}
		children := childrenOf[root.AccountID]
		sort.Slice(children, func(i, j int) bool { return children[i].Code < children[j].Code })
		for _, child := range children {
			account.Children = append(account.Children, ProfitAndLossAccount{Code: child.Code, Name: child.Name, Amount: child.Amount})
			account.Amount = account.Amount.Add(child.Amount)
		}
		switch root.Type {
		case coa.AccountTypeRevenue:
			pl.Revenue.Accounts = append(pl.Revenue.Accounts, account)
			pl.Revenue.Total = pl.Revenue.Total.Add(account.Amount)
		case coa.AccountTypeExpense:
			pl.Expense.Accounts = append(pl.Expense.Accounts, account)
			pl.Expense.Total = pl.Expense.Total.Add(account.Amount)
		}
	}
	pl.NetIncome = pl.Revenue.Total.Sub(pl.Expense.Total)
	return pl
}
