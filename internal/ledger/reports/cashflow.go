package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlas-erp/atlas-erp/internal/ledger/coa"
)

// CashMovement is one posted entry's net effect on cash and bank accounts,
// classified by the counterpart account's activity tag. Positive amounts are
// inflows.
type CashMovement struct {
	EntryID  int64
	Activity coa.CashActivity
	Amount   decimal.Decimal
}

// CashFlowSection nets one activity bucket.
type CashFlowSection struct {
	Label    string
	Inflow   decimal.Decimal
	Outflow  decimal.Decimal
	Net      decimal.Decimal
	Payments int
}

// CashFlow buckets cash movements into operating, investing, and financing
// activities.
type CashFlow struct {
	From      time.Time
	To        time.Time
	Operating CashFlowSection
	Investing CashFlowSection
	Financing CashFlowSection
	NetChange decimal.Decimal
}

// BuildCashFlow nets each activity bucket plus the grand total.
func BuildCashFlow(from, to time.Time, movements []CashMovement) CashFlow {
	cf := CashFlow{
		From:      from,
		To:        to,
		Operating: CashFlowSection{Label: "Operating Activities"},
		Investing: CashFlowSection{Label: "Investing Activities"},
		Financing: CashFlowSection{Label: "Financing Activities"},
	}
	for _, movement := range movements {
		section := &cf.Operating
		switch movement.Activity {
		case coa.ActivityInvesting:
			section = &cf.Investing
		case coa.ActivityFinancing:
			section = &cf.Financing
		}
		if movement.Amount.IsPositive() {
			section.Inflow = section.Inflow.Add(movement.Amount)
		} else {
			section.Outflow = section.Outflow.Add(movement.Amount.Neg())
		}
		section.Net = section.Net.Add(movement.Amount)
		section.Payments++
		cf.NetChange = cf.NetChange.Add(movement.Amount)
	}
	return cf
}
