package journal

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlas-erp/atlas-erp/internal/ledger/coa"
)

// EntryType tags the origin of a journal entry.
type EntryType string

const (
	EntryTypeStandard     EntryType = "STANDARD"
	EntryTypeDepreciation EntryType = "DEPRECIATION"
	EntryTypePayroll      EntryType = "PAYROLL"
	EntryTypeReversal     EntryType = "REVERSAL"
)

// EntryStatus enumerates the journal lifecycle. Drafts may be edited or
// deleted; posting is final; a posted entry that has been negated by a
// reversal moves to REVERSED while its balance effects stay in place.
type EntryStatus string

const (
	EntryStatusDraft    EntryStatus = "DRAFT"
	EntryStatusPosted   EntryStatus = "POSTED"
	EntryStatusReversed EntryStatus = "REVERSED"
)

// Entry is an atomic, balanced transaction.
type Entry struct {
	ID           int64
	OrgID        int64
	Number       int64
	Date         time.Time
	Memo         string
	Type         EntryType
	Status       EntryStatus
	SourceModule string
	SourceKey    string
	ReversalOf   *int64
	ReversedBy   *int64
	CreatedBy    int64
	PostedBy     *int64
	PostedAt     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Lines        []Line
}

// Line stores a debit or credit amount against one account. Exactly one of
// Debit/Credit is positive, the other zero.
type Line struct {
	ID        int64
	EntryID   int64
	AccountID int64
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Memo      string
}

// Totals sums the debit and credit columns across lines.
func Totals(lines []Line) (debit, credit decimal.Decimal) {
	for _, line := range lines {
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	return debit, credit
}

// Delta computes the signed balance change a line applies to its account,
// expressed in the account's normal side.
func (l Line) Delta(normalSide coa.Side) decimal.Decimal {
	amount := l.Debit
	side := coa.SideDebit
	if l.Credit.IsPositive() {
		amount = l.Credit
		side = coa.SideCredit
	}
	if side == normalSide {
		return amount
	}
	return amount.Neg()
}
