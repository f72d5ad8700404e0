package journal

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlas-erp/atlas-erp/internal/ledger/shared"
)

// LineInput describes one journal line on a create or edit request.
type LineInput struct {
	AccountID int64
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Memo      string
}

// CreateInput groups fields required to create a draft journal entry.
type CreateInput struct {
	OrgID        int64
	Date         time.Time
	Memo         string
	Type         EntryType
	SourceModule string
	SourceKey    string
	ActorID      int64
	Lines        []LineInput
}

// Validate enforces line shape and the debit/credit balance invariant before
// anything touches storage.
func (in CreateInput) Validate() error {
	if err := validateLines(in.Lines); err != nil {
		return err
	}
	if (in.SourceModule == "") != (in.SourceKey == "") {
		return fmt.Errorf("ledger: source module and key must be set together")
	}
	return nil
}

func validateLines(lines []LineInput) error {
	if len(lines) < 2 {
		return shared.ErrTooFewLines
	}
	var debit, credit decimal.Decimal
	for idx, line := range lines {
		if line.AccountID == 0 {
			return fmt.Errorf("ledger: line %d missing account", idx+1)
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return fmt.Errorf("ledger: line %d has a negative amount", idx+1)
		}
		if line.Debit.IsPositive() == line.Credit.IsPositive() {
			return fmt.Errorf("ledger: line %d must carry exactly one of debit or credit", idx+1)
		}
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	if !debit.Equal(credit) {
		return fmt.Errorf("%w: debits %s vs credits %s", shared.ErrUnbalanced, debit.StringFixed(2), credit.StringFixed(2))
	}
	if !debit.IsPositive() {
		return shared.ErrZeroAmount
	}
	return nil
}

// UpdateInput edits a draft entry in place.
type UpdateInput struct {
	OrgID   int64
	EntryID int64
	Date    time.Time
	Memo    string
	ActorID int64
	Lines   []LineInput
}

// ReverseInput wraps parameters for reversal.
type ReverseInput struct {
	OrgID   int64
	EntryID int64
	ActorID int64
	Reason  string
}

func toLines(entryID int64, inputs []LineInput) []Line {
	out := make([]Line, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, Line{
			EntryID:   entryID,
			AccountID: in.AccountID,
			Debit:     in.Debit,
			Credit:    in.Credit,
			Memo:      in.Memo,
		})
	}
	return out
}

// mirrorLines swaps every line's debit and credit for a reversing entry.
func mirrorLines(lines []Line) []LineInput {
	out := make([]LineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, LineInput{
			AccountID: line.AccountID,
			Debit:     line.Credit,
			Credit:    line.Debit,
			Memo:      line.Memo,
		})
	}
	return out
}
