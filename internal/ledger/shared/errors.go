package shared

import "errors"

var (
	// ErrUnbalanced indicates debit total != credit total.
	ErrUnbalanced = errors.New("ledger: journal lines must balance")
	// ErrTooFewLines indicates less than two lines.
	ErrTooFewLines = errors.New("ledger: journal requires at least two lines")
	// ErrZeroAmount indicates a balanced entry whose total is zero.
	ErrZeroAmount = errors.New("ledger: journal total must be positive")
	// ErrInvalidAccount indicates a missing or inactive account reference.
	ErrInvalidAccount = errors.New("ledger: account missing or inactive")
	// ErrImmutable indicates mutation attempted on a non-draft entry.
	ErrImmutable = errors.New("ledger: posted entries are immutable")
	// ErrAlreadyReversed indicates the entry was reversed before.
	ErrAlreadyReversed = errors.New("ledger: entry already reversed")
	// ErrPeriodClosed indicates the target date falls in a closed period.
	ErrPeriodClosed = errors.New("ledger: period is closed")
	// ErrNotFound indicates a missing record.
	ErrNotFound = errors.New("ledger: not found")
	// ErrInvalidStatus indicates action can't proceed from the current status.
	ErrInvalidStatus = errors.New("ledger: invalid status transition")
	// ErrSourceAlreadyPosted indicates an idempotency conflict on a source link.
	ErrSourceAlreadyPosted = errors.New("ledger: source already posted")
	// ErrPeriodHasDrafts indicates a close attempt with pending draft entries.
	ErrPeriodHasDrafts = errors.New("ledger: period has draft entries")
)
