package assets

import (
	"time"

	"github.com/shopspring/decimal"
)

// Method enumerates supported depreciation methods.
type Method string

const (
	MethodStraightLine     Method = "STRAIGHT_LINE"
	MethodDecliningBalance Method = "DECLINING_BALANCE"
)

// Valid reports whether the method is known.
func (m Method) Valid() bool {
	return m == MethodStraightLine || m == MethodDecliningBalance
}

// Status enumerates the asset lifecycle.
type Status string

const (
	StatusActive           Status = "ACTIVE"
	StatusFullyDepreciated Status = "FULLY_DEPRECIATED"
	StatusDisposed         Status = "DISPOSED"
)

// FixedAsset is a depreciable resource linked to three ledger accounts.
// Accumulated depreciation moves only through journal entries posted by the
// scheduler, or explicit disposal.
type FixedAsset struct {
	ID                   int64
	OrgID                int64
	Code                 string
	Name                 string
	PurchasePrice        decimal.Decimal
	SalvageValue         decimal.Decimal
	UsefulLifeYears      int
	Method               Method
	PurchaseDate         time.Time
	AssetAccountID       int64
	ExpenseAccountID     int64
	AccumulatedAccountID int64
	Accumulated          decimal.Decimal
	Status               Status
	CreatedBy            int64
	UpdatedBy            int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// CurrentValue is the book value: purchase price less accumulated
// depreciation.
func (a FixedAsset) CurrentValue() decimal.Decimal {
	return a.PurchasePrice.Sub(a.Accumulated)
}

// DepreciableBase is the total amount the asset may ever depreciate.
func (a FixedAsset) DepreciableBase() decimal.Decimal {
	return a.PurchasePrice.Sub(a.SalvageValue)
}

// RunResult reports one asset's outcome from a scheduler run, consumed by
// the job log.
type RunResult struct {
	AssetID     int64
	AssetName   string
	Amount      decimal.Decimal
	EntryNumber int64
	Skipped     bool
}
