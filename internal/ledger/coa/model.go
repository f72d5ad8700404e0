package coa

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType enumerates chart of accounts categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// Valid reports whether the type is a known category.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// Side identifies the debit or credit column of a posting.
type Side string

const (
	SideDebit  Side = "DEBIT"
	SideCredit Side = "CREDIT"
)

// NormalSide returns the side on which the account balance naturally grows.
func (t AccountType) NormalSide() Side {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return SideDebit
	default:
		return SideCredit
	}
}

// SubType refines the balance sheet classification of an account.
type SubType string

const (
	SubTypeCurrentAsset      SubType = "CURRENT_ASSET"
	SubTypeFixedAsset        SubType = "FIXED_ASSET"
	SubTypeCurrentLiability  SubType = "CURRENT_LIABILITY"
	SubTypeLongTermLiability SubType = "LONG_TERM_LIABILITY"
	SubTypeEquity            SubType = "EQUITY"
	SubTypeRevenue           SubType = "REVENUE"
	SubTypeExpense           SubType = "EXPENSE"
)

// DefaultSubType maps an account type to its default sub-type.
func DefaultSubType(t AccountType) SubType {
	switch t {
	case AccountTypeAsset:
		return SubTypeCurrentAsset
	case AccountTypeLiability:
		return SubTypeCurrentLiability
	case AccountTypeEquity:
		return SubTypeEquity
	case AccountTypeRevenue:
		return SubTypeRevenue
	default:
		return SubTypeExpense
	}
}

// CashActivity tags an account for cash flow classification.
type CashActivity string

const (
	ActivityOperating CashActivity = "OPERATING"
	ActivityInvesting CashActivity = "INVESTING"
	ActivityFinancing CashActivity = "FINANCING"
)

// DefaultActivity derives the cash flow activity from the sub-type.
func DefaultActivity(st SubType) CashActivity {
	switch st {
	case SubTypeFixedAsset:
		return ActivityInvesting
	case SubTypeLongTermLiability, SubTypeEquity:
		return ActivityFinancing
	default:
		return ActivityOperating
	}
}

// Account models a chart of accounts node. Balance is expressed in the
// account's normal side and is written only by the journal engine.
type Account struct {
	ID        int64
	OrgID     int64
	Code      string
	Name      string
	Type      AccountType
	SubType   SubType
	Activity  CashActivity
	IsCash    bool
	ParentID  *int64
	Balance   decimal.Decimal
	IsActive  bool
	CreatedBy int64
	UpdatedBy int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Node groups an account with its direct children for hierarchy views.
type Node struct {
	Account  Account
	Children []Node
}
