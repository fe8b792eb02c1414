package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceSnapshot is the persisted end-of-day balance state of one account
// on one date. Snapshots are sparse: not every date has a row, and the
// as-of value for a date is the most recent snapshot at or before it.
// All amounts are denominated in the account's native currency.
type BalanceSnapshot struct {
	BalanceID           string          `json:"balanceID"` // Primary Key (UUID)
	AccountID           string          `json:"accountID"` // FK -> Account.accountID
	Date                time.Time       `json:"date"`
	EndBalance          decimal.Decimal `json:"endBalance"`
	EndCashBalance      decimal.Decimal `json:"endCashBalance"`
	EndNonCashBalance   decimal.Decimal `json:"endNonCashBalance"`
	StartBalance        decimal.Decimal `json:"startBalance"`
	StartCashBalance    decimal.Decimal `json:"startCashBalance"`
	StartNonCashBalance decimal.Decimal `json:"startNonCashBalance"`
	FlowsFactor         int             `json:"flowsFactor"` // +1 asset, -1 liability
	AuditFields
}

// BalanceColumn selects which balance flavor a series aggregates.
type BalanceColumn string

const (
	// ColumnBalance aggregates the full end-of-day balance.
	ColumnBalance BalanceColumn = "balance"
	// ColumnCashBalance aggregates the cash portion only.
	ColumnCashBalance BalanceColumn = "cash_balance"
	// ColumnHoldingsBalance aggregates the non-cash portion, assets only.
	ColumnHoldingsBalance BalanceColumn = "holdings_balance"
)

// Valid reports whether the column is one of the supported flavors.
func (c BalanceColumn) Valid() bool {
	switch c {
	case ColumnBalance, ColumnCashBalance, ColumnHoldingsBalance:
		return true
	}
	return false
}

// EndValue returns the end-of-day amount for the selected column.
func (s BalanceSnapshot) EndValue(column BalanceColumn) decimal.Decimal {
	switch column {
	case ColumnCashBalance:
		return s.EndCashBalance
	case ColumnHoldingsBalance:
		return s.EndNonCashBalance
	default:
		return s.EndBalance
	}
}

// StartValue returns the period-start amount for the selected column.
func (s BalanceSnapshot) StartValue(column BalanceColumn) decimal.Decimal {
	switch column {
	case ColumnCashBalance:
		return s.StartCashBalance
	case ColumnHoldingsBalance:
		return s.StartNonCashBalance
	default:
		return s.StartBalance
	}
}
