package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditFields holds standard audit information for persisted rows.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

// Currency represents a supported currency row.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // Primary Key (e.g., "USD")
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Precision    int    `json:"precision"`
	AuditFields
}

// ExchangeRate stores the conversion rate between two currencies for a
// specific date. Unique on (from_currency_code, to_currency_code, date_effective).
type ExchangeRate struct {
	ExchangeRateID   string          `json:"exchangeRateID"` // Primary Key (UUID)
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	DateEffective    time.Time       `json:"dateEffective"`
	AuditFields
}

// Account represents a tracked financial account row.
type Account struct {
	AccountID      string `json:"accountID"` // Primary Key (UUID)
	Name           string `json:"name"`
	CurrencyCode   string `json:"currencyCode"`
	Classification string `json:"classification"` // ASSET or LIABILITY
	AuditFields
}

// Balance is the persisted daily balance snapshot row for one account.
type Balance struct {
	BalanceID           string          `json:"balanceID"` // Primary Key (UUID)
	AccountID           string          `json:"accountID"`
	Date                time.Time       `json:"date"`
	EndBalance          decimal.Decimal `json:"endBalance"`
	EndCashBalance      decimal.Decimal `json:"endCashBalance"`
	EndNonCashBalance   decimal.Decimal `json:"endNonCashBalance"`
	StartBalance        decimal.Decimal `json:"startBalance"`
	StartCashBalance    decimal.Decimal `json:"startCashBalance"`
	StartNonCashBalance decimal.Decimal `json:"startNonCashBalance"`
	FlowsFactor         int             `json:"flowsFactor"`
	AuditFields
}
