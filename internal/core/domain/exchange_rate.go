package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate stores the conversion rate between two currencies for a
// specific date. A rate is uniquely identified by
// (FromCurrencyCode, ToCurrencyCode, DateEffective); once persisted it is
// authoritative for that key and creation is find-or-create, never a silent
// overwrite. Rates are directional: nothing forces rate(A,B) == 1/rate(B,A).
type ExchangeRate struct {
	ExchangeRateID   string          `json:"exchangeRateID"`   // Primary Key (UUID)
	FromCurrencyCode string          `json:"fromCurrencyCode"` // FK -> Currency.currencyCode
	ToCurrencyCode   string          `json:"toCurrencyCode"`   // FK -> Currency.currencyCode
	Rate             decimal.Decimal `json:"rate"`
	DateEffective    time.Time       `json:"dateEffective"`
	AuditFields
}

// CurrencyPair identifies a directional from/to currency pair. It is the
// cache key for latest-known rates.
type CurrencyPair struct {
	FromCurrencyCode string `json:"fromCurrencyCode"`
	ToCurrencyCode   string `json:"toCurrencyCode"`
}
