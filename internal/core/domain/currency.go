package domain

import "strings"

// Currency represents a supported currency in the domain.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // Primary Key (e.g., "USD")
	Symbol       string `json:"symbol"`       // e.g., "$"
	Name         string `json:"name"`         // e.g., "US Dollar"
	Precision    int    `json:"precision"`    // minor units, e.g. 2 for USD, 0 for JPY
	AuditFields
}

// NewCurrency returns a Currency with a normalized (uppercase) ISO code.
func NewCurrency(code, symbol, name string, precision int) Currency {
	return Currency{
		CurrencyCode: strings.ToUpper(code),
		Symbol:       symbol,
		Name:         name,
		Precision:    precision,
	}
}

// Equal reports whether two currencies are the same. Currencies are equal
// iff their ISO codes match; formatting metadata is not identity.
func (c Currency) Equal(other Currency) bool {
	return c.CurrencyCode == other.CurrencyCode
}

// Compare orders currencies lexically by ISO code.
func (c Currency) Compare(other Currency) int {
	return strings.Compare(c.CurrencyCode, other.CurrencyCode)
}

func (c Currency) String() string {
	return c.CurrencyCode
}
