package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/longbinlai/maybe/internal/apperrors"
	"github.com/shopspring/decimal"
)

// RateResolver is the narrow capability Money needs to convert itself into
// another currency. The concrete resolver (with its full fallback chain)
// lives in the services layer; Money only ever asks for a single rate.
type RateResolver interface {
	// Resolve returns the exchange rate for converting one unit of the from
	// currency into the to currency on the given date. explicitFallback, when
	// non-nil, is the caller-supplied rate of last resort.
	Resolve(ctx context.Context, fromCode, toCode string, date time.Time, explicitFallback *decimal.Decimal) (decimal.Decimal, error)
}

// Money is an immutable amount in a specific currency. Amounts are exact
// decimals, never floats, so aggregation across many accounts does not
// accumulate rounding error.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a Money value from an exact decimal amount.
func NewMoney(amount decimal.Decimal, currency Currency) Money {
	return Money{amount: amount, currency: currency}
}

// NewMoneyFromString parses a numeric string into a Money value.
// Unrecognized numeric representations fail with ErrValidation.
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("%w: amount %q is not a valid decimal", apperrors.ErrValidation, amount)
	}
	return Money{amount: d, currency: currency}, nil
}

// ZeroMoney returns the zero amount in the given currency.
func ZeroMoney(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the exact decimal amount.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the currency of the amount.
func (m Money) Currency() Currency { return m.currency }

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.amount.IsZero() }

// Add returns m + other. Both operands must share a currency unless one of
// them is a zero amount, which is treated as zero in the other's currency.
func (m Money) Add(other Money) (Money, error) {
	if err := m.requireSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.nonZeroCurrency(other)}, nil
}

// Sub returns m - other under the same currency rules as Add.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.requireSameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.nonZeroCurrency(other)}, nil
}

// Mul returns the amount scaled by the given factor, in the same currency.
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// Neg returns the negated amount.
func (m Money) Neg() Money {
	return Money{amount: m.amount.Neg(), currency: m.currency}
}

// Compare orders two Money values. Comparing values of different currencies
// is a type error, except that a zero amount compares against any currency
// (treated as zero in that currency). Equal amounts of different currencies
// tie-break on the currency code so sorted output is deterministic.
func (m Money) Compare(other Money) (int, error) {
	if !m.currency.Equal(other.currency) && !m.IsZero() && !other.IsZero() {
		return 0, fmt.Errorf("%w: cannot compare %s with %s", apperrors.ErrValidation, m.currency, other.currency)
	}
	if cmp := m.amount.Cmp(other.amount); cmp != 0 {
		return cmp, nil
	}
	return m.currency.Compare(other.currency), nil
}

// ExchangeTo converts the amount into the target currency at the given date
// using the supplied resolver. When the currencies already match, the value
// is returned unchanged without consulting the resolver. A resolver failure
// propagates unchanged (a ConversionError is fatal, not retried).
func (m Money) ExchangeTo(ctx context.Context, resolver RateResolver, target Currency, date time.Time, explicitFallback *decimal.Decimal) (Money, error) {
	if m.currency.Equal(target) {
		return m, nil
	}
	rate, err := resolver.Resolve(ctx, m.currency.CurrencyCode, target.CurrencyCode, date, explicitFallback)
	if err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Mul(rate), currency: target}, nil
}

// Format renders the amount rounded to the currency's minor-unit precision,
// prefixed with its symbol.
func (m Money) Format() string {
	return m.currency.Symbol + m.amount.Round(int32(m.currency.Precision)).StringFixed(int32(m.currency.Precision))
}

func (m Money) String() string {
	return m.amount.String() + " " + m.currency.CurrencyCode
}

func (m Money) requireSameCurrency(other Money) error {
	if m.currency.Equal(other.currency) || m.IsZero() || other.IsZero() {
		return nil
	}
	return fmt.Errorf("%w: currency mismatch %s vs %s", apperrors.ErrValidation, m.currency, other.currency)
}

// nonZeroCurrency picks the meaningful currency when one operand was a bare
// zero in a different currency.
func (m Money) nonZeroCurrency(other Money) Currency {
	if m.currency.CurrencyCode == "" || (m.IsZero() && !other.IsZero() && !m.currency.Equal(other.currency)) {
		return other.currency
	}
	return m.currency
}
