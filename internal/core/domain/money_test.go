package domain_test

import (
	"context"
	"testing"
	"time"

	"github.com/longbinlai/maybe/internal/apperrors"
	"github.com/longbinlai/maybe/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	usd = domain.NewCurrency("USD", "$", "US Dollar", 2)
	eur = domain.NewCurrency("EUR", "€", "Euro", 2)
	jpy = domain.NewCurrency("JPY", "¥", "Japanese Yen", 0)
)

// stubResolver returns a fixed rate or error for every pair.
type stubResolver struct {
	rate   decimal.Decimal
	err    error
	called bool
}

func (r *stubResolver) Resolve(ctx context.Context, fromCode, toCode string, date time.Time, explicitFallback *decimal.Decimal) (decimal.Decimal, error) {
	r.called = true
	if r.err != nil {
		return decimal.Decimal{}, r.err
	}
	return r.rate, nil
}

func TestNewMoneyFromString(t *testing.T) {
	m, err := domain.NewMoneyFromString("123.45", usd)
	require.NoError(t, err)
	assert.True(t, m.Amount().Equal(decimal.RequireFromString("123.45")))
	assert.Equal(t, "USD", m.Currency().CurrencyCode)

	_, err = domain.NewMoneyFromString("not-a-number", usd)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestMoneyAddSameCurrency(t *testing.T) {
	a := domain.NewMoney(decimal.RequireFromString("10.50"), usd)
	b := domain.NewMoney(decimal.RequireFromString("4.50"), usd)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount().Equal(decimal.RequireFromString("15")))
	assert.Equal(t, "USD", sum.Currency().CurrencyCode)
}

func TestMoneyAddCurrencyMismatch(t *testing.T) {
	a := domain.NewMoney(decimal.NewFromInt(10), usd)
	b := domain.NewMoney(decimal.NewFromInt(10), eur)

	_, err := a.Add(b)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestMoneyAddZeroCrossesCurrencies(t *testing.T) {
	// A zero amount is usable as zero in any currency.
	zero := domain.ZeroMoney(eur)
	a := domain.NewMoney(decimal.NewFromInt(42), usd)

	sum, err := a.Add(zero)
	require.NoError(t, err)
	assert.True(t, sum.Amount().Equal(decimal.NewFromInt(42)))
	assert.Equal(t, "USD", sum.Currency().CurrencyCode)

	sum, err = zero.Add(a)
	require.NoError(t, err)
	assert.True(t, sum.Amount().Equal(decimal.NewFromInt(42)))
	assert.Equal(t, "USD", sum.Currency().CurrencyCode)
}

func TestMoneySub(t *testing.T) {
	a := domain.NewMoney(decimal.NewFromInt(10), usd)
	b := domain.NewMoney(decimal.NewFromInt(3), usd)

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.True(t, diff.Amount().Equal(decimal.NewFromInt(7)))

	neg := diff.Neg()
	assert.True(t, neg.Amount().Equal(decimal.NewFromInt(-7)))
}

func TestMoneyMul(t *testing.T) {
	a := domain.NewMoney(decimal.NewFromInt(100), eur)
	scaled := a.Mul(decimal.RequireFromString("0.5"))
	assert.True(t, scaled.Amount().Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "EUR", scaled.Currency().CurrencyCode)
}

func TestMoneyCompare(t *testing.T) {
	a := domain.NewMoney(decimal.NewFromInt(5), usd)
	b := domain.NewMoney(decimal.NewFromInt(7), usd)

	cmp, err := a.Compare(b)
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)

	cmp, err = b.Compare(a)
	require.NoError(t, err)
	assert.Equal(t, 1, cmp)
}

func TestMoneyCompareMismatchIsError(t *testing.T) {
	a := domain.NewMoney(decimal.NewFromInt(5), usd)
	b := domain.NewMoney(decimal.NewFromInt(5), eur)

	_, err := a.Compare(b)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestMoneyCompareZeroCrossesCurrencies(t *testing.T) {
	zero := domain.ZeroMoney(eur)
	a := domain.NewMoney(decimal.NewFromInt(5), usd)

	cmp, err := zero.Compare(a)
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)
}

func TestMoneyCompareEqualAmountsTieBreakOnCode(t *testing.T) {
	zeroUSD := domain.ZeroMoney(usd)
	zeroEUR := domain.ZeroMoney(eur)

	cmp, err := zeroEUR.Compare(zeroUSD)
	require.NoError(t, err)
	assert.Equal(t, -1, cmp) // EUR < USD lexically
}

func TestMoneyExchangeToSameCurrencySkipsResolver(t *testing.T) {
	resolver := &stubResolver{err: apperrors.ErrConversion}
	a := domain.NewMoney(decimal.NewFromInt(100), usd)

	converted, err := a.ExchangeTo(context.Background(), resolver, usd, time.Now(), nil)
	require.NoError(t, err)
	assert.False(t, resolver.called)
	assert.True(t, converted.Amount().Equal(decimal.NewFromInt(100)))
}

func TestMoneyExchangeTo(t *testing.T) {
	resolver := &stubResolver{rate: decimal.RequireFromString("0.9")}
	a := domain.NewMoney(decimal.NewFromInt(100), usd)

	converted, err := a.ExchangeTo(context.Background(), resolver, eur, time.Now(), nil)
	require.NoError(t, err)
	assert.True(t, converted.Amount().Equal(decimal.NewFromInt(90)))
	assert.Equal(t, "EUR", converted.Currency().CurrencyCode)
}

func TestMoneyExchangeToResolverErrorPropagates(t *testing.T) {
	resolver := &stubResolver{err: apperrors.NewConversionError("USD", "XXX", time.Now())}
	a := domain.NewMoney(decimal.NewFromInt(100), usd)

	_, err := a.ExchangeTo(context.Background(), resolver, domain.NewCurrency("XXX", "?", "Unknown", 2), time.Now(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConversion)
}

func TestMoneyFormat(t *testing.T) {
	a := domain.NewMoney(decimal.RequireFromString("1098.005"), usd)
	assert.Equal(t, "$1098.01", a.Format())

	b := domain.NewMoney(decimal.RequireFromString("1500.4"), jpy)
	assert.Equal(t, "¥1500", b.Format())
}
