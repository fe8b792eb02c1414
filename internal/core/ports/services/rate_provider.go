package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RateData is a single spot rate returned by an external provider.
type RateData struct {
	FromCurrencyCode string
	ToCurrencyCode   string
	Date             time.Time
	Rate             decimal.Decimal
}

// RateProvider is the narrow fetch interface over an upstream exchange-rate
// feed (e.g., a central-bank endpoint). Implementations must be idempotent
// and side-effect-free. Any failure (network, unsupported currency,
// malformed payload) is reported as an error wrapping apperrors.ErrProvider;
// the core treats all causes identically and falls through its chain.
type RateProvider interface {
	// Name identifies the provider for logging and configuration.
	Name() string

	// FetchRate retrieves the spot rate for the pair on the given date.
	FetchRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string, date time.Time) (*RateData, error)
}
