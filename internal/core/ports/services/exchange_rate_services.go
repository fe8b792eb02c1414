package services

import (
	"context"
	"time"

	"github.com/longbinlai/maybe/internal/core/domain"
	"github.com/longbinlai/maybe/internal/dto"
	"github.com/shopspring/decimal"
)

// ExchangeRateReaderSvc defines read operations for exchange rate data
type ExchangeRateReaderSvc interface {
	// GetExchangeRateByID retrieves an exchange rate by its ID.
	GetExchangeRateByID(ctx context.Context, rateID string) (*domain.ExchangeRate, error)

	// GetLatestRate retrieves the latest known rate for a pair through the
	// latest-rate cache.
	GetLatestRate(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error)

	// ListExchangeRates retrieves rates with optional pair filters and
	// pagination, plus the total count.
	ListExchangeRates(ctx context.Context, fromCode, toCode *string, page, pageSize int) ([]domain.ExchangeRate, int, error)

	// FindOrFetchRate returns the stored rate for the exact (from, to, date)
	// key, or fetches one from the provider, persists it idempotently, and
	// keeps the latest-rate cache in sync. The boolean reports whether the
	// rate came from storage (true) as opposed to a fresh provider fetch.
	FindOrFetchRate(ctx context.Context, fromCode, toCode string, date time.Time) (*domain.ExchangeRate, bool, error)
}

// ExchangeRateWriterSvc defines write operations for exchange rate data
type ExchangeRateWriterSvc interface {
	// CreateExchangeRate persists a manually entered rate (find-or-create)
	// and unconditionally overwrites the pair's cached latest rate.
	CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error)

	// DeleteExchangeRate removes a rate and invalidates the pair's cache
	// entry.
	DeleteExchangeRate(ctx context.Context, rateID string) error

	// SyncRates fetches the current rate for every ordered pair of the given
	// currencies in parallel, persisting results and updating the cache only
	// with genuinely newer rates.
	SyncRates(ctx context.Context, currencyCodes []string, date time.Time) (*dto.SyncRatesResult, error)
}

// ExchangeRateSvcFacade combines all exchange rate-related service interfaces
type ExchangeRateSvcFacade interface {
	ExchangeRateReaderSvc
	ExchangeRateWriterSvc
}

// RateResolverSvc turns a (from, to, date) triple into a usable decimal rate
// through the multi-tier fallback chain, or a ConversionError when the chain
// is exhausted.
type RateResolverSvc interface {
	// Resolve runs the full chain: identity, stored exact-date rate
	// (authoritative even when equal to 1), provider rate (a provider rate
	// of exactly 1 is a "no data" sentinel and rejected), curated fallback
	// table (direct, reciprocal, then USD bridge), and finally the explicit
	// fallback when supplied.
	Resolve(ctx context.Context, fromCode, toCode string, date time.Time, explicitFallback *decimal.Decimal) (decimal.Decimal, error)

	// StaticFallbackRate consults only the curated fallback table (direct,
	// reciprocal, USD bridge). The series builder uses it to precompute one
	// date-independent approximation per account currency.
	StaticFallbackRate(fromCode, toCode string) (decimal.Decimal, bool)
}
