package repositories

import (
	"context"
	"time"

	"github.com/longbinlai/maybe/internal/core/domain"
)

// ExchangeRateReader defines read operations for exchange rate data
type ExchangeRateReader interface {
	// FindRateByID retrieves an exchange rate by its ID.
	FindRateByID(ctx context.Context, rateID string) (*domain.ExchangeRate, error)

	// FindRateByDate retrieves the rate stored for the exact
	// (from, to, date) key, or ErrNotFound.
	FindRateByDate(ctx context.Context, fromCurrencyCode, toCurrencyCode string, date time.Time) (*domain.ExchangeRate, error)

	// FindRateAsOf retrieves the most recent rate for the pair at or before
	// the given date, or ErrNotFound.
	FindRateAsOf(ctx context.Context, fromCurrencyCode, toCurrencyCode string, date time.Time) (*domain.ExchangeRate, error)

	// FindLatestRate retrieves the most recent rate for the pair regardless
	// of date, or ErrNotFound.
	FindLatestRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string) (*domain.ExchangeRate, error)

	// ListRates retrieves rates with optional pair filtering, newest first,
	// along with the total count for pagination.
	ListRates(ctx context.Context, fromCurrencyCode, toCurrencyCode *string, page, pageSize int) ([]domain.ExchangeRate, int, error)

	// ListCurrencyPairs retrieves every distinct (from, to) pair that has at
	// least one stored rate. Used to warm the latest-rate cache at boot.
	ListCurrencyPairs(ctx context.Context) ([]domain.CurrencyPair, error)
}

// ExchangeRateWriter defines write operations for exchange rate data
type ExchangeRateWriter interface {
	// FindOrCreateRate persists a rate unless one already exists for its
	// (from, to, date) key, in which case the stored one is returned
	// unchanged. The boolean reports whether a new row was created.
	FindOrCreateRate(ctx context.Context, rate domain.ExchangeRate) (*domain.ExchangeRate, bool, error)

	// DeleteRate removes a rate by ID, returning the deleted rate so callers
	// can invalidate the pair's cache entry.
	DeleteRate(ctx context.Context, rateID string) (*domain.ExchangeRate, error)
}

// ExchangeRateRepositoryFacade combines all exchange rate-related repository interfaces
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}
