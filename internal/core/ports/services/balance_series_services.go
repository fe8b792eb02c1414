package services

import (
	"context"

	"github.com/longbinlai/maybe/internal/core/domain"
	"github.com/longbinlai/maybe/internal/dto"
)

// BalanceSeriesSvc builds currency-normalized, trend-annotated balance
// series across a set of accounts. Invoked once per requested balance
// flavor (total, cash-only, holdings-only).
type BalanceSeriesSvc interface {
	// BuildSeries produces one SeriesValue per generated date over the
	// requested period. Any resolver or data-access failure aborts the whole
	// series; partial series are never returned.
	BuildSeries(ctx context.Context, req dto.BalanceSeriesRequest) (*domain.Series, error)
}

// CurrencyReaderSvc defines read operations for currency data
type CurrencyReaderSvc interface {
	// GetCurrencyByCode retrieves a specific currency by its code.
	GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// ListCurrencies retrieves all available currencies.
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
}

// CurrencyWriterSvc defines write operations for currency data
type CurrencyWriterSvc interface {
	// CreateCurrency persists a new currency.
	CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error)
}

// CurrencySvcFacade combines all currency-related service interfaces
type CurrencySvcFacade interface {
	CurrencyReaderSvc
	CurrencyWriterSvc
}
