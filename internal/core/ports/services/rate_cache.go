package services

import (
	"context"

	"github.com/longbinlai/maybe/internal/core/domain"
)

// RateCache holds the most-recently-known exchange rate per currency pair.
// Entries never expire on their own: they are populated lazily from storage,
// overwritten on rate writes, and deleted on rate deletion. Coherence
// depends entirely on call-site discipline, a documented risk rather than a
// guarantee. The interface is narrow so it can be backed by an in-process
// map, a shared key-value store, or a null cache in tests.
type RateCache interface {
	// FindLatest returns the cached latest-known rate for the pair. On a
	// miss it computes the value from storage (most recent by date),
	// populates the cache, and returns it; ErrNotFound when storage has no
	// rate for the pair either.
	FindLatest(ctx context.Context, fromCurrencyCode, toCurrencyCode string) (*domain.ExchangeRate, error)

	// UpdateLatest unconditionally overwrites the cache entry for the
	// rate's pair. Bulk-sync paths compare dates before calling so an older
	// fetch never clobbers a newer entry; a manual create always calls it.
	UpdateLatest(rate *domain.ExchangeRate)

	// Invalidate removes the cache entry for the pair. The next FindLatest
	// recomputes from storage.
	Invalidate(fromCurrencyCode, toCurrencyCode string)

	// Preload warms the cache with the latest rate of every known pair,
	// returning the number of pairs loaded.
	Preload(ctx context.Context) (int, error)
}
