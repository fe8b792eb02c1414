package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/longbinlai/maybe/internal/core/domain"
	portsrepo "github.com/longbinlai/maybe/internal/core/ports/repositories"
	portssvc "github.com/longbinlai/maybe/internal/core/ports/services"
	gocache "github.com/patrickmn/go-cache"
)

// rateCache is the process-wide latest-rate cache. Entries are stored with
// no expiration: correctness depends on write and delete call sites keeping
// the cache in sync with persisted rates, not on a TTL. Concurrent writers
// to the same pair race and last write wins, which is acceptable for a
// display cache that never feeds a stored financial record.
type rateCache struct {
	BaseService
	cache    *gocache.Cache
	rateRepo portsrepo.ExchangeRateReader
}

// NewRateCache creates a latest-rate cache over the given rate storage.
func NewRateCache(rateRepo portsrepo.ExchangeRateReader) portssvc.RateCache {
	return &rateCache{
		cache:    gocache.New(gocache.NoExpiration, 0),
		rateRepo: rateRepo,
	}
}

var _ portssvc.RateCache = (*rateCache)(nil)

func rateCacheKey(fromCode, toCode string) string {
	return fmt.Sprintf("exchange_rate_latest_%s_%s", fromCode, toCode)
}

// FindLatest returns the cached latest rate for the pair, computing it from
// storage and populating the cache on a miss.
func (c *rateCache) FindLatest(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error) {
	key := rateCacheKey(fromCode, toCode)
	if cached, found := c.cache.Get(key); found {
		return cached.(*domain.ExchangeRate), nil
	}

	rate, err := c.rateRepo.FindLatestRate(ctx, fromCode, toCode)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, rate, gocache.NoExpiration)
	return rate, nil
}

// UpdateLatest unconditionally overwrites the pair's cache entry.
func (c *rateCache) UpdateLatest(rate *domain.ExchangeRate) {
	c.cache.Set(rateCacheKey(rate.FromCurrencyCode, rate.ToCurrencyCode), rate, gocache.NoExpiration)
}

// Invalidate removes the pair's cache entry so the next FindLatest
// recomputes from storage.
func (c *rateCache) Invalidate(fromCode, toCode string) {
	c.cache.Delete(rateCacheKey(fromCode, toCode))
}

// Preload warms the cache with the latest rate of every known currency pair.
func (c *rateCache) Preload(ctx context.Context) (int, error) {
	pairs, err := c.rateRepo.ListCurrencyPairs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list currency pairs for cache preload: %w", err)
	}

	loaded := 0
	for _, pair := range pairs {
		if _, err := c.FindLatest(ctx, pair.FromCurrencyCode, pair.ToCurrencyCode); err != nil {
			c.LogWarn(ctx, "Could not preload exchange rate pair",
				slog.String("from", pair.FromCurrencyCode),
				slog.String("to", pair.ToCurrencyCode),
				slog.String("error", err.Error()))
			continue
		}
		loaded++
	}
	return loaded, nil
}
