package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/longbinlai/maybe/internal/apperrors"
	"github.com/longbinlai/maybe/internal/core/domain"
	portssvc "github.com/longbinlai/maybe/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// sentinelRate is the value providers commonly return to mean "no real
// data" rather than erroring. A genuinely stored rate of 1 is trusted; a
// provider rate of exactly 1 is not, because accepting it would silently
// treat, say, 100 CNY as 100 USD in aggregated values.
var sentinelRate = decimal.NewFromInt(1)

// rateResolver turns (from, to, date) into a usable decimal rate through
// the fallback chain: identity, stored exact-date rate, provider rate with
// sentinel rejection, curated fallback table, explicit caller fallback.
type rateResolver struct {
	BaseService
	rateService portssvc.ExchangeRateReaderSvc
	fallbacks   *FallbackTable
}

// NewRateResolver creates the resolver over the exchange rate service and
// the curated fallback table.
func NewRateResolver(rateService portssvc.ExchangeRateReaderSvc, fallbacks *FallbackTable) portssvc.RateResolverSvc {
	if fallbacks == nil {
		fallbacks = NewFallbackTable(nil, nil)
	}
	return &rateResolver{
		rateService: rateService,
		fallbacks:   fallbacks,
	}
}

var _ portssvc.RateResolverSvc = (*rateResolver)(nil)
var _ domain.RateResolver = (*rateResolver)(nil)

// Resolve runs the chain, short-circuiting on the first usable rate.
func (r *rateResolver) Resolve(ctx context.Context, fromCode, toCode string, date time.Time, explicitFallback *decimal.Decimal) (decimal.Decimal, error) {
	fromCode = strings.ToUpper(fromCode)
	toCode = strings.ToUpper(toCode)
	date = domain.NormalizeDate(date)

	if fromCode == toCode {
		return sentinelRate, nil
	}

	rate, stored, err := r.rateService.FindOrFetchRate(ctx, fromCode, toCode, date)
	switch {
	case err == nil && stored:
		// An explicitly dated stored rate is authoritative, even when it
		// happens to equal 1.
		return rate.Rate, nil
	case err == nil:
		if !rate.Rate.Equal(sentinelRate) {
			return rate.Rate, nil
		}
		r.LogDebug(ctx, "Provider returned sentinel rate, falling back to curated table",
			slog.String("from", fromCode), slog.String("to", toCode))
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrProvider):
		// No stored rate and no provider data; fall through to the table.
	default:
		// Data-access failure: propagate, never coerce to an approximation.
		return decimal.Decimal{}, err
	}

	if fallback, ok := r.fallbacks.Lookup(fromCode, toCode); ok {
		return fallback, nil
	}

	if explicitFallback != nil {
		return *explicitFallback, nil
	}

	return decimal.Decimal{}, apperrors.NewConversionError(fromCode, toCode, date)
}

// StaticFallbackRate consults only the curated table.
func (r *rateResolver) StaticFallbackRate(fromCode, toCode string) (decimal.Decimal, bool) {
	return r.fallbacks.Lookup(fromCode, toCode)
}
