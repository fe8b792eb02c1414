package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/longbinlai/maybe/internal/apperrors"
	"github.com/longbinlai/maybe/internal/core/domain"
	portsrepo "github.com/longbinlai/maybe/internal/core/ports/repositories"
	portssvc "github.com/longbinlai/maybe/internal/core/ports/services"
	"github.com/longbinlai/maybe/internal/dto"
	"github.com/shopspring/decimal"
)

// balanceSeriesService aggregates per-account balance snapshots into a
// currency-normalized, sign-adjusted, trend-annotated series. It replaces
// what the storage layer could express as one opaque query with explicit,
// independently testable steps: date generation, as-of snapshot resolution,
// as-of rate resolution, then conversion and summation.
type balanceSeriesService struct {
	BaseService
	balanceRepo     portsrepo.BalanceReader
	accountRepo     portsrepo.AccountReader
	rateRepo        portsrepo.ExchangeRateReader
	resolver        portssvc.RateResolverSvc
	currencyService portssvc.CurrencyReaderSvc
}

// NewBalanceSeriesService creates the series builder.
func NewBalanceSeriesService(
	balanceRepo portsrepo.BalanceReader,
	accountRepo portsrepo.AccountReader,
	rateRepo portsrepo.ExchangeRateReader,
	resolver portssvc.RateResolverSvc,
	currencyService portssvc.CurrencyReaderSvc,
) portssvc.BalanceSeriesSvc {
	return &balanceSeriesService{
		balanceRepo:     balanceRepo,
		accountRepo:     accountRepo,
		rateRepo:        rateRepo,
		resolver:        resolver,
		currencyService: currencyService,
	}
}

var _ portssvc.BalanceSeriesSvc = (*balanceSeriesService)(nil)

// seriesBuild holds the fixed point-in-time view for one series build. All
// lookups during a build are read-only, so construction is safe to run
// concurrently with other builds and with rate writes.
type seriesBuild struct {
	accounts       []domain.Account
	target         domain.Currency
	period         domain.Period
	interval       domain.Interval
	direction      domain.FavorableDirection
	column         domain.BalanceColumn
	signMultiplier decimal.Decimal

	// staticRates is the date-independent fallback per account currency,
	// computed once per build rather than once per date.
	staticRates map[string]decimal.Decimal

	// asOfRates memoizes resolved as-of rates per currency and date.
	asOfRates map[string]decimal.Decimal
}

// BuildSeries produces one SeriesValue per generated date. Any data-access
// failure aborts the whole series; a partial series would present
// misleading financial figures.
func (s *balanceSeriesService) BuildSeries(ctx context.Context, req dto.BalanceSeriesRequest) (*domain.Series, error) {
	build, err := s.prepareBuild(ctx, req)
	if err != nil {
		return nil, err
	}

	dates := build.period.Dates(build.interval)
	values := make([]domain.SeriesValue, 0, len(dates))
	for _, date := range dates {
		value, err := s.buildValue(ctx, build, date)
		if err != nil {
			s.LogError(ctx, err, "Balance series build aborted",
				slog.Any("account_ids", req.AccountIDs),
				slog.Time("start_date", build.period.StartDate),
				slog.Time("end_date", build.period.EndDate))
			return nil, err
		}
		values = append(values, value)
	}

	return &domain.Series{
		StartDate:          build.period.StartDate,
		EndDate:            build.period.EndDate,
		Interval:           build.interval,
		FavorableDirection: build.direction,
		Values:             values,
	}, nil
}

func (s *balanceSeriesService) prepareBuild(ctx context.Context, req dto.BalanceSeriesRequest) (*seriesBuild, error) {
	if len(req.AccountIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one account is required", apperrors.ErrValidation)
	}

	interval, err := domain.ParseInterval(req.Interval)
	if err != nil {
		return nil, err
	}
	direction, err := domain.ParseFavorableDirection(req.FavorableDirection)
	if err != nil {
		return nil, err
	}
	column := req.Column
	if column == "" {
		column = domain.ColumnBalance
	}
	if !column.Valid() {
		return nil, fmt.Errorf("%w: unknown balance column %q", apperrors.ErrValidation, column)
	}
	period, err := domain.NewPeriod(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	target, err := s.currencyService.GetCurrencyByCode(ctx, strings.ToUpper(req.TargetCurrencyCode))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: target currency %q not found", apperrors.ErrValidation, req.TargetCurrencyCode)
		}
		return nil, err
	}

	accounts := make([]domain.Account, 0, len(req.AccountIDs))
	for _, accountID := range req.AccountIDs {
		account, err := s.accountRepo.FindAccountByID(ctx, accountID)
		if err != nil {
			s.LogError(ctx, err, "Failed to load account for series build",
				slog.String("account_id", accountID))
			return nil, err
		}
		accounts = append(accounts, *account)
	}

	// The static approximation is date-independent, so compute it once per
	// currency across the whole account set. A currency with no usable
	// table entry degrades to 1: charting prefers an unconverted figure
	// over refusing the approximation tier entirely.
	currencyCodes, err := s.accountRepo.ListAccountCurrencies(ctx, req.AccountIDs)
	if err != nil {
		s.LogError(ctx, err, "Failed to load account currencies for series build",
			slog.Any("account_ids", req.AccountIDs))
		return nil, err
	}
	staticRates := make(map[string]decimal.Decimal, len(currencyCodes))
	for _, code := range currencyCodes {
		if rate, ok := s.resolver.StaticFallbackRate(code, target.CurrencyCode); ok {
			staticRates[code] = rate
		} else {
			staticRates[code] = decimal.NewFromInt(1)
		}
	}

	return &seriesBuild{
		accounts:       accounts,
		target:         *target,
		period:         period,
		interval:       interval,
		direction:      direction,
		column:         column,
		signMultiplier: decimal.NewFromInt(int64(direction.SignMultiplier())),
		staticRates:    staticRates,
		asOfRates:      make(map[string]decimal.Decimal),
	}, nil
}

// buildValue aggregates the selected balance column across all accounts for
// one date, converting each account's contribution into the target currency
// and applying the flows factor and sign multiplier.
func (s *balanceSeriesService) buildValue(ctx context.Context, build *seriesBuild, date time.Time) (domain.SeriesValue, error) {
	endTotal := decimal.Zero
	startTotal := decimal.Zero

	for i := range build.accounts {
		account := &build.accounts[i]

		snapshot, err := s.balanceRepo.LatestSnapshotAsOf(ctx, account.AccountID, date)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue // account has no history at or before this date
			}
			return domain.SeriesValue{}, fmt.Errorf("failed to load balance snapshot for account %s: %w", account.AccountID, err)
		}

		rate, err := s.rateAsOf(ctx, build, account.CurrencyCode, date)
		if err != nil {
			return domain.SeriesValue{}, err
		}

		endTotal = endTotal.Add(contribution(snapshot.EndValue(build.column), snapshot.FlowsFactor, build.column, rate, build.signMultiplier))
		startTotal = startTotal.Add(contribution(snapshot.StartValue(build.column), snapshot.FlowsFactor, build.column, rate, build.signMultiplier))
	}

	current := domain.NewMoney(endTotal, build.target)
	previous := domain.NewMoney(startTotal, build.target)
	return domain.SeriesValue{
		Date:  date,
		Value: current,
		Trend: domain.NewTrend(current, previous, build.direction),
	}, nil
}

// rateAsOf resolves the conversion rate from an account currency into the
// target as of the given date: the most recent stored rate at or before the
// date, then the precomputed static approximation. The provider is never
// consulted during a series build.
func (s *balanceSeriesService) rateAsOf(ctx context.Context, build *seriesBuild, currencyCode string, date time.Time) (decimal.Decimal, error) {
	if currencyCode == build.target.CurrencyCode {
		return decimal.NewFromInt(1), nil
	}

	key := currencyCode + "_" + date.Format("2006-01-02")
	if rate, ok := build.asOfRates[key]; ok {
		return rate, nil
	}

	stored, err := s.rateRepo.FindRateAsOf(ctx, currencyCode, build.target.CurrencyCode, date)
	switch {
	case err == nil:
		build.asOfRates[key] = stored.Rate
		return stored.Rate, nil
	case errors.Is(err, apperrors.ErrNotFound):
		rate := build.staticRates[currencyCode]
		if rate.IsZero() {
			rate = decimal.NewFromInt(1)
		}
		build.asOfRates[key] = rate
		return rate, nil
	default:
		return decimal.Decimal{}, fmt.Errorf("failed to load exchange rate %s to %s as of %s: %w",
			currencyCode, build.target.CurrencyCode, date.Format("2006-01-02"), err)
	}
}

// contribution computes one account's converted, sign-adjusted input into a
// dated total. Holdings aggregation only includes assets: a liability
// contributes nothing to holdings regardless of its non-cash balance.
func contribution(value decimal.Decimal, flowsFactor int, column domain.BalanceColumn, rate, signMultiplier decimal.Decimal) decimal.Decimal {
	if column == domain.ColumnHoldingsBalance {
		if flowsFactor != 1 {
			return decimal.Zero
		}
		return value.Mul(rate).Mul(signMultiplier)
	}
	return value.Mul(decimal.NewFromInt(int64(flowsFactor))).Mul(rate).Mul(signMultiplier)
}
