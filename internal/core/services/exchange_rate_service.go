package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/longbinlai/maybe/internal/apperrors"
	"github.com/longbinlai/maybe/internal/core/domain"
	portsrepo "github.com/longbinlai/maybe/internal/core/ports/repositories"
	portssvc "github.com/longbinlai/maybe/internal/core/ports/services"
	"github.com/longbinlai/maybe/internal/dto"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// syncConcurrency bounds how many currency pairs a bulk sync fetches at once.
const syncConcurrency = 4

// exchangeRateService provides business logic for exchange rates: manual
// creation and deletion, provider-backed find-or-fetch, bulk sync, and the
// latest-rate cache bookkeeping each of those requires.
type exchangeRateService struct {
	BaseService
	rateRepo        portsrepo.ExchangeRateRepositoryFacade
	rateCache       portssvc.RateCache
	provider        portssvc.RateProvider // nil when no provider is configured
	currencyService portssvc.CurrencyReaderSvc
}

// ExchangeRateServiceOption is a functional option for configuring the service
type ExchangeRateServiceOption func(*exchangeRateService)

// WithRateProvider wires the external rate provider. Without it, lookups are
// storage-only and fetch paths report ErrNotFound.
func WithRateProvider(provider portssvc.RateProvider) ExchangeRateServiceOption {
	return func(s *exchangeRateService) {
		s.provider = provider
	}
}

// NewExchangeRateService creates a new exchange rate service.
func NewExchangeRateService(
	rateRepo portsrepo.ExchangeRateRepositoryFacade,
	rateCache portssvc.RateCache,
	currencyService portssvc.CurrencyReaderSvc,
	options ...ExchangeRateServiceOption,
) portssvc.ExchangeRateSvcFacade {
	svc := &exchangeRateService{
		rateRepo:        rateRepo,
		rateCache:       rateCache,
		currencyService: currencyService,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

// CreateExchangeRate handles manual creation of an exchange rate. Creation
// is idempotent on the (from, to, date) key: an existing stored rate is
// authoritative and returned unchanged. The cached latest rate for the pair
// is overwritten unconditionally, regardless of date recency; manual entry
// is the operator saying "this is what I want shown now". The bulk-sync
// path deliberately differs (date-compared overwrite).
func (s *exchangeRateService) CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error) {
	if req.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}

	fromCode := strings.ToUpper(req.FromCurrencyCode)
	toCode := strings.ToUpper(req.ToCurrencyCode)
	if fromCode == toCode {
		return nil, fmt.Errorf("%w: from and to currency codes cannot be the same", apperrors.ErrValidation)
	}

	if err := s.validateCurrencyExists(ctx, fromCode, "from"); err != nil {
		return nil, err
	}
	if err := s.validateCurrencyExists(ctx, toCode, "to"); err != nil {
		return nil, err
	}

	now := time.Now()
	rate := domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		FromCurrencyCode: fromCode,
		ToCurrencyCode:   toCode,
		Rate:             req.Rate,
		DateEffective:    domain.NormalizeDate(req.DateEffective),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	persisted, created, err := s.rateRepo.FindOrCreateRate(ctx, rate)
	if err != nil {
		s.LogError(ctx, err, "Failed to create exchange rate",
			slog.String("from", fromCode), slog.String("to", toCode))
		return nil, fmt.Errorf("failed to create exchange rate: %w", err)
	}
	if !created {
		s.LogInfo(ctx, "Exchange rate already exists for key, returning stored rate",
			slog.String("from", fromCode), slog.String("to", toCode),
			slog.Time("date", rate.DateEffective))
	}

	s.rateCache.UpdateLatest(persisted)
	return persisted, nil
}

// DeleteExchangeRate removes a rate and invalidates the pair's cache entry.
func (s *exchangeRateService) DeleteExchangeRate(ctx context.Context, rateID string) error {
	deleted, err := s.rateRepo.DeleteRate(ctx, rateID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to delete exchange rate", slog.String("rate_id", rateID))
		}
		return err
	}

	s.rateCache.Invalidate(deleted.FromCurrencyCode, deleted.ToCurrencyCode)
	s.LogInfo(ctx, "Exchange rate deleted",
		slog.String("rate_id", rateID),
		slog.String("from", deleted.FromCurrencyCode),
		slog.String("to", deleted.ToCurrencyCode))
	return nil
}

// GetExchangeRateByID retrieves a rate by its ID.
func (s *exchangeRateService) GetExchangeRateByID(ctx context.Context, rateID string) (*domain.ExchangeRate, error) {
	rate, err := s.rateRepo.FindRateByID(ctx, rateID)
	if err != nil {
		return nil, err
	}
	return rate, nil
}

// GetLatestRate retrieves the latest known rate for a pair through the cache.
func (s *exchangeRateService) GetLatestRate(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error) {
	fromCode = strings.ToUpper(fromCode)
	toCode = strings.ToUpper(toCode)
	if len(fromCode) != 3 || len(toCode) != 3 {
		return nil, fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}
	return s.rateCache.FindLatest(ctx, fromCode, toCode)
}

// ListExchangeRates retrieves rates with optional filters and pagination.
func (s *exchangeRateService) ListExchangeRates(ctx context.Context, fromCode, toCode *string, page, pageSize int) ([]domain.ExchangeRate, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}
	return s.rateRepo.ListRates(ctx, fromCode, toCode, page, pageSize)
}

// FindOrFetchRate returns the stored rate for the exact key when present.
// Otherwise it asks the provider, persists the fetched rate idempotently,
// and updates the pair's cached latest rate only when the fetched rate is
// genuinely newer than the cached one. Ordering under concurrent fetches is
// enforced by that date comparison, not by locking.
func (s *exchangeRateService) FindOrFetchRate(ctx context.Context, fromCode, toCode string, date time.Time) (*domain.ExchangeRate, bool, error) {
	fromCode = strings.ToUpper(fromCode)
	toCode = strings.ToUpper(toCode)
	if fromCode == toCode {
		return nil, false, fmt.Errorf("%w: from and to currency codes cannot be the same", apperrors.ErrValidation)
	}
	date = domain.NormalizeDate(date)

	stored, err := s.rateRepo.FindRateByDate(ctx, fromCode, toCode, date)
	if err == nil {
		return stored, true, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to query stored exchange rate",
			slog.String("from", fromCode), slog.String("to", toCode), slog.Time("date", date))
		return nil, false, err
	}

	if s.provider == nil {
		return nil, false, fmt.Errorf("%w: no rate stored for %s to %s and no provider configured",
			apperrors.ErrNotFound, fromCode, toCode)
	}

	data, err := s.provider.FetchRate(ctx, fromCode, toCode, date)
	if err != nil {
		// Provider failures are recovered by the resolver's fallback chain;
		// log here, surface the typed error for the caller to classify.
		s.LogWarn(ctx, "Rate provider fetch failed",
			slog.String("provider", s.provider.Name()),
			slog.String("from", fromCode), slog.String("to", toCode),
			slog.String("error", err.Error()))
		return nil, false, fmt.Errorf("%w: %s fetch for %s to %s failed: %v",
			apperrors.ErrProvider, s.provider.Name(), fromCode, toCode, err)
	}

	now := time.Now()
	fetched := domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		FromCurrencyCode: strings.ToUpper(data.FromCurrencyCode),
		ToCurrencyCode:   strings.ToUpper(data.ToCurrencyCode),
		Rate:             data.Rate,
		DateEffective:    domain.NormalizeDate(data.Date),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     s.provider.Name(),
			LastUpdatedAt: now,
			LastUpdatedBy: s.provider.Name(),
		},
	}

	persisted, _, err := s.rateRepo.FindOrCreateRate(ctx, fetched)
	if err != nil {
		s.LogError(ctx, err, "Failed to persist fetched exchange rate",
			slog.String("from", fromCode), slog.String("to", toCode))
		return nil, false, fmt.Errorf("failed to persist fetched exchange rate: %w", err)
	}

	s.updateCacheIfNewer(ctx, persisted)
	return persisted, false, nil
}

// SyncRates fetches the current rate for every ordered pair of the given
// currencies. Pairs fetch in parallel; each pair's fetch-store-cache
// sequence stays atomic as a unit relative to its own cache entry through
// the date comparison in FindOrFetchRate.
func (s *exchangeRateService) SyncRates(ctx context.Context, currencyCodes []string, date time.Time) (*dto.SyncRatesResult, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("%w: no rate provider configured for sync", apperrors.ErrValidation)
	}
	if len(currencyCodes) < 2 {
		return nil, fmt.Errorf("%w: at least two currencies are required for a sync", apperrors.ErrValidation)
	}

	date = domain.NormalizeDate(date)

	var mu sync.Mutex
	result := &dto.SyncRatesResult{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(syncConcurrency)

	for _, from := range currencyCodes {
		for _, to := range currencyCodes {
			fromCode := strings.ToUpper(from)
			toCode := strings.ToUpper(to)
			if fromCode == toCode {
				continue
			}
			g.Go(func() error {
				_, _, err := s.FindOrFetchRate(gctx, fromCode, toCode, date)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					result.FailedCount++
					result.FailedPairs = append(result.FailedPairs, fromCode+"/"+toCode)
					return nil // keep syncing the remaining pairs
				}
				result.SyncedCount++
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Exchange rate sync completed",
		slog.Int("synced", result.SyncedCount),
		slog.Int("failed", result.FailedCount),
		slog.Time("date", date))
	return result, nil
}

// updateCacheIfNewer overwrites the pair's cached latest rate only when the
// given rate is newer than what is cached. An older concurrent fetch must
// never clobber a newer cache entry.
func (s *exchangeRateService) updateCacheIfNewer(ctx context.Context, rate *domain.ExchangeRate) {
	cached, err := s.rateCache.FindLatest(ctx, rate.FromCurrencyCode, rate.ToCurrencyCode)
	if err != nil || cached.DateEffective.Before(rate.DateEffective) {
		s.rateCache.UpdateLatest(rate)
	}
}

func (s *exchangeRateService) validateCurrencyExists(ctx context.Context, code, side string) error {
	_, err := s.currencyService.GetCurrencyByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: '%s' currency code '%s' not found", apperrors.ErrValidation, side, code)
		}
		return fmt.Errorf("failed to validate '%s' currency '%s': %w", side, code, err)
	}
	return nil
}
