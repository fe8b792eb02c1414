package jobs_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/longbinlai/maybe/internal/core/domain"
	"github.com/longbinlai/maybe/internal/dto"
	"github.com/longbinlai/maybe/internal/jobs"
)

type MockExchangeRateWriterSvc struct {
	mock.Mock
}

func (m *MockExchangeRateWriterSvc) CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, req, creatorUserID)
	rate, _ := args.Get(0).(*domain.ExchangeRate)
	return rate, args.Error(1)
}

func (m *MockExchangeRateWriterSvc) DeleteExchangeRate(ctx context.Context, rateID string) error {
	args := m.Called(ctx, rateID)
	return args.Error(0)
}

func (m *MockExchangeRateWriterSvc) SyncRates(ctx context.Context, currencyCodes []string, date time.Time) (*dto.SyncRatesResult, error) {
	args := m.Called(ctx, currencyCodes, date)
	result, _ := args.Get(0).(*dto.SyncRatesResult)
	return result, args.Error(1)
}

type MockRateCache struct {
	mock.Mock
}

func (m *MockRateCache) FindLatest(ctx context.Context, fromCurrencyCode, toCurrencyCode string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCurrencyCode, toCurrencyCode)
	rate, _ := args.Get(0).(*domain.ExchangeRate)
	return rate, args.Error(1)
}

func (m *MockRateCache) UpdateLatest(rate *domain.ExchangeRate) {
	m.Called(rate)
}

func (m *MockRateCache) Invalidate(fromCurrencyCode, toCurrencyCode string) {
	m.Called(fromCurrencyCode, toCurrencyCode)
}

func (m *MockRateCache) Preload(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunNowSyncsConfiguredCurrencies(t *testing.T) {
	rateService := new(MockExchangeRateWriterSvc)
	rateCache := new(MockRateCache)
	currencies := []string{"USD", "EUR"}

	rateService.On("SyncRates", mock.Anything, currencies, mock.MatchedBy(func(date time.Time) bool {
		return date.Equal(domain.NormalizeDate(time.Now().UTC()))
	})).Return(&dto.SyncRatesResult{SyncedCount: 2}, nil).Once()

	scheduler := jobs.NewRateSyncScheduler(rateService, rateCache, currencies, discardLogger())
	scheduler.RunNow(context.Background())

	rateService.AssertExpectations(t)
}

func TestRunNowToleratesSyncFailure(t *testing.T) {
	rateService := new(MockExchangeRateWriterSvc)
	rateCache := new(MockRateCache)

	rateService.On("SyncRates", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, assert.AnError).Once()

	scheduler := jobs.NewRateSyncScheduler(rateService, rateCache, []string{"USD", "EUR"}, discardLogger())
	scheduler.RunNow(context.Background())

	rateService.AssertExpectations(t)
}

func TestStartPreloadsCacheAndRegistersSchedule(t *testing.T) {
	rateService := new(MockExchangeRateWriterSvc)
	rateCache := new(MockRateCache)

	rateCache.On("Preload", mock.Anything).Return(3, nil).Once()

	scheduler := jobs.NewRateSyncScheduler(rateService, rateCache, []string{"USD", "EUR"}, discardLogger())
	require.NoError(t, scheduler.Start(context.Background(), "0 17 * * *"))
	scheduler.Stop()

	rateCache.AssertExpectations(t)
	rateService.AssertNotCalled(t, "SyncRates", mock.Anything, mock.Anything, mock.Anything)
}

func TestStartToleratesPreloadFailure(t *testing.T) {
	rateService := new(MockExchangeRateWriterSvc)
	rateCache := new(MockRateCache)

	rateCache.On("Preload", mock.Anything).Return(0, assert.AnError).Once()

	scheduler := jobs.NewRateSyncScheduler(rateService, rateCache, []string{"USD"}, discardLogger())
	require.NoError(t, scheduler.Start(context.Background(), "0 17 * * *"))
	scheduler.Stop()

	rateCache.AssertExpectations(t)
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	rateService := new(MockExchangeRateWriterSvc)
	rateCache := new(MockRateCache)

	rateCache.On("Preload", mock.Anything).Return(0, nil).Once()

	scheduler := jobs.NewRateSyncScheduler(rateService, rateCache, []string{"USD"}, discardLogger())
	assert.Error(t, scheduler.Start(context.Background(), "not a schedule"))
}
