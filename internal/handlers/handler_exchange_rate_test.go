package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/longbinlai/maybe/internal/apperrors"
	"github.com/longbinlai/maybe/internal/core/domain"
	portssvc "github.com/longbinlai/maybe/internal/core/ports/services"
	"github.com/longbinlai/maybe/internal/core/services"
	"github.com/longbinlai/maybe/internal/dto"
	"github.com/longbinlai/maybe/internal/handlers"
	"github.com/longbinlai/maybe/pkg/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock ExchangeRateService ---
type MockExchangeRateService struct {
	mock.Mock
}

func (m *MockExchangeRateService) GetExchangeRateByID(ctx context.Context, rateID string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, rateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}
func (m *MockExchangeRateService) GetLatestRate(ctx context.Context, fromCode, toCode string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, fromCode, toCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}
func (m *MockExchangeRateService) ListExchangeRates(ctx context.Context, fromCode, toCode *string, page, pageSize int) ([]domain.ExchangeRate, int, error) {
	args := m.Called(ctx, fromCode, toCode, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Int(1), args.Error(2)
}
func (m *MockExchangeRateService) FindOrFetchRate(ctx context.Context, fromCode, toCode string, date time.Time) (*domain.ExchangeRate, bool, error) {
	args := m.Called(ctx, fromCode, toCode, date)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Bool(1), args.Error(2)
}
func (m *MockExchangeRateService) CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}
func (m *MockExchangeRateService) DeleteExchangeRate(ctx context.Context, rateID string) error {
	args := m.Called(ctx, rateID)
	return args.Error(0)
}
func (m *MockExchangeRateService) SyncRates(ctx context.Context, currencyCodes []string, date time.Time) (*dto.SyncRatesResult, error) {
	args := m.Called(ctx, currencyCodes, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SyncRatesResult), args.Error(1)
}

var _ portssvc.ExchangeRateSvcFacade = (*MockExchangeRateService)(nil)

// --- Mock BalanceSeriesService ---
type MockBalanceSeriesService struct {
	mock.Mock
}

func (m *MockBalanceSeriesService) BuildSeries(ctx context.Context, req dto.BalanceSeriesRequest) (*domain.Series, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Series), args.Error(1)
}

var _ portssvc.BalanceSeriesSvc = (*MockBalanceSeriesService)(nil)

// --- Mock CurrencyService ---
type MockCurrencyService struct {
	mock.Mock
}

func (m *MockCurrencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}
func (m *MockCurrencyService) ListCurrencies(ctx context.Context) ([]domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}
func (m *MockCurrencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

var _ portssvc.CurrencySvcFacade = (*MockCurrencyService)(nil)

// --- Test Suite ---
type ExchangeRateHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockRates   *MockExchangeRateService
	mockSeries  *MockBalanceSeriesService
	mockCurrSvc *MockCurrencyService
}

func (suite *ExchangeRateHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.mockRates = new(MockExchangeRateService)
	suite.mockSeries = new(MockBalanceSeriesService)
	suite.mockCurrSvc = new(MockCurrencyService)

	cfg := &config.Config{
		CORSAllowedOrigins:     []string{"http://localhost:3000"},
		SyncRateLimitPerMinute: 100,
		SupportedCurrencies:    []string{"USD", "EUR"},
	}
	svcs := &services.ServicesContainer{
		Currency:      suite.mockCurrSvc,
		ExchangeRate:  suite.mockRates,
		BalanceSeries: suite.mockSeries,
	}

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, cfg, svcs)
}

func (suite *ExchangeRateHandlerTestSuite) perform(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *ExchangeRateHandlerTestSuite) TestCreateExchangeRate_Created() {
	reqBody := dto.CreateExchangeRateRequest{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "CNY",
		Rate:             decimal.RequireFromString("7.25"),
		DateEffective:    time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
	}
	persisted := &domain.ExchangeRate{
		ExchangeRateID:   "rate-1",
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "CNY",
		Rate:             reqBody.Rate,
		DateEffective:    reqBody.DateEffective,
	}
	suite.mockRates.On("CreateExchangeRate", mock.Anything, mock.AnythingOfType("dto.CreateExchangeRateRequest"), "system").
		Return(persisted, nil).Once()

	w := suite.perform(http.MethodPost, "/api/v1/exchange-rates", reqBody)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.ExchangeRateResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("rate-1", resp.ExchangeRateID)
	suite.mockRates.AssertExpectations(suite.T())
}

func (suite *ExchangeRateHandlerTestSuite) TestCreateExchangeRate_BadPayload() {
	w := suite.perform(http.MethodPost, "/api/v1/exchange-rates", map[string]string{
		"fromCurrencyCode": "usd", // fails the uppercase binding rule
	})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockRates.AssertNotCalled(suite.T(), "CreateExchangeRate")
}

func (suite *ExchangeRateHandlerTestSuite) TestCreateExchangeRate_ValidationErrorFromService() {
	reqBody := dto.CreateExchangeRateRequest{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "CNY",
		Rate:             decimal.RequireFromString("7.25"),
		DateEffective:    time.Now(),
	}
	suite.mockRates.On("CreateExchangeRate", mock.Anything, mock.Anything, "system").
		Return(nil, apperrors.ErrValidation).Once()

	w := suite.perform(http.MethodPost, "/api/v1/exchange-rates", reqBody)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *ExchangeRateHandlerTestSuite) TestGetLatestRate_OK() {
	latest := &domain.ExchangeRate{
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "CNY",
		Rate:             decimal.RequireFromString("7.25"),
	}
	suite.mockRates.On("GetLatestRate", mock.Anything, "USD", "CNY").Return(latest, nil).Once()

	w := suite.perform(http.MethodGet, "/api/v1/exchange-rates/latest?from=USD&to=CNY", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockRates.AssertExpectations(suite.T())
}

func (suite *ExchangeRateHandlerTestSuite) TestGetLatestRate_NotFound() {
	suite.mockRates.On("GetLatestRate", mock.Anything, "USD", "XXX").
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.perform(http.MethodGet, "/api/v1/exchange-rates/latest?from=USD&to=XXX", nil)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *ExchangeRateHandlerTestSuite) TestGetLatestRate_MissingParams() {
	w := suite.perform(http.MethodGet, "/api/v1/exchange-rates/latest?from=USD", nil)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockRates.AssertNotCalled(suite.T(), "GetLatestRate")
}

func (suite *ExchangeRateHandlerTestSuite) TestDeleteExchangeRate_NoContent() {
	suite.mockRates.On("DeleteExchangeRate", mock.Anything, "rate-1").Return(nil).Once()

	w := suite.perform(http.MethodDelete, "/api/v1/exchange-rates/rate-1", nil)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockRates.AssertExpectations(suite.T())
}

func (suite *ExchangeRateHandlerTestSuite) TestSyncRates_DefaultsToConfiguredCurrencies() {
	suite.mockRates.On("SyncRates", mock.Anything, []string{"USD", "EUR"}, mock.AnythingOfType("time.Time")).
		Return(&dto.SyncRatesResult{SyncedCount: 2}, nil).Once()

	w := suite.perform(http.MethodPost, "/api/v1/exchange-rates/sync", dto.SyncRatesRequest{})

	suite.Equal(http.StatusOK, w.Code)
	var result dto.SyncRatesResult
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &result))
	suite.Equal(2, result.SyncedCount)
	suite.mockRates.AssertExpectations(suite.T())
}

func (suite *ExchangeRateHandlerTestSuite) TestBalanceSeries_OK() {
	usd := domain.NewCurrency("USD", "$", "US Dollar", 2)
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	series := &domain.Series{
		StartDate:          start,
		EndDate:            start,
		Interval:           domain.IntervalDay,
		FavorableDirection: domain.DirectionUp,
		Values: []domain.SeriesValue{{
			Date:  start,
			Value: domain.NewMoney(decimal.RequireFromString("1098"), usd),
			Trend: domain.NewTrend(
				domain.NewMoney(decimal.RequireFromString("1098"), usd),
				domain.NewMoney(decimal.RequireFromString("998"), usd),
				domain.DirectionUp,
			),
		}},
	}
	suite.mockSeries.On("BuildSeries", mock.Anything, mock.MatchedBy(func(req dto.BalanceSeriesRequest) bool {
		return req.Column == domain.ColumnBalance
	})).Return(series, nil).Once()

	reqBody := dto.BalanceSeriesRequest{
		AccountIDs:         []string{"3f1e9a52-9f3d-4a8e-bd6a-0a4f1f6f2f10"},
		TargetCurrencyCode: "USD",
		StartDate:          start,
		EndDate:            start,
	}
	w := suite.perform(http.MethodPost, "/api/v1/balances/series", reqBody)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.SeriesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.Values, 1)
	suite.Equal("$1098.00", resp.Values[0].Formatted)
	suite.Equal("favorable", resp.Values[0].Trend.Classification)
	suite.mockSeries.AssertExpectations(suite.T())
}

func (suite *ExchangeRateHandlerTestSuite) TestBalanceSeries_ConversionErrorIsUnprocessable() {
	suite.mockSeries.On("BuildSeries", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewConversionError("GBP", "JPY", time.Now())).Once()

	reqBody := dto.BalanceSeriesRequest{
		AccountIDs:         []string{"3f1e9a52-9f3d-4a8e-bd6a-0a4f1f6f2f10"},
		TargetCurrencyCode: "JPY",
		StartDate:          time.Now(),
		EndDate:            time.Now(),
	}
	w := suite.perform(http.MethodPost, "/api/v1/balances/series", reqBody)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *ExchangeRateHandlerTestSuite) TestBalanceSeries_HoldingsRouteSetsColumn() {
	usd := domain.NewCurrency("USD", "$", "US Dollar", 2)
	start := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	series := &domain.Series{
		StartDate: start, EndDate: start,
		Interval: domain.IntervalDay, FavorableDirection: domain.DirectionUp,
		Values: []domain.SeriesValue{{
			Date:  start,
			Value: domain.ZeroMoney(usd),
			Trend: domain.NewTrend(domain.ZeroMoney(usd), domain.ZeroMoney(usd), domain.DirectionUp),
		}},
	}
	suite.mockSeries.On("BuildSeries", mock.Anything, mock.MatchedBy(func(req dto.BalanceSeriesRequest) bool {
		return req.Column == domain.ColumnHoldingsBalance
	})).Return(series, nil).Once()

	reqBody := dto.BalanceSeriesRequest{
		AccountIDs:         []string{"3f1e9a52-9f3d-4a8e-bd6a-0a4f1f6f2f10"},
		TargetCurrencyCode: "USD",
		StartDate:          start,
		EndDate:            start,
	}
	w := suite.perform(http.MethodPost, "/api/v1/balances/series/holdings", reqBody)

	suite.Equal(http.StatusOK, w.Code)
	suite.mockSeries.AssertExpectations(suite.T())
}

// --- Run Suite ---
func TestExchangeRateHandler(t *testing.T) {
	suite.Run(t, new(ExchangeRateHandlerTestSuite))
}
