package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/longbinlai/maybe/internal/apperrors"
	"github.com/longbinlai/maybe/internal/core/domain"
	portssvc "github.com/longbinlai/maybe/internal/core/ports/services"
	"github.com/longbinlai/maybe/internal/dto"
	"github.com/longbinlai/maybe/internal/middleware"
	"github.com/longbinlai/maybe/pkg/config"
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	rateService portssvc.ExchangeRateSvcFacade
	cfg         *config.Config
}

func newExchangeRateHandler(rs portssvc.ExchangeRateSvcFacade, cfg *config.Config) *exchangeRateHandler {
	return &exchangeRateHandler{rateService: rs, cfg: cfg}
}

// registerExchangeRateRoutes registers routes related to exchange rates.
func registerExchangeRateRoutes(rg *gin.RouterGroup, cfg *config.Config, rateService portssvc.ExchangeRateSvcFacade, syncLimit gin.HandlerFunc) {
	h := newExchangeRateHandler(rateService, cfg)

	rates := rg.Group("/exchange-rates")
	{
		rates.POST("", h.createExchangeRate)
		rates.GET("", h.listExchangeRates)
		rates.GET("/latest", h.getLatestRate)
		rates.GET("/lookup", h.lookupRate)
		rates.GET("/:rateID", h.getExchangeRateByID)
		rates.DELETE("/:rateID", h.deleteExchangeRate)
		rates.POST("/sync", syncLimit, h.syncRates)
	}
}

func (h *exchangeRateHandler) createExchangeRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateExchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateExchangeRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	rate, err := h.rateService.CreateExchangeRate(c.Request.Context(), req, operatorID(c))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			// Referenced currency does not exist.
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to create exchange rate", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create exchange rate"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToExchangeRateResponse(rate))
}

func (h *exchangeRateHandler) getExchangeRateByID(c *gin.Context) {
	rateID := c.Param("rateID")

	rate, err := h.rateService.GetExchangeRateByID(c.Request.Context(), rateID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Exchange rate not found"})
			return
		}
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to get exchange rate",
			slog.String("rateID", rateID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get exchange rate"})
		return
	}

	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(rate))
}

func (h *exchangeRateHandler) getLatestRate(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if len(from) != 3 || len(to) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query params 'from' and 'to' must be 3-letter currency codes"})
		return
	}

	rate, err := h.rateService.GetLatestRate(c.Request.Context(), from, to)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No rate known for pair"})
			return
		}
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to get latest rate",
			slog.String("from", from), slog.String("to", to), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get latest rate"})
		return
	}

	c.JSON(http.StatusOK, dto.ToExchangeRateResponse(rate))
}

// lookupRate finds or fetches the rate for an exact (from, to, date) key,
// consulting the provider when storage has no row for that date.
func (h *exchangeRateHandler) lookupRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	from := c.Query("from")
	to := c.Query("to")
	if len(from) != 3 || len(to) != 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query params 'from' and 'to' must be 3-letter currency codes"})
		return
	}

	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Query param 'date' must be formatted YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	rate, stored, err := h.rateService.FindOrFetchRate(c.Request.Context(), from, to, domain.NormalizeDate(date))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "No rate available for pair and date"})
		case errors.Is(err, apperrors.ErrProvider):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Rate provider unavailable"})
		default:
			logger.Error("Failed to look up rate",
				slog.String("from", from), slog.String("to", to), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up rate"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rate":   dto.ToExchangeRateResponse(rate),
		"stored": stored,
	})
}

func (h *exchangeRateHandler) listExchangeRates(c *gin.Context) {
	var from, to *string
	if v := c.Query("from"); v != "" {
		from = &v
	}
	if v := c.Query("to"); v != "" {
		to = &v
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "50"))

	rates, total, err := h.rateService.ListExchangeRates(c.Request.Context(), from, to, page, pageSize)
	if err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to list exchange rates", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list exchange rates"})
		return
	}

	c.JSON(http.StatusOK, dto.ListExchangeRatesResponse{
		Rates:    dto.ToListExchangeRateResponse(rates),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *exchangeRateHandler) deleteExchangeRate(c *gin.Context) {
	rateID := c.Param("rateID")

	if err := h.rateService.DeleteExchangeRate(c.Request.Context(), rateID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Exchange rate not found"})
			return
		}
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to delete exchange rate",
			slog.String("rateID", rateID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete exchange rate"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *exchangeRateHandler) syncRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SyncRatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SyncRates", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	currencies := req.Currencies
	if len(currencies) == 0 {
		currencies = h.cfg.SupportedCurrencies
	}

	result, err := h.rateService.SyncRates(c.Request.Context(), currencies, domain.NormalizeDate(time.Now().UTC()))
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to sync rates", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync rates"})
		return
	}

	c.JSON(http.StatusOK, result)
}
