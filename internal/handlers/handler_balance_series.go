package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/longbinlai/maybe/internal/apperrors"
	"github.com/longbinlai/maybe/internal/core/domain"
	portssvc "github.com/longbinlai/maybe/internal/core/ports/services"
	"github.com/longbinlai/maybe/internal/dto"
	"github.com/longbinlai/maybe/internal/middleware"
)

// balanceSeriesHandler handles HTTP requests for balance time series.
type balanceSeriesHandler struct {
	seriesService portssvc.BalanceSeriesSvc
}

func newBalanceSeriesHandler(ss portssvc.BalanceSeriesSvc) *balanceSeriesHandler {
	return &balanceSeriesHandler{seriesService: ss}
}

// registerBalanceSeriesRoutes registers routes for balance series.
func registerBalanceSeriesRoutes(rg *gin.RouterGroup, seriesService portssvc.BalanceSeriesSvc) {
	h := newBalanceSeriesHandler(seriesService)

	balances := rg.Group("/balances")
	{
		balances.POST("/series", h.buildSeries)
		balances.POST("/series/cash", h.buildCashSeries)
		balances.POST("/series/holdings", h.buildHoldingsSeries)
	}
}

func (h *balanceSeriesHandler) buildSeries(c *gin.Context) {
	h.buildColumnSeries(c, domain.ColumnBalance)
}

func (h *balanceSeriesHandler) buildCashSeries(c *gin.Context) {
	h.buildColumnSeries(c, domain.ColumnCashBalance)
}

func (h *balanceSeriesHandler) buildHoldingsSeries(c *gin.Context) {
	h.buildColumnSeries(c, domain.ColumnHoldingsBalance)
}

func (h *balanceSeriesHandler) buildColumnSeries(c *gin.Context, column domain.BalanceColumn) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.BalanceSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for balance series", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	req.Column = column

	series, err := h.seriesService.BuildSeries(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, apperrors.ErrConversion):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to build balance series", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build balance series"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToSeriesResponse(series))
}
