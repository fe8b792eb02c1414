package dto

import (
	"time"

	"github.com/longbinlai/maybe/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceSeriesRequest carries everything the series builder needs for one
// balance flavor over one period.
type BalanceSeriesRequest struct {
	AccountIDs         []string             `json:"accountIDs" binding:"required,min=1,dive,uuid"`
	TargetCurrencyCode string               `json:"targetCurrencyCode" binding:"required,len=3,uppercase"`
	StartDate          time.Time            `json:"startDate" binding:"required"`
	EndDate            time.Time            `json:"endDate" binding:"required"`
	Interval           string               `json:"interval" binding:"omitempty,oneof=day week month"`
	FavorableDirection string               `json:"favorableDirection" binding:"omitempty,oneof=up down"`
	Column             domain.BalanceColumn `json:"column" binding:"omitempty,oneof=balance cash_balance holdings_balance"`
}

// TrendResponse is the wire shape of a trend annotation.
type TrendResponse struct {
	Current        decimal.Decimal `json:"current"`
	Previous       decimal.Decimal `json:"previous"`
	Value          decimal.Decimal `json:"value"`
	Direction      string          `json:"direction"`
	Classification string          `json:"classification"`
}

// SeriesValueResponse is one dated point of a series on the wire.
type SeriesValueResponse struct {
	Date      string          `json:"date"`
	Value     decimal.Decimal `json:"value"`
	Formatted string          `json:"formatted"`
	Trend     TrendResponse   `json:"trend"`
}

// SeriesResponse is the wire shape of a full series.
type SeriesResponse struct {
	StartDate          string                `json:"startDate"`
	EndDate            string                `json:"endDate"`
	Interval           string                `json:"interval"`
	CurrencyCode       string                `json:"currencyCode"`
	FavorableDirection string                `json:"favorableDirection"`
	Values             []SeriesValueResponse `json:"values"`
}

const dateLayout = "2006-01-02"

// ToSeriesResponse converts a domain.Series to its wire shape.
func ToSeriesResponse(s *domain.Series) SeriesResponse {
	values := make([]SeriesValueResponse, len(s.Values))
	currencyCode := ""
	for i, v := range s.Values {
		currencyCode = v.Value.Currency().CurrencyCode
		values[i] = SeriesValueResponse{
			Date:      v.Date.Format(dateLayout),
			Value:     v.Value.Amount(),
			Formatted: v.Value.Format(),
			Trend: TrendResponse{
				Current:        v.Trend.Current.Amount(),
				Previous:       v.Trend.Previous.Amount(),
				Value:          v.Trend.Value().Amount(),
				Direction:      v.Trend.Direction(),
				Classification: string(v.Trend.Classification()),
			},
		}
	}
	return SeriesResponse{
		StartDate:          s.StartDate.Format(dateLayout),
		EndDate:            s.EndDate.Format(dateLayout),
		Interval:           string(s.Interval),
		CurrencyCode:       currencyCode,
		FavorableDirection: string(s.FavorableDirection),
		Values:             values,
	}
}
