package domain

import (
	"fmt"
	"time"

	"github.com/longbinlai/maybe/internal/apperrors"
)

// Interval is the granularity at which series dates are generated.
type Interval string

const (
	IntervalDay   Interval = "day"
	IntervalWeek  Interval = "week"
	IntervalMonth Interval = "month"
)

// ParseInterval validates and normalizes an interval string, defaulting to
// daily when empty.
func ParseInterval(s string) (Interval, error) {
	switch Interval(s) {
	case "":
		return IntervalDay, nil
	case IntervalDay, IntervalWeek, IntervalMonth:
		return Interval(s), nil
	}
	return "", fmt.Errorf("%w: unknown interval %q", apperrors.ErrValidation, s)
}

// next returns the date one interval step after d.
func (i Interval) next(d time.Time) time.Time {
	switch i {
	case IntervalWeek:
		return d.AddDate(0, 0, 7)
	case IntervalMonth:
		return addMonthClamped(d)
	default:
		return d.AddDate(0, 0, 1)
	}
}

// addMonthClamped advances d by one calendar month. When the source day does
// not exist in the target month (Jan 31 -> February) it clamps to the last
// day of that month instead of overflowing into the month after.
func addMonthClamped(d time.Time) time.Time {
	firstOfNext := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location()).AddDate(0, 1, 0)
	day := d.Day()
	if lastDay := firstOfNext.AddDate(0, 1, -1).Day(); day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), day, 0, 0, 0, 0, d.Location())
}

// Period is an inclusive date range with day granularity.
type Period struct {
	StartDate time.Time
	EndDate   time.Time
}

// NewPeriod normalizes both bounds to day granularity. The start must not be
// after the end.
func NewPeriod(start, end time.Time) (Period, error) {
	start = NormalizeDate(start)
	end = NormalizeDate(end)
	if start.After(end) {
		return Period{}, fmt.Errorf("%w: period start %s is after end %s",
			apperrors.ErrValidation, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	return Period{StartDate: start, EndDate: end}, nil
}

// LastNDays returns the period covering the n days up to today.
func LastNDays(n int) Period {
	end := NormalizeDate(time.Now())
	return Period{StartDate: end.AddDate(0, 0, -(n - 1)), EndDate: end}
}

// Dates generates the ordered set of dates from the period start to its end
// at the given interval. The end date is always included even when it does
// not fall on an interval boundary.
func (p Period) Dates(interval Interval) []time.Time {
	var dates []time.Time
	for d := p.StartDate; !d.After(p.EndDate); d = interval.next(d) {
		dates = append(dates, d)
	}
	if len(dates) == 0 || !dates[len(dates)-1].Equal(p.EndDate) {
		dates = append(dates, p.EndDate)
	}
	return dates
}

// FavorableDirection declares whether an increasing or decreasing value is
// the positive trend for the entity being tracked (assets vs liabilities).
type FavorableDirection string

const (
	DirectionUp   FavorableDirection = "up"
	DirectionDown FavorableDirection = "down"
)

// ParseFavorableDirection validates a direction string, defaulting to "up".
func ParseFavorableDirection(s string) (FavorableDirection, error) {
	switch FavorableDirection(s) {
	case "":
		return DirectionUp, nil
	case DirectionUp, DirectionDown:
		return FavorableDirection(s), nil
	}
	return "", fmt.Errorf("%w: unknown favorable direction %q", apperrors.ErrValidation, s)
}

// SignMultiplier inverts aggregated values for liability-dominant views so
// that a shrinking liability renders as a rising favorable number.
func (d FavorableDirection) SignMultiplier() int {
	if d == DirectionDown {
		return -1
	}
	return 1
}

// TrendClassification says whether a movement is good, bad, or flat for the
// chosen favorable direction.
type TrendClassification string

const (
	TrendFavorable   TrendClassification = "favorable"
	TrendUnfavorable TrendClassification = "unfavorable"
	TrendNeutral     TrendClassification = "neutral"
)

// Trend compares a value against its period-start equivalent.
type Trend struct {
	Current            Money
	Previous           Money
	FavorableDirection FavorableDirection
}

// NewTrend builds a Trend for a current/previous pair.
func NewTrend(current, previous Money, direction FavorableDirection) Trend {
	return Trend{Current: current, Previous: previous, FavorableDirection: direction}
}

// Value returns the signed delta between current and previous. The two
// values always share a currency within a series, so the subtraction cannot
// fail; a mismatch would be a programming error.
func (t Trend) Value() Money {
	delta, err := t.Current.Sub(t.Previous)
	if err != nil {
		return ZeroMoney(t.Current.Currency())
	}
	return delta
}

// Direction reports whether the value moved up, down, or stayed flat.
func (t Trend) Direction() string {
	delta := t.Value()
	switch {
	case delta.Amount().IsPositive():
		return "up"
	case delta.Amount().IsNegative():
		return "down"
	default:
		return "flat"
	}
}

// Classification derives favorable/unfavorable from the sign of the delta
// and the favorable direction.
func (t Trend) Classification() TrendClassification {
	delta := t.Value()
	if delta.IsZero() {
		return TrendNeutral
	}
	rising := delta.Amount().IsPositive()
	if (rising && t.FavorableDirection == DirectionUp) || (!rising && t.FavorableDirection == DirectionDown) {
		return TrendFavorable
	}
	return TrendUnfavorable
}

// SeriesValue is one dated point of a series: the converted, sign-adjusted
// aggregate for that date plus its trend against the period-start value.
type SeriesValue struct {
	Date  time.Time
	Value Money
	Trend Trend
}

// Series is a date-indexed sequence of aggregated balance values over a
// period, in chronological order.
type Series struct {
	StartDate          time.Time
	EndDate            time.Time
	Interval           Interval
	FavorableDirection FavorableDirection
	Values             []SeriesValue
}
