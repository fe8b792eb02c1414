package providers

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/longbinlai/maybe/internal/apperrors"
	"github.com/longbinlai/maybe/internal/core/domain"
	portssvc "github.com/longbinlai/maybe/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// The European Central Bank publishes reference rates for free, EUR-based.
// The daily feed covers the latest business day; the historical feed covers
// the last 90 days only.
const (
	ecbCurrentRatesURL    = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml"
	ecbHistoricalRatesURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-hist-90d.xml"

	ecbHistoryDays = 90
)

// ECBProvider fetches exchange rates from the European Central Bank
// reference-rate XML feeds. All rates are EUR-anchored: non-EUR pairs are
// derived as a cross rate through EUR.
type ECBProvider struct {
	client        *http.Client
	currentURL    string
	historicalURL string
}

// ECBOption is a functional option for configuring the provider
type ECBOption func(*ECBProvider)

// WithHTTPClient overrides the HTTP client, letting the surrounding
// infrastructure supply its own timeout policy.
func WithHTTPClient(client *http.Client) ECBOption {
	return func(p *ECBProvider) {
		p.client = client
	}
}

// WithFeedURLs overrides the feed endpoints (used in tests).
func WithFeedURLs(currentURL, historicalURL string) ECBOption {
	return func(p *ECBProvider) {
		p.currentURL = currentURL
		p.historicalURL = historicalURL
	}
}

// NewECBProvider creates a European Central Bank rate provider.
func NewECBProvider(options ...ECBOption) *ECBProvider {
	p := &ECBProvider{
		client:        &http.Client{Timeout: 30 * time.Second},
		currentURL:    ecbCurrentRatesURL,
		historicalURL: ecbHistoricalRatesURL,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

var _ portssvc.RateProvider = (*ECBProvider)(nil)

// Name identifies the provider.
func (p *ECBProvider) Name() string {
	return "european_central_bank"
}

// FetchRate retrieves the spot rate for the pair on the given date. The feed
// is EUR-based, so EUR->X is read directly, X->EUR is the reciprocal, and
// X->Y is the cross rate Y/X.
func (p *ECBProvider) FetchRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string, date time.Time) (*portssvc.RateData, error) {
	fromCode := strings.ToUpper(fromCurrencyCode)
	toCode := strings.ToUpper(toCurrencyCode)
	date = domain.NormalizeDate(date)

	rates, err := p.fetchRatesForDate(ctx, date)
	if err != nil {
		return nil, err
	}

	rate, err := deriveRate(rates, fromCode, toCode)
	if err != nil {
		return nil, err
	}

	return &portssvc.RateData{
		FromCurrencyCode: fromCode,
		ToCurrencyCode:   toCode,
		Date:             date,
		Rate:             rate,
	}, nil
}

func deriveRate(rates map[string]decimal.Decimal, fromCode, toCode string) (decimal.Decimal, error) {
	eurTo := func(code string) (decimal.Decimal, bool) {
		if code == "EUR" {
			return decimal.NewFromInt(1), true
		}
		rate, ok := rates[code]
		return rate, ok
	}

	fromRate, okFrom := eurTo(fromCode)
	toRate, okTo := eurTo(toCode)
	if !okFrom || !okTo {
		var missing []string
		if !okFrom {
			missing = append(missing, fromCode)
		}
		if !okTo {
			missing = append(missing, toCode)
		}
		return decimal.Decimal{}, fmt.Errorf("%w: currencies not supported by ECB: %s",
			apperrors.ErrProvider, strings.Join(missing, ", "))
	}
	if fromRate.IsZero() {
		return decimal.Decimal{}, fmt.Errorf("%w: ECB returned a zero rate for %s", apperrors.ErrProvider, fromCode)
	}

	// from->to = (from->EUR) * (EUR->to) = toRate / fromRate
	return toRate.Div(fromRate), nil
}

func (p *ECBProvider) fetchRatesForDate(ctx context.Context, date time.Time) (map[string]decimal.Decimal, error) {
	today := domain.NormalizeDate(time.Now())

	var feedURL string
	switch {
	case !date.Before(today.AddDate(0, 0, -1)):
		feedURL = p.currentURL
	case !date.Before(today.AddDate(0, 0, -ecbHistoryDays)):
		feedURL = p.historicalURL
	default:
		return nil, fmt.Errorf("%w: ECB free feed only covers the last %d days, requested %s",
			apperrors.ErrProvider, ecbHistoryDays, date.Format("2006-01-02"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to build ECB request: %v", apperrors.ErrProvider, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: ECB request failed: %v", apperrors.ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: ECB responded with status %d", apperrors.ErrProvider, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read ECB response: %v", apperrors.ErrProvider, err)
	}

	return parseECBFeed(body, date)
}

// ecbEnvelope mirrors the eurofxref XML feed: a dated Cube per business day,
// each holding one Cube per currency.
type ecbEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Days    []struct {
		Time  string `xml:"time,attr"`
		Rates []struct {
			Currency string `xml:"currency,attr"`
			Rate     string `xml:"rate,attr"`
		} `xml:"Cube"`
	} `xml:"Cube>Cube"`
}

// parseECBFeed extracts the rate table for the target date, falling back to
// the most recent published day when the exact date is absent (weekends and
// holidays have no ECB fixing).
func parseECBFeed(body []byte, date time.Time) (map[string]decimal.Decimal, error) {
	var envelope ecbEnvelope
	if err := xml.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: failed to parse ECB feed: %v", apperrors.ErrProvider, err)
	}
	if len(envelope.Days) == 0 {
		return nil, fmt.Errorf("%w: ECB feed contained no rate data", apperrors.ErrProvider)
	}

	target := date.Format("2006-01-02")
	day := envelope.Days[0]
	for _, d := range envelope.Days {
		if d.Time == target {
			day = d
			break
		}
	}

	rates := make(map[string]decimal.Decimal, len(day.Rates))
	for _, entry := range day.Rates {
		rate, err := decimal.NewFromString(entry.Rate)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed ECB rate %q for %s", apperrors.ErrProvider, entry.Rate, entry.Currency)
		}
		rates[strings.ToUpper(entry.Currency)] = rate
	}
	return rates, nil
}
