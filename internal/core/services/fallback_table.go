package services

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// anchorCurrency is the fixed bridge currency for two-leg fallback lookups.
const anchorCurrency = "USD"

// FallbackTable is the operator-curated table of approximate exchange rates,
// consulted only when no stored or provider rate is usable. It is loaded
// once at startup and is immutable afterwards, so concurrent readers need no
// synchronization. Keys are uppercase ISO codes, nested from -> to -> rate.
type FallbackTable struct {
	rates map[string]map[string]decimal.Decimal
}

// NewFallbackTable normalizes a raw from -> to -> rate mapping: codes are
// uppercased and rates parsed to exact decimals. Malformed or non-positive
// entries are dropped with a warning so a bad config line degrades to "no
// fallback available" instead of crashing.
func NewFallbackTable(raw map[string]map[string]string, logger *slog.Logger) *FallbackTable {
	if logger == nil {
		logger = slog.Default()
	}
	rates := make(map[string]map[string]decimal.Decimal, len(raw))
	for from, targets := range raw {
		fromCode := strings.ToUpper(strings.TrimSpace(from))
		if len(fromCode) != 3 {
			logger.Warn("Skipping fallback table entry with bad currency code", slog.String("from", from))
			continue
		}
		for to, rateStr := range targets {
			toCode := strings.ToUpper(strings.TrimSpace(to))
			if len(toCode) != 3 {
				logger.Warn("Skipping fallback table entry with bad currency code", slog.String("from", fromCode), slog.String("to", to))
				continue
			}
			rate, err := decimal.NewFromString(strings.TrimSpace(rateStr))
			if err != nil || !rate.IsPositive() {
				logger.Warn("Skipping fallback table entry with bad rate",
					slog.String("from", fromCode), slog.String("to", toCode), slog.String("rate", rateStr))
				continue
			}
			if rates[fromCode] == nil {
				rates[fromCode] = make(map[string]decimal.Decimal)
			}
			rates[fromCode][toCode] = rate
		}
	}
	return &FallbackTable{rates: rates}
}

// LoadFallbackTable reads the curated fallback rates from a YAML resource
// keyed by uppercase ISO codes. A missing file degrades to an empty table.
func LoadFallbackTable(path string, logger *slog.Logger) *FallbackTable {
	if logger == nil {
		logger = slog.Default()
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		logger.Warn("Fallback rate table not loaded, conversions will rely on stored and provider rates only",
			slog.String("path", path), slog.String("error", err.Error()))
		return &FallbackTable{rates: map[string]map[string]decimal.Decimal{}}
	}

	raw := make(map[string]map[string]string)
	for from := range v.AllSettings() {
		raw[from] = v.GetStringMapString(from)
	}
	return NewFallbackTable(raw, logger)
}

// Direct returns the table entry for the exact from -> to pair.
func (t *FallbackTable) Direct(fromCode, toCode string) (decimal.Decimal, bool) {
	rate, ok := t.rates[fromCode][toCode]
	return rate, ok
}

// Lookup resolves an approximate rate for the pair, trying the direct entry,
// then the reciprocal of the reverse entry, then a two-leg bridge through
// the USD anchor. Same-currency pairs are the identity rate.
func (t *FallbackTable) Lookup(fromCode, toCode string) (decimal.Decimal, bool) {
	fromCode = strings.ToUpper(fromCode)
	toCode = strings.ToUpper(toCode)

	if fromCode == toCode {
		return decimal.NewFromInt(1), true
	}

	if rate, ok := t.directOrReciprocal(fromCode, toCode); ok {
		return rate, true
	}

	// Two-leg bridge through the anchor. Each leg resolves direct or
	// reciprocal, so USD->CNY plus USD->EUR is enough to bridge CNY->EUR.
	if fromCode != anchorCurrency && toCode != anchorCurrency {
		leg1, ok1 := t.directOrReciprocal(fromCode, anchorCurrency)
		leg2, ok2 := t.directOrReciprocal(anchorCurrency, toCode)
		if ok1 && ok2 {
			return leg1.Mul(leg2), true
		}
	}

	return decimal.Decimal{}, false
}

func (t *FallbackTable) directOrReciprocal(fromCode, toCode string) (decimal.Decimal, bool) {
	if rate, ok := t.Direct(fromCode, toCode); ok {
		return rate, true
	}
	if inverse, ok := t.Direct(toCode, fromCode); ok && !inverse.IsZero() {
		return decimal.NewFromInt(1).Div(inverse), true
	}
	return decimal.Decimal{}, false
}

// Len reports the number of source currencies in the table.
func (t *FallbackTable) Len() int {
	return len(t.rates)
}
