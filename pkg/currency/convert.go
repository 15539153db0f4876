package currency

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrRateUnavailable is returned when neither the live rate source nor the
// static fallback matrix knows a rate for the requested pair. Callers must
// surface this state instead of rendering a bogus amount.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// RateSource supplies live exchange rates. Implementations return ok=false
// when they have no rate for the pair, which makes the converter fall back to
// the static matrix.
type RateSource interface {
	Rate(from string, to string) (decimal.Decimal, bool)
}

// fallbackRates holds approximate USD-relative rates used when no live rates
// are available (offline, or the provider has not been fetched yet). The
// values are rough placeholders, not a production rate source.
var fallbackRates = map[string]decimal.Decimal{
	"USD": decimal.NewFromInt(1),
	"EUR": decimal.NewFromFloat(0.92),
	"GBP": decimal.NewFromFloat(0.79),
	"JPY": decimal.NewFromFloat(149.0),
	"PLN": decimal.NewFromFloat(3.95),
	"INR": decimal.NewFromFloat(84.0),
	"CAD": decimal.NewFromFloat(1.36),
	"AUD": decimal.NewFromFloat(1.52),
	"CHF": decimal.NewFromFloat(0.88),
	"SEK": decimal.NewFromFloat(10.5),
	"NOK": decimal.NewFromFloat(10.8),
	"DKK": decimal.NewFromFloat(6.87),
	"BRL": decimal.NewFromFloat(5.45),
	"MXN": decimal.NewFromFloat(18.2),
	"CNY": decimal.NewFromFloat(7.12),
	"KRW": decimal.NewFromFloat(1340.0),
	"ZAR": decimal.NewFromFloat(18.1),
	"NGN": decimal.NewFromFloat(1550.0),
}

// Converter converts amounts between currencies. It prefers the live rate
// source and falls back to the static matrix, so conversion keeps working
// offline for the curated currencies.
type Converter struct {
	live RateSource
}

// NewConverter creates a Converter. A nil source means fallback rates only.
func NewConverter(live RateSource) *Converter {
	return &Converter{live: live}
}

// Convert returns the amount expressed in the target currency. Identity
// conversions short-circuit without touching any rate source.
func (c *Converter) Convert(amount decimal.Decimal, from string, to string) (decimal.Decimal, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == to || from == "" || to == "" {
		return amount, nil
	}

	if c.live != nil {
		if rate, ok := c.live.Rate(from, to); ok {
			return amount.Mul(rate), nil
		}
	}

	rate, ok := fallbackRate(from, to)
	if !ok {
		return decimal.Zero, ErrRateUnavailable
	}
	return amount.Mul(rate), nil
}

// fallbackRate derives the cross rate from the USD-relative matrix.
func fallbackRate(from string, to string) (decimal.Decimal, bool) {
	fromUsd, okFrom := fallbackRates[from]
	toUsd, okTo := fallbackRates[to]
	if !okFrom || !okTo || fromUsd.IsZero() {
		return decimal.Zero, false
	}
	return toUsd.Div(fromUsd), true
}
