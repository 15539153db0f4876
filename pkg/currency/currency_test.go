package currency

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		code     string
		expected string
	}{
		{name: "symbol before with comma grouping", amount: 1234.5, code: "USD", expected: "$1,234.50"},
		{name: "symbol after with dot grouping and comma decimal", amount: 1234.5, code: "EUR", expected: "1.234,50 €"},
		{name: "zero decimal currency prints no decimal separator", amount: 1234.5, code: "JPY", expected: "¥1,235"},
		{name: "negative sign prefixes the composed string", amount: -1234.5, code: "USD", expected: "-$1,234.50"},
		{name: "negative symbol-after currency", amount: -1234.5, code: "EUR", expected: "-1.234,50 €"},
		{name: "unrecognized code falls back to default symbol", amount: 1234.5, code: "ZZZ", expected: "$1,234.50"},
		{name: "grouping applies to the integer part only", amount: 1234567.891, code: "USD", expected: "$1,234,567.89"},
		{name: "no grouping below one thousand", amount: 999.99, code: "USD", expected: "$999.99"},
		{name: "zero amount", amount: 0, code: "USD", expected: "$0.00"},
		{name: "space grouping", amount: 1234.56, code: "PLN", expected: "1 234,56 zł"},
		{name: "fraction padding", amount: 12.3, code: "GBP", expected: "£12.30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatFloat(tt.amount, tt.code))
		})
	}
}

func TestFormatFloat_coercesNonFiniteToZero(t *testing.T) {
	assert.Equal(t, "$0.00", FormatFloat(math.NaN(), "USD"))
	assert.Equal(t, "$0.00", FormatFloat(math.Inf(1), "USD"))
	assert.Equal(t, "$0.00", FormatFloat(math.Inf(-1), "USD"))
}

func TestFormatWith_largeZeroDecimalAmount(t *testing.T) {
	amount := decimal.NewFromInt(98765432)
	assert.Equal(t, "₩98,765,432", Format(amount, "KRW"))
}

func TestLookup(t *testing.T) {
	t.Run("curated code", func(t *testing.T) {
		c := Lookup("EUR")

		assert.Equal(t, "EUR", c.Code)
		assert.Equal(t, "€", c.Symbol)
		assert.False(t, c.SymbolFirst)
		assert.Equal(t, ".", c.ThousandSeparator)
		assert.Equal(t, ",", c.DecimalSeparator)
	})

	t.Run("lowercase and padding are normalized", func(t *testing.T) {
		c := Lookup(" usd ")

		assert.Equal(t, "USD", c.Code)
	})

	t.Run("ISO registry covers codes outside the curated table", func(t *testing.T) {
		c := Lookup("CZK")

		assert.Equal(t, "CZK", c.Code)
		assert.Equal(t, 2, c.DecimalDigits)
		assert.NotEmpty(t, c.Symbol)
	})

	t.Run("unknown code falls back to default entry", func(t *testing.T) {
		c := Lookup("ZZZ")

		assert.Equal(t, DefaultCode, c.Code)
		assert.Equal(t, "$", c.Symbol)
	})

	t.Run("empty code falls back to default entry", func(t *testing.T) {
		c := Lookup("")

		assert.Equal(t, DefaultCode, c.Code)
	})
}

func TestIsKnown(t *testing.T) {
	assert.True(t, IsKnown("USD"))
	assert.True(t, IsKnown("czk"))
	assert.False(t, IsKnown("ZZZ"))
	assert.False(t, IsKnown(""))
}

func TestSupported_sortedByCode(t *testing.T) {
	supported := Supported()

	assert.NotEmpty(t, supported)
	for i := 1; i < len(supported); i++ {
		assert.Less(t, supported[i-1].Code, supported[i].Code)
	}
}
