package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRateSource struct {
	rates map[string]decimal.Decimal
}

func (s *stubRateSource) Rate(from string, to string) (decimal.Decimal, bool) {
	rate, ok := s.rates[from+"/"+to]
	return rate, ok
}

func TestConvert_identity(t *testing.T) {
	converter := NewConverter(nil)
	amount := decimal.NewFromFloat(100.25)

	converted, err := converter.Convert(amount, "USD", "USD")

	require.NoError(t, err)
	assert.True(t, amount.Equal(converted))
}

func TestConvert_fallbackMatrix(t *testing.T) {
	converter := NewConverter(nil)

	converted, err := converter.Convert(decimal.NewFromInt(100), "USD", "EUR")

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(92).Equal(converted), "got %s", converted)
}

func TestConvert_fallbackCrossRate(t *testing.T) {
	// EUR -> GBP is derived through USD: 100 * (0.79 / 0.92)
	converter := NewConverter(nil)

	converted, err := converter.Convert(decimal.NewFromInt(100), "EUR", "GBP")

	require.NoError(t, err)
	assert.Equal(t, "85.87", converted.Round(2).String())
}

func TestConvert_liveRateTakesPrecedence(t *testing.T) {
	source := &stubRateSource{rates: map[string]decimal.Decimal{
		"USD/EUR": decimal.NewFromFloat(0.5),
	}}
	converter := NewConverter(source)

	converted, err := converter.Convert(decimal.NewFromInt(100), "USD", "EUR")

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(converted), "got %s", converted)
}

func TestConvert_liveMissFallsBackToMatrix(t *testing.T) {
	source := &stubRateSource{rates: map[string]decimal.Decimal{}}
	converter := NewConverter(source)

	converted, err := converter.Convert(decimal.NewFromInt(100), "USD", "EUR")

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(92).Equal(converted), "got %s", converted)
}

func TestConvert_unknownPairReturnsSentinel(t *testing.T) {
	converter := NewConverter(nil)

	converted, err := converter.Convert(decimal.NewFromInt(100), "USD", "ZZZ")

	assert.ErrorIs(t, err, ErrRateUnavailable)
	assert.True(t, converted.IsZero())
}

func TestConvert_missingCodesShortCircuitToIdentity(t *testing.T) {
	converter := NewConverter(nil)
	amount := decimal.NewFromInt(42)

	converted, err := converter.Convert(amount, "", "EUR")

	require.NoError(t, err)
	assert.True(t, amount.Equal(converted))
}
