package exchange

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/centavo/centavo/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	snapshot Snapshot
	err      error
	calls    int
}

func (c *stubClient) FetchRates(ctx context.Context) (Snapshot, error) {
	c.calls++
	if c.err != nil {
		return Snapshot{}, c.err
	}
	return c.snapshot, nil
}

func usdSnapshot() Snapshot {
	return Snapshot{
		Base: "USD",
		Rates: map[string]decimal.Decimal{
			"USD": decimal.NewFromInt(1),
			"EUR": decimal.NewFromFloat(0.9),
			"JPY": decimal.NewFromInt(150),
		},
	}
}

func TestService_Refresh(t *testing.T) {
	t.Run("should start idle and become ready after a successful fetch", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
		service := NewService(&stubClient{snapshot: usdSnapshot()}, clock, time.Hour)

		_, status := service.Current()
		assert.Equal(t, StatusIdle, status)

		// when
		err := service.Refresh(context.Background())

		// then
		require.NoError(t, err)
		snapshot, status := service.Current()
		assert.Equal(t, StatusReady, status)
		assert.Equal(t, "USD", snapshot.Base)
		assert.Equal(t, clock.FixedNow, snapshot.FetchedAt)
		assert.True(t, service.Online())
	})

	t.Run("should report error status when the first fetch fails", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: time.Now()}
		service := NewService(&stubClient{err: errors.New("provider down")}, clock, time.Hour)

		// when
		err := service.Refresh(context.Background())

		// then
		assert.Error(t, err)
		_, status := service.Current()
		assert.Equal(t, StatusError, status)
		assert.False(t, service.Online())
		assert.Error(t, service.LastError())

		_, ok := service.Rate("USD", "EUR")
		assert.False(t, ok)
	})

	t.Run("should keep serving the previous snapshot as stale when a later fetch fails", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
		client := &stubClient{snapshot: usdSnapshot()}
		service := NewService(client, clock, time.Hour)
		require.NoError(t, service.Refresh(context.Background()))

		// when
		client.err = errors.New("provider down")
		err := service.Refresh(context.Background())

		// then
		assert.Error(t, err)
		snapshot, status := service.Current()
		assert.Equal(t, StatusStale, status)
		assert.False(t, service.Online())
		assert.NotEmpty(t, snapshot.Rates)

		rate, ok := service.Rate("USD", "EUR")
		require.True(t, ok)
		assert.Equal(t, "0.9", rate.String())
	})

	t.Run("should flag the snapshot as stale after the freshness window", func(t *testing.T) {
		clock := &utils.MockClock{FixedNow: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
		service := NewService(&stubClient{snapshot: usdSnapshot()}, clock, time.Hour)
		require.NoError(t, service.Refresh(context.Background()))

		// when
		clock.SetNow(clock.FixedNow.Add(25 * time.Hour))

		// then
		_, status := service.Current()
		assert.Equal(t, StatusStale, status)
		assert.False(t, service.Online())

		// stale rates are still served
		rate, ok := service.Rate("USD", "JPY")
		require.True(t, ok)
		assert.Equal(t, "150", rate.String())
	})
}

func TestService_Rate(t *testing.T) {
	clock := &utils.MockClock{FixedNow: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	service := NewService(&stubClient{snapshot: usdSnapshot()}, clock, time.Hour)
	require.NoError(t, service.Refresh(context.Background()))

	t.Run("should derive cross rates through the base", func(t *testing.T) {
		rate, ok := service.Rate("EUR", "JPY")

		require.True(t, ok)
		// 150 / 0.9
		assert.Equal(t, "166.67", rate.Round(2).String())
	})

	t.Run("should treat the base currency as rate one", func(t *testing.T) {
		rate, ok := service.Rate("USD", "EUR")

		require.True(t, ok)
		assert.Equal(t, "0.9", rate.String())
	})

	t.Run("should return not-ok for unknown codes", func(t *testing.T) {
		_, ok := service.Rate("USD", "ZZZ")

		assert.False(t, ok)
	})
}
