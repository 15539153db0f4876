package payment

import (
	"context"
	"testing"
	"time"

	"github.com/centavo/centavo/internal/utils"
	"github.com/centavo/centavo/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithUser(context.Background(), user.User{
	Id:       1,
	Username: "test_user",
	Settings: user.Settings{PrimaryCurrency: "USD"},
})

var paymentRepoStub = newStubPaymentRepository()

func setup(t *testing.T) (*ServiceImpl, func()) {
	service := NewService(paymentRepoStub)
	service.clock = &utils.MockClock{FixedNow: time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)}
	return service, func() {
		t.Log("Teardown after test")
		paymentRepoStub.Cleanup()
	}
}

func TestServiceImpl_Record(t *testing.T) {
	t.Run("should default PaidAt to now", func(t *testing.T) {
		service, teardown := setup(t)
		defer teardown()

		// given
		payment := Payment{
			SourceType: SourceBill,
			SourceId:   3,
			Amount:     decimal.NewFromInt(45),
			Currency:   "USD",
		}

		// when
		recorded, err := service.Record(ctx, payment)

		// then
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC), recorded.PaidAt)
		assert.NotZero(t, recorded.Id)
	})

	t.Run("should reject unknown source type", func(t *testing.T) {
		service, teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Record(ctx, Payment{SourceType: "subscription", SourceId: 1, Amount: decimal.NewFromInt(1)})

		// then
		assert.ErrorIs(t, err, ErrPaymentInvalid)
	})

	t.Run("should reject non-positive amount", func(t *testing.T) {
		service, teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Record(ctx, Payment{SourceType: SourceGoal, SourceId: 1, Amount: decimal.Zero})

		// then
		assert.ErrorIs(t, err, ErrPaymentInvalid)
	})
}

func TestServiceImpl_List(t *testing.T) {
	t.Run("should filter by source type and order newest first", func(t *testing.T) {
		service, teardown := setup(t)
		defer teardown()

		// given
		older := Payment{SourceType: SourceBill, SourceId: 3, Amount: decimal.NewFromInt(45), Currency: "USD",
			PaidAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)}
		newer := Payment{SourceType: SourceBill, SourceId: 3, Amount: decimal.NewFromInt(48), Currency: "USD",
			PaidAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
		other := Payment{SourceType: SourceLiability, SourceId: 9, Amount: decimal.NewFromInt(200), Currency: "USD",
			PaidAt: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)}
		for _, p := range []Payment{older, newer, other} {
			_, err := service.Record(ctx, p)
			require.NoError(t, err)
		}

		// when
		payments, err := service.List(ctx, Filter{SourceType: SourceBill})

		// then
		require.NoError(t, err)
		require.Len(t, payments, 2)
		assert.True(t, payments[0].PaidAt.After(payments[1].PaidAt))
	})

	t.Run("should reject unknown source type filter", func(t *testing.T) {
		service, teardown := setup(t)
		defer teardown()

		// when
		_, err := service.List(ctx, Filter{SourceType: "subscription"})

		// then
		assert.ErrorIs(t, err, ErrPaymentInvalid)
	})
}
