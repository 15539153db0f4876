package bill

import (
	"testing"
	"time"

	"github.com/centavo/centavo/pkg/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createBill(t *testing.T, service *ServiceImpl, bill Bill) Bill {
	created, err := service.Create(ctx, bill)
	require.NoError(t, err)
	return created
}

func TestServiceImpl_Insights(t *testing.T) {
	t.Run("should flag near-identical bills as possible duplicates", func(t *testing.T) {
		service, _, _, teardown := setup(t)
		defer teardown()

		// given
		first := createBill(t, service, Bill{Name: "ACME Power", Amount: decimal.NewFromInt(100), DueDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)})
		second := createBill(t, service, Bill{Name: "Acme Power Co", Amount: decimal.NewFromInt(110), DueDate: time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)})
		createBill(t, service, Bill{Name: "Rent", Amount: decimal.NewFromInt(1200), DueDate: time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC)})

		// when
		insights, err := service.Insights(ctx)

		// then
		require.NoError(t, err)
		require.Len(t, insights, 1)
		assert.Equal(t, InsightDuplicate, insights[0].Kind)
		assert.ElementsMatch(t, []int{first.Id, second.Id}, insights[0].BillIds)
	})

	t.Run("should not flag similar names with very different amounts", func(t *testing.T) {
		service, _, _, teardown := setup(t)
		defer teardown()

		// given
		createBill(t, service, Bill{Name: "ACME Power", Amount: decimal.NewFromInt(100), DueDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)})
		createBill(t, service, Bill{Name: "Acme Power Co", Amount: decimal.NewFromInt(400), DueDate: time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)})

		// when
		insights, err := service.Insights(ctx)

		// then
		require.NoError(t, err)
		assert.Empty(t, insights)
	})

	t.Run("should flag due dates piling up within five days", func(t *testing.T) {
		service, _, _, teardown := setup(t)
		defer teardown()

		// given
		rent := createBill(t, service, Bill{Name: "Rent", Amount: decimal.NewFromInt(1200), DueDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)})
		internet := createBill(t, service, Bill{Name: "Internet", Amount: decimal.NewFromInt(60), DueDate: time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC)})
		water := createBill(t, service, Bill{Name: "Water Utility", Amount: decimal.NewFromInt(30), DueDate: time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC)})

		// when
		insights, err := service.Insights(ctx)

		// then
		require.NoError(t, err)
		require.Len(t, insights, 1)
		assert.Equal(t, InsightCluster, insights[0].Kind)
		assert.ElementsMatch(t, []int{rent.Id, internet.Id, water.Id}, insights[0].BillIds)
	})

	t.Run("should not flag due dates spread through the month", func(t *testing.T) {
		service, _, _, teardown := setup(t)
		defer teardown()

		// given
		createBill(t, service, Bill{Name: "Rent", Amount: decimal.NewFromInt(1200), DueDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)})
		createBill(t, service, Bill{Name: "Internet", Amount: decimal.NewFromInt(60), DueDate: time.Date(2025, 7, 12, 0, 0, 0, 0, time.UTC)})
		createBill(t, service, Bill{Name: "Water Utility", Amount: decimal.NewFromInt(30), DueDate: time.Date(2025, 7, 24, 0, 0, 0, 0, time.UTC)})

		// when
		insights, err := service.Insights(ctx)

		// then
		require.NoError(t, err)
		assert.Empty(t, insights)
	})

	t.Run("should flag a bill priced above its recent payment average", func(t *testing.T) {
		service, payments, _, teardown := setup(t)
		defer teardown()

		// given
		streaming := createBill(t, service, Bill{Name: "Streaming", Amount: decimal.NewFromInt(60), DueDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), Recurrence: RecurrenceMonthly})
		for i := 0; i < 3; i++ {
			_, err := payments.Record(ctx, payment.Payment{
				SourceType: payment.SourceBill,
				SourceId:   streaming.Id,
				Amount:     decimal.NewFromInt(50),
				Currency:   "USD",
			})
			require.NoError(t, err)
		}

		// when
		insights, err := service.Insights(ctx)

		// then
		require.NoError(t, err)
		require.Len(t, insights, 1)
		assert.Equal(t, InsightCreep, insights[0].Kind)
		assert.Equal(t, []int{streaming.Id}, insights[0].BillIds)
		assert.Contains(t, insights[0].Message, "Streaming")
	})

	t.Run("should need three payments before calling creep", func(t *testing.T) {
		service, payments, _, teardown := setup(t)
		defer teardown()

		// given
		streaming := createBill(t, service, Bill{Name: "Streaming", Amount: decimal.NewFromInt(60), DueDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), Recurrence: RecurrenceMonthly})
		for i := 0; i < 2; i++ {
			_, err := payments.Record(ctx, payment.Payment{
				SourceType: payment.SourceBill,
				SourceId:   streaming.Id,
				Amount:     decimal.NewFromInt(50),
				Currency:   "USD",
			})
			require.NoError(t, err)
		}

		// when
		insights, err := service.Insights(ctx)

		// then
		require.NoError(t, err)
		assert.Empty(t, insights)
	})
}
