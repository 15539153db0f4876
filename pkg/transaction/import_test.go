package transaction

import (
	"strings"
	"testing"

	"github.com/centavo/centavo/internal/event_bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceImpl_ImportCSV(t *testing.T) {
	t.Run("should import rows and skip malformed ones", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		// given
		csv := strings.Join([]string{
			"date,amount,description,merchant",
			"2025-06-01,-12.50,Coffee beans,Roastery",
			"2025-06-02,\"1,000.00\",Salary,",
			"not-a-date,5,Broken,",
			"2025-06-03,abc,Broken too,",
			"2025-06-04,-3.99,,NoDescription",
		}, "\n")

		// when
		result, err := service.ImportCSV(ctx, 1, strings.NewReader(csv))

		// then
		require.NoError(t, err)
		assert.Equal(t, 2, result.Imported)
		assert.Equal(t, 3, result.Skipped)
		assert.Len(t, result.Errors, 3)
		assert.NotEmpty(t, result.BatchId)

		imported, err := service.List(ctx, Filter{})
		require.NoError(t, err)
		require.Len(t, imported, 2)
		for _, transaction := range imported {
			assert.Equal(t, result.BatchId, transaction.ImportBatchId)
			assert.Equal(t, "USD", transaction.Currency)
		}

		// negative amount became an expense, positive an income
		salary := imported[0]
		coffee := imported[1]
		assert.Equal(t, TypeIncome, salary.Type)
		assert.Equal(t, "1000", salary.Amount.String())
		assert.Equal(t, TypeExpense, coffee.Type)
		assert.Equal(t, "12.5", coffee.Amount.String())
		assert.Equal(t, "Roastery", coffee.Merchant)
	})

	t.Run("should respect explicit type and status columns", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		// given
		csv := strings.Join([]string{
			"date,amount,description,type,status",
			"2025-06-01,25,Allowance,income,pending",
			"2025-06-02,40,Dinner,expense,",
			"2025-06-03,10,Mystery,teleport,",
		}, "\n")

		// when
		result, err := service.ImportCSV(ctx, 1, strings.NewReader(csv))

		// then
		require.NoError(t, err)
		assert.Equal(t, 2, result.Imported)
		assert.Equal(t, 1, result.Skipped)

		imported, err := service.List(ctx, Filter{})
		require.NoError(t, err)
		require.Len(t, imported, 2)
		dinner := imported[0]
		allowance := imported[1]
		assert.Equal(t, TypeExpense, dinner.Type)
		assert.Equal(t, StatusCleared, dinner.Status)
		assert.Equal(t, TypeIncome, allowance.Type)
		assert.Equal(t, StatusPending, allowance.Status)
	})

	t.Run("should fail when a required column is missing", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		// when
		_, err := service.ImportCSV(ctx, 1, strings.NewReader("amount,description\n5,No dates here"))

		// then
		assert.ErrorIs(t, err, ErrTransactionInvalid)
	})

	t.Run("should fail for an unknown account", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		// when
		_, err := service.ImportCSV(ctx, 99, strings.NewReader("date,amount,description\n2025-06-01,5,Ghost"))

		// then
		assert.ErrorIs(t, err, ErrTransactionInvalid)
	})

	t.Run("should publish a created event per imported row", func(t *testing.T) {
		service, bus, teardown := setup(t)
		defer teardown()

		// given
		count := 0
		event_bus.SubscribeTyped[event_bus.TransactionCreated](bus, event_bus.TransactionCreatedEvent,
			func(e event_bus.EventT[event_bus.TransactionCreated]) error {
				count++
				return nil
			})
		csv := "date,amount,description\n2025-06-01,-5,One\n2025-06-02,-6,Two"

		// when
		result, err := service.ImportCSV(ctx, 1, strings.NewReader(csv))

		// then
		require.NoError(t, err)
		assert.Equal(t, 2, result.Imported)
		assert.Equal(t, 2, count)
	})
}
