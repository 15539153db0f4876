package budget

import (
	"context"
	"testing"
	"time"

	"github.com/centavo/centavo/internal/utils"
	"github.com/centavo/centavo/pkg/currency"
	"github.com/centavo/centavo/pkg/transaction"
	"github.com/centavo/centavo/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithUser(context.Background(), user.User{
	Id:       1,
	Username: "test_user",
	Settings: user.Settings{PrimaryCurrency: "USD", WeekFirstDay: time.Monday},
})

// stubTransactionLister serves canned transactions, applying the same filter
// semantics the repository would.
type stubTransactionLister struct {
	transactions []transaction.Transaction
	lastFilter   transaction.Filter
}

func (s *stubTransactionLister) List(_ context.Context, filter transaction.Filter) ([]transaction.Transaction, error) {
	s.lastFilter = filter
	matched := make([]transaction.Transaction, 0)
	for _, t := range s.transactions {
		if !filter.From.IsZero() && t.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && t.Date.After(filter.To) {
			continue
		}
		if filter.CategoryId != 0 && t.CategoryId != filter.CategoryId {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		matched = append(matched, t)
	}
	return matched, nil
}

var budgetRepoStub = newStubBudgetRepository()

func setup(t *testing.T, transactions ...transaction.Transaction) (*BudgetServiceImpl, *stubTransactionLister, func()) {
	lister := &stubTransactionLister{transactions: transactions}
	service := NewBudgetService(budgetRepoStub, lister, currency.NewConverter(nil))
	service.clock = &utils.MockClock{FixedNow: time.Date(2025, 6, 11, 15, 0, 0, 0, time.UTC)} // a Wednesday
	return service, lister, func() {
		t.Log("Teardown after test")
		budgetRepoStub.Cleanup()
	}
}

func expenseOn(date time.Time, categoryId int, amount string, cur string) transaction.Transaction {
	return transaction.Transaction{
		CategoryId: categoryId,
		Type:       transaction.TypeExpense,
		Amount:     decimal.RequireFromString(amount),
		Currency:   cur,
		Date:       date,
	}
}

func TestBudgetServiceImpl_Create(t *testing.T) {
	t.Run("should default currency from user settings", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		// given
		budget := Budget{CategoryId: 5, Amount: decimal.NewFromInt(100), Period: PeriodMonthly}

		// when
		created, err := service.Create(ctx, budget)

		// then
		require.NoError(t, err)
		assert.Equal(t, "USD", created.Currency)
		assert.NotZero(t, created.Id)
	})

	t.Run("should reject a second budget for the same category and period", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		// given
		_, err := service.Create(ctx, Budget{CategoryId: 5, Amount: decimal.NewFromInt(100), Period: PeriodMonthly})
		require.NoError(t, err)

		// when
		_, err = service.Create(ctx, Budget{CategoryId: 5, Amount: decimal.NewFromInt(50), Period: PeriodMonthly})

		// then
		assert.ErrorIs(t, err, ErrBudgetExists)
	})

	t.Run("should allow the same category with a different period", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		// given
		_, err := service.Create(ctx, Budget{CategoryId: 5, Amount: decimal.NewFromInt(100), Period: PeriodMonthly})
		require.NoError(t, err)

		// when
		_, err = service.Create(ctx, Budget{CategoryId: 5, Amount: decimal.NewFromInt(25), Period: PeriodWeekly})

		// then
		assert.NoError(t, err)
	})

	t.Run("should reject non-positive amount", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Create(ctx, Budget{CategoryId: 5, Amount: decimal.Zero, Period: PeriodMonthly})

		// then
		assert.ErrorIs(t, err, ErrBudgetInvalid)
	})

	t.Run("should reject unknown period", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Create(ctx, Budget{CategoryId: 5, Amount: decimal.NewFromInt(10), Period: "fortnightly"})

		// then
		assert.ErrorIs(t, err, ErrBudgetInvalid)
	})

	t.Run("should fail without a user in context", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Create(context.Background(), Budget{CategoryId: 5, Amount: decimal.NewFromInt(10), Period: PeriodWeekly})

		// then
		assert.ErrorIs(t, err, user.ErrNoUser)
	})
}

func TestBudget_PeriodWindow(t *testing.T) {
	wednesday := time.Date(2025, 6, 11, 15, 0, 0, 0, time.UTC)

	t.Run("weekly window starts on the user's first weekday", func(t *testing.T) {
		budget := Budget{Period: PeriodWeekly}

		start, end := budget.PeriodWindow(wednesday, time.Monday)

		assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), end)
	})

	t.Run("weekly window with Sunday start", func(t *testing.T) {
		budget := Budget{Period: PeriodWeekly}

		start, end := budget.PeriodWindow(wednesday, time.Sunday)

		assert.Equal(t, time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC), end)
	})

	t.Run("monthly window spans the calendar month", func(t *testing.T) {
		budget := Budget{Period: PeriodMonthly}

		start, end := budget.PeriodWindow(wednesday, time.Monday)

		assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), end)
	})

	t.Run("yearly window spans the calendar year", func(t *testing.T) {
		budget := Budget{Period: PeriodYearly}

		start, end := budget.PeriodWindow(wednesday, time.Monday)

		assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), end)
	})
}

func TestBudgetServiceImpl_ProgressAll(t *testing.T) {
	t.Run("should sum expenses inside the weekly window only", func(t *testing.T) {
		service, lister, teardown := setup(t,
			expenseOn(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), 5, "30", "USD"),
			expenseOn(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), 5, "999", "USD"), // previous week
			expenseOn(time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC), 7, "999", "USD"), // other category
		)
		defer teardown()

		// given
		_, err := service.Create(ctx, Budget{CategoryId: 5, Amount: decimal.NewFromInt(100), Period: PeriodWeekly})
		require.NoError(t, err)

		// when
		progress, err := service.ProgressAll(ctx)

		// then
		require.NoError(t, err)
		require.Len(t, progress, 1)
		assert.True(t, progress[0].Spent.Equal(decimal.NewFromInt(30)), "spent = %s", progress[0].Spent)
		assert.True(t, progress[0].Remaining.Equal(decimal.NewFromInt(70)), "remaining = %s", progress[0].Remaining)
		assert.False(t, progress[0].OverBudget)
		assert.Equal(t, time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), lister.lastFilter.From)
		assert.Equal(t, transaction.TypeExpense, lister.lastFilter.Type)
	})

	t.Run("should convert foreign spending into the budget currency", func(t *testing.T) {
		service, _, teardown := setup(t,
			expenseOn(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), 5, "30", "USD"),
			expenseOn(time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC), 5, "46", "EUR"), // 50 USD at the fallback rate
		)
		defer teardown()

		// given
		_, err := service.Create(ctx, Budget{CategoryId: 5, Amount: decimal.NewFromInt(100), Period: PeriodWeekly, Currency: "USD"})
		require.NoError(t, err)

		// when
		progress, err := service.ProgressAll(ctx)

		// then
		require.NoError(t, err)
		require.Len(t, progress, 1)
		assert.True(t, progress[0].Spent.Equal(decimal.NewFromInt(80)), "spent = %s", progress[0].Spent)
	})

	t.Run("should flag an exceeded budget", func(t *testing.T) {
		service, _, teardown := setup(t,
			expenseOn(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), 5, "80", "USD"),
		)
		defer teardown()

		// given
		_, err := service.Create(ctx, Budget{CategoryId: 5, Amount: decimal.NewFromInt(50), Period: PeriodWeekly})
		require.NoError(t, err)

		// when
		progress, err := service.ProgressAll(ctx)

		// then
		require.NoError(t, err)
		require.Len(t, progress, 1)
		assert.True(t, progress[0].OverBudget)
		assert.True(t, progress[0].Remaining.Equal(decimal.NewFromInt(-30)), "remaining = %s", progress[0].Remaining)
	})

	t.Run("should skip budgets that already ended", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		// given
		_, err := service.Create(ctx, Budget{
			CategoryId: 5,
			Amount:     decimal.NewFromInt(50),
			Period:     PeriodMonthly,
			StartDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:    time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)

		// when
		progress, err := service.ProgressAll(ctx)

		// then
		require.NoError(t, err)
		assert.Empty(t, progress)
	})
}

func TestBudget_IsActiveBetween(t *testing.T) {
	tests := []struct {
		name      string
		budget    Budget
		startDate time.Time
		endDate   time.Time
		want      bool
	}{
		{
			name:      "no dates means always active",
			budget:    Budget{},
			startDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			endDate:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
			want:      true,
		},
		{
			name:      "starts after the window",
			budget:    Budget{StartDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
			startDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			endDate:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
			want:      false,
		},
		{
			name:      "ended before the window",
			budget:    Budget{EndDate: time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)},
			startDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			endDate:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
			want:      false,
		},
		{
			name:      "overlaps the window partially",
			budget:    Budget{StartDate: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)},
			startDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			endDate:   time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
			want:      true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.budget.IsActiveBetween(tt.startDate, tt.endDate))
		})
	}
}
