package goal

import (
	"context"
	"testing"
	"time"

	"github.com/centavo/centavo/internal/utils"
	"github.com/centavo/centavo/pkg/payment"
	"github.com/centavo/centavo/pkg/transaction"
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

type stubPaymentRecorder struct {
	recorded []payment.Payment
	nextId   int
}

func (s *stubPaymentRecorder) Record(_ context.Context, p payment.Payment) (payment.Payment, error) {
	s.nextId++
	p.Id = s.nextId
	s.recorded = append(s.recorded, p)
	return p, nil
}

func (s *stubPaymentRecorder) List(_ context.Context, filter payment.Filter) ([]payment.Payment, error) {
	matched := make([]payment.Payment, 0)
	for _, p := range s.recorded {
		if filter.SourceType != "" && p.SourceType != filter.SourceType {
			continue
		}
		if filter.SourceId != 0 && p.SourceId != filter.SourceId {
			continue
		}
		matched = append(matched, p)
	}
	return matched, nil
}

type stubTransactionCreator struct {
	created []transaction.Transaction
}

func (s *stubTransactionCreator) Create(_ context.Context, t transaction.Transaction) (transaction.Transaction, error) {
	t.Id = len(s.created) + 1
	s.created = append(s.created, t)
	return t, nil
}

var goalRepoStub = newStubGoalRepository()

func setup(t *testing.T) (*ServiceImpl, *stubPaymentRecorder, *stubTransactionCreator, func()) {
	payments := &stubPaymentRecorder{}
	transactions := &stubTransactionCreator{}
	service := NewService(goalRepoStub, payments, transactions)
	service.clock = &utils.MockClock{FixedNow: time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)}
	return service, payments, transactions, func() {
		t.Log("Teardown after test")
		goalRepoStub.Cleanup()
	}
}

func activeGoal(t *testing.T, service *ServiceImpl, target string) Goal {
	created, err := service.Create(ctx, Goal{Name: "Vacation", TargetAmount: decimal.RequireFromString(target)})
	require.NoError(t, err)
	return created
}

func TestServiceImpl_Create(t *testing.T) {
	t.Run("should default currency and status", func(t *testing.T) {
		service, _, _, teardown := setup(t)
		defer teardown()

		// when
		created, err := service.Create(ctx, Goal{Name: "Vacation", TargetAmount: decimal.NewFromInt(1000)})

		// then
		require.NoError(t, err)
		assert.Equal(t, "USD", created.Currency)
		assert.Equal(t, StatusActive, created.Status)
	})

	t.Run("should reject non-positive target", func(t *testing.T) {
		service, _, _, teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Create(ctx, Goal{Name: "Vacation", TargetAmount: decimal.Zero})

		// then
		assert.ErrorIs(t, err, ErrGoalInvalid)
	})

	t.Run("should fail without a user in context", func(t *testing.T) {
		service, _, _, teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Create(context.Background(), Goal{Name: "Vacation", TargetAmount: decimal.NewFromInt(10)})

		// then
		assert.ErrorIs(t, err, user.ErrNoUser)
	})
}

func TestServiceImpl_Contribute(t *testing.T) {
	t.Run("should add to saved amount and record history", func(t *testing.T) {
		service, payments, _, teardown := setup(t)
		defer teardown()

		// given
		goal := activeGoal(t, service, "1000")

		// when
		updated, err := service.Contribute(ctx, goal.Id, Contribution{Amount: decimal.NewFromInt(250)})

		// then
		require.NoError(t, err)
		assert.True(t, updated.SavedAmount.Equal(decimal.NewFromInt(250)))
		assert.Equal(t, StatusActive, updated.Status)
		require.Len(t, payments.recorded, 1)
		assert.Equal(t, payment.SourceGoal, payments.recorded[0].SourceType)
		assert.Equal(t, goal.Id, payments.recorded[0].SourceId)
	})

	t.Run("should complete the goal when the target is reached", func(t *testing.T) {
		service, _, _, teardown := setup(t)
		defer teardown()

		// given
		goal := activeGoal(t, service, "100")

		// when
		updated, err := service.Contribute(ctx, goal.Id, Contribution{Amount: decimal.NewFromInt(120)})

		// then
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, updated.Status)
	})

	t.Run("should floor withdrawals at zero", func(t *testing.T) {
		service, _, _, teardown := setup(t)
		defer teardown()

		// given
		goal := activeGoal(t, service, "1000")
		_, err := service.Contribute(ctx, goal.Id, Contribution{Amount: decimal.NewFromInt(50)})
		require.NoError(t, err)

		// when
		updated, err := service.Contribute(ctx, goal.Id, Contribution{Amount: decimal.NewFromInt(80), Withdraw: true})

		// then
		require.NoError(t, err)
		assert.True(t, updated.SavedAmount.IsZero(), "saved = %s", updated.SavedAmount)
	})

	t.Run("should reject contributions to a completed goal", func(t *testing.T) {
		service, _, _, teardown := setup(t)
		defer teardown()

		// given
		goal := activeGoal(t, service, "100")
		_, err := service.Contribute(ctx, goal.Id, Contribution{Amount: decimal.NewFromInt(100)})
		require.NoError(t, err)

		// when
		_, err = service.Contribute(ctx, goal.Id, Contribution{Amount: decimal.NewFromInt(10)})

		// then
		assert.ErrorIs(t, err, ErrGoalNotActive)
	})

	t.Run("should mirror the contribution into the source account", func(t *testing.T) {
		service, _, transactions, teardown := setup(t)
		defer teardown()

		// given
		goal := activeGoal(t, service, "1000")

		// when
		_, err := service.Contribute(ctx, goal.Id, Contribution{Amount: decimal.NewFromInt(250), SourceAccountId: 7})

		// then
		require.NoError(t, err)
		require.Len(t, transactions.created, 1)
		assert.Equal(t, transaction.TypeExpense, transactions.created[0].Type)
		assert.Equal(t, 7, transactions.created[0].AccountId)
		assert.Equal(t, "Goal contribution: Vacation", transactions.created[0].Description)
	})

	t.Run("should mirror withdrawals as income", func(t *testing.T) {
		service, _, transactions, teardown := setup(t)
		defer teardown()

		// given
		goal := activeGoal(t, service, "1000")
		_, err := service.Contribute(ctx, goal.Id, Contribution{Amount: decimal.NewFromInt(300)})
		require.NoError(t, err)

		// when
		_, err = service.Contribute(ctx, goal.Id, Contribution{Amount: decimal.NewFromInt(100), Withdraw: true, SourceAccountId: 7})

		// then
		require.NoError(t, err)
		require.Len(t, transactions.created, 1)
		assert.Equal(t, transaction.TypeIncome, transactions.created[0].Type)
	})

	t.Run("should reject non-positive contribution", func(t *testing.T) {
		service, _, _, teardown := setup(t)
		defer teardown()

		// given
		goal := activeGoal(t, service, "1000")

		// when
		_, err := service.Contribute(ctx, goal.Id, Contribution{Amount: decimal.Zero})

		// then
		assert.ErrorIs(t, err, ErrGoalInvalid)
	})
}

func TestGoal_MonthlyTarget(t *testing.T) {
	now := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)

	t.Run("should spread the remaining amount over the months left", func(t *testing.T) {
		goal := Goal{
			TargetAmount: decimal.NewFromInt(1200),
			SavedAmount:  decimal.NewFromInt(200),
			TargetDate:   time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC),
		}

		monthly, ok := goal.MonthlyTarget(now)

		require.True(t, ok)
		assert.True(t, monthly.Equal(decimal.NewFromInt(200)), "monthly = %s", monthly) // 1000 over 5 months
	})

	t.Run("should report nothing without a deadline", func(t *testing.T) {
		goal := Goal{TargetAmount: decimal.NewFromInt(100)}

		_, ok := goal.MonthlyTarget(now)

		assert.False(t, ok)
	})

	t.Run("should report nothing when the deadline passed", func(t *testing.T) {
		goal := Goal{
			TargetAmount: decimal.NewFromInt(100),
			TargetDate:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		}

		_, ok := goal.MonthlyTarget(now)

		assert.False(t, ok)
	})
}
