package liability

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
}

func (s *stubPaymentRecorder) Record(_ context.Context, p payment.Payment) (payment.Payment, error) {
	p.Id = len(s.recorded) + 1
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

var liabilityRepoStub = newStubLiabilityRepository()

func setup(t *testing.T) (*ServiceImpl, *stubPaymentRecorder, *stubTransactionCreator, func()) {
	payments := &stubPaymentRecorder{}
	transactions := &stubTransactionCreator{}
	service := NewService(liabilityRepoStub, payments, transactions)
	service.clock = &utils.MockClock{FixedNow: time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)}
	return service, payments, transactions, func() {
		t.Log("Teardown after test")
		liabilityRepoStub.Cleanup()
	}
}

func TestServiceImpl_Create(t *testing.T) {
	t.Run("should default balance from principal and status to active", func(t *testing.T) {
		service, _, _, teardown := setup(t)
		defer teardown()

		// when
		created, err := service.Create(ctx, Liability{
			Name:      "Car loan",
			Type:      TypeLoan,
			Principal: decimal.NewFromInt(12000),
		})

		// then
		require.NoError(t, err)
		assert.True(t, created.Balance.Equal(decimal.NewFromInt(12000)))
		assert.Equal(t, StatusActive, created.Status)
		assert.Equal(t, "USD", created.Currency)
	})

	t.Run("should reject due day outside 1..28", func(t *testing.T) {
		service, _, _, teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Create(ctx, Liability{Name: "Card", Balance: decimal.NewFromInt(100), DueDay: 31})

		// then
		assert.ErrorIs(t, err, ErrLiabilityInvalid)
	})
}

func TestServiceImpl_RecordPayment(t *testing.T) {
	newLiability := func(t *testing.T, service *ServiceImpl, balance string) Liability {
		created, err := service.Create(ctx, Liability{
			Name:    "Card",
			Type:    TypeCreditCard,
			Balance: decimal.RequireFromString(balance),
		})
		require.NoError(t, err)
		return created
	}

	t.Run("should reduce the balance and record history", func(t *testing.T) {
		service, payments, _, teardown := setup(t)
		defer teardown()

		// given
		liability := newLiability(t, service, "500")

		// when
		updated, err := service.RecordPayment(ctx, liability.Id, PaymentRequest{Amount: decimal.NewFromInt(200)})

		// then
		require.NoError(t, err)
		assert.True(t, updated.Balance.Equal(decimal.NewFromInt(300)))
		assert.Equal(t, StatusActive, updated.Status)
		require.Len(t, payments.recorded, 1)
		assert.Equal(t, payment.SourceLiability, payments.recorded[0].SourceType)
	})

	t.Run("should floor at zero and mark paid off", func(t *testing.T) {
		service, _, _, teardown := setup(t)
		defer teardown()

		// given
		liability := newLiability(t, service, "150")

		// when
		updated, err := service.RecordPayment(ctx, liability.Id, PaymentRequest{Amount: decimal.NewFromInt(200)})

		// then
		require.NoError(t, err)
		assert.True(t, updated.Balance.IsZero())
		assert.Equal(t, StatusPaidOff, updated.Status)
	})

	t.Run("should mirror the payment into the source account", func(t *testing.T) {
		service, _, transactions, teardown := setup(t)
		defer teardown()

		// given
		liability := newLiability(t, service, "500")

		// when
		_, err := service.RecordPayment(ctx, liability.Id, PaymentRequest{Amount: decimal.NewFromInt(100), SourceAccountId: 4})

		// then
		require.NoError(t, err)
		require.Len(t, transactions.created, 1)
		assert.Equal(t, transaction.TypeExpense, transactions.created[0].Type)
		assert.Equal(t, 4, transactions.created[0].AccountId)
		assert.Equal(t, "Liability payment: Card", transactions.created[0].Description)
	})

	t.Run("should reject non-positive amount", func(t *testing.T) {
		service, _, _, teardown := setup(t)
		defer teardown()

		// given
		liability := newLiability(t, service, "500")

		// when
		_, err := service.RecordPayment(ctx, liability.Id, PaymentRequest{Amount: decimal.Zero})

		// then
		assert.ErrorIs(t, err, ErrLiabilityInvalid)
	})
}

func TestLiability_ProjectPayoff(t *testing.T) {
	t.Run("should project months and interest with monthly compounding", func(t *testing.T) {
		liability := Liability{
			Balance:      decimal.NewFromInt(1000),
			InterestRate: decimal.NewFromInt(12), // 1% per month
		}

		payoff, err := liability.ProjectPayoff(decimal.NewFromInt(100))

		require.NoError(t, err)
		assert.Equal(t, 11, payoff.Months)
		assert.True(t, payoff.TotalInterest.Equal(decimal.RequireFromString("58.98")), "interest = %s", payoff.TotalInterest)
		assert.True(t, payoff.TotalPaid.Equal(decimal.RequireFromString("1058.98")), "paid = %s", payoff.TotalPaid)
	})

	t.Run("should handle zero interest", func(t *testing.T) {
		liability := Liability{Balance: decimal.NewFromInt(500)}

		payoff, err := liability.ProjectPayoff(decimal.NewFromInt(100))

		require.NoError(t, err)
		assert.Equal(t, 5, payoff.Months)
		assert.True(t, payoff.TotalInterest.IsZero())
	})

	t.Run("should report a debt that never amortizes", func(t *testing.T) {
		liability := Liability{
			Balance:      decimal.NewFromInt(1000),
			InterestRate: decimal.NewFromInt(24), // 2% per month = 20 interest
		}

		_, err := liability.ProjectPayoff(decimal.NewFromInt(20))

		assert.ErrorIs(t, err, ErrNeverAmortizes)
	})

	t.Run("should return an empty projection for a cleared balance", func(t *testing.T) {
		liability := Liability{Balance: decimal.Zero}

		payoff, err := liability.ProjectPayoff(decimal.NewFromInt(50))

		require.NoError(t, err)
		assert.Zero(t, payoff.Months)
	})
}

func TestLiability_NextDueDate(t *testing.T) {
	now := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)

	t.Run("due later this month", func(t *testing.T) {
		liability := Liability{DueDay: 15}
		assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), liability.NextDueDate(now))
	})

	t.Run("due day already passed rolls to next month", func(t *testing.T) {
		liability := Liability{DueDay: 5}
		assert.Equal(t, time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC), liability.NextDueDate(now))
	})

	t.Run("due today stays today", func(t *testing.T) {
		liability := Liability{DueDay: 11}
		assert.Equal(t, time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC), liability.NextDueDate(now))
	})

	t.Run("no due day configured", func(t *testing.T) {
		liability := Liability{}
		assert.True(t, liability.NextDueDate(now).IsZero())
	})
}
