package bill

import (
	"context"
	"testing"
	"time"

	"github.com/centavo/centavo/internal/utils"
	"github.com/centavo/centavo/pkg/account"
	"github.com/centavo/centavo/pkg/payment"
	"github.com/centavo/centavo/pkg/transaction"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAccountReader struct {
	accounts map[int]account.Account
}

func (s *stubAccountReader) Get(_ context.Context, id int) (account.Account, error) {
	acc, ok := s.accounts[id]
	if !ok {
		return account.Account{}, account.ErrAccountNotFound
	}
	return acc, nil
}

type stubCycleTransactions struct {
	transactions []transaction.Transaction
	created      []transaction.Transaction
}

func (s *stubCycleTransactions) List(_ context.Context, filter transaction.Filter) ([]transaction.Transaction, error) {
	matched := make([]transaction.Transaction, 0)
	for _, t := range s.transactions {
		if filter.AccountId != 0 && t.AccountId != filter.AccountId {
			continue
		}
		if !filter.From.IsZero() && t.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && t.Date.After(filter.To) {
			continue
		}
		matched = append(matched, t)
	}
	return matched, nil
}

func (s *stubCycleTransactions) Create(_ context.Context, t transaction.Transaction) (transaction.Transaction, error) {
	t.Id = len(s.created) + 1
	s.created = append(s.created, t)
	return t, nil
}

var cycleRepoStub = newStubCycleRepository()

func setupCycles(t *testing.T) (*CycleServiceImpl, *stubCycleTransactions, *stubPaymentRecorder, func()) {
	accounts := &stubAccountReader{accounts: map[int]account.Account{
		1: {Id: 1, Name: "Visa", Type: account.TypeCreditCard, Currency: "USD"},
		2: {Id: 2, Name: "Checking", Type: account.TypeChecking, Currency: "USD"},
	}}
	transactions := &stubCycleTransactions{}
	payments := &stubPaymentRecorder{}
	service := NewCycleService(cycleRepoStub, accounts, transactions, payments)
	service.clock = &utils.MockClock{FixedNow: fixedNow}
	return service, transactions, payments, func() {
		t.Log("Teardown after test")
		cycleRepoStub.Cleanup()
	}
}

func openCycle(t *testing.T, service *CycleServiceImpl, start time.Time) BillCycle {
	cycle, err := service.Open(ctx, 1, start)
	require.NoError(t, err)
	return cycle
}

func TestCycleServiceImpl_Open(t *testing.T) {
	t.Run("should open a cycle on a credit card account", func(t *testing.T) {
		service, _, _, teardown := setupCycles(t)
		defer teardown()

		// when
		cycle, err := service.Open(ctx, 1, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

		// then
		require.NoError(t, err)
		assert.Equal(t, CycleOpen, cycle.Status)
		assert.Equal(t, 1, cycle.AccountId)
		assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), cycle.StartDate)
	})

	t.Run("should default the start date to today", func(t *testing.T) {
		service, _, _, teardown := setupCycles(t)
		defer teardown()

		// when
		cycle, err := service.Open(ctx, 1, time.Time{})

		// then
		require.NoError(t, err)
		assert.Equal(t, fixedNow, cycle.StartDate)
	})

	t.Run("should reject a non credit card account", func(t *testing.T) {
		service, _, _, teardown := setupCycles(t)
		defer teardown()

		// when
		_, err := service.Open(ctx, 2, time.Time{})

		// then
		assert.ErrorIs(t, err, ErrCycleInvalid)
	})

	t.Run("should reject a second open cycle on the same account", func(t *testing.T) {
		service, _, _, teardown := setupCycles(t)
		defer teardown()

		// given
		openCycle(t, service, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

		// when
		_, err := service.Open(ctx, 1, time.Time{})

		// then
		assert.ErrorIs(t, err, ErrCycleOpen)
	})
}

func TestCycleServiceImpl_Close(t *testing.T) {
	t.Run("should compute the statement from the card activity", func(t *testing.T) {
		service, transactions, _, teardown := setupCycles(t)
		defer teardown()

		// given
		cycle := openCycle(t, service, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		transactions.transactions = []transaction.Transaction{
			{AccountId: 1, Type: transaction.TypeExpense, Amount: decimal.RequireFromString("120.50"), Date: time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)},
			{AccountId: 1, Type: transaction.TypeIncome, Amount: decimal.RequireFromString("30.25"), Date: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)},
			{AccountId: 1, Type: transaction.TypeExpense, Amount: decimal.NewFromInt(80), Date: time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)},
			// other account and outside the window, both ignored
			{AccountId: 2, Type: transaction.TypeExpense, Amount: decimal.NewFromInt(999), Date: time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC)},
			{AccountId: 1, Type: transaction.TypeExpense, Amount: decimal.NewFromInt(50), Date: time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)},
		}

		// when
		closed, err := service.Close(ctx, cycle.Id, CloseRequest{EndDate: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)})

		// then
		require.NoError(t, err)
		assert.Equal(t, CycleClosed, closed.Status)
		assert.True(t, closed.StatementBalance.Equal(decimal.RequireFromString("170.25")), "statement = %s", closed.StatementBalance)
	})

	t.Run("should default the due date to 21 days after the end", func(t *testing.T) {
		service, _, _, teardown := setupCycles(t)
		defer teardown()

		// given
		cycle := openCycle(t, service, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

		// when
		closed, err := service.Close(ctx, cycle.Id, CloseRequest{EndDate: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)})

		// then
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 7, 21, 0, 0, 0, 0, time.UTC), closed.DueDate)
	})

	t.Run("should reject closing before the cycle start", func(t *testing.T) {
		service, _, _, teardown := setupCycles(t)
		defer teardown()

		// given
		cycle := openCycle(t, service, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

		// when
		_, err := service.Close(ctx, cycle.Id, CloseRequest{EndDate: time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)})

		// then
		assert.ErrorIs(t, err, ErrCycleInvalid)
	})

	t.Run("should reject closing a cycle twice", func(t *testing.T) {
		service, _, _, teardown := setupCycles(t)
		defer teardown()

		// given
		cycle := openCycle(t, service, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		_, err := service.Close(ctx, cycle.Id, CloseRequest{})
		require.NoError(t, err)

		// when
		_, err = service.Close(ctx, cycle.Id, CloseRequest{})

		// then
		assert.ErrorIs(t, err, ErrCycleInvalid)
	})
}

func TestCycleServiceImpl_Pay(t *testing.T) {
	closedCycle := func(t *testing.T, service *CycleServiceImpl, transactions *stubCycleTransactions) BillCycle {
		cycle := openCycle(t, service, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		transactions.transactions = []transaction.Transaction{
			{AccountId: 1, Type: transaction.TypeExpense, Amount: decimal.NewFromInt(500), Date: time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)},
		}
		closed, err := service.Close(ctx, cycle.Id, CloseRequest{EndDate: time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)})
		require.NoError(t, err)
		return closed
	}

	t.Run("should pay the full statement by default", func(t *testing.T) {
		service, transactions, payments, teardown := setupCycles(t)
		defer teardown()

		// given
		cycle := closedCycle(t, service, transactions)

		// when
		paid, err := service.Pay(ctx, cycle.Id, PayCycleRequest{})

		// then
		require.NoError(t, err)
		assert.Equal(t, CyclePaid, paid.Status)
		require.Len(t, payments.recorded, 1)
		assert.Equal(t, payment.SourceCreditCardCycle, payments.recorded[0].SourceType)
		assert.Equal(t, cycle.Id, payments.recorded[0].SourceId)
		assert.True(t, payments.recorded[0].Amount.Equal(decimal.NewFromInt(500)))
		assert.Equal(t, "USD", payments.recorded[0].Currency)
	})

	t.Run("should mirror the payment as a transfer onto the card", func(t *testing.T) {
		service, transactions, _, teardown := setupCycles(t)
		defer teardown()

		// given
		cycle := closedCycle(t, service, transactions)

		// when
		_, err := service.Pay(ctx, cycle.Id, PayCycleRequest{SourceAccountId: 2})

		// then
		require.NoError(t, err)
		require.Len(t, transactions.created, 1)
		assert.Equal(t, transaction.TypeTransfer, transactions.created[0].Type)
		assert.Equal(t, 2, transactions.created[0].AccountId)
		assert.Equal(t, 1, transactions.created[0].TransferAccountId)
		assert.Equal(t, "Credit card payment: Visa", transactions.created[0].Description)
	})

	t.Run("should reject paying an open cycle", func(t *testing.T) {
		service, _, _, teardown := setupCycles(t)
		defer teardown()

		// given
		cycle := openCycle(t, service, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

		// when
		_, err := service.Pay(ctx, cycle.Id, PayCycleRequest{})

		// then
		assert.ErrorIs(t, err, ErrCycleInvalid)
	})

	t.Run("should reject paying twice", func(t *testing.T) {
		service, transactions, _, teardown := setupCycles(t)
		defer teardown()

		// given
		cycle := closedCycle(t, service, transactions)
		_, err := service.Pay(ctx, cycle.Id, PayCycleRequest{})
		require.NoError(t, err)

		// when
		_, err = service.Pay(ctx, cycle.Id, PayCycleRequest{})

		// then
		assert.ErrorIs(t, err, ErrCycleInvalid)
	})
}
