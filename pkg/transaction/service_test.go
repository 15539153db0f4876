package transaction

import (
	"context"
	"testing"
	"time"

	"github.com/centavo/centavo/internal/event_bus"
	"github.com/centavo/centavo/internal/utils"
	"github.com/centavo/centavo/pkg/account"
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

var transactionRepoStub = newStubTransactionRepository()

type accountReaderStub struct {
	accounts map[int]account.Account
}

func (s *accountReaderStub) Get(ctx context.Context, id int) (account.Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return account.Account{}, account.ErrAccountNotFound
	}
	return a, nil
}

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*ServiceImpl, *event_bus.EventBus, func()) {
	bus := event_bus.NewEventBus()
	accounts := &accountReaderStub{accounts: map[int]account.Account{
		1: {Id: 1, Name: "Checking", Currency: "USD"},
		2: {Id: 2, Name: "Savings", Currency: "USD"},
		3: {Id: 3, Name: "Euro cash", Currency: "EUR"},
	}}
	service := NewService(transactionRepoStub, accounts, bus)
	service.clock = &utils.MockClock{FixedNow: fixedNow}
	return service, bus, func() {
		t.Log("Teardown after test")
		transactionRepoStub.Cleanup()
	}
}

func TestServiceImpl_Create(t *testing.T) {
	t.Run("should default status, date and currency", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		// given
		transaction := Transaction{
			AccountId:   1,
			Type:        TypeExpense,
			Amount:      decimal.RequireFromString("12.50"),
			Description: "Coffee",
		}

		// when
		created, err := service.Create(ctx, transaction)

		// then
		require.NoError(t, err)
		assert.Equal(t, StatusCleared, created.Status)
		assert.Equal(t, fixedNow, created.Date)
		assert.Equal(t, "USD", created.Currency)
	})

	t.Run("should publish a created event", func(t *testing.T) {
		service, bus, teardown := setup(t)
		defer teardown()

		// given
		var published []event_bus.TransactionChange
		event_bus.SubscribeTyped[event_bus.TransactionCreated](bus, event_bus.TransactionCreatedEvent,
			func(e event_bus.EventT[event_bus.TransactionCreated]) error {
				published = append(published, e.Data.Transaction)
				return nil
			})

		// when
		created, err := service.Create(ctx, Transaction{
			AccountId:   1,
			Type:        TypeIncome,
			Amount:      decimal.RequireFromString("1000"),
			Description: "Salary",
		})

		// then
		require.NoError(t, err)
		require.Len(t, published, 1)
		assert.Equal(t, created.Id, published[0].TransactionId)
		assert.Equal(t, "income", published[0].Type)
		assert.True(t, published[0].Amount.Equal(decimal.RequireFromString("1000")))
	})

	t.Run("should reject negative amount", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Create(ctx, Transaction{
			AccountId:   1,
			Type:        TypeExpense,
			Amount:      decimal.RequireFromString("-5"),
			Description: "Oops",
		})

		// then
		assert.ErrorIs(t, err, ErrTransactionInvalid)
	})

	t.Run("should reject unknown account", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Create(ctx, Transaction{
			AccountId:   99,
			Type:        TypeExpense,
			Amount:      decimal.RequireFromString("5"),
			Description: "Ghost",
		})

		// then
		assert.ErrorIs(t, err, ErrTransactionInvalid)
	})

	t.Run("should reject currency different from the account", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Create(ctx, Transaction{
			AccountId:   1,
			Type:        TypeExpense,
			Amount:      decimal.RequireFromString("5"),
			Currency:    "EUR",
			Description: "Mismatch",
		})

		// then
		assert.ErrorIs(t, err, ErrTransactionInvalid)
	})

	t.Run("should validate transfers", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		transfer := func(from, to int) Transaction {
			return Transaction{
				AccountId:         from,
				TransferAccountId: to,
				Type:              TypeTransfer,
				Amount:            decimal.RequireFromString("50"),
				Description:       "Move",
			}
		}

		// missing destination
		_, err := service.Create(ctx, transfer(1, 0))
		assert.ErrorIs(t, err, ErrTransactionInvalid)

		// same account on both sides
		_, err = service.Create(ctx, transfer(1, 1))
		assert.ErrorIs(t, err, ErrTransactionInvalid)

		// different currencies
		_, err = service.Create(ctx, transfer(1, 3))
		assert.ErrorIs(t, err, ErrTransactionInvalid)

		// valid transfer drops any category
		valid := transfer(1, 2)
		valid.CategoryId = 7
		created, err := service.Create(ctx, valid)
		require.NoError(t, err)
		assert.Equal(t, 0, created.CategoryId)
	})
}

func TestServiceImpl_Update(t *testing.T) {
	t.Run("should publish before and after images", func(t *testing.T) {
		service, bus, teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, Transaction{
			AccountId:   1,
			Type:        TypeIncome,
			Amount:      decimal.RequireFromString("100"),
			Description: "Refund",
		})
		require.NoError(t, err)

		var updates []event_bus.TransactionUpdated
		event_bus.SubscribeTyped[event_bus.TransactionUpdated](bus, event_bus.TransactionUpdatedEvent,
			func(e event_bus.EventT[event_bus.TransactionUpdated]) error {
				updates = append(updates, e.Data)
				return nil
			})

		// when
		created.Type = TypeExpense
		created.Amount = decimal.RequireFromString("25")
		updated, err := service.Update(ctx, created)

		// then
		require.NoError(t, err)
		assert.Equal(t, TypeExpense, updated.Type)
		require.Len(t, updates, 1)
		assert.Equal(t, "income", updates[0].Before.Type)
		assert.True(t, updates[0].Before.Amount.Equal(decimal.RequireFromString("100")))
		assert.Equal(t, "expense", updates[0].After.Type)
		assert.True(t, updates[0].After.Amount.Equal(decimal.RequireFromString("25")))
	})

	t.Run("should fail for unknown transaction", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Update(ctx, Transaction{
			Id:          999,
			AccountId:   1,
			Type:        TypeExpense,
			Amount:      decimal.RequireFromString("5"),
			Description: "Ghost",
		})

		// then
		assert.ErrorIs(t, err, ErrTransactionNotFound)
	})
}

func TestServiceImpl_Delete(t *testing.T) {
	t.Run("should publish a deleted event with the old values", func(t *testing.T) {
		service, bus, teardown := setup(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, Transaction{
			AccountId:   1,
			Type:        TypeExpense,
			Amount:      decimal.RequireFromString("9.99"),
			Description: "Subscription",
		})
		require.NoError(t, err)

		var deleted []event_bus.TransactionChange
		event_bus.SubscribeTyped[event_bus.TransactionDeleted](bus, event_bus.TransactionDeletedEvent,
			func(e event_bus.EventT[event_bus.TransactionDeleted]) error {
				deleted = append(deleted, e.Data.Transaction)
				return nil
			})

		// when
		err = service.Delete(ctx, created.Id)

		// then
		require.NoError(t, err)
		require.Len(t, deleted, 1)
		assert.Equal(t, created.Id, deleted[0].TransactionId)
		_, err = service.Get(ctx, created.Id)
		assert.ErrorIs(t, err, ErrTransactionNotFound)
	})
}

func TestServiceImpl_List(t *testing.T) {
	t.Run("should filter and order newest first", func(t *testing.T) {
		service, _, teardown := setup(t)
		defer teardown()

		// given
		mustCreate := func(tx Transaction) Transaction {
			created, err := service.Create(ctx, tx)
			require.NoError(t, err)
			return created
		}
		day := func(d int) time.Time { return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC) }
		mustCreate(Transaction{AccountId: 1, Type: TypeExpense, Amount: decimal.RequireFromString("10"), Description: "Groceries", Date: day(1)})
		mustCreate(Transaction{AccountId: 1, Type: TypeIncome, Amount: decimal.RequireFromString("500"), Description: "Salary", Date: day(2)})
		mustCreate(Transaction{AccountId: 2, Type: TypeExpense, Amount: decimal.RequireFromString("20"), Description: "Books", Date: day(3)})

		// when
		expenses, err := service.List(ctx, Filter{Type: TypeExpense})

		// then
		require.NoError(t, err)
		require.Len(t, expenses, 2)
		assert.Equal(t, "Books", expenses[0].Description)
		assert.Equal(t, "Groceries", expenses[1].Description)

		// when filtering by account
		accountOne, err := service.List(ctx, Filter{AccountId: 1})
		require.NoError(t, err)
		assert.Len(t, accountOne, 2)
	})
}
