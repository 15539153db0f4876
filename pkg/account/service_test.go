package account

import (
	"context"
	"testing"
	"time"

	"github.com/centavo/centavo/internal/event_bus"
	"github.com/centavo/centavo/pkg/currency"
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

var accountRepoStub = newStubAccountRepository()

type stubRates struct {
	rates map[string]decimal.Decimal
}

func (s *stubRates) Rate(from string, to string) (decimal.Decimal, bool) {
	rate, ok := s.rates[from+"/"+to]
	return rate, ok
}

func setup(t *testing.T) (*ServiceImpl, func()) {
	converter := currency.NewConverter(&stubRates{rates: map[string]decimal.Decimal{
		"EUR/USD": decimal.NewFromFloat(1.25),
	}})
	service := NewService(accountRepoStub, converter)
	return service, func() {
		t.Log("Teardown after test")
		accountRepoStub.Cleanup()
	}
}

func TestServiceImpl_Create(t *testing.T) {
	t.Run("should default currency, type and status from user settings", func(t *testing.T) {
		service, teardown := setup(t)
		defer teardown()

		// given
		account := Account{Name: "Wallet"}

		// when
		created, err := service.Create(ctx, account)

		// then
		require.NoError(t, err)
		assert.Equal(t, "USD", created.Currency)
		assert.Equal(t, TypeChecking, created.Type)
		assert.Equal(t, StatusActive, created.Status)
		assert.Equal(t, 100, created.Position)
	})

	t.Run("should place new accounts after existing ones", func(t *testing.T) {
		service, teardown := setup(t)
		defer teardown()

		// given
		_, err := service.Create(ctx, Account{Name: "First"})
		require.NoError(t, err)

		// when
		second, err := service.Create(ctx, Account{Name: "Second"})

		// then
		require.NoError(t, err)
		assert.Equal(t, 200, second.Position)
	})

	t.Run("should reject unknown currency", func(t *testing.T) {
		service, teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Create(ctx, Account{Name: "Weird", Currency: "ZZZ"})

		// then
		assert.Error(t, err)
	})

	t.Run("should fail without a user in context", func(t *testing.T) {
		service, teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Create(context.Background(), Account{Name: "Wallet"})

		// then
		assert.ErrorIs(t, err, user.ErrNoUser)
	})
}

func TestServiceImpl_MoveAfter(t *testing.T) {
	createThree := func(t *testing.T, service *ServiceImpl) []Account {
		accounts := make([]Account, 0, 3)
		for _, name := range []string{"A", "B", "C"} {
			created, err := service.Create(ctx, Account{Name: name})
			require.NoError(t, err)
			accounts = append(accounts, created)
		}
		return accounts
	}

	t.Run("should move account between two others", func(t *testing.T) {
		service, teardown := setup(t)
		defer teardown()

		// given accounts at positions 100, 200, 300
		accounts := createThree(t, service)

		// when C moves after A
		err := service.MoveAfter(ctx, accounts[2].Id, accounts[0].Id)

		// then
		require.NoError(t, err)
		all, err := service.GetAll(ctx, true)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "C", "B"}, names(all))
		assert.Equal(t, 150, all[1].Position)
	})

	t.Run("should move account to the top", func(t *testing.T) {
		service, teardown := setup(t)
		defer teardown()

		// given
		accounts := createThree(t, service)

		// when
		err := service.MoveAfter(ctx, accounts[2].Id, 0)

		// then
		require.NoError(t, err)
		all, err := service.GetAll(ctx, true)
		require.NoError(t, err)
		assert.Equal(t, []string{"C", "A", "B"}, names(all))
	})

	t.Run("should move account to the end", func(t *testing.T) {
		service, teardown := setup(t)
		defer teardown()

		// given
		accounts := createThree(t, service)

		// when
		err := service.MoveAfter(ctx, accounts[0].Id, accounts[2].Id)

		// then
		require.NoError(t, err)
		all, err := service.GetAll(ctx, true)
		require.NoError(t, err)
		assert.Equal(t, []string{"B", "C", "A"}, names(all))
		assert.Equal(t, 400, all[2].Position)
	})

	t.Run("should renumber all accounts when positions collide", func(t *testing.T) {
		service, teardown := setup(t)
		defer teardown()

		// given positions 1, 2, 3 with no gaps
		accounts := createThree(t, service)
		for i, account := range accounts {
			require.NoError(t, accountRepoStub.UpdatePosition(ctx, 1, account.Id, i+1))
		}

		// when C moves after A
		err := service.MoveAfter(ctx, accounts[2].Id, accounts[0].Id)

		// then
		require.NoError(t, err)
		all, err := service.GetAll(ctx, true)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "C", "B"}, names(all))
		assert.Equal(t, []int{100, 200, 300}, positions(all))
	})

	t.Run("should fail for unknown account", func(t *testing.T) {
		service, teardown := setup(t)
		defer teardown()

		// given
		createThree(t, service)

		// when
		err := service.MoveAfter(ctx, 999, 0)

		// then
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestServiceImpl_Summary(t *testing.T) {
	t.Run("should total balances in the display currency", func(t *testing.T) {
		service, teardown := setup(t)
		defer teardown()

		// given a 2000 USD account and a 1000 EUR account
		wallet, err := service.Create(ctx, Account{Name: "Wallet"})
		require.NoError(t, err)
		europe, err := service.Create(ctx, Account{Name: "Europe", Currency: "EUR"})
		require.NoError(t, err)
		require.NoError(t, accountRepoStub.AdjustBalance(ctx, 1, wallet.Id, decimal.NewFromInt(2000)))
		require.NoError(t, accountRepoStub.AdjustBalance(ctx, 1, europe.Id, decimal.NewFromInt(1000)))

		// when
		summary, err := service.Summary(ctx)

		// then EUR converts at 1.25
		require.NoError(t, err)
		assert.Equal(t, "USD", summary.Currency)
		assert.Equal(t, "3250", summary.Total.String())
		require.Len(t, summary.Accounts, 2)
		assert.Equal(t, "2000", summary.Accounts[0].Converted.String())
		assert.Equal(t, "1250", summary.Accounts[1].Converted.String())
		assert.Equal(t, "EUR", summary.Accounts[1].Currency)
	})

	t.Run("should leave archived accounts out of the total", func(t *testing.T) {
		service, teardown := setup(t)
		defer teardown()

		// given
		active, err := service.Create(ctx, Account{Name: "Wallet"})
		require.NoError(t, err)
		old, err := service.Create(ctx, Account{Name: "Old savings"})
		require.NoError(t, err)
		require.NoError(t, accountRepoStub.AdjustBalance(ctx, 1, active.Id, decimal.NewFromInt(500)))
		require.NoError(t, accountRepoStub.AdjustBalance(ctx, 1, old.Id, decimal.NewFromInt(900)))
		old.Status = StatusArchived
		_, err = service.Update(ctx, old)
		require.NoError(t, err)

		// when
		summary, err := service.Summary(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, "500", summary.Total.String())
		require.Len(t, summary.Accounts, 1)
		assert.Equal(t, active.Id, summary.Accounts[0].AccountId)
	})

	t.Run("should prefer the display currency over the primary one", func(t *testing.T) {
		service, teardown := setup(t)
		defer teardown()

		// given a user who earns in EUR but tracks in USD
		displayCtx := user.WithUser(context.Background(), user.User{
			Id:       1,
			Username: "test_user",
			Settings: user.Settings{PrimaryCurrency: "EUR", DisplayCurrency: "USD"},
		})
		account, err := service.Create(displayCtx, Account{Name: "Wallet"})
		require.NoError(t, err)
		require.NoError(t, accountRepoStub.AdjustBalance(displayCtx, 1, account.Id, decimal.NewFromInt(100)))

		// when
		summary, err := service.Summary(displayCtx)

		// then
		require.NoError(t, err)
		assert.Equal(t, "USD", summary.Currency)
		assert.Equal(t, "125", summary.Total.String())
	})

	t.Run("should fail without a user in context", func(t *testing.T) {
		service, teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Summary(context.Background())

		// then
		assert.ErrorIs(t, err, user.ErrNoUser)
	})
}

func TestServiceImpl_BalanceSubscriber(t *testing.T) {
	change := func(accountId int, txType string, amount string) event_bus.TransactionChange {
		return event_bus.TransactionChange{
			TransactionId: 1,
			AccountId:     accountId,
			Type:          txType,
			Amount:        decimal.RequireFromString(amount),
			Currency:      "USD",
			Date:          time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		}
	}

	setupWithBus := func(t *testing.T) (*ServiceImpl, *event_bus.EventBus, func()) {
		service, teardown := setup(t)
		bus := event_bus.NewEventBus()
		service.RegisterSubscriptions(bus)
		return service, bus, teardown
	}

	t.Run("should credit account on income and debit on expense", func(t *testing.T) {
		service, bus, teardown := setupWithBus(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, Account{Name: "Wallet"})
		require.NoError(t, err)

		// when
		err = bus.Publish(event_bus.NewEvent(ctx, event_bus.TransactionCreatedEvent,
			event_bus.TransactionCreated{Transaction: change(created.Id, "income", "250.00")}))
		require.NoError(t, err)
		err = bus.Publish(event_bus.NewEvent(ctx, event_bus.TransactionCreatedEvent,
			event_bus.TransactionCreated{Transaction: change(created.Id, "expense", "40.50")}))
		require.NoError(t, err)

		// then
		account, err := service.Get(ctx, created.Id)
		require.NoError(t, err)
		assert.Equal(t, "209.5", account.Balance.String())
	})

	t.Run("should move money between accounts on transfer", func(t *testing.T) {
		service, bus, teardown := setupWithBus(t)
		defer teardown()

		// given
		from, err := service.Create(ctx, Account{Name: "Checking"})
		require.NoError(t, err)
		to, err := service.Create(ctx, Account{Name: "Savings"})
		require.NoError(t, err)

		// when
		transfer := change(from.Id, "transfer", "100")
		transfer.TransferAccountId = to.Id
		err = bus.Publish(event_bus.NewEvent(ctx, event_bus.TransactionCreatedEvent,
			event_bus.TransactionCreated{Transaction: transfer}))

		// then
		require.NoError(t, err)
		fromAccount, _ := service.Get(ctx, from.Id)
		toAccount, _ := service.Get(ctx, to.Id)
		assert.Equal(t, "-100", fromAccount.Balance.String())
		assert.Equal(t, "100", toAccount.Balance.String())
	})

	t.Run("should revert old amount and apply new one on update", func(t *testing.T) {
		service, bus, teardown := setupWithBus(t)
		defer teardown()

		// given an account with an applied 250 income
		created, err := service.Create(ctx, Account{Name: "Wallet"})
		require.NoError(t, err)
		before := change(created.Id, "income", "250")
		err = bus.Publish(event_bus.NewEvent(ctx, event_bus.TransactionCreatedEvent,
			event_bus.TransactionCreated{Transaction: before}))
		require.NoError(t, err)

		// when the transaction becomes a 30 expense
		after := change(created.Id, "expense", "30")
		err = bus.Publish(event_bus.NewEvent(ctx, event_bus.TransactionUpdatedEvent,
			event_bus.TransactionUpdated{Before: before, After: after}))

		// then
		require.NoError(t, err)
		account, err := service.Get(ctx, created.Id)
		require.NoError(t, err)
		assert.Equal(t, "-30", account.Balance.String())
	})

	t.Run("should restore balance when transaction is deleted", func(t *testing.T) {
		service, bus, teardown := setupWithBus(t)
		defer teardown()

		// given
		created, err := service.Create(ctx, Account{Name: "Wallet"})
		require.NoError(t, err)
		tx := change(created.Id, "expense", "75.25")
		err = bus.Publish(event_bus.NewEvent(ctx, event_bus.TransactionCreatedEvent,
			event_bus.TransactionCreated{Transaction: tx}))
		require.NoError(t, err)

		// when
		err = bus.Publish(event_bus.NewEvent(ctx, event_bus.TransactionDeletedEvent,
			event_bus.TransactionDeleted{Transaction: tx}))

		// then
		require.NoError(t, err)
		account, err := service.Get(ctx, created.Id)
		require.NoError(t, err)
		assert.True(t, account.Balance.IsZero())
	})
}

func names(accounts []Account) []string {
	out := make([]string, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Name)
	}
	return out
}

func positions(accounts []Account) []int {
	out := make([]int, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Position)
	}
	return out
}
