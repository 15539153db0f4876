package transaction

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/centavo/centavo/internal/test_utils"
	"github.com/centavo/centavo/pkg/account"
	"github.com/centavo/centavo/pkg/category"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var db *pgxpool.Pool

func TestMain(m *testing.M) {
	var cleanup func()
	db, cleanup = test_utils.TestWithDB()
	code := m.Run()
	cleanup()
	os.Exit(code)
}

// setupTestRepository inserts a user and a checking account so the foreign
// keys on transactions are satisfied the same way they are in production.
func setupTestRepository(t *testing.T) (context.Context, Repository, int, account.Account) {
	repo := NewRepository(db)
	u, testCtx, err := test_utils.NewTestUser(context.Background(), db, "transaction_"+t.Name())
	require.NoError(t, err)
	checking, err := account.NewRepository(db).Create(testCtx, u.Id, account.Account{
		Name:     "Checking",
		Type:     account.TypeChecking,
		Currency: "USD",
		Position: 100,
		Status:   account.StatusActive,
	})
	require.NoError(t, err)
	return testCtx, repo, u.Id, checking
}

func expenseOn(accountId int, date time.Time, amount string, description string) Transaction {
	return Transaction{
		AccountId:   accountId,
		Type:        TypeExpense,
		Status:      StatusCleared,
		Amount:      decimal.RequireFromString(amount),
		Currency:    "USD",
		Date:        date,
		Description: description,
	}
}

func TestRepositoryImpl_CreateAndGet(t *testing.T) {
	// given
	testCtx, repo, userId, checking := setupTestRepository(t)
	date := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)

	// when
	created, err := repo.Create(testCtx, userId, Transaction{
		AccountId:   checking.Id,
		Type:        TypeExpense,
		Status:      StatusCleared,
		Amount:      decimal.RequireFromString("42.50"),
		Currency:    "USD",
		Date:        date,
		Description: "Weekly groceries",
		Merchant:    "Aldi",
		Notes:       "with guests over",
	})

	// then
	require.NoError(t, err)
	assert.NotZero(t, created.Id)
	assert.False(t, created.CreatedAt.IsZero())

	stored, err := repo.Get(testCtx, userId, created.Id)
	require.NoError(t, err)
	assert.Equal(t, "42.5", stored.Amount.String())
	assert.True(t, stored.Date.Equal(date))
	assert.Equal(t, "Weekly groceries", stored.Description)
	assert.Equal(t, "Aldi", stored.Merchant)
	assert.Equal(t, 0, stored.CategoryId)
	assert.Equal(t, 0, stored.TransferAccountId)
	assert.Empty(t, stored.ImportBatchId)
}

func TestRepositoryImpl_List(t *testing.T) {
	testCtx, repo, userId, checking := setupTestRepository(t)
	groceries, err := category.NewRepository(db).Create(testCtx, userId, category.Category{Name: "Groceries", Kind: category.KindExpense})
	require.NoError(t, err)

	// given income, two expenses (one pending, one categorized) and a transfer
	day := func(d int) time.Time { return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC) }
	salary := Transaction{AccountId: checking.Id, Type: TypeIncome, Status: StatusCleared,
		Amount: decimal.NewFromInt(3000), Currency: "USD", Date: day(1), Description: "June salary"}
	_, err = repo.Create(testCtx, userId, salary)
	require.NoError(t, err)

	categorized := expenseOn(checking.Id, day(3), "54.30", "Weekly groceries")
	categorized.CategoryId = groceries.Id
	categorized.Merchant = "Aldi"
	_, err = repo.Create(testCtx, userId, categorized)
	require.NoError(t, err)

	pending := expenseOn(checking.Id, day(10), "20", "Lunch")
	pending.Status = StatusPending
	_, err = repo.Create(testCtx, userId, pending)
	require.NoError(t, err)

	savings, err := account.NewRepository(db).Create(testCtx, userId, account.Account{
		Name: "Savings", Type: account.TypeSavings, Currency: "USD", Position: 200, Status: account.StatusActive})
	require.NoError(t, err)
	transfer := Transaction{AccountId: checking.Id, TransferAccountId: savings.Id, Type: TypeTransfer,
		Status: StatusCleared, Amount: decimal.NewFromInt(100), Currency: "USD", Date: day(5)}
	_, err = repo.Create(testCtx, userId, transfer)
	require.NoError(t, err)

	t.Run("should return newest first", func(t *testing.T) {
		all, err := repo.List(testCtx, userId, Filter{})
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, "Lunch", all[0].Description)
		assert.Equal(t, "June salary", all[3].Description)
	})

	t.Run("should filter by type and status", func(t *testing.T) {
		expenses, err := repo.List(testCtx, userId, Filter{Type: TypeExpense})
		require.NoError(t, err)
		assert.Len(t, expenses, 2)

		pending, err := repo.List(testCtx, userId, Filter{Status: StatusPending})
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "Lunch", pending[0].Description)
	})

	t.Run("should filter by date window", func(t *testing.T) {
		early, err := repo.List(testCtx, userId, Filter{To: day(4)})
		require.NoError(t, err)
		assert.Len(t, early, 2)

		late, err := repo.List(testCtx, userId, Filter{From: day(4)})
		require.NoError(t, err)
		assert.Len(t, late, 2)
	})

	t.Run("should match transfers on both accounts", func(t *testing.T) {
		onSavings, err := repo.List(testCtx, userId, Filter{AccountId: savings.Id})
		require.NoError(t, err)
		require.Len(t, onSavings, 1)
		assert.Equal(t, TypeTransfer, onSavings[0].Type)
	})

	t.Run("should search description and merchant case-insensitively", func(t *testing.T) {
		byDescription, err := repo.List(testCtx, userId, Filter{Search: "GROCERIES"})
		require.NoError(t, err)
		assert.Len(t, byDescription, 1)

		byMerchant, err := repo.List(testCtx, userId, Filter{Search: "aldi"})
		require.NoError(t, err)
		assert.Len(t, byMerchant, 1)
	})

	t.Run("should filter by category", func(t *testing.T) {
		categorized, err := repo.List(testCtx, userId, Filter{CategoryId: groceries.Id})
		require.NoError(t, err)
		require.Len(t, categorized, 1)
		assert.Equal(t, "54.3", categorized[0].Amount.String())
	})

	t.Run("should page with limit and offset", func(t *testing.T) {
		page, err := repo.List(testCtx, userId, Filter{Limit: 2, Offset: 1})
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, TypeTransfer, page[0].Type)
	})
}

func TestRepositoryImpl_Update(t *testing.T) {
	// given
	testCtx, repo, userId, checking := setupTestRepository(t)
	created, err := repo.Create(testCtx, userId, expenseOn(checking.Id, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), "20", "Lunch"))
	require.NoError(t, err)

	// when
	created.Amount = decimal.RequireFromString("25.50")
	created.Status = StatusPending
	created.Description = "Team lunch"
	updated, err := repo.Update(testCtx, userId, created)

	// then
	require.NoError(t, err)
	assert.Equal(t, "25.5", updated.Amount.String())
	assert.Equal(t, StatusPending, updated.Status)
	assert.Equal(t, "Team lunch", updated.Description)
}

func TestRepositoryImpl_Update_unknownTransaction(t *testing.T) {
	// given
	testCtx, repo, userId, checking := setupTestRepository(t)
	missing := expenseOn(checking.Id, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), "20", "Lunch")
	missing.Id = 9999

	// when
	_, err := repo.Update(testCtx, userId, missing)

	// then
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestRepositoryImpl_Delete(t *testing.T) {
	// given
	testCtx, repo, userId, checking := setupTestRepository(t)
	created, err := repo.Create(testCtx, userId, expenseOn(checking.Id, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), "20", "Lunch"))
	require.NoError(t, err)

	// when
	err = repo.Delete(testCtx, userId, created.Id)

	// then
	require.NoError(t, err)
	_, err = repo.Get(testCtx, userId, created.Id)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestRepositoryImpl_CreateMany(t *testing.T) {
	// given three rows from the same import run
	testCtx, repo, userId, checking := setupTestRepository(t)
	batchId := "b2f9a6de-1c34-4f5e-9a76-2f9f1f1a2b3c"
	rows := make([]Transaction, 0, 3)
	for i, amount := range []string{"10", "20", "30"} {
		row := expenseOn(checking.Id, time.Date(2025, 6, 1+i, 0, 0, 0, 0, time.UTC), amount, "Imported")
		row.ImportBatchId = batchId
		rows = append(rows, row)
	}

	// when
	err := repo.CreateMany(testCtx, userId, rows)

	// then
	require.NoError(t, err)
	stored, err := repo.List(testCtx, userId, Filter{})
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for _, tx := range stored {
		assert.Equal(t, batchId, tx.ImportBatchId)
	}
}

func TestRepositoryImpl_WithTransaction_rollsBackOnError(t *testing.T) {
	// given
	testCtx, repo, userId, checking := setupTestRepository(t)

	// when the callback fails after a batch insert
	err := repo.WithTransaction(testCtx, func(txRepo Repository) error {
		rows := []Transaction{expenseOn(checking.Id, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "10", "Imported")}
		if err := txRepo.CreateMany(testCtx, userId, rows); err != nil {
			return err
		}
		return assert.AnError
	})

	// then nothing is persisted
	assert.ErrorIs(t, err, assert.AnError)
	stored, err := repo.List(testCtx, userId, Filter{})
	require.NoError(t, err)
	assert.Empty(t, stored)
}
