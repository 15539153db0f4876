package transaction

import (
	"context"
	"sort"
	"strings"
	"time"
)

// stubTransactionRepository is an in-memory Repository used by unit tests.
type stubTransactionRepository struct {
	transactions map[int]map[int]Transaction // userId -> transactionId -> transaction
	nextId       int
}

func newStubTransactionRepository() *stubTransactionRepository {
	return &stubTransactionRepository{transactions: map[int]map[int]Transaction{}, nextId: 1}
}

func (r *stubTransactionRepository) Cleanup() {
	r.transactions = map[int]map[int]Transaction{}
	r.nextId = 1
}

func (r *stubTransactionRepository) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	return fn(r)
}

func (r *stubTransactionRepository) Create(ctx context.Context, userId int, transaction Transaction) (Transaction, error) {
	if r.transactions[userId] == nil {
		r.transactions[userId] = map[int]Transaction{}
	}
	transaction.Id = r.nextId
	transaction.CreatedAt = time.Now()
	r.nextId++
	r.transactions[userId][transaction.Id] = transaction
	return transaction, nil
}

func (r *stubTransactionRepository) CreateMany(ctx context.Context, userId int, transactions []Transaction) error {
	for _, transaction := range transactions {
		if _, err := r.Create(ctx, userId, transaction); err != nil {
			return err
		}
	}
	return nil
}

func (r *stubTransactionRepository) Get(ctx context.Context, userId int, id int) (Transaction, error) {
	transaction, ok := r.transactions[userId][id]
	if !ok {
		return Transaction{}, ErrTransactionNotFound
	}
	return transaction, nil
}

func (r *stubTransactionRepository) List(ctx context.Context, userId int, filter Filter) ([]Transaction, error) {
	matches := make([]Transaction, 0)
	for _, transaction := range r.transactions[userId] {
		if matchesFilter(transaction, filter) {
			matches = append(matches, transaction)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].Date.Equal(matches[j].Date) {
			return matches[i].Date.After(matches[j].Date)
		}
		return matches[i].Id > matches[j].Id
	})
	if filter.Offset > 0 {
		if filter.Offset >= len(matches) {
			return []Transaction{}, nil
		}
		matches = matches[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matches) {
		matches = matches[:filter.Limit]
	}
	return matches, nil
}

func matchesFilter(t Transaction, filter Filter) bool {
	if filter.AccountId != 0 && t.AccountId != filter.AccountId && t.TransferAccountId != filter.AccountId {
		return false
	}
	if filter.CategoryId != 0 && t.CategoryId != filter.CategoryId {
		return false
	}
	if filter.Type != "" && t.Type != filter.Type {
		return false
	}
	if filter.Status != "" && t.Status != filter.Status {
		return false
	}
	if !filter.From.IsZero() && t.Date.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && t.Date.After(filter.To) {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(t.Description), needle) &&
			!strings.Contains(strings.ToLower(t.Merchant), needle) {
			return false
		}
	}
	return true
}

func (r *stubTransactionRepository) Update(ctx context.Context, userId int, transaction Transaction) (Transaction, error) {
	existing, ok := r.transactions[userId][transaction.Id]
	if !ok {
		return Transaction{}, ErrTransactionNotFound
	}
	transaction.RecurringId = existing.RecurringId
	transaction.ImportBatchId = existing.ImportBatchId
	transaction.CreatedAt = existing.CreatedAt
	r.transactions[userId][transaction.Id] = transaction
	return transaction, nil
}

func (r *stubTransactionRepository) Delete(ctx context.Context, userId int, id int) error {
	if _, ok := r.transactions[userId][id]; !ok {
		return ErrTransactionNotFound
	}
	delete(r.transactions[userId], id)
	return nil
}
