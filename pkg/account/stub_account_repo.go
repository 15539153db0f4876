package account

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// stubAccountRepository is an in-memory Repository used by unit tests.
type stubAccountRepository struct {
	accounts map[int]map[int]Account // userId -> accountId -> account
	nextId   int
}

func newStubAccountRepository() *stubAccountRepository {
	return &stubAccountRepository{accounts: map[int]map[int]Account{}, nextId: 1}
}

func (r *stubAccountRepository) Cleanup() {
	r.accounts = map[int]map[int]Account{}
	r.nextId = 1
}

func (r *stubAccountRepository) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	return fn(r)
}

func (r *stubAccountRepository) Create(ctx context.Context, userId int, account Account) (Account, error) {
	if r.accounts[userId] == nil {
		r.accounts[userId] = map[int]Account{}
	}
	account.Id = r.nextId
	r.nextId++
	r.accounts[userId][account.Id] = account
	return account, nil
}

func (r *stubAccountRepository) Get(ctx context.Context, userId int, id int) (Account, error) {
	account, ok := r.accounts[userId][id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return account, nil
}

func (r *stubAccountRepository) GetAll(ctx context.Context, userId int, includeArchived bool) ([]Account, error) {
	all := make([]Account, 0, len(r.accounts[userId]))
	for _, account := range r.accounts[userId] {
		if !includeArchived && account.Status == StatusArchived {
			continue
		}
		all = append(all, account)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Position < all[j].Position })
	return all, nil
}

func (r *stubAccountRepository) Update(ctx context.Context, userId int, account Account) (Account, error) {
	existing, ok := r.accounts[userId][account.Id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	existing.Name = account.Name
	existing.Type = account.Type
	existing.Icon = account.Icon
	existing.Color = account.Color
	existing.Status = account.Status
	r.accounts[userId][account.Id] = existing
	return existing, nil
}

func (r *stubAccountRepository) UpdatePosition(ctx context.Context, userId int, id int, position int) error {
	account, ok := r.accounts[userId][id]
	if !ok {
		return ErrAccountNotFound
	}
	account.Position = position
	r.accounts[userId][id] = account
	return nil
}

func (r *stubAccountRepository) FindMaxPosition(ctx context.Context, userId int) (int, error) {
	maxPosition := 0
	for _, account := range r.accounts[userId] {
		if account.Position > maxPosition {
			maxPosition = account.Position
		}
	}
	return maxPosition, nil
}

func (r *stubAccountRepository) AdjustBalance(ctx context.Context, userId int, id int, delta decimal.Decimal) error {
	account, ok := r.accounts[userId][id]
	if !ok {
		return ErrAccountNotFound
	}
	account.Balance = account.Balance.Add(delta)
	r.accounts[userId][id] = account
	return nil
}

func (r *stubAccountRepository) Delete(ctx context.Context, userId int, id int) error {
	if _, ok := r.accounts[userId][id]; !ok {
		return ErrAccountNotFound
	}
	delete(r.accounts[userId], id)
	return nil
}
