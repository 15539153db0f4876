package liability

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// stubLiabilityRepository is an in-memory Repository used by unit tests.
type stubLiabilityRepository struct {
	liabilities map[int]map[int]Liability // userId -> liabilityId -> liability
	nextId      int
}

func newStubLiabilityRepository() *stubLiabilityRepository {
	return &stubLiabilityRepository{liabilities: map[int]map[int]Liability{}, nextId: 1}
}

func (r *stubLiabilityRepository) Cleanup() {
	r.liabilities = map[int]map[int]Liability{}
	r.nextId = 1
}

func (r *stubLiabilityRepository) Create(ctx context.Context, userId int, liability Liability) (Liability, error) {
	if r.liabilities[userId] == nil {
		r.liabilities[userId] = map[int]Liability{}
	}
	liability.Id = r.nextId
	r.nextId++
	r.liabilities[userId][liability.Id] = liability
	return liability, nil
}

func (r *stubLiabilityRepository) Get(ctx context.Context, userId int, id int) (Liability, error) {
	liability, ok := r.liabilities[userId][id]
	if !ok {
		return Liability{}, ErrLiabilityNotFound
	}
	return liability, nil
}

func (r *stubLiabilityRepository) GetAll(ctx context.Context, userId int, includeArchived bool) ([]Liability, error) {
	all := make([]Liability, 0, len(r.liabilities[userId]))
	for _, liability := range r.liabilities[userId] {
		if !includeArchived && liability.Status == StatusArchived {
			continue
		}
		all = append(all, liability)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Id < all[j].Id })
	return all, nil
}

func (r *stubLiabilityRepository) Update(ctx context.Context, userId int, liability Liability) (Liability, error) {
	if _, ok := r.liabilities[userId][liability.Id]; !ok {
		return Liability{}, ErrLiabilityNotFound
	}
	r.liabilities[userId][liability.Id] = liability
	return liability, nil
}

func (r *stubLiabilityRepository) UpdateBalance(ctx context.Context, userId int, id int, balance decimal.Decimal, status Status) error {
	liability, ok := r.liabilities[userId][id]
	if !ok {
		return ErrLiabilityNotFound
	}
	liability.Balance = balance
	liability.Status = status
	r.liabilities[userId][id] = liability
	return nil
}

func (r *stubLiabilityRepository) Delete(ctx context.Context, userId int, id int) error {
	if _, ok := r.liabilities[userId][id]; !ok {
		return ErrLiabilityNotFound
	}
	delete(r.liabilities[userId], id)
	return nil
}
